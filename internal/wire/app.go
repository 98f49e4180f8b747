package wire

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/spf13/viper"

	"github.com/mithrel/medic/internal/assistant"
	"github.com/mithrel/medic/internal/db"
	"github.com/mithrel/medic/internal/keys"
	"github.com/mithrel/medic/internal/llm"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg       *viper.Viper
	Log       *log.Logger
	Store     db.Store
	Keys      keys.SecretStore
	Assistant *assistant.Service
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, cfg *viper.Viper) (*App, error) {
	logger := log.New(os.Stderr, "medic ", log.LstdFlags)
	store, err := db.Open(ctx, cfg.GetString("db_url"))
	if err != nil {
		return nil, err
	}
	app := &App{
		Cfg:   cfg,
		Log:   logger,
		Store: store,
		Keys:  SecretStore(cfg),
	}
	app.Assistant = assistant.New(app.completer(), store, assistant.Options{
		ChatMaxTokens:    cfg.GetInt("chat.max_tokens"),
		AnalyzeMaxTokens: cfg.GetInt("analyze.max_tokens"),
		Cache:            cfg.GetBool("cache.enabled"),
		History:          cfg.GetBool("history.enabled"),
	}, logger)
	return app, nil
}

// SecretStore returns where `key set` writes and completions read the API
// key, as selected by keys.provider. Config values are always consulted.
func SecretStore(cfg *viper.Viper) keys.SecretStore {
	conf := &keys.ConfigStore{Values: map[string]string{keys.APIKeyName: cfg.GetString("llm.api_key")}}
	if cfg.GetString("keys.provider") == "config" {
		return conf
	}
	return keys.Chain{&keys.KeyringStore{}, conf}
}

// completer builds the LLM client. A missing key is not an error here: the
// SDK falls back to ANTHROPIC_API_KEY and reports auth failures per request.
func (a *App) completer() llm.Completer {
	key, err := a.Keys.Get(keys.APIKeyName)
	if err != nil && !errors.Is(err, keys.ErrKeyNotFound) {
		a.Log.Printf("api key lookup failed: %v", err)
	}
	return llm.NewAnthropic(llm.AnthropicConfig{
		APIKey:     key,
		Model:      a.Cfg.GetString("llm.model"),
		BaseURL:    a.Cfg.GetString("llm.base_url"),
		Timeout:    a.Cfg.GetDuration("llm.timeout"),
		MaxRetries: a.Cfg.GetInt("llm.max_retries"),
	})
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
