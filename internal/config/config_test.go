package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func defaults() *viper.Viper {
	v := viper.New()
	applyDefaults(v)
	return v
}

func TestCheckConfigValidityDefaults(t *testing.T) {
	if err := CheckConfigValidity(defaults()); err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}
}

func TestCheckConfigValidityInvalid(t *testing.T) {
	v := defaults()
	v.Set("data_dir", "")
	v.Set("db_url", "postgres://x")
	v.Set("llm.provider", "other")
	v.Set("llm.model", "")
	v.Set("llm.base_url", "not a url")
	v.Set("llm.timeout", "soon")
	v.Set("chat.max_tokens", 0)
	v.Set("tls.domains", []string{"medic.example.org"})
	v.Set("keys.provider", "vault")

	err := CheckConfigValidity(v)
	if err == nil {
		t.Fatalf("expected error for invalid config")
	}
	msg := err.Error()
	expected := []string{
		"data_dir is required",
		"db_url \"postgres://x\" must be sqlite:// or memory://",
		"llm.provider \"other\" is not supported",
		"llm.model is required",
		"llm.base_url is not a valid url",
		"llm.timeout must be a positive duration",
		"chat.max_tokens must be greater than 0",
		"tls.email is required",
		"keys.provider \"vault\"",
	}
	for _, want := range expected {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected error to contain %q, got %q", want, msg)
		}
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfg, []byte("http_addr = \":9000\"\n[chat]\nmax_tokens = 512\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("MEDIC_CHAT_MAX_TOKENS", "256")

	v := viper.New()
	v.SetConfigFile(cfg)
	if err := Load(context.Background(), v); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := v.GetString("http_addr"); got != ":9000" {
		t.Fatalf("http_addr from file: got %q", got)
	}
	if got := v.GetInt("chat.max_tokens"); got != 256 {
		t.Fatalf("env should win over file: got %d", got)
	}
	if got := v.GetInt("analyze.max_tokens"); got != 4096 {
		t.Fatalf("default analyze.max_tokens: got %d", got)
	}
	if got := v.GetString("db_url"); got != "sqlite://"+filepath.Join(dir, "medic", "medic.db") {
		t.Fatalf("db_url: got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	v := viper.New()
	if err := Load(context.Background(), v); err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if v.GetString("llm.model") == "" {
		t.Fatalf("expected default model")
	}
}

func TestRenderDefaultTOMLReadsBack(t *testing.T) {
	out := RenderDefaultTOML()
	if !strings.HasPrefix(out, "# medic configuration (TOML)") {
		t.Fatalf("missing header: %q", out[:40])
	}
	if !strings.Contains(out, "[llm]\n") || !strings.Contains(out, "timeout = \"120s\"") {
		t.Fatalf("expected llm section in %q", out)
	}

	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(out)); err != nil {
		t.Fatalf("generated TOML does not parse: %v", err)
	}
	if v.GetInt("analyze.max_tokens") != 4096 {
		t.Fatalf("analyze.max_tokens round trip: %v", v.Get("analyze.max_tokens"))
	}
	if !v.GetBool("cache.enabled") {
		t.Fatalf("cache.enabled round trip")
	}
}

func TestUpdateTOML(t *testing.T) {
	in := "http_addr = \":1\"\nnamespace = \"old\"\n[llm]\nmodel = \"m\"\n"
	out, changed := UpdateTOML(in)
	if !changed {
		t.Fatalf("expected change")
	}
	if !strings.Contains(out, "# OUTDATED: option removed from config schema\n# namespace = \"old\"") {
		t.Fatalf("unknown key not commented out: %q", out)
	}
	if strings.Count(out, "http_addr =") != 1 || strings.Count(out, "model =") != 1 {
		t.Fatalf("existing keys duplicated: %q", out)
	}
	if !strings.Contains(out, "# Added by config update") || !strings.Contains(out, "max_retries = 2") {
		t.Fatalf("missing defaults not appended: %q", out)
	}

	again, changed := UpdateTOML(out)
	if changed {
		t.Fatalf("second update should be a no-op: %q", again)
	}
}
