package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CheckConfigValidity reports every problem in v at once.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []error
	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if u := strings.TrimSpace(v.GetString("db_url")); u != "" && u != "memory://" && strings.Contains(u, "://") && !strings.HasPrefix(u, "sqlite://") {
		errs = append(errs, fmt.Errorf("db_url %q must be sqlite:// or memory://", u))
	}
	if p := v.GetString("llm.provider"); p != "anthropic" {
		errs = append(errs, fmt.Errorf("llm.provider %q is not supported", p))
	}
	if strings.TrimSpace(v.GetString("llm.model")) == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if b := strings.TrimSpace(v.GetString("llm.base_url")); b != "" {
		if u, err := url.Parse(b); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, errors.New("llm.base_url is not a valid url"))
		}
	}
	if d, err := time.ParseDuration(v.GetString("llm.timeout")); err != nil || d <= 0 {
		errs = append(errs, errors.New("llm.timeout must be a positive duration"))
	}
	if v.GetInt("llm.max_retries") < 0 {
		errs = append(errs, errors.New("llm.max_retries must not be negative"))
	}
	for _, k := range []string{"chat.max_tokens", "analyze.max_tokens", "http.max_body_bytes"} {
		if v.GetInt(k) <= 0 {
			errs = append(errs, fmt.Errorf("%s must be greater than 0", k))
		}
	}
	if v.GetInt("render.width") < 0 {
		errs = append(errs, errors.New("render.width must not be negative"))
	}
	if len(v.GetStringSlice("tls.domains")) > 0 && strings.TrimSpace(v.GetString("tls.email")) == "" {
		errs = append(errs, errors.New("tls.email is required when tls.domains is set"))
	}
	switch v.GetString("keys.provider") {
	case "keyring", "config":
	default:
		errs = append(errs, fmt.Errorf("keys.provider %q must be keyring or config", v.GetString("keys.provider")))
	}
	return errors.Join(errs...)
}
