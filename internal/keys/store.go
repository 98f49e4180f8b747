// Package keys stores the API credential used for completions.
package keys

import (
	"errors"
	"strings"
)

// SecretStore provides access to named secrets such as the LLM API key.
type SecretStore interface {
	Get(name string) (string, error)
	Put(name, value string) error
	Delete(name string) error
}

var ErrKeyNotFound = errors.New("key not found")

// APIKeyName is the secret name the LLM API key is stored under.
const APIKeyName = "llm.api_key"

// ConfigStore keeps secrets in config-managed storage.
type ConfigStore struct {
	Values map[string]string
}

func (s *ConfigStore) Get(name string) (string, error) {
	if s == nil || s.Values == nil {
		return "", ErrKeyNotFound
	}
	val, ok := s.Values[name]
	if !ok || strings.TrimSpace(val) == "" {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (s *ConfigStore) Put(name, value string) error {
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	s.Values[name] = value
	return nil
}

func (s *ConfigStore) Delete(name string) error {
	if s == nil || s.Values == nil {
		return nil
	}
	delete(s.Values, name)
	return nil
}

// Chain reads from each store in order and returns the first hit. A store
// that fails does not hide a later hit. Writes go to the first store.
type Chain []SecretStore

func (c Chain) Get(name string) (string, error) {
	var firstErr error
	for _, s := range c {
		v, err := s.Get(name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrKeyNotFound) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	return "", ErrKeyNotFound
}

func (c Chain) Put(name, value string) error {
	if len(c) == 0 {
		return errors.New("no secret store configured")
	}
	return c[0].Put(name, value)
}

func (c Chain) Delete(name string) error {
	for _, s := range c {
		if err := s.Delete(name); err != nil {
			return err
		}
	}
	return nil
}
