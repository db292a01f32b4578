// Package keyring handles API credential storage and loading.
package keyring

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// APIKey holds one key/secret pair for the trading API.
type APIKey struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

// Valid reports whether both halves of the pair are present.
func (k *APIKey) Valid() bool {
	return k != nil && k.Key != "" && k.Secret != ""
}

// String renders the key with the secret omitted and the key masked.
func (k *APIKey) String() string {
	return fmt.Sprintf("APIKey{Key:%s}", maskKey(k.Key))
}

// DefaultSecretPath returns the conventional secret file location,
// ~/poloniex/secret.json.
func DefaultSecretPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "poloniex", "secret.json")
}

// LoadFile reads a JSON secret file of the form
//
//	{"key": "...", "secret": "..."}
//
// and returns the key pair. A file with a missing key or secret value is
// rejected.
func LoadFile(path string) (*APIKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secret file: %w", err)
	}

	var key APIKey
	if err := sonic.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("parse secret file: %w", err)
	}

	if key.Key == "" {
		return nil, fmt.Errorf("secret file %s is missing key value", path)
	}
	if key.Secret == "" {
		return nil, fmt.Errorf("secret file %s is missing secret value", path)
	}

	return &key, nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
