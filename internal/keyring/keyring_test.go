package keyring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecretFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeSecretFile(t, `{"key": "my-api-key", "secret": "my-api-secret"}`)

	key, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "my-api-key", key.Key)
	assert.Equal(t, "my-api-secret", key.Secret)
	assert.True(t, key.Valid())
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing key", content: `{"secret": "s"}`},
		{name: "missing secret", content: `{"key": "k"}`},
		{name: "empty object", content: `{}`},
		{name: "not json", content: `key=value`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSecretFile(t, tt.content)
			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestAPIKeyValid(t *testing.T) {
	var nilKey *APIKey
	assert.False(t, nilKey.Valid())
	assert.False(t, (&APIKey{Key: "k"}).Valid())
	assert.False(t, (&APIKey{Secret: "s"}).Valid())
	assert.True(t, (&APIKey{Key: "k", Secret: "s"}).Valid())
}

func TestStringMasksKey(t *testing.T) {
	key := &APIKey{Key: "ABCDEFGHIJKLMNOP", Secret: "super-secret"}
	rendered := key.String()
	assert.Equal(t, "APIKey{Key:ABCD****MNOP}", rendered)
	assert.NotContains(t, rendered, "super-secret")

	short := &APIKey{Key: "short", Secret: "s"}
	assert.Equal(t, "APIKey{Key:****}", short.String())
}
