package credential

import (
	"errors"
	"fmt"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestTokenPrefersEnvironment(t *testing.T) {
	tok, err := tokenFrom(env(map[string]string{TokenEnv: " from-env "}), func(string) (string, error) {
		t.Fatal("keyring must not be consulted")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)
}

func TestTokenFallsBackToKeyring(t *testing.T) {
	tok, err := tokenFrom(env(nil), func(key string) (string, error) {
		assert.Equal(t, TokenKey, key)
		return "from-keyring\n", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", tok)
}

func TestTokenMissing(t *testing.T) {
	_, err := tokenFrom(env(nil), func(key string) (string, error) {
		return "", fmt.Errorf("getting credential %q: %w", key, keyring.ErrKeyNotFound)
	})
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = tokenFrom(env(nil), func(string) (string, error) { return "  ", nil })
	assert.ErrorIs(t, err, ErrNoToken)

	boom := errors.New("dbus unavailable")
	_, err = tokenFrom(env(nil), func(string) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}
