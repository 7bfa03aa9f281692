package samsung_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zapper/internal/samsung"
)

func TestTokenStore(t *testing.T) {
	t.Run("load returns empty without a saved token", func(t *testing.T) {
		store := samsung.NewTokenStore(filepath.Join(t.TempDir(), "token"))

		assert.Equal(t, "", store.Load())
	})

	t.Run("saves and loads a token", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		store := samsung.NewTokenStore(path)

		require.NoError(t, store.Save("12345678"))
		assert.Equal(t, "12345678", store.Load())
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "token")
		store := samsung.NewTokenStore(path)

		require.NoError(t, store.Save("abc"))
		assert.Equal(t, "abc", store.Load())
	})

	t.Run("writes with owner-only permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		store := samsung.NewTokenStore(path)
		require.NoError(t, store.Save("secret"))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("trims whitespace on load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("  tok123\n"), 0600))

		store := samsung.NewTokenStore(path)
		assert.Equal(t, "tok123", store.Load())
	})

	t.Run("clear removes the token", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		store := samsung.NewTokenStore(path)

		require.NoError(t, store.Save("gone"))
		require.NoError(t, store.Clear())
		assert.Equal(t, "", store.Load())

		// Clearing twice is fine
		require.NoError(t, store.Clear())
	})
}
