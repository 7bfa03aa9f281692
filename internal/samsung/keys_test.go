package samsung_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"zapper/internal/samsung"
)

func TestNormalizeKey(t *testing.T) {
	t.Run("resolves friendly names", func(t *testing.T) {
		assert.Equal(t, samsung.KeyHome, samsung.NormalizeKey("home"))
		assert.Equal(t, samsung.KeyVolumeUp, samsung.NormalizeKey("volup"))
		assert.Equal(t, samsung.KeyEnter, samsung.NormalizeKey("ok"))
		assert.Equal(t, samsung.KeyReturn, samsung.NormalizeKey("back"))
		assert.Equal(t, samsung.Key7, samsung.NormalizeKey("7"))
	})

	t.Run("is case insensitive for friendly names", func(t *testing.T) {
		assert.Equal(t, samsung.KeyHome, samsung.NormalizeKey("HOME"))
		assert.Equal(t, samsung.KeyMute, samsung.NormalizeKey("Mute"))
	})

	t.Run("prefixes unknown names", func(t *testing.T) {
		assert.Equal(t, samsung.KeyCode("KEY_HDMI1"), samsung.NormalizeKey("hdmi1"))
		assert.Equal(t, samsung.KeyCode("KEY_AMBIENT"), samsung.NormalizeKey("ambient"))
	})

	t.Run("passes KEY_ codes through unchanged", func(t *testing.T) {
		assert.Equal(t, samsung.KeyCode("KEY_POWER"), samsung.NormalizeKey("KEY_POWER"))
		assert.Equal(t, samsung.KeyCode("KEY_16_9"), samsung.NormalizeKey("KEY_16_9"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		for _, name := range []string{"home", "KEY_HOME", "volup", "ambient", "7"} {
			once := samsung.NormalizeKey(name)
			twice := samsung.NormalizeKey(string(once))
			assert.Equal(t, once, twice, "normalizing %q twice changed the code", name)
		}
	})
}

func TestKnownKeys(t *testing.T) {
	t.Run("is sorted and covers the basics", func(t *testing.T) {
		keys := samsung.KnownKeys()

		assert.True(t, sort.StringsAreSorted(keys))
		assert.Contains(t, keys, "power")
		assert.Contains(t, keys, "home")
		assert.Contains(t, keys, "volup")
		assert.Contains(t, keys, "chdown")
	})
}
