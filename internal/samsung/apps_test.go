package samsung_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"zapper/internal/samsung"
)

func TestResolveApp(t *testing.T) {
	t.Run("maps friendly names to launch IDs", func(t *testing.T) {
		assert.Equal(t, samsung.AppID("3201602007865"), samsung.ResolveApp("iplayer"))
		assert.Equal(t, samsung.AppID("3201907018807"), samsung.ResolveApp("Netflix"))
		assert.Equal(t, samsung.AppID("111299001912"), samsung.ResolveApp("youtube"))
	})

	t.Run("passes unknown names through unchanged", func(t *testing.T) {
		assert.Equal(t, samsung.AppID("myapp123"), samsung.ResolveApp("myapp123"))
		assert.Equal(t, samsung.AppID("3201909019271"), samsung.ResolveApp("3201909019271"))
	})
}

func TestNormalizeAppName(t *testing.T) {
	t.Run("canonicalises tile labels", func(t *testing.T) {
		assert.Equal(t, "samsung_tv_plus", samsung.NormalizeAppName("Samsung TV Plus"))
		assert.Equal(t, "disney", samsung.NormalizeAppName("Disney+"))
		assert.Equal(t, "iplayer", samsung.NormalizeAppName("iPlayer"))
	})
}

func TestDefaultPositions(t *testing.T) {
	t.Run("matches the home screen row order", func(t *testing.T) {
		assert.Equal(t, 0, samsung.DefaultPositions["smartthings"])
		assert.Equal(t, 2, samsung.DefaultPositions["netflix"])
		assert.Equal(t, 4, samsung.DefaultPositions["iplayer"])
		assert.Equal(t, 9, samsung.DefaultPositions["youtube"])
	})
}

func TestHasLaunchID(t *testing.T) {
	t.Run("only reports apps with known IDs", func(t *testing.T) {
		assert.True(t, samsung.HasLaunchID("netflix"))
		assert.True(t, samsung.HasLaunchID("Spotify"))
		assert.False(t, samsung.HasLaunchID("itvx"))
		assert.False(t, samsung.HasLaunchID("smartthings"))
	})
}
