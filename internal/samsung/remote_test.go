package samsung_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zapper/internal"
	"zapper/internal/samsung"
)

// testRemote runs in test mode so no frame ever leaves the process
func testRemote(mac string) *samsung.SamsungRemote {
	return samsung.NewSamsungRemote(
		samsung.ClientConfig{Host: "192.0.2.1"},
		mac,
		internal.NewModeOptions(internal.WithTest(true)),
	)
}

func TestSamsungRemoteDeviceInfo(t *testing.T) {
	remote := testRemote("6c:70:cb:a4:66:b4")
	info := remote.GetDeviceInfo()

	assert.Equal(t, "samsung_tv", info.Type)
	assert.Equal(t, "192.0.2.1", info.Address)
	assert.Contains(t, info.Capabilities, "remote_control")
	assert.Contains(t, info.Capabilities, "wake_on_lan")
}

func TestSamsungRemoteProcess(t *testing.T) {
	t.Run("executes key actions", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"key","parameters":{"key":"home"}}`))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Contains(t, resp.Data, "KEY_HOME")
	})

	t.Run("executes key sequences", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"keys","parameters":{"keys":["home","down","enter"]}}`))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "3 keys sent", resp.Data)
	})

	t.Run("executes text actions", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"text","parameters":{"text":"Match of the Day"}}`))
		require.NoError(t, err)
		assert.True(t, resp.Success)
	})

	t.Run("executes app actions", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"app","parameters":{"app":"iplayer"}}`))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Contains(t, resp.Data, "3201602007865")
	})

	t.Run("simulates wake with the configured MAC", func(t *testing.T) {
		remote := testRemote("6c:70:cb:a4:66:b4")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"wake"}`))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Contains(t, resp.Data, "6c:70:cb:a4:66:b4")
	})

	t.Run("prefers an explicit wake MAC", func(t *testing.T) {
		remote := testRemote("6c:70:cb:a4:66:b4")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"wake","parameters":{"mac":"aa:bb:cc:dd:ee:ff"}}`))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Contains(t, resp.Data, "aa:bb:cc:dd:ee:ff")
	})

	t.Run("fails wake without any MAC", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"wake"}`))
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "no MAC address")
	})

	t.Run("returns device info in test mode", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"info"}`))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
	})

	t.Run("reports connection state", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"state"}`))
		require.NoError(t, err)
		require.True(t, resp.Success)

		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "disconnected", data["state"])
		assert.Equal(t, false, data["paired"])
	})

	t.Run("rejects malformed requests", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`not json`))
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("rejects missing parameters", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"key"}`))
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "missing required parameter")
	})

	t.Run("rejects cast action types", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"cast","action":"play"}`))
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "unsupported action type")
	})

	t.Run("rejects unknown actions", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"dance"}`))
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "unsupported remote action")
	})

	t.Run("rejects empty key sequences", func(t *testing.T) {
		remote := testRemote("")

		resp, err := remote.Process([]byte(`{"type":"remote","action":"keys","parameters":{"keys":[]}}`))
		require.NoError(t, err)
		assert.False(t, resp.Success)
	})
}
