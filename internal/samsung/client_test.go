// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package samsung_test

import (
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zapper/internal"
	"zapper/internal/samsung"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// fakeTV is a TLS websocket server standing in for the remote channel. It
// answers with a channel connect event and records every frame it receives.
type fakeTV struct {
	server *httptest.Server
	token  string
	event  string
	silent bool // never send the handshake event

	mu     sync.Mutex
	names  []string
	tokens []string
	frames [][]byte
}

func newFakeTV(t *testing.T, token string) *fakeTV {
	tv := &fakeTV{token: token, event: "ms.channel.connect"}
	tv.server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/channels/samsung.remote.control" {
			http.NotFound(w, r)
			return
		}

		name, _ := base64.StdEncoding.DecodeString(r.URL.Query().Get("name"))
		tv.mu.Lock()
		tv.names = append(tv.names, string(name))
		tv.tokens = append(tv.tokens, r.URL.Query().Get("token"))
		tv.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if !tv.silent {
			handshake := map[string]interface{}{
				"event": tv.event,
				"data":  map[string]interface{}{"token": tv.token},
			}
			if err := conn.WriteJSON(handshake); err != nil {
				return
			}
		}

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				return
			}
			tv.mu.Lock()
			tv.frames = append(tv.frames, frame)
			tv.mu.Unlock()
		}
	}))
	t.Cleanup(tv.server.Close)
	return tv
}

func (tv *fakeTV) hostPort(t *testing.T) (string, int) {
	parsed, err := url.Parse(tv.server.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(parsed.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func (tv *fakeTV) seenNames() []string {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	return append([]string(nil), tv.names...)
}

func (tv *fakeTV) seenTokens() []string {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	return append([]string(nil), tv.tokens...)
}

func (tv *fakeTV) receivedFrames() [][]byte {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	frames := make([][]byte, len(tv.frames))
	copy(frames, tv.frames)
	return frames
}

// waitForFrames polls until the server has seen n frames. Sends are fire
// and forget, so the write returning does not mean the frame has landed.
func (tv *fakeTV) waitForFrames(t *testing.T, n int) [][]byte {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		frames := tv.receivedFrames()
		if len(frames) >= n {
			return frames
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames, saw %d", n, len(tv.receivedFrames()))
	return nil
}

func newTestClient(t *testing.T, tv *fakeTV, tokenPath string) *samsung.RemoteClient {
	host, port := tv.hostPort(t)
	return samsung.NewRemoteClient(samsung.ClientConfig{
		Host:             host,
		Port:             port,
		TokenPath:        tokenPath,
		HandshakeTimeout: 2 * time.Second,
		KeyDelay:         time.Millisecond,
	}, internal.NewModeOptions())
}

func TestConnect(t *testing.T) {
	t.Run("performs the handshake and stores the token", func(t *testing.T) {
		tv := newFakeTV(t, "tok-1")
		tokenPath := filepath.Join(t.TempDir(), "token")
		client := newTestClient(t, tv, tokenPath)

		require.NoError(t, client.Connect())
		defer client.Disconnect()

		assert.Equal(t, samsung.StateConnected, client.State())
		assert.Equal(t, "tok-1", client.Token())
		assert.Equal(t, "tok-1", samsung.NewTokenStore(tokenPath).Load())
	})

	t.Run("sends the client name base64 encoded", func(t *testing.T) {
		tv := newFakeTV(t, "tok-1")
		host, port := tv.hostPort(t)
		client := samsung.NewRemoteClient(samsung.ClientConfig{
			Host:             host,
			Port:             port,
			Name:             "living-room",
			HandshakeTimeout: 2 * time.Second,
			KeyDelay:         time.Millisecond,
		}, nil)

		require.NoError(t, client.Connect())
		defer client.Disconnect()

		assert.Equal(t, []string{"living-room"}, tv.seenNames())
	})

	t.Run("includes the saved token in the session URL", func(t *testing.T) {
		tokenPath := filepath.Join(t.TempDir(), "token")
		require.NoError(t, samsung.NewTokenStore(tokenPath).Save("saved-token"))

		tv := newFakeTV(t, "saved-token")
		client := newTestClient(t, tv, tokenPath)

		require.NoError(t, client.Connect())
		defer client.Disconnect()

		assert.Equal(t, []string{"saved-token"}, tv.seenTokens())
	})

	t.Run("replaces the token when the TV rotates it", func(t *testing.T) {
		tokenPath := filepath.Join(t.TempDir(), "token")
		require.NoError(t, samsung.NewTokenStore(tokenPath).Save("old-token"))

		tv := newFakeTV(t, "new-token")
		client := newTestClient(t, tv, tokenPath)

		require.NoError(t, client.Connect())
		defer client.Disconnect()

		assert.Equal(t, "new-token", client.Token())
		assert.Equal(t, "new-token", samsung.NewTokenStore(tokenPath).Load())
	})

	t.Run("keeps the stored token when the event has none", func(t *testing.T) {
		tokenPath := filepath.Join(t.TempDir(), "token")
		require.NoError(t, samsung.NewTokenStore(tokenPath).Save("keep-me"))

		tv := newFakeTV(t, "")
		client := newTestClient(t, tv, tokenPath)

		require.NoError(t, client.Connect())
		defer client.Disconnect()

		assert.Equal(t, "keep-me", client.Token())
		assert.Equal(t, "keep-me", samsung.NewTokenStore(tokenPath).Load())
	})

	t.Run("fails when the TV is unreachable", func(t *testing.T) {
		client := samsung.NewRemoteClient(samsung.ClientConfig{
			Host:             "127.0.0.1",
			Port:             1,
			HandshakeTimeout: time.Second,
			KeyDelay:         time.Millisecond,
		}, nil)

		err := client.Connect()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect")
		assert.Equal(t, samsung.StateDisconnected, client.State())
	})

	t.Run("fails on an unexpected handshake event", func(t *testing.T) {
		tv := newFakeTV(t, "tok")
		tv.event = "ms.channel.unauthorized"
		client := newTestClient(t, tv, "")

		err := client.Connect()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ms.channel.unauthorized")
		assert.Equal(t, samsung.StateDisconnected, client.State())
	})

	t.Run("times out when the TV never answers", func(t *testing.T) {
		tv := newFakeTV(t, "tok")
		tv.silent = true
		host, port := tv.hostPort(t)
		client := samsung.NewRemoteClient(samsung.ClientConfig{
			Host:             host,
			Port:             port,
			HandshakeTimeout: 500 * time.Millisecond,
			KeyDelay:         time.Millisecond,
		}, nil)

		err := client.Connect()
		require.Error(t, err)
		assert.Equal(t, samsung.StateDisconnected, client.State())
	})
}

func TestSendKey(t *testing.T) {
	t.Run("connects lazily and sends the click frame", func(t *testing.T) {
		tv := newFakeTV(t, "tok")
		client := newTestClient(t, tv, "")

		assert.Equal(t, samsung.StateDisconnected, client.State())
		require.NoError(t, client.SendKey("home"))
		defer client.Disconnect()

		assert.Equal(t, samsung.StateConnected, client.State())

		frames := tv.waitForFrames(t, 1)
		var msg samsung.RemoteMessage
		require.NoError(t, json.Unmarshal(frames[0], &msg))
		assert.Equal(t, "ms.remote.control", msg.Method)
		assert.Equal(t, "Click", msg.Params.Cmd)
		assert.Equal(t, "KEY_HOME", msg.Params.DataOfCmd)
		assert.Equal(t, "SendRemoteKey", msg.Params.TypeOfRemote)
	})

	t.Run("sends no frame when the connection fails", func(t *testing.T) {
		client := samsung.NewRemoteClient(samsung.ClientConfig{
			Host:             "127.0.0.1",
			Port:             1,
			HandshakeTimeout: time.Second,
			KeyDelay:         time.Millisecond,
		}, nil)

		err := client.SendKey("home")
		require.Error(t, err)
		assert.Equal(t, samsung.StateDisconnected, client.State())
	})

	t.Run("keeps frame order across a key burst", func(t *testing.T) {
		tv := newFakeTV(t, "tok")
		client := newTestClient(t, tv, "")
		defer client.Disconnect()

		sequence := []string{"home", "down", "right", "enter"}
		for _, key := range sequence {
			require.NoError(t, client.SendKey(key))
		}

		frames := tv.waitForFrames(t, len(sequence))
		for i, key := range sequence {
			var msg samsung.RemoteMessage
			require.NoError(t, json.Unmarshal(frames[i], &msg))
			assert.Equal(t, string(samsung.NormalizeKey(key)), msg.Params.DataOfCmd)
		}
	})
}

func TestSendText(t *testing.T) {
	t.Run("sends the text base64 encoded", func(t *testing.T) {
		tv := newFakeTV(t, "tok")
		client := newTestClient(t, tv, "")
		defer client.Disconnect()

		require.NoError(t, client.SendText("Match of the Day"))

		frames := tv.waitForFrames(t, 1)
		var msg samsung.RemoteMessage
		require.NoError(t, json.Unmarshal(frames[0], &msg))
		assert.Equal(t, "base64", msg.Params.DataOfCmd)
		assert.Equal(t, "SendInputString", msg.Params.TypeOfRemote)

		decoded, err := base64.StdEncoding.DecodeString(msg.Params.Cmd)
		require.NoError(t, err)
		assert.Equal(t, "Match of the Day", string(decoded))
	})
}

func TestLaunchApp(t *testing.T) {
	t.Run("resolves friendly names to app IDs", func(t *testing.T) {
		tv := newFakeTV(t, "tok")
		client := newTestClient(t, tv, "")
		defer client.Disconnect()

		require.NoError(t, client.LaunchApp("iplayer"))

		frames := tv.waitForFrames(t, 1)
		var msg samsung.EmitMessage
		require.NoError(t, json.Unmarshal(frames[0], &msg))
		assert.Equal(t, "ms.channel.emit", msg.Method)
		assert.Equal(t, "ed.apps.launch", msg.Params.Event)
		assert.Equal(t, "3201602007865", msg.Params.Data.AppID)
		assert.Equal(t, "DEEP_LINK", msg.Params.Data.ActionType)
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("resets the session state", func(t *testing.T) {
		tv := newFakeTV(t, "tok")
		client := newTestClient(t, tv, "")

		require.NoError(t, client.Connect())
		assert.Equal(t, samsung.StateConnected, client.State())

		require.NoError(t, client.Disconnect())
		assert.Equal(t, samsung.StateDisconnected, client.State())
	})

	t.Run("is safe to call when never connected", func(t *testing.T) {
		client := samsung.NewRemoteClient(samsung.ClientConfig{Host: "127.0.0.1"}, nil)

		require.NoError(t, client.Disconnect())
		assert.Equal(t, samsung.StateDisconnected, client.State())
	})
}

func TestTestMode(t *testing.T) {
	t.Run("simulates sends without a TV", func(t *testing.T) {
		client := samsung.NewRemoteClient(samsung.ClientConfig{Host: "192.0.2.1"},
			internal.NewModeOptions(internal.WithTest(true)))

		require.NoError(t, client.SendKey("home"))
		require.NoError(t, client.SendText("hi"))
		require.NoError(t, client.LaunchApp("netflix"))
		assert.Equal(t, samsung.StateConnected, client.State())
	})
}
