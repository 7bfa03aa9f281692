package samsung

import (
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"zapper/internal"
	"zapper/internal/logger"
)

// Session defaults for the websocket remote API
const (
	DefaultPort             = 8002
	DefaultName             = "zapper"
	DefaultHandshakeTimeout = 12 * time.Second
	DefaultKeyDelay         = 300 * time.Millisecond

	remotePath   = "/api/v2/channels/samsung.remote.control"
	connectEvent = "ms.channel.connect"
)

// ClientConfig carries the connection settings for a RemoteClient
type ClientConfig struct {
	Host             string
	Port             int
	Name             string        // shown on the TV's permission prompt
	TokenPath        string        // pairing token file, empty disables persistence
	HandshakeTimeout time.Duration // covers both the dial and the connect event
	KeyDelay         time.Duration // settle time after each key press
	VerifyTLS        bool          // TVs ship self-signed certs, so off unless set
}

// RemoteClient drives a Samsung Smart TV over its websocket remote API.
// Sessions open lazily on the first send, and commands are fire-and-forget:
// the TV never acknowledges individual frames, so a nil error only means
// the frame left this machine.
type RemoteClient struct {
	config ClientConfig
	tokens *TokenStore

	mu    sync.Mutex
	conn  *websocket.Conn
	state ConnectionState
	token string

	debug  bool
	test   bool
	logger zerolog.Logger
}

// NewRemoteClient creates a client for the TV at config.Host. Zero-value
// config fields fall back to the package defaults, and a previously saved
// pairing token is loaded immediately.
func NewRemoteClient(config ClientConfig, opts *internal.FnModeOptions) *RemoteClient {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Name == "" {
		config.Name = DefaultName
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if config.KeyDelay == 0 {
		config.KeyDelay = DefaultKeyDelay
	}
	if opts == nil {
		opts = internal.NewModeOptions()
	}

	client := &RemoteClient{
		config: config,
		state:  StateDisconnected,
		debug:  opts.Debug,
		test:   opts.Test,
		logger: logger.New(),
	}

	if config.TokenPath != "" {
		client.tokens = NewTokenStore(config.TokenPath)
		client.token = client.tokens.Load()
	}

	if opts.Debug {
		logger.SetLevel("debug")
	}

	return client
}

// Host returns the configured TV address
func (c *RemoteClient) Host() string {
	return c.config.Host
}

// State reports the current connection state
func (c *RemoteClient) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Token returns the pairing token in use, if any
func (c *RemoteClient) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// sessionURL builds the wss endpoint with the base64 client name and the
// saved token when one exists
func (c *RemoteClient) sessionURL() string {
	name := base64.StdEncoding.EncodeToString([]byte(c.config.Name))
	session := url.URL{
		Scheme:   "wss",
		Host:     net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port)),
		Path:     remotePath,
		RawQuery: "name=" + name,
	}
	if c.token != "" {
		session.RawQuery += "&token=" + url.QueryEscape(c.token)
	}
	return session.String()
}

// Connect opens the websocket session and waits for the TV's channel
// connect event. On a fresh pairing the TV shows an on-screen prompt and
// holds the event back until the user allows the connection.
func (c *RemoteClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureConnected()
}

// ensureConnected is the lazy connect path. Callers must hold c.mu.
func (c *RemoteClient) ensureConnected() error {
	if c.state == StateConnected && (c.conn != nil || c.test) {
		return nil
	}
	return c.connect()
}

// connect performs the dial and handshake. Callers must hold c.mu.
func (c *RemoteClient) connect() error {
	if c.test {
		c.logger.Debug().
			Str("host", c.config.Host).
			Msg("Test mode: simulating TV connection")
		c.state = StateConnected
		return nil
	}

	c.state = StateConnecting

	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.HandshakeTimeout,
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: !c.config.VerifyTLS},
	}

	sessionURL := c.sessionURL()
	if c.debug {
		c.logger.Debug().
			Str("host", c.config.Host).
			Bool("has_token", c.token != "").
			Msg("Dialing TV remote channel")
	}

	conn, resp, err := dialer.Dial(sessionURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.state = StateDisconnected
		return fmt.Errorf("failed to connect to TV at %s: %w", c.config.Host, err)
	}

	// The TV answers with ms.channel.connect once the session is accepted.
	// Without a saved token this read waits on the permission prompt.
	conn.SetReadDeadline(time.Now().Add(c.config.HandshakeTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		c.state = StateDisconnected
		return fmt.Errorf("handshake with %s failed: %w", c.config.Host, err)
	}

	var event ChannelEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		conn.Close()
		c.state = StateDisconnected
		return fmt.Errorf("failed to parse handshake event: %w", err)
	}

	if event.Event != connectEvent {
		conn.Close()
		c.state = StateDisconnected
		return fmt.Errorf("unexpected handshake event: %s", event.Event)
	}

	// A new or rotated token arrives inside the connect event. Persist it
	// so the next session skips the prompt; a failed save is not fatal.
	if token := event.Data.Token; token != "" && token != c.token {
		c.token = token
		if c.tokens != nil {
			if err := c.tokens.Save(token); err != nil {
				c.logger.Warn().
					Err(err).
					Str("path", c.tokens.Path()).
					Msg("Failed to persist pairing token")
			} else if c.debug {
				c.logger.Debug().
					Str("path", c.tokens.Path()).
					Msg("Pairing token saved")
			}
		}
	}

	conn.SetReadDeadline(time.Time{})
	c.conn = conn
	c.state = StateConnected

	if c.debug {
		c.logger.Debug().Str("host", c.config.Host).Msg("Connected to TV")
	}

	return nil
}

// sendFrame connects if needed and writes one frame. Callers must hold c.mu.
func (c *RemoteClient) sendFrame(frame interface{}) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	if c.test {
		c.logger.Info().RawJSON("frame", data).Msg("Test mode: frame not sent")
		return nil
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.drop()
		return fmt.Errorf("failed to send frame: %w", err)
	}
	return nil
}

// drop closes the connection and resets the session state. Callers must
// hold c.mu.
func (c *RemoteClient) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
}

// SendKey presses a single key using the configured key delay
func (c *RemoteClient) SendKey(key string) error {
	return c.SendKeyDelay(key, c.config.KeyDelay)
}

// SendKeyDelay presses a single key and then waits for the TV to settle.
// The wait happens under the client lock so concurrent senders cannot
// interleave ahead of it.
func (c *RemoteClient) SendKeyDelay(key string, delay time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	code := NormalizeKey(key)
	if err := c.sendFrame(KeyMessage(code)); err != nil {
		return fmt.Errorf("failed to send key %s: %w", code, err)
	}

	if c.debug {
		c.logger.Debug().
			Str("key", string(code)).
			Dur("delay", delay).
			Msg("Key sent")
	}

	if delay > 0 && !c.test {
		time.Sleep(delay)
	}
	return nil
}

// SendText types a string into the focused input field. The TV only
// accepts the payload base64 encoded.
func (c *RemoteClient) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sendFrame(TextMessage(text)); err != nil {
		return fmt.Errorf("failed to send text: %w", err)
	}

	if c.debug {
		c.logger.Debug().Int("length", len(text)).Msg("Text sent")
	}
	return nil
}

// LaunchApp starts an app by friendly name or raw Tizen app ID
func (c *RemoteClient) LaunchApp(app string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := ResolveApp(app)
	if err := c.sendFrame(LaunchMessage(id)); err != nil {
		return fmt.Errorf("failed to launch app %s: %w", app, err)
	}

	if c.debug {
		c.logger.Debug().
			Str("app", app).
			Str("app_id", string(id)).
			Msg("App launch sent")
	}
	return nil
}

// Disconnect closes the session. A close frame goes out first, best
// effort, so the TV drops the session cleanly.
func (c *RemoteClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		c.state = StateDisconnected
		return nil
	}

	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	err := c.conn.Close()
	c.conn = nil
	c.state = StateDisconnected

	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// KeyMessage builds the frame for a single key click
func KeyMessage(code KeyCode) RemoteMessage {
	return RemoteMessage{
		Method: "ms.remote.control",
		Params: RemoteParams{
			Cmd:          "Click",
			DataOfCmd:    string(code),
			Option:       "false",
			TypeOfRemote: "SendRemoteKey",
		},
	}
}

// TextMessage builds the frame for typing a string
func TextMessage(text string) RemoteMessage {
	return RemoteMessage{
		Method: "ms.remote.control",
		Params: RemoteParams{
			Cmd:          base64.StdEncoding.EncodeToString([]byte(text)),
			DataOfCmd:    "base64",
			TypeOfRemote: "SendInputString",
		},
	}
}

// LaunchMessage builds the frame for a DEEP_LINK app launch
func LaunchMessage(id AppID) EmitMessage {
	return EmitMessage{
		Method: "ms.channel.emit",
		Params: EmitParams{
			Event: "ed.apps.launch",
			To:    "host",
			Data: LaunchData{
				AppID:      string(id),
				ActionType: "DEEP_LINK",
			},
		},
	}
}
