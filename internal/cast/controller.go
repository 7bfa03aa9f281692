package cast

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"zapper/internal"
	"zapper/internal/logger"
)

const (
	avTransportService      = "urn:schemas-upnp-org:service:AVTransport:1"
	renderingControlService = "urn:schemas-upnp-org:service:RenderingControl:1"
)

// CastStatus is a snapshot of the renderer's playback state. Times stay in
// the renderer's h:mm:ss form; volume is the UPnP master scale, 0 to 100.
type CastStatus struct {
	PlayerState string `json:"player_state"`
	CurrentTime string `json:"current_time,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Volume      int    `json:"volume"`
	Muted       bool   `json:"muted"`
	TrackURI    string `json:"track_uri,omitempty"`
}

// Controller drives one renderer's AVTransport and RenderingControl
// services over SOAP
type Controller struct {
	httpClient *http.Client
	renderer   *Renderer
	debug      bool
	logger     zerolog.Logger
}

// NewController creates a controller for a discovered renderer
func NewController(renderer *Renderer, opts *internal.FnModeOptions) *Controller {
	if opts == nil {
		opts = internal.NewModeOptions()
	}

	controller := &Controller{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		renderer: renderer,
		debug:    opts.Debug,
		logger:   logger.New(),
	}

	if opts.Debug {
		logger.SetLevel("debug")
	}

	return controller
}

// Renderer returns the renderer this controller talks to
func (c *Controller) Renderer() *Renderer {
	return c.renderer
}

// soapRequest posts one UPnP action and returns the raw response body
func (c *Controller) soapRequest(ctx context.Context, controlURL, service, action, arguments string) ([]byte, error) {
	// SOAP envelope for UPnP control
	envelope := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
  <s:Body>
    <u:%s xmlns:u="%s">
      <InstanceID>0</InstanceID>%s
    </u:%s>
  </s:Body>
</s:Envelope>`, action, service, arguments, action)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, controlURL, bytes.NewBufferString(envelope))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", action, err)
	}

	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", fmt.Sprintf("%q", service+"#"+action))

	if c.debug {
		c.logger.Debug().
			Str("url", controlURL).
			Str("action", action).
			Msg("Sending UPnP control request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s request: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", action, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s request failed with status %d: %s", action, resp.StatusCode, string(body))
	}

	if c.debug {
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("action", action).
			Msg("UPnP control request successful")
	}

	return body, nil
}

// Cast loads a media URL into the renderer and starts playback
func (c *Controller) Cast(ctx context.Context, mediaURL, contentType string) error {
	if contentType == "" {
		contentType = "video/mp4"
	}

	metadata := didlMetadata(mediaURL, contentType)
	arguments := fmt.Sprintf("<CurrentURI>%s</CurrentURI><CurrentURIMetaData>%s</CurrentURIMetaData>",
		xmlEscape(mediaURL), xmlEscape(metadata))

	if _, err := c.soapRequest(ctx, c.renderer.AVTransport, avTransportService, "SetAVTransportURI", arguments); err != nil {
		return err
	}
	return c.Play(ctx)
}

// Play resumes or starts playback
func (c *Controller) Play(ctx context.Context) error {
	_, err := c.soapRequest(ctx, c.renderer.AVTransport, avTransportService, "Play", "<Speed>1</Speed>")
	return err
}

// Pause pauses playback
func (c *Controller) Pause(ctx context.Context) error {
	_, err := c.soapRequest(ctx, c.renderer.AVTransport, avTransportService, "Pause", "")
	return err
}

// Stop stops playback and releases the transport URI
func (c *Controller) Stop(ctx context.Context) error {
	_, err := c.soapRequest(ctx, c.renderer.AVTransport, avTransportService, "Stop", "")
	return err
}

// Status combines transport and rendering state into one snapshot.
// Position and volume are best effort; not every renderer answers them.
func (c *Controller) Status(ctx context.Context) (*CastStatus, error) {
	body, err := c.soapRequest(ctx, c.renderer.AVTransport, avTransportService, "GetTransportInfo", "")
	if err != nil {
		return nil, err
	}

	status := &CastStatus{
		PlayerState: soapValue(body, "CurrentTransportState"),
	}

	if body, err := c.soapRequest(ctx, c.renderer.AVTransport, avTransportService, "GetPositionInfo", ""); err == nil {
		status.CurrentTime = soapValue(body, "RelTime")
		status.Duration = soapValue(body, "TrackDuration")
		status.TrackURI = soapValue(body, "TrackURI")
	}

	if c.renderer.Rendering != "" {
		if volume, err := c.Volume(ctx); err == nil {
			status.Volume = volume
		}
		if muted, err := c.Muted(ctx); err == nil {
			status.Muted = muted
		}
	}

	return status, nil
}

// Volume reads the master volume, 0 to 100
func (c *Controller) Volume(ctx context.Context) (int, error) {
	if c.renderer.Rendering == "" {
		return 0, fmt.Errorf("renderer has no RenderingControl service")
	}

	body, err := c.soapRequest(ctx, c.renderer.Rendering, renderingControlService, "GetVolume",
		"<Channel>Master</Channel>")
	if err != nil {
		return 0, err
	}

	volume, err := strconv.Atoi(soapValue(body, "CurrentVolume"))
	if err != nil {
		return 0, fmt.Errorf("failed to parse volume: %w", err)
	}
	return volume, nil
}

// SetVolume sets the master volume, clamped to 0-100
func (c *Controller) SetVolume(ctx context.Context, volume int) error {
	if c.renderer.Rendering == "" {
		return fmt.Errorf("renderer has no RenderingControl service")
	}

	volume = clampVolume(volume)
	_, err := c.soapRequest(ctx, c.renderer.Rendering, renderingControlService, "SetVolume",
		fmt.Sprintf("<Channel>Master</Channel><DesiredVolume>%d</DesiredVolume>", volume))
	return err
}

// VolumeStep nudges the volume by delta and returns the level it landed on
func (c *Controller) VolumeStep(ctx context.Context, delta int) (int, error) {
	current, err := c.Volume(ctx)
	if err != nil {
		return 0, err
	}

	target := clampVolume(current + delta)
	if err := c.SetVolume(ctx, target); err != nil {
		return 0, err
	}
	return target, nil
}

// Muted reads the master mute flag
func (c *Controller) Muted(ctx context.Context) (bool, error) {
	if c.renderer.Rendering == "" {
		return false, fmt.Errorf("renderer has no RenderingControl service")
	}

	body, err := c.soapRequest(ctx, c.renderer.Rendering, renderingControlService, "GetMute",
		"<Channel>Master</Channel>")
	if err != nil {
		return false, err
	}
	return soapValue(body, "CurrentMute") == "1", nil
}

// SetMute sets the master mute flag
func (c *Controller) SetMute(ctx context.Context, mute bool) error {
	if c.renderer.Rendering == "" {
		return fmt.Errorf("renderer has no RenderingControl service")
	}

	desired := "0"
	if mute {
		desired = "1"
	}
	_, err := c.soapRequest(ctx, c.renderer.Rendering, renderingControlService, "SetMute",
		fmt.Sprintf("<Channel>Master</Channel><DesiredMute>%s</DesiredMute>", desired))
	return err
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}

// didlMetadata builds the minimal DIDL-Lite blob renderers expect next to
// the transport URI
func didlMetadata(mediaURL, contentType string) string {
	title := "zapper stream"
	if parsed, err := url.Parse(mediaURL); err == nil {
		if base := path.Base(parsed.Path); base != "" && base != "/" && base != "." {
			title = base
		}
	}

	return fmt.Sprintf(`<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/"><item id="0" parentID="-1" restricted="1"><dc:title>%s</dc:title><upnp:class>object.item.videoItem</upnp:class><res protocolInfo="http-get:*:%s:*">%s</res></item></DIDL-Lite>`,
		xmlEscape(title), contentType, xmlEscape(mediaURL))
}

// soapValue pulls the text of the first element with the given local name
// out of a SOAP response
func soapValue(body []byte, name string) string {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		token, err := decoder.Token()
		if err != nil {
			return ""
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != name {
			continue
		}

		var value string
		if err := decoder.DecodeElement(&value, &start); err != nil {
			return ""
		}
		return value
	}
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
