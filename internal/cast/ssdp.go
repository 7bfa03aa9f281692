// Package cast drives DLNA media renderers: SSDP discovery plus SOAP
// transport and volume control. Samsung TVs expose their screen this way
// alongside the websocket remote channel.
package cast

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"zapper/internal/logger"
)

const (
	ssdpAddress    = "239.255.255.250:1900"
	rendererTarget = "urn:schemas-upnp-org:device:MediaRenderer:1"
)

// searchMessage is the SSDP M-SEARCH probe for media renderers
var searchMessage = []byte("M-SEARCH * HTTP/1.1\r\n" +
	"HOST: " + ssdpAddress + "\r\n" +
	"MAN: \"ssdp:discover\"\r\n" +
	"MX: 2\r\n" +
	"ST: " + rendererTarget + "\r\n" +
	"\r\n")

// Renderer describes a discovered DLNA media renderer
type Renderer struct {
	Name        string `json:"name"`
	Model       string `json:"model,omitempty"`
	Location    string `json:"location"`
	AVTransport string `json:"av_transport"`
	Rendering   string `json:"rendering,omitempty"`
}

var descClient = &http.Client{Timeout: 5 * time.Second}

// Discover searches the local network for DLNA media renderers. It sends
// an SSDP M-SEARCH probe and collects unicast answers until the timeout
// passes, then resolves each answer's device description.
func Discover(ctx context.Context, timeout time.Duration) ([]Renderer, error) {
	log := logger.New()

	target, err := net.ResolveUDPAddr("udp4", ssdpAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve SSDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open SSDP socket: %w", err)
	}
	defer conn.Close()

	if _, err := conn.WriteToUDP(searchMessage, target); err != nil {
		return nil, fmt.Errorf("failed to send SSDP search: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetReadDeadline(deadline)

	seen := make(map[string]bool)
	var renderers []Renderer
	buf := make([]byte, 4096)

	for {
		if ctx.Err() != nil {
			break
		}

		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			// The read deadline ends the collection window
			break
		}

		location := responseLocation(buf[:n])
		if location == "" || seen[location] {
			continue
		}
		seen[location] = true

		renderer, err := describeRenderer(ctx, location)
		if err != nil {
			log.Debug().Err(err).Str("location", location).Msg("Skipping renderer")
			continue
		}

		log.Debug().
			Str("name", renderer.Name).
			Str("location", location).
			Msg("Found media renderer")
		renderers = append(renderers, *renderer)
	}

	return renderers, ctx.Err()
}

// DiscoverFirst returns the first renderer found, preferring one whose
// name contains the given hint when set.
func DiscoverFirst(ctx context.Context, timeout time.Duration, hint string) (*Renderer, error) {
	renderers, err := Discover(ctx, timeout)
	if err != nil {
		return nil, err
	}
	if len(renderers) == 0 {
		return nil, fmt.Errorf("no media renderer found on the network")
	}

	if hint != "" {
		for i := range renderers {
			if strings.Contains(strings.ToLower(renderers[i].Name), strings.ToLower(hint)) {
				return &renderers[i], nil
			}
		}
	}
	return &renderers[0], nil
}

// responseLocation extracts the LOCATION header from an SSDP answer
func responseLocation(response []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(response))
	for scanner.Scan() {
		line := scanner.Text()
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "location") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Device description XML. Control URLs may sit on embedded devices, so
// the structure recurses.
type deviceDescription struct {
	XMLName xml.Name   `xml:"root"`
	Device  descDevice `xml:"device"`
}

type descDevice struct {
	FriendlyName string        `xml:"friendlyName"`
	ModelName    string        `xml:"modelName"`
	Services     []descService `xml:"serviceList>service"`
	Devices      []descDevice  `xml:"deviceList>device"`
}

type descService struct {
	ServiceType string `xml:"serviceType"`
	ControlURL  string `xml:"controlURL"`
}

// describeRenderer fetches a device description and resolves the control
// URLs for the transport and rendering services
func describeRenderer(ctx context.Context, location string) (*Renderer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create description request: %w", err)
	}

	resp, err := descClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device description: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device description failed with status %d", resp.StatusCode)
	}

	var desc deviceDescription
	if err := xml.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to parse device description: %w", err)
	}

	base, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid description location: %w", err)
	}

	renderer := &Renderer{
		Name:     desc.Device.FriendlyName,
		Model:    desc.Device.ModelName,
		Location: location,
	}
	assignServices(renderer, base, desc.Device)

	if renderer.AVTransport == "" {
		return nil, fmt.Errorf("no AVTransport service at %s", location)
	}
	return renderer, nil
}

// assignServices walks the device tree picking the first transport and
// rendering control URLs, resolved against the description's base URL
func assignServices(renderer *Renderer, base *url.URL, dev descDevice) {
	for _, svc := range dev.Services {
		control, err := url.Parse(svc.ControlURL)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(control).String()

		switch {
		case strings.Contains(svc.ServiceType, "AVTransport") && renderer.AVTransport == "":
			renderer.AVTransport = resolved
		case strings.Contains(svc.ServiceType, "RenderingControl") && renderer.Rendering == "":
			renderer.Rendering = resolved
		}
	}
	for _, child := range dev.Devices {
		assignServices(renderer, base, child)
	}
}
