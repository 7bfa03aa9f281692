package samsung

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

// DefaultInfoPort is the TV's unauthenticated REST port
const DefaultInfoPort = 8001

// TVInfo is the device description served on the REST port
type TVInfo struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Type    string       `json:"type"`
	URI     string       `json:"uri"`
	Version string       `json:"version"`
	Device  TVDeviceInfo `json:"device"`
}

// TVDeviceInfo is the nested device block of the description. Samsung
// encodes booleans and the power state as strings here.
type TVDeviceInfo struct {
	Name             string `json:"name"`
	Model            string `json:"model"`
	ModelName        string `json:"modelName"`
	OS               string `json:"OS"`
	FirmwareVersion  string `json:"firmwareVersion"`
	NetworkType      string `json:"networkType"`
	Resolution       string `json:"resolution"`
	IP               string `json:"ip"`
	WifiMac          string `json:"wifiMac"`
	PowerState       string `json:"PowerState"`
	TokenAuthSupport string `json:"TokenAuthSupport"`
	FrameTVSupport   string `json:"FrameTVSupport"`
}

var infoClient = &http.Client{Timeout: 5 * time.Second}

// FetchInfo queries the TV's REST description endpoint. It needs no
// pairing and answers on newer models even in standby, which makes it a
// cheap reachability and power-state probe. Host may carry an explicit
// port; the default REST port is used otherwise.
func FetchInfo(ctx context.Context, host string) (*TVInfo, error) {
	target := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		target = net.JoinHostPort(host, strconv.Itoa(DefaultInfoPort))
	}
	endpoint := fmt.Sprintf("http://%s/api/v2/", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create info request: %w", err)
	}

	resp, err := infoClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach TV at %s: %w", host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info TVInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to parse TV description: %w", err)
	}

	return &info, nil
}

// PoweredOn interprets the description's power state. Older firmware omits
// the field, in which case answering at all counts as on.
func (i *TVInfo) PoweredOn() bool {
	switch i.Device.PowerState {
	case "", "on":
		return true
	default:
		return false
	}
}
