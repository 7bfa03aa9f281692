package samsung

import (
	"context"
	"fmt"
	"time"

	"zapper/internal"
	"zapper/internal/device"
	"zapper/internal/wol"
)

// SamsungRemote implements the Device interface for Samsung Smart TVs
type SamsungRemote struct {
	client *RemoteClient
	mac    string
	test   bool
	info   device.DeviceInfo
}

// NewSamsungRemote creates a new SamsungRemote device. The MAC address is
// optional and only needed for wake actions.
func NewSamsungRemote(config ClientConfig, mac string, opts *internal.FnModeOptions) *SamsungRemote {
	if opts == nil {
		opts = internal.NewModeOptions()
	}
	client := NewRemoteClient(config, opts)

	return &SamsungRemote{
		client: client,
		mac:    mac,
		test:   opts.Test,
		info: device.DeviceInfo{
			Type:    "samsung_tv",
			Model:   "Samsung Smart TV",
			Address: config.Host,
			Capabilities: []string{
				"remote_control",
				"text_input",
				"app_launch",
				"wake_on_lan",
			},
		},
	}
}

// Client exposes the underlying remote client for direct command use
func (sr *SamsungRemote) Client() *RemoteClient {
	return sr.client
}

// GetDeviceInfo returns information about this Samsung device
func (sr *SamsungRemote) GetDeviceInfo() device.DeviceInfo {
	return sr.info
}

// Process handles JSON action requests and routes them to appropriate methods
func (sr *SamsungRemote) Process(actionJSON []byte) (*device.ActionResponse, error) {
	request, err := device.ParseActionRequest(actionJSON)
	if err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	if request.Type != device.ActionTypeRemote {
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("unsupported action type: %s", request.Type),
		}, nil
	}

	return sr.processRemoteAction(request)
}

// processRemoteAction routes a remote action to the websocket client or,
// for wake and info, to the TV's always-on side channels
func (sr *SamsungRemote) processRemoteAction(request *device.ActionRequest) (*device.ActionResponse, error) {
	switch device.RemoteAction(request.Action) {
	case device.RemoteActionKey:
		key, err := request.StringParam("key")
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		if err := sr.client.SendKey(key); err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		return &device.ActionResponse{
			Success: true,
			Data:    fmt.Sprintf("key %s sent", NormalizeKey(key)),
		}, nil

	case device.RemoteActionKeys:
		keys, err := sr.keySequence(request)
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		for _, key := range keys {
			if err := sr.client.SendKey(key); err != nil {
				return &device.ActionResponse{Success: false, Error: err.Error()}, nil
			}
		}
		return &device.ActionResponse{
			Success: true,
			Data:    fmt.Sprintf("%d keys sent", len(keys)),
		}, nil

	case device.RemoteActionText:
		text, err := request.StringParam("text")
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		if err := sr.client.SendText(text); err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		return &device.ActionResponse{Success: true, Data: "text sent"}, nil

	case device.RemoteActionApp:
		app, err := request.StringParam("app")
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		if err := sr.client.LaunchApp(app); err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		return &device.ActionResponse{
			Success: true,
			Data:    fmt.Sprintf("app %s launched", ResolveApp(app)),
		}, nil

	case device.RemoteActionWake:
		mac, err := request.OptionalStringParam("mac", sr.mac)
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		if mac == "" {
			return &device.ActionResponse{
				Success: false,
				Error:   "no MAC address configured for wake",
			}, nil
		}
		if sr.test {
			return &device.ActionResponse{
				Success: true,
				Data:    fmt.Sprintf("wake packet for %s simulated", mac),
			}, nil
		}
		if err := wol.Wake(mac); err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		return &device.ActionResponse{
			Success: true,
			Data:    fmt.Sprintf("wake packet sent to %s", mac),
		}, nil

	case device.RemoteActionInfo:
		if sr.test {
			return &device.ActionResponse{
				Success: true,
				Data: &TVInfo{
					Name: "[TV] Test Device",
					Type: "Samsung SmartTV",
				},
			}, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		info, err := FetchInfo(ctx, sr.client.Host())
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		return &device.ActionResponse{Success: true, Data: info}, nil

	case device.RemoteActionState:
		return &device.ActionResponse{
			Success: true,
			Data: map[string]interface{}{
				"state":  string(sr.client.State()),
				"paired": sr.client.Token() != "",
			},
		}, nil

	default:
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("unsupported remote action: %s", request.Action),
		}, nil
	}
}

// keySequence extracts the key list for a keys action
func (sr *SamsungRemote) keySequence(request *device.ActionRequest) ([]string, error) {
	raw, exists := request.Parameters["keys"]
	if !exists {
		return nil, fmt.Errorf("missing required parameter: keys")
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("parameter keys must be an array of strings")
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("parameter keys must not be empty")
	}

	keys := make([]string, 0, len(list))
	for _, item := range list {
		key, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("parameter keys must be an array of strings")
		}
		keys = append(keys, key)
	}
	return keys, nil
}
