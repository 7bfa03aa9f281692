package device

import (
	"encoding/json"
	"fmt"
)

// Device represents a generic device that can process commands
type Device interface {
	// Process handles a JSON-encoded action and executes the corresponding operation
	Process(actionJSON []byte) (*ActionResponse, error)

	// GetDeviceInfo returns basic information about the device
	GetDeviceInfo() DeviceInfo
}

// DeviceInfo contains basic information about a device
type DeviceInfo struct {
	Type         string   `json:"type"`
	Model        string   `json:"model"`
	Address      string   `json:"address"`
	Capabilities []string `json:"capabilities"`
}

// ActionType represents the type of action to perform
type ActionType string

const (
	ActionTypeRemote ActionType = "remote"
	ActionTypeCast   ActionType = "cast"
)

// ActionRequest represents a JSON action request
type ActionRequest struct {
	Type       ActionType             `json:"type"`       // "remote" or "cast"
	Action     string                 `json:"action"`     // specific action name
	Parameters map[string]interface{} `json:"parameters"` // optional parameters
}

// ActionResponse represents the response from processing an action
type ActionResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RemoteAction represents available remote control actions
type RemoteAction string

const (
	RemoteActionKey   RemoteAction = "key"   // press a single key, params: {"key": "..."}
	RemoteActionKeys  RemoteAction = "keys"  // press a key sequence, params: {"keys": [...]}
	RemoteActionText  RemoteAction = "text"  // type a string, params: {"text": "..."}
	RemoteActionApp   RemoteAction = "app"   // launch an app, params: {"app": "..."}
	RemoteActionWake  RemoteAction = "wake"  // wake-on-lan, params: {"mac": "..."} (optional)
	RemoteActionInfo  RemoteAction = "info"  // fetch device description
	RemoteActionState RemoteAction = "state" // report connection state
)

// CastAction represents available media renderer actions
type CastAction string

const (
	CastActionCast       CastAction = "cast" // params: {"url": "..."}
	CastActionPlay       CastAction = "play"
	CastActionPause      CastAction = "pause"
	CastActionStop       CastAction = "stop"
	CastActionStatus     CastAction = "status"
	CastActionSetVolume  CastAction = "set_volume" // params: {"volume": 0-100}
	CastActionVolumeUp   CastAction = "volume_up"
	CastActionVolumeDown CastAction = "volume_down"
	CastActionSetMute    CastAction = "set_mute" // params: {"mute": bool}
)

// ParseActionRequest parses JSON input into ActionRequest
func ParseActionRequest(actionJSON []byte) (*ActionRequest, error) {
	var request ActionRequest
	if err := json.Unmarshal(actionJSON, &request); err != nil {
		return nil, fmt.Errorf("failed to parse action request: %w", err)
	}

	// Validate required fields
	if request.Type == "" {
		return nil, fmt.Errorf("action type is required")
	}

	if request.Action == "" {
		return nil, fmt.Errorf("action is required")
	}

	return &request, nil
}

// StringParam extracts a string parameter by key, returning an error when
// missing or of the wrong type.
func (r *ActionRequest) StringParam(key string) (string, error) {
	raw, ok := r.Parameters[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}
	return value, nil
}

// OptionalStringParam extracts a string parameter by key, returning the
// fallback when the key is absent.
func (r *ActionRequest) OptionalStringParam(key, fallback string) (string, error) {
	raw, ok := r.Parameters[key]
	if !ok {
		return fallback, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}
	return value, nil
}

// IntParam extracts an integer parameter by key. JSON numbers arrive as
// float64, so both forms are accepted.
func (r *ActionRequest) IntParam(key string) (int, error) {
	raw, ok := r.Parameters[key]
	if !ok {
		return 0, fmt.Errorf("missing required parameter: %s", key)
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("parameter %s must be a number", key)
	}
}

// BoolParam extracts a boolean parameter by key.
func (r *ActionRequest) BoolParam(key string) (bool, error) {
	raw, ok := r.Parameters[key]
	if !ok {
		return false, fmt.Errorf("missing required parameter: %s", key)
	}
	value, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %s must be a boolean", key)
	}
	return value, nil
}
