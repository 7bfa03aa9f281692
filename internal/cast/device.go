package cast

import (
	"context"
	"fmt"
	"time"

	"zapper/internal"
	"zapper/internal/device"
)

// volumeStep is how far volume_up and volume_down move the master volume
const volumeStep = 10

// CastRenderer implements the Device interface for DLNA media renderers
type CastRenderer struct {
	controller *Controller
	test       bool
	info       device.DeviceInfo
}

// NewCastRenderer creates a new CastRenderer device
func NewCastRenderer(renderer *Renderer, opts *internal.FnModeOptions) *CastRenderer {
	if opts == nil {
		opts = internal.NewModeOptions()
	}

	model := renderer.Model
	if model == "" {
		model = "DLNA Media Renderer"
	}

	return &CastRenderer{
		controller: NewController(renderer, opts),
		test:       opts.Test,
		info: device.DeviceInfo{
			Type:    "dlna_renderer",
			Model:   model,
			Address: renderer.Location,
			Capabilities: []string{
				"media_transport",
				"volume_control",
			},
		},
	}
}

// Controller exposes the underlying controller for direct command use
func (cr *CastRenderer) Controller() *Controller {
	return cr.controller
}

// GetDeviceInfo returns information about this renderer
func (cr *CastRenderer) GetDeviceInfo() device.DeviceInfo {
	return cr.info
}

// Process handles JSON action requests and routes them to appropriate methods
func (cr *CastRenderer) Process(actionJSON []byte) (*device.ActionResponse, error) {
	request, err := device.ParseActionRequest(actionJSON)
	if err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	if request.Type != device.ActionTypeCast {
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("unsupported action type: %s", request.Type),
		}, nil
	}

	return cr.processCastAction(request)
}

func (cr *CastRenderer) processCastAction(request *device.ActionRequest) (*device.ActionResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch device.CastAction(request.Action) {
	case device.CastActionCast:
		mediaURL, err := request.StringParam("url")
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		contentType, err := request.OptionalStringParam("content_type", "")
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		if cr.test {
			return &device.ActionResponse{
				Success: true,
				Data:    fmt.Sprintf("cast of %s simulated", mediaURL),
			}, nil
		}
		if err := cr.controller.Cast(ctx, mediaURL, contentType); err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		return &device.ActionResponse{
			Success: true,
			Data:    fmt.Sprintf("playing %s", mediaURL),
		}, nil

	case device.CastActionPlay:
		return cr.transportResponse("playback resumed", cr.controller.Play)(ctx)

	case device.CastActionPause:
		return cr.transportResponse("playback paused", cr.controller.Pause)(ctx)

	case device.CastActionStop:
		return cr.transportResponse("playback stopped", cr.controller.Stop)(ctx)

	case device.CastActionStatus:
		if cr.test {
			return &device.ActionResponse{
				Success: true,
				Data:    &CastStatus{PlayerState: "STOPPED"},
			}, nil
		}
		status, err := cr.controller.Status(ctx)
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		return &device.ActionResponse{Success: true, Data: status}, nil

	case device.CastActionSetVolume:
		volume, err := request.IntParam("volume")
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		if cr.test {
			return &device.ActionResponse{
				Success: true,
				Data:    fmt.Sprintf("volume set to %d", clampVolume(volume)),
			}, nil
		}
		if err := cr.controller.SetVolume(ctx, volume); err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		return &device.ActionResponse{
			Success: true,
			Data:    fmt.Sprintf("volume set to %d", clampVolume(volume)),
		}, nil

	case device.CastActionVolumeUp:
		return cr.volumeStepResponse(ctx, volumeStep)

	case device.CastActionVolumeDown:
		return cr.volumeStepResponse(ctx, -volumeStep)

	case device.CastActionSetMute:
		mute, err := request.BoolParam("mute")
		if err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		if cr.test {
			return &device.ActionResponse{
				Success: true,
				Data:    fmt.Sprintf("mute set to %t", mute),
			}, nil
		}
		if err := cr.controller.SetMute(ctx, mute); err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		return &device.ActionResponse{
			Success: true,
			Data:    fmt.Sprintf("mute set to %t", mute),
		}, nil

	default:
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("unsupported cast action: %s", request.Action),
		}, nil
	}
}

// transportResponse wraps a plain transport call into an action response
func (cr *CastRenderer) transportResponse(message string, call func(context.Context) error) func(context.Context) (*device.ActionResponse, error) {
	return func(ctx context.Context) (*device.ActionResponse, error) {
		if cr.test {
			return &device.ActionResponse{Success: true, Data: message + " (simulated)"}, nil
		}
		if err := call(ctx); err != nil {
			return &device.ActionResponse{Success: false, Error: err.Error()}, nil
		}
		return &device.ActionResponse{Success: true, Data: message}, nil
	}
}

func (cr *CastRenderer) volumeStepResponse(ctx context.Context, delta int) (*device.ActionResponse, error) {
	if cr.test {
		return &device.ActionResponse{
			Success: true,
			Data:    fmt.Sprintf("volume step %+d simulated", delta),
		}, nil
	}

	level, err := cr.controller.VolumeStep(ctx, delta)
	if err != nil {
		return &device.ActionResponse{Success: false, Error: err.Error()}, nil
	}
	return &device.ActionResponse{
		Success: true,
		Data:    fmt.Sprintf("volume set to %d", level),
	}, nil
}
