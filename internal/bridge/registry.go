package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"zapper/internal"
	"zapper/internal/cast"
	"zapper/internal/config"
	"zapper/internal/device"
	"zapper/internal/logger"
	"zapper/internal/samsung"
)

// Device IDs the bridge exposes
const (
	DeviceTV   = "tv"
	DeviceCast = "cast"
)

// Registry owns the devices the bridge can drive
type Registry struct {
	devices    map[string]device.Device
	config     *config.Config
	mutex      sync.RWMutex
	logger     zerolog.Logger
	nonceCache *NonceCache
	debug      bool
	test       bool
}

// NewRegistry creates a registry for the configured devices
func NewRegistry(cfg *config.Config, opts *internal.FnModeOptions) *Registry {
	if opts == nil {
		opts = internal.NewModeOptions()
	}

	return &Registry{
		devices:    make(map[string]device.Device),
		config:     cfg,
		logger:     logger.New(),
		nonceCache: NewNonceCache(50, time.Hour),
		debug:      opts.Debug,
		test:       opts.Test,
	}
}

// Initialize builds the TV remote and, when one answers, a cast renderer.
// A missing renderer is not fatal; the bridge still serves the TV.
func (r *Registry) Initialize(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	opts := internal.NewModeOptions(internal.WithDebug(r.debug), internal.WithTest(r.test))

	if !r.test && !r.config.HasValidTV() {
		return fmt.Errorf("no TV address configured, run config generate and fill in tv.host")
	}

	remote := samsung.NewSamsungRemote(r.config.TV.ClientConfig(), r.config.TV.MAC, opts)
	r.devices[DeviceTV] = remote
	r.logger.Info().
		Str("device_id", DeviceTV).
		Str("device_address", r.config.TV.Host).
		Msg("TV remote initialized")

	if renderer := r.findRenderer(ctx, opts); renderer != nil {
		r.devices[DeviceCast] = renderer
		r.logger.Info().
			Str("device_id", DeviceCast).
			Str("device_address", renderer.GetDeviceInfo().Address).
			Msg("Cast renderer initialized")
	}

	r.logger.Info().
		Int("device_count", len(r.devices)).
		Msg("All devices initialized")

	return nil
}

func (r *Registry) findRenderer(ctx context.Context, opts *internal.FnModeOptions) *cast.CastRenderer {
	if r.test {
		return cast.NewCastRenderer(&cast.Renderer{
			Name:        "Test Renderer",
			Location:    "http://127.0.0.1:9197/dmr",
			AVTransport: "http://127.0.0.1:9197/upnp/control/AVTransport1",
			Rendering:   "http://127.0.0.1:9197/upnp/control/RenderingControl1",
		}, opts)
	}

	renderer, err := cast.DiscoverFirst(ctx, r.config.Cast.DiscoverTimeout(), r.config.Cast.Renderer)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Msg("No cast renderer found, continuing without one")
		return nil
	}

	return cast.NewCastRenderer(renderer, opts)
}

// Device returns a device by ID
func (r *Registry) Device(id string) (device.Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	dev, exists := r.devices[id]
	if !exists {
		return nil, fmt.Errorf("device not found: %s", id)
	}

	return dev, nil
}

// Infos returns information for all registered devices
func (r *Registry) Infos() map[string]device.DeviceInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	infos := make(map[string]device.DeviceInfo, len(r.devices))
	for id, dev := range r.devices {
		infos[id] = dev.GetDeviceInfo()
	}

	return infos
}

// Count returns the number of registered devices
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.devices)
}

// Process routes an action to a device
func (r *Registry) Process(deviceID string, actionJSON []byte) (*device.ActionResponse, error) {
	dev, err := r.Device(deviceID)
	if err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("Device not found: %s", deviceID),
		}, nil
	}

	r.logger.Debug().
		Str("device_id", deviceID).
		RawJSON("action", actionJSON).
		Msg("Processing device action")

	response, err := dev.Process(actionJSON)
	if err != nil {
		r.logger.Error().
			Str("device_id", deviceID).
			Err(err).
			Msg("Device action processing failed")
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("Action processing failed: %v", err),
		}, nil
	}

	r.logger.Info().
		Str("device_id", deviceID).
		Bool("success", response.Success).
		Msg("Device action processed")

	return response, nil
}

// ProcessWithNonce routes an action to a device, answering duplicate
// nonces from the cache instead of repeating the send
func (r *Registry) ProcessWithNonce(deviceID, nonce string, actionJSON []byte) (*device.ActionResponse, error) {
	if cached, found := r.nonceCache.Check(deviceID, nonce); found {
		r.logger.Info().
			Str("device_id", deviceID).
			Str("nonce", nonce).
			Msg("Returning cached response for duplicate nonce")
		return cached, nil
	}

	if nonce != "" && !ValidateNonce(nonce) {
		r.logger.Warn().
			Str("device_id", deviceID).
			Str("nonce", nonce).
			Msg("Invalid nonce format")
		return &device.ActionResponse{
			Success: false,
			Error:   "Invalid nonce format",
		}, nil
	}

	response, err := r.Process(deviceID, actionJSON)
	if err != nil {
		return response, err
	}

	if nonce != "" {
		r.nonceCache.Store(deviceID, nonce, response)
	}

	return response, nil
}

// Shutdown drops all devices and stops the nonce cache
func (r *Registry) Shutdown() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.logger.Info().
		Int("device_count", len(r.devices)).
		Msg("Shutting down device registry")

	if remote, ok := r.devices[DeviceTV].(*samsung.SamsungRemote); ok {
		if err := remote.Client().Disconnect(); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to close TV session")
		}
	}

	r.nonceCache.Shutdown()
	r.devices = make(map[string]device.Device)
}
