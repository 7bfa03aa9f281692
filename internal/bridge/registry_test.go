package bridge

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"zapper/internal"
	"zapper/internal/config"
	"zapper/internal/device"
)

// fakeDevice counts how often it is asked to process an action
type fakeDevice struct {
	calls    int
	response *device.ActionResponse
}

func (f *fakeDevice) Process(actionJSON []byte) (*device.ActionResponse, error) {
	f.calls++
	return f.response, nil
}

func (f *fakeDevice) GetDeviceInfo() device.DeviceInfo {
	return device.DeviceInfo{Type: "fake", Model: "Fake Device", Address: "127.0.0.1"}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.TV.TokenFile = filepath.Join(t.TempDir(), "token")
	return cfg
}

func newFakeRegistry(t *testing.T, fake *fakeDevice) *Registry {
	t.Helper()

	registry := NewRegistry(testConfig(t), internal.NewModeOptions(internal.WithTest(true)))
	registry.devices[DeviceTV] = fake
	t.Cleanup(registry.Shutdown)
	return registry
}

func TestInitialize(t *testing.T) {
	t.Run("BuildsBothDevicesInTestMode", func(t *testing.T) {
		registry := NewRegistry(testConfig(t), internal.NewModeOptions(internal.WithTest(true)))
		defer registry.Shutdown()

		if err := registry.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}

		if registry.Count() != 2 {
			t.Errorf("Expected 2 devices, got %d", registry.Count())
		}
		if _, err := registry.Device(DeviceTV); err != nil {
			t.Errorf("Expected a TV device: %v", err)
		}
		if _, err := registry.Device(DeviceCast); err != nil {
			t.Errorf("Expected a cast device: %v", err)
		}

		infos := registry.Infos()
		if infos[DeviceTV].Type != "samsung_tv" {
			t.Errorf("Unexpected TV info: %+v", infos[DeviceTV])
		}
	})

	t.Run("RequiresAConfiguredTV", func(t *testing.T) {
		registry := NewRegistry(testConfig(t), internal.NewModeOptions())
		defer registry.Shutdown()

		err := registry.Initialize(context.Background())
		if err == nil || !strings.Contains(err.Error(), "no TV address configured") {
			t.Errorf("Expected a configuration error, got %v", err)
		}
	})

	t.Run("UnknownDeviceLookupFails", func(t *testing.T) {
		registry := NewRegistry(testConfig(t), internal.NewModeOptions(internal.WithTest(true)))
		defer registry.Shutdown()

		if _, err := registry.Device("oven"); err == nil {
			t.Error("Expected an error for an unknown device")
		}
	})
}

func TestProcess(t *testing.T) {
	action := []byte(`{"type": "remote", "action": "key", "parameters": {"key": "KEY_HOME"}}`)

	t.Run("RoutesToTheDevice", func(t *testing.T) {
		fake := &fakeDevice{response: &device.ActionResponse{Success: true, Data: "key KEY_HOME sent"}}
		registry := newFakeRegistry(t, fake)

		response, err := registry.Process(DeviceTV, action)
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if !response.Success || fake.calls != 1 {
			t.Errorf("Expected one successful call, got calls=%d response=%+v", fake.calls, response)
		}
	})

	t.Run("ReportsUnknownDevices", func(t *testing.T) {
		registry := newFakeRegistry(t, &fakeDevice{response: &device.ActionResponse{Success: true}})

		response, err := registry.Process("oven", action)
		if err != nil {
			t.Fatalf("Process should not fail hard: %v", err)
		}
		if response.Success || !strings.Contains(response.Error, "Device not found") {
			t.Errorf("Expected a device-not-found response, got %+v", response)
		}
	})
}

func TestProcessWithNonce(t *testing.T) {
	action := []byte(`{"type": "remote", "action": "key", "parameters": {"key": "KEY_HOME"}}`)

	t.Run("ReplaysDuplicateNonces", func(t *testing.T) {
		fake := &fakeDevice{response: &device.ActionResponse{Success: true, Data: "key KEY_HOME sent"}}
		registry := newFakeRegistry(t, fake)

		nonce := GenerateNonce()
		first, err := registry.ProcessWithNonce(DeviceTV, nonce, action)
		if err != nil {
			t.Fatalf("ProcessWithNonce failed: %v", err)
		}
		second, err := registry.ProcessWithNonce(DeviceTV, nonce, action)
		if err != nil {
			t.Fatalf("ProcessWithNonce replay failed: %v", err)
		}

		if fake.calls != 1 {
			t.Errorf("Expected the device to run once, got %d calls", fake.calls)
		}
		if first != second {
			t.Error("Expected the cached response on replay")
		}
	})

	t.Run("ProcessesDistinctNonces", func(t *testing.T) {
		fake := &fakeDevice{response: &device.ActionResponse{Success: true}}
		registry := newFakeRegistry(t, fake)

		registry.ProcessWithNonce(DeviceTV, GenerateNonce(), action)
		registry.ProcessWithNonce(DeviceTV, GenerateNonce(), action)

		if fake.calls != 2 {
			t.Errorf("Expected two device calls, got %d", fake.calls)
		}
	})

	t.Run("NeverCachesWithoutANonce", func(t *testing.T) {
		fake := &fakeDevice{response: &device.ActionResponse{Success: true}}
		registry := newFakeRegistry(t, fake)

		registry.ProcessWithNonce(DeviceTV, "", action)
		registry.ProcessWithNonce(DeviceTV, "", action)

		if fake.calls != 2 {
			t.Errorf("Expected every call to reach the device, got %d", fake.calls)
		}
	})

	t.Run("RejectsMalformedNonces", func(t *testing.T) {
		fake := &fakeDevice{response: &device.ActionResponse{Success: true}}
		registry := newFakeRegistry(t, fake)

		response, err := registry.ProcessWithNonce(DeviceTV, "not-a-nonce", action)
		if err != nil {
			t.Fatalf("ProcessWithNonce failed: %v", err)
		}
		if response.Success || !strings.Contains(response.Error, "Invalid nonce format") {
			t.Errorf("Expected a nonce format error, got %+v", response)
		}
		if fake.calls != 0 {
			t.Errorf("Malformed nonce should not reach the device, got %d calls", fake.calls)
		}
	})
}

func TestShutdown(t *testing.T) {
	registry := NewRegistry(testConfig(t), internal.NewModeOptions(internal.WithTest(true)))
	if err := registry.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	registry.Shutdown()

	if registry.Count() != 0 {
		t.Errorf("Expected an empty registry after shutdown, got %d devices", registry.Count())
	}
}
