package chessboard

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // registers the default backend
)

// gpu is an open device. instance and adapter are nil when the device is
// shared with the host.
type gpu struct {
	instance hal.Instance
	adapter  hal.Adapter
	device   hal.Device
	queue    hal.Queue
	info     gputypes.AdapterInfo

	// external marks a device borrowed from a DeviceProvider.
	external bool
}

// resolveBackend returns the configured backend or Vulkan.
func resolveBackend(o *options) (hal.Backend, error) {
	if o.backend != nil {
		return o.backend, nil
	}
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan", ErrNoBackend)
	}
	return backend, nil
}

// createInstance opens an instance of the configured backend.
func createInstance(o *options) (hal.Instance, error) {
	backend, err := resolveBackend(o)
	if err != nil {
		return nil, err
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	return instance, nil
}

// selectAdapter picks a hardware adapter over a software one. With a
// surface, only adapters that can present to it qualify.
func selectAdapter(adapters []hal.ExposedAdapter, surface hal.Surface) *hal.ExposedAdapter {
	var fallback *hal.ExposedAdapter
	for i := range adapters {
		a := &adapters[i]
		if surface != nil {
			caps := a.Adapter.SurfaceCapabilities(surface)
			if caps == nil || len(caps.Formats) == 0 {
				continue
			}
		}
		switch a.Info.DeviceType {
		case gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU:
			return a
		}
		if fallback == nil {
			fallback = a
		}
	}
	return fallback
}

// openGPU enumerates the adapters of instance and opens a device on the
// best one. The instance is not destroyed on failure.
func openGPU(instance hal.Instance, surface hal.Surface) (*gpu, error) {
	selected := selectAdapter(instance.EnumerateAdapters(surface), surface)
	if selected == nil {
		return nil, ErrNoAdapter
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	Logger().Info("chessboard: GPU adapter selected",
		"name", selected.Info.Name, "type", selected.Info.DeviceType)
	return &gpu{
		instance: instance,
		adapter:  selected.Adapter,
		device:   openDev.Device,
		queue:    openDev.Queue,
		info:     selected.Info,
	}, nil
}

// sharedGPU borrows the device of a host provider.
func sharedGPU(provider gpucontext.DeviceProvider) (*gpu, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, errors.New("chessboard: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, errors.New("chessboard: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("chessboard: provider HalQueue is not hal.Queue")
	}
	info := provider.AdapterInfo()
	Logger().Info("chessboard: using shared GPU device", "name", info.Name)
	return &gpu{
		device:   device,
		queue:    queue,
		info:     gputypes.AdapterInfo{Name: info.Name, DeviceType: deviceType(info.Type)},
		external: true,
	}, nil
}

func deviceType(t gpucontext.AdapterType) gputypes.DeviceType {
	switch t {
	case gpucontext.AdapterTypeDiscrete:
		return gputypes.DeviceTypeDiscreteGPU
	case gpucontext.AdapterTypeIntegrated:
		return gputypes.DeviceTypeIntegratedGPU
	case gpucontext.AdapterTypeSoftware:
		return gputypes.DeviceTypeCPU
	default:
		return gputypes.DeviceTypeOther
	}
}

// destroy releases what the engine opened itself. A shared device is left
// to its owner.
func (g *gpu) destroy() {
	if !g.external && g.device != nil {
		if err := g.device.WaitIdle(); err != nil {
			Logger().Warn("chessboard: wait idle before destroy", "err", err)
		}
		g.device.Destroy()
	}
	if g.instance != nil {
		g.instance.Destroy()
	}
	g.device = nil
	g.queue = nil
	g.adapter = nil
	g.instance = nil
}
