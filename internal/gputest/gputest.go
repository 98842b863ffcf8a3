// Package gputest provides GPU fixtures for tests: a noop hal device, render
// targets on it, and a command encoder that records the passes and draws it
// forwards.
package gputest

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Noop is an opened noop backend.
type Noop struct {
	Instance hal.Instance
	Adapter  hal.Adapter
	Device   hal.Device
	Queue    hal.Queue
}

// OpenNoop opens a device on the noop backend. The device and its instance
// are destroyed when the test ends.
func OpenNoop(t testing.TB) *Noop {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("noop backend exposed no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return &Noop{
		Instance: instance,
		Adapter:  adapters[0].Adapter,
		Device:   openDev.Device,
		Queue:    openDev.Queue,
	}
}

// NoopDevice is OpenNoop returning only the device and queue.
func NoopDevice(t testing.TB) (hal.Device, hal.Queue) {
	t.Helper()
	n := OpenNoop(t)
	return n.Device, n.Queue
}

// Target creates a w x h color attachment and returns its view. Both are
// released when the test ends.
func Target(t testing.TB, device hal.Device, w, h uint32, format gputypes.TextureFormat) hal.TextureView {
	t.Helper()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "test_target_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		t.Fatalf("CreateTextureView failed: %v", err)
	}
	t.Cleanup(func() {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
	})
	return view
}

// Pass is one recorded render pass.
type Pass struct {
	Label string
	Load  gputypes.LoadOp
	Clear gputypes.Color
	Draws []Draw
	Ended bool
}

// Draw is one recorded indexed draw.
type Draw struct {
	IndexCount    uint32
	InstanceCount uint32
}

// Recorder wraps a command encoder and logs every render pass begun on it.
// All calls still reach the wrapped encoder.
type Recorder struct {
	hal.CommandEncoder
	Passes []Pass
}

// NewRecorder creates an encoder on device, begins encoding and wraps it.
func NewRecorder(t testing.TB, device hal.Device) *Recorder {
	t.Helper()
	enc, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "test_encoder"})
	if err != nil {
		t.Fatalf("CreateCommandEncoder failed: %v", err)
	}
	if err := enc.BeginEncoding("test_frame"); err != nil {
		t.Fatalf("BeginEncoding failed: %v", err)
	}
	return &Recorder{CommandEncoder: enc}
}

// BeginRenderPass records the pass label and first color attachment ops.
func (r *Recorder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	p := Pass{Label: desc.Label}
	if len(desc.ColorAttachments) > 0 {
		p.Load = desc.ColorAttachments[0].LoadOp
		p.Clear = desc.ColorAttachments[0].ClearValue
	}
	r.Passes = append(r.Passes, p)
	return &recordingPass{
		RenderPassEncoder: r.CommandEncoder.BeginRenderPass(desc),
		rec:               r,
		idx:               len(r.Passes) - 1,
	}
}

// Labels returns the pass labels in recording order.
func (r *Recorder) Labels() []string {
	labels := make([]string, len(r.Passes))
	for i, p := range r.Passes {
		labels[i] = p.Label
	}
	return labels
}

type recordingPass struct {
	hal.RenderPassEncoder
	rec *Recorder
	idx int
}

func (p *recordingPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	pass := &p.rec.Passes[p.idx]
	pass.Draws = append(pass.Draws, Draw{IndexCount: indexCount, InstanceCount: instanceCount})
	p.RenderPassEncoder.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *recordingPass) End() {
	p.rec.Passes[p.idx].Ended = true
	p.RenderPassEncoder.End()
}
