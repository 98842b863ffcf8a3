// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SurfaceBackend presents to a window surface through its swapchain.
// It takes ownership of the surface.
type SurfaceBackend struct {
	device  hal.Device
	queue   hal.Queue
	surface hal.Surface

	cfg        Config
	configured bool
}

var _ Backend = (*SurfaceBackend)(nil)

// NewSurfaceBackend wraps surface. Configure must be called before Acquire.
func NewSurfaceBackend(device hal.Device, queue hal.Queue, surface hal.Surface) *SurfaceBackend {
	return &SurfaceBackend{device: device, queue: queue, surface: surface}
}

// PreferredFormat picks the surface format: the first sRGB format the adapter
// reports, else the first format. It returns TextureFormatUndefined when the
// adapter cannot present to the surface.
func PreferredFormat(adapter hal.Adapter, surface hal.Surface) gputypes.TextureFormat {
	caps := adapter.SurfaceCapabilities(surface)
	if caps == nil || len(caps.Formats) == 0 {
		return gputypes.TextureFormatUndefined
	}
	for _, f := range caps.Formats {
		if f == gputypes.TextureFormatBGRA8UnormSrgb || f == gputypes.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	return caps.Formats[0]
}

// Configure implements Backend.
func (s *SurfaceBackend) Configure(cfg Config) error {
	if s.surface == nil {
		return errors.New("present: surface released")
	}
	if cfg.PresentMode == gputypes.PresentModeUndefined {
		cfg.PresentMode = hal.PresentModeFifo
	}
	err := s.surface.Configure(s.device, &hal.SurfaceConfiguration{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      cfg.Format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: cfg.PresentMode,
		AlphaMode:   hal.CompositeAlphaModeOpaque,
	})
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.configured = true
	return nil
}

// Acquire implements Backend.
func (s *SurfaceBackend) Acquire() (*Frame, error) {
	if !s.configured {
		return nil, errors.New("present: surface not configured")
	}
	acquired, err := s.surface.AcquireTexture(nil)
	if err != nil {
		return nil, err
	}
	view, err := s.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label:         "surface_view",
		Format:        s.cfg.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		s.surface.DiscardTexture(acquired.Texture)
		return nil, fmt.Errorf("create surface view: %w", err)
	}
	return &Frame{
		View:       view,
		Suboptimal: acquired.Suboptimal,
		texture:    acquired.Texture,
	}, nil
}

// Present implements Backend.
func (s *SurfaceBackend) Present(f *Frame) error {
	defer s.releaseView(f)
	return s.queue.Present(s.surface, f.texture, nil)
}

// Discard implements Backend.
func (s *SurfaceBackend) Discard(f *Frame) {
	if f.texture != nil {
		s.surface.DiscardTexture(f.texture)
	}
	s.releaseView(f)
}

func (s *SurfaceBackend) releaseView(f *Frame) {
	if f.View != nil {
		s.device.DestroyTextureView(f.View)
		f.View = nil
	}
	f.texture = nil
}

// Release implements Backend.
func (s *SurfaceBackend) Release() {
	if s.surface == nil {
		return
	}
	if s.configured {
		s.surface.Unconfigure(s.device)
		s.configured = false
	}
	s.surface.Destroy()
	s.surface = nil
}
