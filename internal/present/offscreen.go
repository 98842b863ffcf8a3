// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"errors"
	"fmt"
	"image"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// OffscreenBackend renders into a resident texture instead of a window.
// The same texture is handed out every frame; Snapshot reads it back.
type OffscreenBackend struct {
	device  hal.Device
	queue   hal.Queue
	timeout time.Duration

	cfg  Config
	tex  hal.Texture
	view hal.TextureView

	staging    hal.Buffer
	paddedRow  uint32
	stagingLen uint64
}

var _ Backend = (*OffscreenBackend)(nil)

// NewOffscreenBackend returns an unconfigured offscreen backend. timeout
// bounds the GPU wait in Snapshot.
func NewOffscreenBackend(device hal.Device, queue hal.Queue, timeout time.Duration) *OffscreenBackend {
	return &OffscreenBackend{device: device, queue: queue, timeout: timeout}
}

// Configure implements Backend. The previous texture is discarded.
func (o *OffscreenBackend) Configure(cfg Config) error {
	if o.device == nil {
		return errors.New("present: offscreen target released")
	}
	switch cfg.Format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
	default:
		return fmt.Errorf("present: offscreen format %v is not 8-bit RGBA", cfg.Format)
	}
	o.destroyTarget()

	tex, err := o.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "offscreen_target",
		Size:          hal.Extent3D{Width: cfg.Width, Height: cfg.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        cfg.Format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create offscreen texture: %w", err)
	}
	o.tex = tex

	view, err := o.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "offscreen_target_view",
		Format:        cfg.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		o.destroyTarget()
		return fmt.Errorf("create offscreen view: %w", err)
	}
	o.view = view

	// WebGPU requires BytesPerRow aligned to 256 bytes.
	o.paddedRow = (cfg.Width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	o.stagingLen = uint64(o.paddedRow) * uint64(cfg.Height)
	staging, err := o.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "offscreen_staging",
		Size:  o.stagingLen,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		o.destroyTarget()
		return fmt.Errorf("create offscreen staging buffer: %w", err)
	}
	o.staging = staging

	o.cfg = cfg
	return nil
}

// Acquire implements Backend.
func (o *OffscreenBackend) Acquire() (*Frame, error) {
	if o.view == nil {
		return nil, errors.New("present: offscreen target not configured")
	}
	return &Frame{View: o.view}, nil
}

// Present implements Backend. The texture stays resident for Snapshot.
func (o *OffscreenBackend) Present(*Frame) error { return nil }

// Discard implements Backend.
func (o *OffscreenBackend) Discard(*Frame) {}

// Snapshot copies the target to CPU memory as straight RGBA. Work submitted
// before the call is complete by the time the copy runs.
func (o *OffscreenBackend) Snapshot() (*image.RGBA, error) {
	if o.tex == nil {
		return nil, errors.New("present: offscreen target not configured")
	}
	w, h := o.cfg.Width, o.cfg.Height

	encoder, err := o.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "offscreen_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Destroy()
	if err := encoder.BeginEncoding("offscreen_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(o.tex, o.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: o.paddedRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: o.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer o.device.FreeCommandBuffer(cmdBuf)

	o.queue.SetSwapchainSuppressed(true)
	index, err := o.queue.Submit([]hal.CommandBuffer{cmdBuf})
	o.queue.SetSwapchainSuppressed(false)
	if err != nil {
		return nil, Classify("submit readback", err)
	}
	if err := WaitSubmission(o.queue, index, o.timeout); err != nil {
		return nil, err
	}

	mapping, err := o.device.MapBuffer(o.staging, 0, o.stagingLen)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	defer func() {
		if uerr := o.device.UnmapBuffer(o.staging); uerr != nil {
			slogger().Warn("unmap staging buffer failed", "err", uerr)
		}
	}()
	src := unsafe.Slice((*byte)(mapping.Ptr), o.stagingLen)

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	copyRows(img.Pix, img.Stride, src, int(o.paddedRow), int(w)*4, int(h), isBGRA(o.cfg.Format))
	return img, nil
}

// copyRows strips row padding from src into dst and swaps red and blue
// when swapRB is set.
func copyRows(dst []byte, dstStride int, src []byte, srcStride, rowBytes, h int, swapRB bool) {
	for y := 0; y < h; y++ {
		d := dst[y*dstStride : y*dstStride+rowBytes]
		copy(d, src[y*srcStride:y*srcStride+rowBytes])
		if swapRB {
			for i := 0; i < rowBytes; i += 4 {
				d[i], d[i+2] = d[i+2], d[i]
			}
		}
	}
}

func isBGRA(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatBGRA8Unorm || f == gputypes.TextureFormatBGRA8UnormSrgb
}

func (o *OffscreenBackend) destroyTarget() {
	if o.staging != nil {
		o.device.DestroyBuffer(o.staging)
		o.staging = nil
	}
	if o.view != nil {
		o.device.DestroyTextureView(o.view)
		o.view = nil
	}
	if o.tex != nil {
		o.device.DestroyTexture(o.tex)
		o.tex = nil
	}
}

// Release implements Backend.
func (o *OffscreenBackend) Release() {
	if o.device == nil {
		return
	}
	o.destroyTarget()
	o.device = nil
}
