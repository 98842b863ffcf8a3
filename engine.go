package chessboard

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/chessboard/board"
	"github.com/gogpu/chessboard/internal/layer"
	"github.com/gogpu/chessboard/internal/present"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Size is a render target size in pixels.
type Size struct {
	Width, Height uint32
}

// SurfaceHandle identifies the native window to present to: the display
// connection (X11 Display*, wl_display*, HINSTANCE; 0 where unused) and the
// window (X11 Window, wl_surface*, HWND, CAMetalLayer*).
type SurfaceHandle struct {
	Display uintptr
	Window  uintptr
}

// Config describes the active render target.
type Config struct {
	Size        Size
	Format      gputypes.TextureFormat
	PresentMode gputypes.PresentMode
	Adapter     string
	Headless    bool
}

// FrameStats counts frames since the engine was created.
type FrameStats struct {
	// Rendered frames were submitted and presented.
	Rendered uint64
	// Dropped frames failed with a transient error.
	Dropped uint64
	// Pieces is the instance count of the last rendered frame.
	Pieces uint32
}

// Engine draws chessboard frames to one target.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	gpu       *gpu
	frames    *present.Manager
	offscreen *present.OffscreenBackend
	comp      *compositor
	pieces    *layer.Pieces
	timeout   time.Duration

	// The previous frame's submission. Its command buffer is freed and the
	// instance buffer reused only once it has completed.
	inFlight    uint64
	inFlightCmd hal.CommandBuffer
	inFlightEnc hal.CommandEncoder

	stats  FrameStats
	closed bool
}

// New creates an engine that presents to the window identified by handle.
//
// It creates an instance of the configured backend (Vulkan by default), a
// surface for the window, selects an adapter that can present to it, opens
// a device and configures the surface with the adapter's preferred format
// and FIFO presentation. Any failure is fatal and releases everything
// created so far.
func New(handle SurfaceHandle, size Size, opts ...Option) (*Engine, error) {
	o := applyOptions(opts)
	if o.provider != nil {
		return nil, errors.New("chessboard: WithDeviceProvider requires NewHeadless")
	}

	instance, err := createInstance(&o)
	if err != nil {
		return nil, err
	}
	surface, err := instance.CreateSurface(handle.Display, handle.Window)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("create surface: %w", err)
	}
	g, err := openGPU(instance, surface)
	if err != nil {
		surface.Destroy()
		instance.Destroy()
		return nil, err
	}

	format := o.format
	if format == gputypes.TextureFormatUndefined {
		format = present.PreferredFormat(g.adapter, surface)
	}
	if format == gputypes.TextureFormatUndefined {
		surface.Destroy()
		g.destroy()
		return nil, ErrNoAdapter
	}

	backend := present.NewSurfaceBackend(g.device, g.queue, surface)
	frames, err := present.NewManager(backend, present.Config{
		Width:       size.Width,
		Height:      size.Height,
		Format:      format,
		PresentMode: o.presentMode,
	})
	if err != nil {
		backend.Release()
		g.destroy()
		return nil, err
	}
	return newEngine(g, frames, nil, &o)
}

// NewHeadless creates an engine that renders into an offscreen texture.
// Snapshot returns the pixels of the last rendered frame.
//
// With WithDeviceProvider the host's device is used and its surface format
// is adopted when it is an 8-bit RGBA format; otherwise the target is
// RGBA8Unorm.
func NewHeadless(size Size, opts ...Option) (*Engine, error) {
	o := applyOptions(opts)

	var g *gpu
	if o.provider != nil {
		shared, err := sharedGPU(o.provider)
		if err != nil {
			return nil, err
		}
		g = shared
		if o.format == gputypes.TextureFormatUndefined && isRGBA8(o.provider.SurfaceFormat()) {
			o.format = o.provider.SurfaceFormat()
		}
	} else {
		instance, err := createInstance(&o)
		if err != nil {
			return nil, err
		}
		g, err = openGPU(instance, nil)
		if err != nil {
			instance.Destroy()
			return nil, err
		}
	}
	if o.format == gputypes.TextureFormatUndefined {
		o.format = gputypes.TextureFormatRGBA8Unorm
	}

	offscreen := present.NewOffscreenBackend(g.device, g.queue, o.frameTimeout)
	frames, err := present.NewManager(offscreen, present.Config{
		Width:  size.Width,
		Height: size.Height,
		Format: o.format,
	})
	if err != nil {
		offscreen.Release()
		g.destroy()
		return nil, err
	}
	return newEngine(g, frames, offscreen, &o)
}

func isRGBA8(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// newEngine builds both layers for the target format. On failure it
// releases the target and the device.
func newEngine(g *gpu, frames *present.Manager, offscreen *present.OffscreenBackend, o *options) (*Engine, error) {
	fail := func(err error) (*Engine, error) {
		frames.Release()
		g.destroy()
		return nil, err
	}

	var atlas *layer.AtlasImage
	if o.atlas != nil {
		a, err := layer.DecodeAtlas(o.atlas)
		if err != nil {
			return fail(err)
		}
		atlas = a
	}

	format := frames.Config().Format
	background, err := layer.NewBackground(g.device, g.queue, format)
	if err != nil {
		return fail(err)
	}
	pieces, err := layer.NewPieces(g.device, g.queue, format, atlas)
	if err != nil {
		background.Destroy()
		return fail(err)
	}
	comp, err := newCompositor(format, o.clearColor, background, pieces)
	if err != nil {
		pieces.Destroy()
		background.Destroy()
		return fail(err)
	}

	cfg := frames.Config()
	Logger().Info("chessboard: engine ready",
		"width", cfg.Width, "height", cfg.Height, "format", cfg.Format,
		"headless", offscreen != nil)
	return &Engine{
		gpu:       g,
		frames:    frames,
		offscreen: offscreen,
		comp:      comp,
		pieces:    pieces,
		timeout:   o.frameTimeout,
	}, nil
}

// Render draws b and presents it. b is only read during the call.
//
// A transient error (see IsTransient) means this frame was dropped. An
// outdated or lost target is rebuilt at its current size, either here or by
// the next Render or Resize, and rendering proceeds.
// A fatal error (see IsFatal) means the engine must be closed.
func (e *Engine) Render(b *board.Board) error {
	if e.closed {
		return ErrClosed
	}
	if b == nil {
		b = &board.Board{}
	}

	// One frame in flight: the piece layer rewrites its instance buffer.
	if err := e.retire(); err != nil {
		return e.drop(err)
	}

	frame, err := e.frames.Acquire()
	if err != nil {
		return e.drop(err)
	}

	enc, err := e.gpu.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "frame_encoder"})
	if err != nil {
		e.frames.Discard(frame)
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("frame"); err != nil {
		enc.Destroy()
		e.frames.Discard(frame)
		return fmt.Errorf("begin encoding: %w", err)
	}
	if err := e.comp.record(enc, frame.View, b); err != nil {
		enc.DiscardEncoding()
		enc.Destroy()
		e.frames.Discard(frame)
		return e.drop(present.Classify("record frame", err))
	}
	cmd, err := enc.EndEncoding()
	if err != nil {
		enc.Destroy()
		e.frames.Discard(frame)
		return fmt.Errorf("end encoding: %w", err)
	}

	index, err := e.submit(cmd)
	if err != nil {
		e.gpu.device.FreeCommandBuffer(cmd)
		enc.Destroy()
		e.frames.Discard(frame)
		return e.drop(err)
	}
	e.inFlight, e.inFlightCmd, e.inFlightEnc = index, cmd, enc

	if err := e.frames.Present(frame); err != nil {
		return e.drop(err)
	}
	e.stats.Rendered++
	e.stats.Pieces = e.pieces.LastInstanceCount()
	return nil
}

// submit queues cmd. Offscreen frames never touch a swapchain.
func (e *Engine) submit(cmd hal.CommandBuffer) (uint64, error) {
	if e.offscreen != nil {
		e.gpu.queue.SetSwapchainSuppressed(true)
		defer e.gpu.queue.SetSwapchainSuppressed(false)
	}
	index, err := e.gpu.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		return 0, present.Classify("submit frame", err)
	}
	return index, nil
}

// retire waits for the previous frame and frees its command buffer.
func (e *Engine) retire() error {
	if e.inFlightCmd == nil {
		return nil
	}
	if err := present.WaitSubmission(e.gpu.queue, e.inFlight, e.timeout); err != nil {
		return err
	}
	e.gpu.device.FreeCommandBuffer(e.inFlightCmd)
	e.inFlightEnc.Destroy()
	e.inFlightCmd, e.inFlightEnc = nil, nil
	return nil
}

// drop counts a transient failure as a dropped frame and passes err on.
func (e *Engine) drop(err error) error {
	if IsTransient(err) {
		e.stats.Dropped++
		Logger().Warn("chessboard: frame dropped", "err", err)
	}
	return err
}

// Resize reconfigures the target. Zero dimensions are clamped to 1.
// Pipelines are kept; only the target is recreated.
func (e *Engine) Resize(size Size) error {
	if e.closed {
		return ErrClosed
	}
	// The offscreen target is destroyed on reconfigure.
	if e.offscreen != nil {
		if err := e.retire(); err != nil {
			return err
		}
	}
	return e.frames.Resize(size.Width, size.Height)
}

// Size returns the current target size.
func (e *Engine) Size() Size {
	cfg := e.frames.Config()
	return Size{Width: cfg.Width, Height: cfg.Height}
}

// Config returns the active target configuration.
func (e *Engine) Config() Config {
	cfg := e.frames.Config()
	return Config{
		Size:        Size{Width: cfg.Width, Height: cfg.Height},
		Format:      cfg.Format,
		PresentMode: cfg.PresentMode,
		Adapter:     e.gpu.info.Name,
		Headless:    e.offscreen != nil,
	}
}

// Stats returns the frame counters.
func (e *Engine) Stats() FrameStats { return e.stats }

// Snapshot reads back the last rendered frame of a headless engine.
func (e *Engine) Snapshot() (*image.RGBA, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if e.offscreen == nil {
		return nil, ErrNotHeadless
	}
	return e.offscreen.Snapshot()
}

// Close waits for the GPU and releases every resource the engine created.
// A device from WithDeviceProvider is not destroyed. Close is idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	if err := e.retire(); err != nil {
		errs = append(errs, err)
	}
	if e.inFlightCmd != nil {
		// Timed out; the device wait below covers it.
		if err := e.gpu.device.WaitIdle(); err != nil {
			errs = append(errs, fmt.Errorf("wait idle: %w", err))
		}
		e.gpu.device.FreeCommandBuffer(e.inFlightCmd)
		e.inFlightEnc.Destroy()
		e.inFlightCmd, e.inFlightEnc = nil, nil
	}
	e.comp.destroy()
	e.frames.Release()
	e.gpu.destroy()
	Logger().Info("chessboard: engine closed",
		"rendered", e.stats.Rendered, "dropped", e.stats.Dropped)
	return errors.Join(errs...)
}
