package chessboard

import (
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultFrameTimeout bounds each GPU wait in Render and Snapshot.
const DefaultFrameTimeout = 2 * time.Second

// DefaultClearColor is the color behind the board.
var DefaultClearColor = gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}

// Option configures an Engine during creation.
//
// Example:
//
//	eng, err := chessboard.NewHeadless(size,
//	    chessboard.WithAtlas(sheet),
//	    chessboard.WithClearColor(gputypes.Color{A: 1}))
type Option func(*options)

// options holds optional configuration for Engine creation.
type options struct {
	atlas        []byte
	clearColor   gputypes.Color
	provider     gpucontext.DeviceProvider
	backend      hal.Backend
	frameTimeout time.Duration
	presentMode  gputypes.PresentMode
	format       gputypes.TextureFormat
}

// defaultOptions returns the default engine options.
func defaultOptions() options {
	return options{
		clearColor:   DefaultClearColor,
		frameTimeout: DefaultFrameTimeout,
		presentMode:  gputypes.PresentModeFifo,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithAtlas replaces the built-in piece atlas. data is a PNG, WebP or BMP
// image laid out as 6 columns (king, queen, bishop, knight, rook, pawn) by
// 2 rows (white on top, black below).
func WithAtlas(data []byte) Option {
	return func(o *options) {
		o.atlas = data
	}
}

// WithClearColor sets the color the target is cleared to before the
// background layer is drawn.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithDeviceProvider renders on a GPU device owned by the host instead of
// opening one. The provider must implement HalDevice() any and HalQueue()
// any returning hal.Device and hal.Queue. The engine never destroys a
// provided device.
//
// Only NewHeadless accepts a provider; a window surface must come from the
// instance that opened the device.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithBackend selects the HAL backend used to open the device. The default
// is Vulkan. The backend must execute indexed draws; the noop backend is
// useful in tests.
func WithBackend(b hal.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithFrameTimeout bounds every GPU wait. Zero or negative waits forever.
func WithFrameTimeout(d time.Duration) Option {
	return func(o *options) {
		o.frameTimeout = d
	}
}

// WithPresentMode sets the swapchain present mode of a windowed engine.
// The default is FIFO (vsync).
func WithPresentMode(m gputypes.PresentMode) Option {
	return func(o *options) {
		o.presentMode = m
	}
}

// WithFormat overrides the target format. A windowed engine uses the
// adapter's preferred surface format by default, a headless one
// RGBA8Unorm.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.format = f
	}
}
