package chessboard

import (
	"errors"

	"github.com/gogpu/chessboard/internal/layer"
	"github.com/gogpu/chessboard/internal/present"
)

// Construction errors.
var (
	// ErrNoAdapter is returned when no adapter can present to the surface.
	ErrNoAdapter = errors.New("chessboard: no compatible GPU adapter")

	// ErrNoBackend is returned when the requested HAL backend is not
	// registered in this binary.
	ErrNoBackend = errors.New("chessboard: GPU backend not available")

	// ErrFormatMismatch is returned when a layer pipeline targets a format
	// other than the surface format.
	ErrFormatMismatch = errors.New("chessboard: layer format does not match surface format")

	// ErrAtlasDecode and ErrAtlasLayout report an unusable piece atlas.
	ErrAtlasDecode = layer.ErrAtlasDecode
	ErrAtlasLayout = layer.ErrAtlasLayout

	// ErrClosed is returned by every method of a closed Engine.
	ErrClosed = errors.New("chessboard: engine closed")

	// ErrNotHeadless is returned by Snapshot on a windowed Engine.
	ErrNotHeadless = errors.New("chessboard: snapshot requires a headless engine")
)

// Per-frame errors. The first three are transient, the last two fatal.
var (
	ErrSurfaceOutdated = present.ErrOutdated
	ErrSurfaceLost     = present.ErrLost
	ErrSurfaceTimeout  = present.ErrTimeout
	ErrOutOfMemory     = present.ErrOutOfMemory
	ErrDeviceLost      = present.ErrDeviceLost
)

// IsTransient reports whether err only dropped the current frame. Rendering
// may continue with the next Render call.
func IsTransient(err error) bool { return present.IsTransient(err) }

// IsFatal reports whether err left the GPU device unusable. The Engine must
// be closed.
func IsFatal(err error) bool { return present.IsFatal(err) }
