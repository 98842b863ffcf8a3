package chessboard

import (
	"fmt"

	"github.com/gogpu/chessboard/board"
	"github.com/gogpu/chessboard/internal/layer"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// compositor records the passes of one frame: a clear pass followed by
// every layer, bottom to top.
type compositor struct {
	format gputypes.TextureFormat
	clear  gputypes.Color
	layers []layer.Drawable
}

// newCompositor stacks layers in the given order. Every layer must render
// to format.
func newCompositor(format gputypes.TextureFormat, clear gputypes.Color, layers ...layer.Drawable) (*compositor, error) {
	for _, l := range layers {
		if l.Format() != format {
			return nil, fmt.Errorf("%w: layer %s is %v, surface is %v",
				ErrFormatMismatch, l.Name(), l.Format(), format)
		}
	}
	return &compositor{format: format, clear: clear, layers: layers}, nil
}

// record encodes the frame for b into enc. Passes are recorded strictly in
// sequence; each layer pass loads what the previous one stored.
func (c *compositor) record(enc hal.CommandEncoder, view hal.TextureView, b *board.Board) error {
	pass := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: c.clear,
		}},
	})
	pass.End()

	for _, l := range c.layers {
		if err := l.Render(enc, view, b); err != nil {
			return fmt.Errorf("record %s layer: %w", l.Name(), err)
		}
	}
	return nil
}

// destroy releases the layers top to bottom.
func (c *compositor) destroy() {
	for i := len(c.layers) - 1; i >= 0; i-- {
		c.layers[i].Destroy()
	}
	c.layers = nil
}
