// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package layer holds the GPU draw layers of the chessboard renderer.
//
// Every layer draws the same unit quad (see QuadVertices) with its own
// pipeline. The background layer shades the quad as a checkerboard; the
// piece layer instances it once per occupied square and samples a sprite
// atlas. Layers implement Drawable so the frame compositor can hold them as
// an ordered list.
package layer

import (
	"github.com/gogpu/chessboard/board"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Drawable is one layer of a frame.
//
// Render records exactly one render pass into enc targeting view. The pass
// loads the existing attachment contents, so layers stack in the order they
// are recorded. Render must not submit.
type Drawable interface {
	// Name identifies the layer in logs and pass labels.
	Name() string

	// Format is the color target format the pipeline was built for.
	Format() gputypes.TextureFormat

	// Render records the layer's pass for board b. b is only borrowed.
	// An error means a per-frame upload failed and the frame must be dropped.
	Render(enc hal.CommandEncoder, view hal.TextureView, b *board.Board) error

	// Destroy releases every GPU object owned by the layer.
	Destroy()
}

// primitiveState is the rasterization state shared by all layers:
// triangle list, counter-clockwise front faces, back faces culled.
func primitiveState() gputypes.PrimitiveState {
	return gputypes.PrimitiveState{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		FrontFace: gputypes.FrontFaceCCW,
		CullMode:  gputypes.CullModeBack,
	}
}

// noMultisample is single-sample rendering.
func noMultisample() gputypes.MultisampleState {
	return gputypes.MultisampleState{
		Count: 1,
		Mask:  0xFFFFFFFF,
	}
}

// beginLoadPass opens a render pass on view that keeps what earlier passes
// wrote and stores the result.
func beginLoadPass(enc hal.CommandEncoder, view hal.TextureView, label string) hal.RenderPassEncoder {
	return enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
}
