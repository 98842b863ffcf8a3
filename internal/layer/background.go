// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"fmt"

	"github.com/gogpu/chessboard/board"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Background draws the checkerboard: one full-viewport quad whose fragment
// stage derives the 8x8 pattern from texture coordinates. It has no bind
// groups and no per-frame inputs.
type Background struct {
	device hal.Device
	format gputypes.TextureFormat

	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	quad       *quadBuffers
}

var _ Drawable = (*Background)(nil)

// NewBackground builds the background pipeline for color targets of format.
// Any failure is fatal for the engine; partially created objects are released.
func NewBackground(device hal.Device, queue hal.Queue, format gputypes.TextureFormat) (*Background, error) {
	l := &Background{device: device, format: format}
	if err := l.createPipeline(); err != nil {
		l.Destroy()
		return nil, err
	}
	quad, err := createQuadBuffers(device, queue, "background")
	if err != nil {
		l.Destroy()
		return nil, err
	}
	l.quad = quad
	slogger().Debug("background layer created", "format", format)
	return l, nil
}

func (l *Background) createPipeline() error {
	shader, err := createShaderModule(l.device, BackgroundShader)
	if err != nil {
		return err
	}
	l.shader = shader

	pipeLayout, err := l.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "background_pipe_layout",
	})
	if err != nil {
		return fmt.Errorf("create background pipeline layout: %w", err)
	}
	l.pipeLayout = pipeLayout

	// No Blend: the checkerboard replaces whatever the clear pass wrote.
	pipeline, err := l.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "background_pipeline",
		Layout: l.pipeLayout,
		Vertex: hal.VertexState{
			Module:     l.shader,
			EntryPoint: vertexEntryPoint,
			Buffers:    []gputypes.VertexBufferLayout{quadVertexLayout()},
		},
		Fragment: &hal.FragmentState{
			Module:     l.shader,
			EntryPoint: fragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    l.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive:   primitiveState(),
		Multisample: noMultisample(),
	})
	if err != nil {
		return fmt.Errorf("create background pipeline: %w", err)
	}
	l.pipeline = pipeline
	return nil
}

// Name implements Drawable.
func (l *Background) Name() string { return "background" }

// Format implements Drawable.
func (l *Background) Format() gputypes.TextureFormat { return l.format }

// Render records one pass with a single indexed draw. The board is unused.
func (l *Background) Render(enc hal.CommandEncoder, view hal.TextureView, _ *board.Board) error {
	rp := beginLoadPass(enc, view, "background_pass")
	rp.SetPipeline(l.pipeline)
	rp.SetVertexBuffer(0, l.quad.vertBuf, 0)
	rp.SetIndexBuffer(l.quad.idxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(l.quad.indexCount, 1, 0, 0, 0)
	rp.End()
	return nil
}

// Destroy releases all GPU objects in reverse creation order.
// Safe to call more than once.
func (l *Background) Destroy() {
	if l.device == nil {
		return
	}
	l.quad.destroy(l.device)
	l.quad = nil
	if l.pipeline != nil {
		l.device.DestroyRenderPipeline(l.pipeline)
		l.pipeline = nil
	}
	if l.pipeLayout != nil {
		l.device.DestroyPipelineLayout(l.pipeLayout)
		l.pipeLayout = nil
	}
	if l.shader != nil {
		l.device.DestroyShaderModule(l.shader)
		l.shader = nil
	}
}
