// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"fmt"

	"github.com/gogpu/chessboard/board"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// atlasFormat is the sampled format of the piece atlas. Sprites are authored
// in sRGB, so sampling returns linear values.
const atlasFormat = gputypes.TextureFormatRGBA8UnormSrgb

// Pieces draws one textured quad per occupied square in a single instanced
// call. The instance buffer is sized for a full board and is rewritten every
// frame from the board passed to Render.
type Pieces struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	atlasTex  hal.Texture
	atlasView hal.TextureView
	sampler   hal.Sampler
	bindGroup hal.BindGroup

	quad        *quadBuffers
	instanceBuf hal.Buffer

	// scratch is reused across frames so Render does not allocate.
	scratch   []Instance
	lastCount uint32
}

var _ Drawable = (*Pieces)(nil)

// NewPieces builds the piece pipeline for color targets of format and uploads
// the atlas. atlas is decoded with DecodeAtlas; a nil atlas uses DefaultAtlas.
func NewPieces(device hal.Device, queue hal.Queue, format gputypes.TextureFormat, atlas *AtlasImage) (*Pieces, error) {
	if atlas == nil {
		var err error
		if atlas, err = DecodeAtlas(DefaultAtlas); err != nil {
			return nil, err
		}
	}

	l := &Pieces{
		device:  device,
		queue:   queue,
		format:  format,
		scratch: make([]Instance, 0, MaxInstances),
	}
	steps := []func() error{
		l.createPipeline,
		func() error { return l.createAtlas(atlas) },
		l.createBindGroup,
		l.createBuffers,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			l.Destroy()
			return nil, err
		}
	}
	slogger().Debug("piece layer created", "format", format,
		"atlas_width", atlas.Width, "atlas_height", atlas.Height)
	return l, nil
}

func (l *Pieces) createPipeline() error {
	shader, err := createShaderModule(l.device, PieceShader)
	if err != nil {
		return err
	}
	l.shader = shader

	// Bind group layout:
	//   Binding 0: atlas texture (texture_2d, fragment)
	//   Binding 1: atlas sampler (fragment)
	bindLayout, err := l.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "piece_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create piece bind group layout: %w", err)
	}
	l.bindLayout = bindLayout

	pipeLayout, err := l.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "piece_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{l.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create piece pipeline layout: %w", err)
	}
	l.pipeLayout = pipeLayout

	blend := alphaBlend()
	pipeline, err := l.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "piece_pipeline",
		Layout: l.pipeLayout,
		Vertex: hal.VertexState{
			Module:     l.shader,
			EntryPoint: vertexEntryPoint,
			Buffers:    []gputypes.VertexBufferLayout{quadVertexLayout(), instanceLayout()},
		},
		Fragment: &hal.FragmentState{
			Module:     l.shader,
			EntryPoint: fragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    l.format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive:   primitiveState(),
		Multisample: noMultisample(),
	})
	if err != nil {
		return fmt.Errorf("create piece pipeline: %w", err)
	}
	l.pipeline = pipeline
	return nil
}

// alphaBlend is straight (non-premultiplied) source-over for sprite edges.
func alphaBlend() gputypes.BlendState {
	over := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	}
	return gputypes.BlendState{Color: over, Alpha: over}
}

func (l *Pieces) createAtlas(atlas *AtlasImage) error {
	size := hal.Extent3D{Width: atlas.Width, Height: atlas.Height, DepthOrArrayLayers: 1}
	tex, err := l.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "piece_atlas",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        atlasFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create piece atlas texture: %w", err)
	}
	l.atlasTex = tex

	view, err := l.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "piece_atlas_view",
		Format:        atlasFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create piece atlas view: %w", err)
	}
	l.atlasView = view

	err = l.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: l.atlasTex, MipLevel: 0},
		atlas.Pixels,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  atlas.Width * 4,
			RowsPerImage: atlas.Height,
		},
		&size,
	)
	if err != nil {
		return fmt.Errorf("upload piece atlas: %w", err)
	}

	// Magnify smoothly, minify to the nearest texel so neighbouring sprites
	// do not bleed into each other.
	sampler, err := l.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "piece_atlas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create piece atlas sampler: %w", err)
	}
	l.sampler = sampler
	return nil
}

func (l *Pieces) createBindGroup() error {
	bg, err := l.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "piece_bind_group",
		Layout: l.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: l.atlasView.NativeHandle(),
			}},
			{Binding: 1, Resource: gputypes.SamplerBinding{
				Sampler: l.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create piece bind group: %w", err)
	}
	l.bindGroup = bg
	return nil
}

func (l *Pieces) createBuffers() error {
	quad, err := createQuadBuffers(l.device, l.queue, "piece")
	if err != nil {
		return err
	}
	l.quad = quad

	instanceBuf, err := l.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "piece_instances",
		Size:  MaxInstances * instanceStride,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create piece instance buffer: %w", err)
	}
	l.instanceBuf = instanceBuf
	return nil
}

// Name implements Drawable.
func (l *Pieces) Name() string { return "pieces" }

// Format implements Drawable.
func (l *Pieces) Format() gputypes.TextureFormat { return l.format }

// LastInstanceCount returns the instance count of the most recent Render.
func (l *Pieces) LastInstanceCount() uint32 { return l.lastCount }

// Render uploads the instances for b and records one instanced draw.
// An empty board still records the pass, with zero instances.
func (l *Pieces) Render(enc hal.CommandEncoder, view hal.TextureView, b *board.Board) error {
	l.scratch = AppendInstances(l.scratch[:0], b)
	n := uint32(len(l.scratch)) //nolint:gosec // bounded by MaxInstances
	if n > 0 {
		if err := l.queue.WriteBuffer(l.instanceBuf, 0, InstanceBytes(l.scratch)); err != nil {
			return fmt.Errorf("upload piece instances: %w", err)
		}
	}
	l.lastCount = n

	rp := beginLoadPass(enc, view, "piece_pass")
	rp.SetPipeline(l.pipeline)
	rp.SetBindGroup(0, l.bindGroup, nil)
	rp.SetVertexBuffer(0, l.quad.vertBuf, 0)
	rp.SetVertexBuffer(1, l.instanceBuf, 0)
	rp.SetIndexBuffer(l.quad.idxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(l.quad.indexCount, n, 0, 0, 0)
	rp.End()
	return nil
}

// Destroy releases all GPU objects in reverse creation order.
// Safe to call more than once.
func (l *Pieces) Destroy() {
	if l.device == nil {
		return
	}
	if l.instanceBuf != nil {
		l.device.DestroyBuffer(l.instanceBuf)
		l.instanceBuf = nil
	}
	l.quad.destroy(l.device)
	l.quad = nil
	if l.bindGroup != nil {
		l.device.DestroyBindGroup(l.bindGroup)
		l.bindGroup = nil
	}
	if l.sampler != nil {
		l.device.DestroySampler(l.sampler)
		l.sampler = nil
	}
	if l.atlasView != nil {
		l.device.DestroyTextureView(l.atlasView)
		l.atlasView = nil
	}
	if l.atlasTex != nil {
		l.device.DestroyTexture(l.atlasTex)
		l.atlasTex = nil
	}
	if l.pipeline != nil {
		l.device.DestroyRenderPipeline(l.pipeline)
		l.pipeline = nil
	}
	if l.pipeLayout != nil {
		l.device.DestroyPipelineLayout(l.pipeLayout)
		l.pipeLayout = nil
	}
	if l.bindLayout != nil {
		l.device.DestroyBindGroupLayout(l.bindLayout)
		l.bindLayout = nil
	}
	if l.shader != nil {
		l.device.DestroyShaderModule(l.shader)
		l.shader = nil
	}
}
