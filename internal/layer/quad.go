// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Vertex is one corner of the shared unit quad.
// Matches VertexInput in background.wgsl and piece.wgsl.
type Vertex struct {
	Position [2]float32 // normalized device coordinates
	TexCoord [2]float32 // (0,0) is the bottom-left texel
}

// vertexStride is the byte stride per vertex:
//
//	position  (vec2<f32>) = 8 bytes (location 0)
//	tex_coord (vec2<f32>) = 8 bytes (location 1)
const vertexStride = 16

// QuadVertices covers the whole viewport, counter-clockwise from top-left.
var QuadVertices = [4]Vertex{
	{Position: [2]float32{-1, 1}, TexCoord: [2]float32{0, 1}},
	{Position: [2]float32{-1, -1}, TexCoord: [2]float32{0, 0}},
	{Position: [2]float32{1, -1}, TexCoord: [2]float32{1, 0}},
	{Position: [2]float32{1, 1}, TexCoord: [2]float32{1, 1}},
}

// QuadIndices splits the quad into two CCW triangles.
var QuadIndices = [6]uint16{
	0, 1, 2,
	2, 3, 0,
}

// quadVertexLayout returns the per-vertex buffer layout shared by every layer.
func quadVertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: vertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // tex_coord
		},
	}
}

// quadVertexData serializes QuadVertices little-endian.
func quadVertexData() []byte {
	data := make([]byte, len(QuadVertices)*vertexStride)
	for i, v := range QuadVertices {
		off := i * vertexStride
		binary.LittleEndian.PutUint32(data[off+0:], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(data[off+4:], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(data[off+8:], math.Float32bits(v.TexCoord[0]))
		binary.LittleEndian.PutUint32(data[off+12:], math.Float32bits(v.TexCoord[1]))
	}
	return data
}

// quadIndexData serializes QuadIndices as uint16, padded to a 4-byte multiple.
func quadIndexData() []byte {
	n := len(QuadIndices) * 2
	data := make([]byte, (n+3)&^3)
	for i, idx := range QuadIndices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	return data
}

// quadBuffers holds the immutable quad mesh uploaded for one layer.
type quadBuffers struct {
	vertBuf    hal.Buffer
	idxBuf     hal.Buffer
	indexCount uint32
}

// createQuadBuffers uploads the quad mesh into vertex and index buffers.
func createQuadBuffers(device hal.Device, queue hal.Queue, label string) (*quadBuffers, error) {
	vdata := quadVertexData()
	vertBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_vertices",
		Size:  uint64(len(vdata)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s vertex buffer: %w", label, err)
	}
	if err := queue.WriteBuffer(vertBuf, 0, vdata); err != nil {
		device.DestroyBuffer(vertBuf)
		return nil, fmt.Errorf("upload %s vertices: %w", label, err)
	}

	idata := quadIndexData()
	idxBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_indices",
		Size:  uint64(len(idata)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		device.DestroyBuffer(vertBuf)
		return nil, fmt.Errorf("create %s index buffer: %w", label, err)
	}
	if err := queue.WriteBuffer(idxBuf, 0, idata); err != nil {
		device.DestroyBuffer(idxBuf)
		device.DestroyBuffer(vertBuf)
		return nil, fmt.Errorf("upload %s indices: %w", label, err)
	}

	return &quadBuffers{
		vertBuf:    vertBuf,
		idxBuf:     idxBuf,
		indexCount: uint32(len(QuadIndices)),
	}, nil
}

// destroy releases both buffers. Safe on a nil receiver.
func (q *quadBuffers) destroy(device hal.Device) {
	if q == nil {
		return
	}
	if q.idxBuf != nil {
		device.DestroyBuffer(q.idxBuf)
		q.idxBuf = nil
	}
	if q.vertBuf != nil {
		device.DestroyBuffer(q.vertBuf)
		q.vertBuf = nil
	}
}
