// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/chessboard/board"
	"github.com/gogpu/gputypes"
)

// MaxInstances is the capacity of the piece instance buffer: one record per
// square. The board size is fixed, so the buffer is never resized.
const MaxInstances = board.Size * board.Size

// instanceStride is the byte stride per instance record:
//
//	model columns (4 x vec4<f32>) = 64 bytes (locations 2..5)
//	atlas         (vec2<f32>)     =  8 bytes (location 6)
const instanceStride = 72

// cellScale shrinks the full-viewport quad to one square.
const cellScale = 1.0 / board.Size

// Mat4 is a column-major 4x4 matrix, the memory layout WGSL reads for
// mat4x4<f32>. Element (row r, column c) is at index c*4+r.
type Mat4 [16]float32

// Translation returns a translation by (x, y, z).
func Translation(x, y, z float32) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// UniformScale returns a scale by s on all three axes.
func UniformScale(s float32) Mat4 {
	return Mat4{
		s, 0, 0, 0,
		0, s, 0, 0,
		0, 0, s, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * o, so o is applied to a point first.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * o[c*4+k]
			}
			r[c*4+row] = sum
		}
	}
	return r
}

// Apply transforms the point (x, y, 0, 1) and returns its x and y.
func (m Mat4) Apply(x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}

// BoardCoordToNDC maps a board coordinate in [0,8) to the center of its cell
// in normalized device coordinates: 0 -> -0.875, 7 -> 0.875.
func BoardCoordToNDC(c int) float32 {
	return ((float32(c)+0.5)/board.Size)*2 - 1
}

// Instance is the per-square record consumed by piece.wgsl.
type Instance struct {
	Model Mat4       // places the unit quad on its cell
	Atlas [2]float32 // (type ordinal, color ordinal)
}

// CellTransform returns the model matrix for screen column x and row y,
// with row 0 at the bottom of the viewport.
func CellTransform(x, y int) Mat4 {
	return Translation(BoardCoordToNDC(x), BoardCoordToNDC(y), 0).Mul(UniformScale(cellScale))
}

// AtlasSelector returns the atlas cell of p.
func AtlasSelector(p board.Piece) [2]float32 {
	return [2]float32{float32(p.Type), float32(p.Color)}
}

// EncodeInstances converts the sparse board into dense instance records.
//
// Ranks are walked from 7 down to 0 so that rank 0, the black back rank,
// lands on the top screen row; files run left to right. Empty squares
// produce nothing. The output is deterministic for a given board.
func EncodeInstances(b *board.Board) []Instance {
	return AppendInstances(make([]Instance, 0, MaxInstances), b)
}

// AppendInstances is EncodeInstances appending to dst, so a per-frame slice
// can be reused.
func AppendInstances(dst []Instance, b *board.Board) []Instance {
	start := len(dst)
	for y := 0; y < board.Size; y++ {
		rank := board.Size - 1 - y
		for x := 0; x < board.Size; x++ {
			p, ok := b.At(x, rank)
			if !ok {
				continue
			}
			dst = append(dst, Instance{
				Model: CellTransform(x, y),
				Atlas: AtlasSelector(p),
			})
		}
	}
	if n := len(dst) - start; n > MaxInstances {
		panic(fmt.Sprintf("layer: %d piece instances exceed capacity %d", n, MaxInstances))
	}
	return dst
}

// InstanceBytes serializes instances little-endian in instance-buffer layout.
func InstanceBytes(instances []Instance) []byte {
	data := make([]byte, len(instances)*instanceStride)
	for i := range instances {
		off := i * instanceStride
		for j, v := range instances[i].Model {
			binary.LittleEndian.PutUint32(data[off+j*4:], math.Float32bits(v))
		}
		binary.LittleEndian.PutUint32(data[off+64:], math.Float32bits(instances[i].Atlas[0]))
		binary.LittleEndian.PutUint32(data[off+68:], math.Float32bits(instances[i].Atlas[1]))
	}
	return data
}

// instanceLayout returns the per-instance buffer layout. Matches
// InstanceInput in piece.wgsl.
func instanceLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: instanceStride,
		StepMode:    gputypes.VertexStepModeInstance,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2},  // model column 0
			{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 3}, // model column 1
			{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 4}, // model column 2
			{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 5}, // model column 3
			{Format: gputypes.VertexFormatFloat32x2, Offset: 64, ShaderLocation: 6}, // atlas
		},
	}
}
