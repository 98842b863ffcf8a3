// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"encoding/binary"
	"testing"
)

func TestQuadTrianglesAreCounterClockwise(t *testing.T) {
	for tri := 0; tri < len(QuadIndices); tri += 3 {
		a := QuadVertices[QuadIndices[tri]].Position
		b := QuadVertices[QuadIndices[tri+1]].Position
		c := QuadVertices[QuadIndices[tri+2]].Position
		area := (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
		if area <= 0 {
			t.Errorf("triangle %d has signed area %v, want > 0 (CCW)", tri/3, area)
		}
	}
}

func TestQuadTexCoordsFollowPosition(t *testing.T) {
	for i, v := range QuadVertices {
		wantU := (v.Position[0] + 1) / 2
		wantV := (v.Position[1] + 1) / 2
		if v.TexCoord[0] != wantU || v.TexCoord[1] != wantV {
			t.Errorf("vertex %d texcoord = %v, want [%v %v]", i, v.TexCoord, wantU, wantV)
		}
	}
}

func TestQuadData(t *testing.T) {
	vdata := quadVertexData()
	if len(vdata) != len(QuadVertices)*vertexStride {
		t.Errorf("vertex data len = %d, want %d", len(vdata), len(QuadVertices)*vertexStride)
	}

	idata := quadIndexData()
	if len(idata)%4 != 0 {
		t.Errorf("index data len %d is not 4-byte aligned", len(idata))
	}
	for i, want := range QuadIndices {
		if got := binary.LittleEndian.Uint16(idata[i*2:]); got != want {
			t.Errorf("index %d = %d, want %d", i, got, want)
		}
	}
}
