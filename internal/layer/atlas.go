// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"
	_ "image/png" // default atlas format

	"github.com/gogpu/chessboard/board"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultAtlas is the bundled piece sprite sheet.
//
// Layout (the contract EncodeInstances relies on): board.NumTypes columns in
// type order king, queen, bishop, knight, rook, pawn; board.NumColors rows
// with the white pieces on the top row and the black pieces below.
//
//go:embed assets/pieces.png
var DefaultAtlas []byte

// Atlas errors. Both are fatal: the piece layer cannot exist without its texture.
var (
	// ErrAtlasDecode is returned when the atlas bytes are missing or undecodable.
	ErrAtlasDecode = errors.New("layer: cannot decode piece atlas")

	// ErrAtlasLayout is returned when the atlas does not split into the sprite grid.
	ErrAtlasLayout = errors.New("layer: piece atlas does not fit the sprite grid")
)

// AtlasImage is a decoded atlas ready for upload: tightly packed RGBA rows,
// flipped so that texture row 0 is the bottom image row. With the quad's
// (0,0) texcoord at the bottom-left, the sprites then appear upright and
// atlas row 0 (black) is the bottom image row.
type AtlasImage struct {
	Width, Height uint32
	Pixels        []byte
}

// CellSize returns the pixel size of one sprite.
func (a *AtlasImage) CellSize() (w, h uint32) {
	return a.Width / board.NumTypes, a.Height / board.NumColors
}

// DecodeAtlas decodes a PNG, WebP or BMP sprite sheet.
func DecodeAtlas(data []byte) (*AtlasImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrAtlasDecode)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAtlasDecode, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 || w%board.NumTypes != 0 || h%board.NumColors != 0 {
		return nil, fmt.Errorf("%w: %dx%d is not a multiple of %dx%d",
			ErrAtlasLayout, w, h, board.NumTypes, board.NumColors)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	slogger().Debug("piece atlas decoded", "format", format, "width", w, "height", h)
	return &AtlasImage{
		Width:  uint32(w), //nolint:gosec // image dimensions are positive
		Height: uint32(h), //nolint:gosec // image dimensions are positive
		Pixels: flipRows(rgba.Pix, rgba.Stride, w*4, h),
	}, nil
}

// flipRows copies h rows of rowBytes each from src (with the given stride)
// in reverse order into a tightly packed buffer.
func flipRows(src []byte, stride, rowBytes, h int) []byte {
	dst := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		srcOff := (h - 1 - y) * stride
		copy(dst[y*rowBytes:(y+1)*rowBytes], src[srcOff:srcOff+rowBytes])
	}
	return dst
}
