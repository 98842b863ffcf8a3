// Package board defines the chessboard snapshot consumed by the renderer.
//
// A Board is a plain 8x8 value. The renderer borrows it for one frame and
// never mutates it; populating it (from a game engine, a FEN string or the
// standard starting position) is the caller's job. No chess rules live here.
//
// Coordinates are (file, rank) with file 0 = the a-file and rank 0 = the
// black back rank, which is drawn at the top of the screen:
//
//	rank 0   r n b q k b n r
//	rank 1   p p p p p p p p
//	...
//	rank 6   P P P P P P P P
//	rank 7   R N B Q K B N R
package board

import "fmt"

// Size is the number of files and ranks.
const Size = 8

// Color is the side a piece belongs to. The ordinal selects the atlas row.
type Color uint8

const (
	// Black pieces occupy atlas row 0.
	Black Color = iota
	// White pieces occupy atlas row 1.
	White
)

// NumColors is the number of piece colors (atlas rows).
const NumColors = 2

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return fmt.Sprintf("Color(%d)", c)
	}
}

// Type is the kind of a piece. The ordinal selects the atlas column.
type Type uint8

const (
	King Type = iota
	Queen
	Bishop
	Knight
	Rook
	Pawn
)

// NumTypes is the number of piece types (atlas columns).
const NumTypes = 6

var typeNames = [NumTypes]string{"king", "queen", "bishop", "knight", "rook", "pawn"}

// String returns the type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Piece is an immutable (color, type) pair with value semantics.
type Piece struct {
	Color Color
	Type  Type
}

// NewPiece returns a piece of the given color and type.
func NewPiece(c Color, t Type) Piece {
	return Piece{Color: c, Type: t}
}

// String returns e.g. "white knight".
func (p Piece) String() string {
	return p.Color.String() + " " + p.Type.String()
}

// square is one board cell.
type square struct {
	piece    Piece
	occupied bool
}

// Board is an 8x8 grid of optional pieces. The zero value is an empty board.
// Board is a value type; copying it copies every square.
type Board struct {
	squares [Size][Size]square // [rank][file]
}

// inBounds reports whether (file, rank) addresses a square.
func inBounds(file, rank int) bool {
	return file >= 0 && file < Size && rank >= 0 && rank < Size
}

// At returns the piece on (file, rank) and whether the square is occupied.
// Out-of-range coordinates report an empty square.
func (b *Board) At(file, rank int) (Piece, bool) {
	if !inBounds(file, rank) {
		return Piece{}, false
	}
	sq := b.squares[rank][file]
	return sq.piece, sq.occupied
}

// Set places p on (file, rank), replacing any previous piece.
// It panics if the coordinates are outside the board.
func (b *Board) Set(file, rank int, p Piece) {
	if !inBounds(file, rank) {
		panic(fmt.Sprintf("board: square (%d, %d) out of range", file, rank))
	}
	b.squares[rank][file] = square{piece: p, occupied: true}
}

// Clear empties (file, rank). Out-of-range coordinates are ignored.
func (b *Board) Clear(file, rank int) {
	if inBounds(file, rank) {
		b.squares[rank][file] = square{}
	}
}

// Count returns the number of occupied squares.
func (b *Board) Count() int {
	n := 0
	for rank := range b.squares {
		for file := range b.squares[rank] {
			if b.squares[rank][file].occupied {
				n++
			}
		}
	}
	return n
}

// backRank is the piece order on both back ranks, a-file first.
var backRank = [Size]Type{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Default returns the standard starting position.
func Default() Board {
	var b Board
	for file := 0; file < Size; file++ {
		b.Set(file, 0, NewPiece(Black, backRank[file]))
		b.Set(file, 1, NewPiece(Black, Pawn))
		b.Set(file, 6, NewPiece(White, Pawn))
		b.Set(file, 7, NewPiece(White, backRank[file]))
	}
	return b
}
