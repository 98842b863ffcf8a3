package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFEN is returned when a FEN piece-placement field cannot be parsed.
var ErrInvalidFEN = errors.New("board: invalid FEN placement")

// StartFEN is the piece placement of the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

var fenTypes = map[byte]Type{
	'k': King, 'q': Queen, 'b': Bishop, 'n': Knight, 'r': Rook, 'p': Pawn,
}

// ParseFEN builds a Board from the piece-placement field of a FEN record.
// Only the first space-separated field is read; side to move, castling
// rights and clocks are ignored because the renderer has no use for them.
//
// FEN lists the eighth rank first, which matches rank 0 of Board.
func ParseFEN(fen string) (Board, error) {
	var b Board
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return b, fmt.Errorf("%w: empty input", ErrInvalidFEN)
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != Size {
		return b, fmt.Errorf("%w: %d ranks, want %d", ErrInvalidFEN, len(rows), Size)
	}
	for rank, row := range rows {
		file := 0
		for i := 0; i < len(row); i++ {
			ch := row[i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			color := Black
			lower := ch
			if ch >= 'A' && ch <= 'Z' {
				color = White
				lower = ch + ('a' - 'A')
			}
			t, ok := fenTypes[lower]
			if !ok {
				return b, fmt.Errorf("%w: unexpected %q in rank %d", ErrInvalidFEN, ch, rank)
			}
			if file >= Size {
				return b, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank)
			}
			b.Set(file, rank, NewPiece(color, t))
			file++
		}
		if file != Size {
			return b, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, rank, file)
		}
	}
	return b, nil
}

// FEN returns the piece-placement field for b.
func (b *Board) FEN() string {
	var sb strings.Builder
	for rank := 0; rank < Size; rank++ {
		if rank > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for file := 0; file < Size; file++ {
			p, ok := b.At(file, rank)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(fenLetter(p))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}

// fenLetter returns '?' for a type outside the six chess pieces.
func fenLetter(p Piece) byte {
	const letters = "kqbnrp"
	if int(p.Type) >= len(letters) {
		return '?'
	}
	ch := letters[p.Type]
	if p.Color == White {
		ch -= 'a' - 'A'
	}
	return ch
}
