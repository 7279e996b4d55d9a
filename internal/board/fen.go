package board

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

// ParseFEN parses the placement and side-to-move fields of a FEN string.
// The side to move defaults to white when absent. Castling, en passant and
// move counters are accepted and ignored.
func ParseFEN(fen string) (*Position, Color, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return nil, NoColor, fmt.Errorf("%w: empty string", ErrInvalidFEN)
	}

	pos := NewEmptyPosition()
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, NoColor, err
	}

	turn := White
	if len(parts) > 1 {
		switch parts[1] {
		case "w":
			turn = White
		case "b":
			turn = Black
		default:
			return nil, NoColor, fmt.Errorf("%w: invalid side to move: %s", ErrInvalidFEN, parts[1])
		}
	}
	return pos, turn, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			if c > unicode.MaxASCII {
				return fmt.Errorf("%w: invalid piece character: %c", ErrInvalidFEN, c)
			}
			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fmt.Errorf("%w: invalid piece character: %c", ErrInvalidFEN, c)
			}
			pos.setPiece(piece, NewSquare(file, rank))
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: invalid number of squares in rank %d: got %d", ErrInvalidFEN, rank+1, file)
		}
	}
	return nil
}

// ToFEN returns the FEN representation of the position with turn to move.
func (p *Position) ToFEN(turn Color) string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if turn == Black {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}
	sb.WriteString(" - - 0 1")
	return sb.String()
}
