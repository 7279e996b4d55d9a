package board

import (
	"fmt"
	"strings"
)

// ToSAN converts a move to algebraic notation (e.g., "Nf3", "exd5", "e8=Q").
// There are no check markers: check is not part of these rules.
func (m Move) ToSAN(pos *Position) string {
	if m == NoMove {
		return "-"
	}

	piece := pos.PieceAt(m.From)
	if piece == NoPiece {
		return m.String()
	}

	var sb strings.Builder
	pt := piece.Type()

	if pt != Pawn {
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteString(disambiguation(pos, m, piece))
	}

	if m.IsCapture(pos) {
		if pt == Pawn {
			sb.WriteByte('a' + byte(m.From.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(m.To.String())

	if pt == Pawn && m.To.RelativeRank(piece.Color()) == 7 && m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte("PNBRQK"[m.Promotion])
	}
	return sb.String()
}

// disambiguation returns the file, rank or square needed to tell m apart
// from moves of other pieces of the same kind to the same square.
func disambiguation(pos *Position, m Move, piece Piece) string {
	var candidates []Square
	for _, sq := range pos.pieces[piece.Color()][piece.Type()] {
		if sq == m.From {
			continue
		}
		dests, err := LegalDestinations(pos, sq, piece.Type(), piece.Color())
		if err == nil && dests.Has(m.To) {
			candidates = append(candidates, sq)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range candidates {
		if sq.File() == m.From.File() {
			sameFile = true
		}
		if sq.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	switch {
	case !sameFile:
		return string(rune('a' + m.From.File()))
	case !sameRank:
		return string(rune('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}

// ParseSAN finds the move of color that the algebraic text describes.
func ParseSAN(s string, pos *Position, color Color) (Move, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")

	promo := NoPieceType
	if idx := strings.Index(s, "="); idx >= 0 {
		if idx+1 >= len(s) {
			return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
		}
		pt, err := ParsePieceType(s[idx+1 : idx+2])
		if err != nil || !IsPromotionType(pt) {
			return NoMove, fmt.Errorf("%w: %q: bad promotion", ErrInvalidMove, orig)
		}
		promo = pt
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		i := strings.IndexByte("PNBRQK", s[0])
		if i < 0 {
			return NoMove, fmt.Errorf("%w: %q: unknown piece letter", ErrInvalidMove, orig)
		}
		pt = PieceType(i)
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
	}
	dest, err := Decompose(s[len(s)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %w", ErrInvalidMove, orig, err)
	}
	s = s[:len(s)-2]

	file, rank := -1, -1
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'h':
			file = int(c - 'a')
		case c >= '1' && c <= '8':
			rank = int(c - '1')
		}
	}

	for _, m := range GenerateMoves(pos, color) {
		if m.To != dest || pos.PieceAt(m.From).Type() != pt {
			continue
		}
		if file >= 0 && m.From.File() != file {
			continue
		}
		if rank >= 0 && m.From.Rank() != rank {
			continue
		}
		if isCapture && !m.IsCapture(pos) {
			continue
		}
		if m.IsPromotion() && m.Promotion != promo {
			if promo != NoPieceType || m.Promotion != Queen {
				continue
			}
		}
		return m, nil
	}
	return NoMove, fmt.Errorf("%w: %q: no matching move", ErrInvalidMove, orig)
}

// MovesToSAN converts a sequence of moves, alternating colors from the
// position given, to algebraic notation.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, len(moves))
	p := pos.Copy()
	for i, m := range moves {
		result[i] = m.ToSAN(p)
		p.Apply(m)
	}
	return result
}
