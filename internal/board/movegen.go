package board

import "fmt"

// Policy describes how a piece kind moves: the directions it may travel and
// whether it slides along them or takes a single step.
type Policy struct {
	Directions []Direction
	Sliding    bool
}

var (
	orthogonal = []Direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	diagonal   = []Direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	adjacent   = append(append([]Direction{}, orthogonal...), diagonal...)
	knightJump = []Direction{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
)

// policies maps each non-pawn kind to its movement policy. Pawns move
// asymmetrically and have their own routine.
var policies = map[PieceType]Policy{
	Knight: {Directions: knightJump},
	Bishop: {Directions: diagonal, Sliding: true},
	Rook:   {Directions: orthogonal, Sliding: true},
	Queen:  {Directions: adjacent, Sliding: true},
	King:   {Directions: adjacent},
}

// PolicyFor returns the movement policy of a non-pawn kind.
func PolicyFor(pt PieceType) (Policy, bool) {
	p, ok := policies[pt]
	return p, ok
}

// LegalDestinations returns every square a piece of the given kind and color
// standing on sq may move to. The position is only read.
//
// Check, castling and en passant are not considered. The occupant of sq is
// not consulted, so callers may ask about hypothetical pieces.
func LegalDestinations(pos *Position, sq Square, kind PieceType, color Color) (SquareSet, error) {
	if !sq.IsValid() {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCoordinate, sq)
	}
	if color >= NoColor {
		return 0, fmt.Errorf("invalid color: %v", color)
	}
	if kind == Pawn {
		return pawnDestinations(pos, sq, color), nil
	}
	policy, ok := policies[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownPieceKind, kind)
	}
	if policy.Sliding {
		return rayDestinations(pos, sq, color, policy.Directions), nil
	}
	return stepDestinations(pos, sq, color, policy.Directions), nil
}

// Destinations returns the destinations of whatever stands on sq.
// An empty square has none.
func Destinations(pos *Position, sq Square) (SquareSet, error) {
	piece := pos.PieceAt(sq)
	if piece == NoPiece {
		return 0, nil
	}
	return LegalDestinations(pos, sq, piece.Type(), piece.Color())
}

// rayDestinations walks each direction until the edge of the board or the
// first piece. An enemy piece ends the ray and is included; a friendly piece
// ends it and is not.
func rayDestinations(pos *Position, sq Square, color Color, dirs []Direction) SquareSet {
	var set SquareSet
	from := sq.Coord()
	for _, d := range dirs {
		for k := 1; ; k++ {
			c := from.Step(d, k)
			if !c.InBounds() {
				break
			}
			target := c.Square()
			if pos.IsEmpty(target) {
				set = set.Add(target)
				continue
			}
			if pos.IsEnemy(target, color) {
				set = set.Add(target)
			}
			break
		}
	}
	return set
}

// stepDestinations includes each offset square that is on the board and
// not held by a friendly piece.
func stepDestinations(pos *Position, sq Square, color Color, dirs []Direction) SquareSet {
	var set SquareSet
	from := sq.Coord()
	for _, d := range dirs {
		c := from.Step(d, 1)
		if !c.InBounds() {
			continue
		}
		target := c.Square()
		if pos.IsEmpty(target) || pos.IsEnemy(target, color) {
			set = set.Add(target)
		}
	}
	return set
}

// pawnDestinations: one step forward onto an empty square, two from the
// starting rank when both are empty, one diagonal step onto an enemy.
func pawnDestinations(pos *Position, sq Square, color Color) SquareSet {
	var set SquareSet
	forward := Direction{DF: 0, DR: 1}
	if color == Black {
		forward.DR = -1
	}
	from := sq.Coord()

	one := from.Step(forward, 1)
	if one.InBounds() && pos.IsEmpty(one.Square()) {
		set = set.Add(one.Square())
		two := from.Step(forward, 2)
		if sq.RelativeRank(color) == 1 && two.InBounds() && pos.IsEmpty(two.Square()) {
			set = set.Add(two.Square())
		}
	}

	for _, df := range [2]int{-1, 1} {
		c := from.Step(Direction{DF: df, DR: forward.DR}, 1)
		if c.InBounds() && pos.IsEnemy(c.Square(), color) {
			set = set.Add(c.Square())
		}
	}
	return set
}

// GenerateMoves returns every move available to color. A pawn move onto the
// last rank is expanded into one move per promotion kind.
func GenerateMoves(pos *Position, color Color) []Move {
	moves := make([]Move, 0, 48)
	pos.ForEach(color, func(pt PieceType, from Square) {
		dests, err := LegalDestinations(pos, from, pt, color)
		if err != nil {
			return
		}
		for _, to := range dests.Squares() {
			if pt == Pawn && to.RelativeRank(color) == 7 {
				for _, promo := range PromotionTypes {
					moves = append(moves, NewPromotion(from, to, promo))
				}
				continue
			}
			moves = append(moves, NewMove(from, to))
		}
	})
	return moves
}

// Perft counts the leaf nodes of the move tree to the given depth.
func Perft(pos *Position, color Color, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := GenerateMoves(pos, color)
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		child := pos.Copy()
		child.Apply(m)
		nodes += Perft(child, color.Other(), depth-1)
	}
	return nodes
}

// Divide returns the perft count below each root move.
func Divide(pos *Position, color Color, depth int) map[Move]uint64 {
	result := make(map[Move]uint64)
	if depth < 1 {
		return result
	}
	for _, m := range GenerateMoves(pos, color) {
		child := pos.Copy()
		child.Apply(m)
		result[m] = Perft(child, color.Other(), depth-1)
	}
	return result
}
