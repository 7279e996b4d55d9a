package board

// Zobrist keys for hashing placements. Seeded, so hashes are stable
// across runs.
var (
	zobristPiece      [2][6][64]uint64
	zobristSideToMove uint64
)

func init() {
	rng := prng{state: 0x98F107A2BEEF1234}
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	zobristSideToMove = rng.next()
}

type prng struct {
	state uint64
}

// xorshift64*
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// Hash returns the Zobrist hash of the placement with turn to move.
func (p *Position) Hash(turn Color) uint64 {
	var hash uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for _, sq := range p.pieces[c][pt] {
				hash ^= zobristPiece[c][pt][sq]
			}
		}
	}
	if turn == Black {
		hash ^= zobristSideToMove
	}
	return hash
}
