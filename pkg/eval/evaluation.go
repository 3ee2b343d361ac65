package eval

import (
	. "github.com/sabre-chess/sabre/pkg/common"
)

const totalPhase = 24

type score struct {
	mid, end int
}

func (s score) add(o score) score {
	return score{s.mid + o.mid, s.end + o.end}
}

func (s score) sub(o score) score {
	return score{s.mid - o.mid, s.end - o.end}
}

var pieceValues = [King + 1]score{
	Pawn:   {82, 94},
	Knight: {337, 281},
	Bishop: {365, 297},
	Rook:   {477, 512},
	Queen:  {1025, 936},
}

var phaseWeights = [King + 1]int{
	Knight: 1, Bishop: 1, Rook: 2, Queen: 4,
}

var (
	bishopPair = score{30, 50}
	tempo      = score{15, 5}
	pst        [King + 1][64]score
)

// EvaluationService is a material plus piece-square evaluator with tapered
// middlegame/endgame blending. It is stateless and safe to share, but each
// search worker builds its own instance.
type EvaluationService struct{}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{}
}

// Evaluate returns a centipawn score from the side to move's point of view.
func (e *EvaluationService) Evaluate(p *Position) int {
	var total score
	var phase int

	for x := p.White; x != 0; x &= x - 1 {
		var sq = FirstOne(x)
		var piece = p.WhatPiece(sq)
		total = total.add(pieceValues[piece]).add(pst[piece][sq])
		phase += phaseWeights[piece]
	}
	for x := p.Black; x != 0; x &= x - 1 {
		var sq = FirstOne(x)
		var piece = p.WhatPiece(sq)
		total = total.sub(pieceValues[piece]).sub(pst[piece][FlipSquare(sq)])
		phase += phaseWeights[piece]
	}

	if PopCount(p.Bishops&p.White) >= 2 {
		total = total.add(bishopPair)
	}
	if PopCount(p.Bishops&p.Black) >= 2 {
		total = total.sub(bishopPair)
	}
	if p.WhiteMove {
		total = total.add(tempo)
	} else {
		total = total.sub(tempo)
	}

	phase = min(phase, totalPhase)
	var result = (total.mid*phase + total.end*(totalPhase-phase)) / totalPhase

	if !p.WhiteMove {
		result = -result
	}
	return result
}

// The tables are built procedurally from centralization and advancement
// terms instead of carrying tuned constants.
func init() {
	var centerDist = func(sq int) int {
		var f = File(sq)
		var r = Rank(sq)
		return max(absDist(f, FileD, FileE), absDist(r, Rank4, Rank5))
	}

	for sq := 0; sq < 64; sq++ {
		var rank = Rank(sq)
		var center = centerDist(sq)

		pst[Pawn][sq] = score{
			mid: 4 * (rank - Rank2),
			end: 8 * (rank - Rank2),
		}
		if (SquareMask[sq]&(FileDMask|FileEMask)) != 0 && (rank == Rank3 || rank == Rank4) {
			pst[Pawn][sq].mid += 12
		}

		pst[Knight][sq] = score{mid: 24 - 12*center, end: 16 - 8*center}
		pst[Bishop][sq] = score{mid: 12 - 6*center, end: 8 - 4*center}
		pst[Rook][sq] = score{mid: 0, end: 0}
		if rank == Rank7 {
			pst[Rook][sq].mid += 20
			pst[Rook][sq].end += 10
		}
		pst[Queen][sq] = score{mid: 4 - 2*center, end: 8 - 4*center}
		pst[King][sq] = score{mid: -12 * (3 - center), end: 12 - 8*center}
		if rank == Rank1 && (File(sq) <= FileC || File(sq) >= FileG) {
			pst[King][sq].mid += 40
		}
	}
}

func absDist(x, lo, hi int) int {
	if x < lo {
		return lo - x
	}
	if x > hi {
		return x - hi
	}
	return 0
}
