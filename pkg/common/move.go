package common

import "strings"

func makeMove(from, to, movingPiece, capturedPiece int) Move {
	return Move(from ^ (to << 6) ^ (movingPiece << 12) ^ (capturedPiece << 15))
}

func makePawnMove(from, to, capturedPiece, promotion int) Move {
	return Move(from ^ (to << 6) ^ (Pawn << 12) ^ (capturedPiece << 15) ^ (promotion << 18))
}

func (m Move) From() int          { return int(m & 63) }
func (m Move) To() int            { return int((m >> 6) & 63) }
func (m Move) MovingPiece() int   { return int((m >> 12) & 7) }
func (m Move) CapturedPiece() int { return int((m >> 15) & 7) }
func (m Move) Promotion() int     { return int((m >> 18) & 7) }

// String renders the move in long algebraic notation ("e2e4", "e7e8q").
func (m Move) String() string {
	if m == MoveEmpty {
		return "0000"
	}
	var promotion = ""
	if m.Promotion() != Empty {
		promotion = string("nbrq"[m.Promotion()-Knight])
	}
	return SquareName(m.From()) + SquareName(m.To()) + promotion
}

// MakeMoveLAN finds the legal move matching a long-algebraic string and
// applies it.
func (p *Position) MakeMoveLAN(lan string) (Position, bool) {
	var buffer [MaxMoves]OrderedMove
	for _, om := range p.GenerateMoves(buffer[:]) {
		if strings.EqualFold(om.Move.String(), lan) {
			var child Position
			if p.MakeMove(om.Move, &child) {
				return child, true
			}
			return Position{}, false
		}
	}
	return Position{}, false
}

func moveToSAN(pos *Position, ml []Move, mv Move) string {
	const pieceNames = "NBRQK"
	if mv == whiteKingSideCastle || mv == blackKingSideCastle {
		return "O-O"
	}
	if mv == whiteQueenSideCastle || mv == blackQueenSideCastle {
		return "O-O-O"
	}
	var piece, capture, from, promotion string
	if mv.MovingPiece() != Pawn {
		piece = string(pieceNames[mv.MovingPiece()-Knight])
	}
	if mv.CapturedPiece() != Empty {
		capture = "x"
		if mv.MovingPiece() == Pawn {
			from = SquareName(mv.From())[:1]
		}
	}
	if mv.Promotion() != Empty {
		promotion = "=" + string(pieceNames[mv.Promotion()-Knight])
	}
	var ambiguity, sameFile, sameRank bool
	for _, other := range ml {
		if other == mv || other.To() != mv.To() ||
			other.MovingPiece() != mv.MovingPiece() ||
			other.From() == mv.From() {
			continue
		}
		ambiguity = true
		if File(other.From()) == File(mv.From()) {
			sameFile = true
		}
		if Rank(other.From()) == Rank(mv.From()) {
			sameRank = true
		}
	}
	if ambiguity {
		if !sameFile {
			from = SquareName(mv.From())[:1]
		} else if !sameRank {
			from = SquareName(mv.From())[1:2]
		} else {
			from = SquareName(mv.From())
		}
	}
	return piece + from + capture + SquareName(mv.To()) + promotion
}

func ParseMoveSAN(pos *Position, san string) Move {
	if index := strings.IndexAny(san, "+#?!"); index >= 0 {
		san = san[:index]
	}
	var ml = pos.GenerateLegalMoves()
	for _, mv := range ml {
		if san == moveToSAN(pos, ml, mv) {
			return mv
		}
	}
	return MoveEmpty
}
