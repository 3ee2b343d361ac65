package common

import "time"

const InitialPositionFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

const (
	Empty int = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

const PieceNb = 7 * 2

const (
	SideWhite = iota
	SideBlack
)

const (
	WhiteKingSide = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide
)

const MaxMoves = 256

type Move int32

const MoveEmpty Move = 0

// OrderedMove carries a move and its ordering key so move lists can be
// scored in place without a parallel array.
type OrderedMove struct {
	Move Move
	Key  int32
}

// Position is immutable after construction. MakeMove writes the successor
// into a caller-supplied value (copy-make, no unmake).
type Position struct {
	Pawns, Knights, Bishops, Rooks, Queens, Kings uint64
	White, Black, Checkers                        uint64
	WhiteMove                                     bool
	CastleRights, Rule50, EpSquare                int
	Key                                           uint64
	LastMove                                      Move
}

type LimitsType struct {
	Ponder         bool
	Infinite       bool
	WhiteTime      int
	BlackTime      int
	WhiteIncrement int
	BlackIncrement int
	MoveTime       int
	MovesToGo      int
	Depth          int
	Nodes          int
	Mate           int
}

type SearchParams struct {
	Positions []Position
	Limits    LimitsType
	Progress  func(si SearchInfo)
}

type SearchInfo struct {
	Score    UciScore
	Depth    int
	Nodes    int64
	Time     time.Duration
	Hashfull int
	MainLine []Move
}

type UciScore struct {
	Centipawns int
	Mate       int
}
