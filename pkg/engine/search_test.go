package engine

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabre-chess/sabre/pkg/common"
	"github.com/sabre-chess/sabre/pkg/eval"
)

func newTestEngine() *Engine {
	var e = NewEngine(func() Evaluator {
		return eval.NewEvaluationService()
	}, zerolog.Nop())
	e.Options.ProgressMinNodes = 0
	return e
}

func searchFEN(t *testing.T, e *Engine, fen string, limits common.LimitsType) common.SearchInfo {
	var p, err = common.NewPositionFromFEN(fen)
	require.NoError(t, err)
	return e.Search(context.Background(), common.SearchParams{
		Positions: []common.Position{p},
		Limits:    limits,
	})
}

func TestSearchMateInOne(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		common.LimitsType{Depth: 5})
	assert.Equal(t, 1, si.Score.Mate)
	require.NotEmpty(t, si.MainLine)
	assert.Equal(t, "a1a8", si.MainLine[0].String())
}

func TestSearchMateInTwo(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e, "2k5/8/8/8/8/8/R7/1R4K1 w - - 0 1",
		common.LimitsType{Depth: 8})
	assert.Equal(t, 2, si.Score.Mate)
}

func TestSearchCheckmatedRoot(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1",
		common.LimitsType{Depth: 3})
	assert.Empty(t, si.MainLine)
	assert.Equal(t, lossIn(0), e.mainLine.score)
}

func TestSearchStalemateRoot(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
		common.LimitsType{Depth: 3})
	assert.Empty(t, si.MainLine)
	assert.Equal(t, 0, si.Score.Mate)
	assert.Equal(t, 0, si.Score.Centipawns)
}

func TestSearchReturnsLegalMove(t *testing.T) {
	var e = newTestEngine()
	var p, err = common.NewPositionFromFEN(common.InitialPositionFen)
	require.NoError(t, err)
	var si = searchFEN(t, e, common.InitialPositionFen,
		common.LimitsType{MoveTime: 20})
	require.NotEmpty(t, si.MainLine)
	assert.Contains(t, p.GenerateLegalMoves(), si.MainLine[0])
}

func TestSearchMultiThreaded(t *testing.T) {
	var e = newTestEngine()
	e.Options.Threads = 4
	var si = searchFEN(t, e, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		common.LimitsType{Depth: 6})
	assert.Equal(t, 1, si.Score.Mate)
	require.NotEmpty(t, si.MainLine)
	assert.Equal(t, "a1a8", si.MainLine[0].String())
}

func TestSearchAvoidsRepetitionWhenWinning(t *testing.T) {
	// up a queen, the engine should not shuffle into a known draw
	var e = newTestEngine()
	var si = searchFEN(t, e, "7k/8/8/8/8/8/Q7/K7 w - - 0 1",
		common.LimitsType{Depth: 6})
	require.NotEmpty(t, si.MainLine)
	assert.Greater(t, si.Score.Centipawns+1000*si.Score.Mate, 0)
}

func TestInsufficientMaterialDraw(t *testing.T) {
	var p, err = common.NewPositionFromFEN("7k/8/8/8/8/8/N7/K7 w - - 0 1")
	require.NoError(t, err)
	assert.True(t, isDraw(&p))

	var p2, _ = common.NewPositionFromFEN("7k/8/8/8/8/8/NN6/K7 w - - 0 1")
	assert.False(t, isDraw(&p2))
}

// identical inputs with a cleared table must reproduce the identical
// search, down to the node count
func TestSearchDeterministicRepeat(t *testing.T) {
	var limits = common.LimitsType{Depth: 4}
	var first = searchFEN(t, newTestEngine(), common.InitialPositionFen, limits)
	var second = searchFEN(t, newTestEngine(), common.InitialPositionFen, limits)

	require.NotEmpty(t, first.MainLine)
	require.NotEmpty(t, second.MainLine)
	assert.Equal(t, first.MainLine[0], second.MainLine[0])
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Nodes, second.Nodes)
}

func TestNodeLimitRespected(t *testing.T) {
	var e = newTestEngine()
	var si = searchFEN(t, e, common.InitialPositionFen,
		common.LimitsType{Nodes: 5000})
	require.NotEmpty(t, si.MainLine)
	// the limit is checked every 256 nodes, allow slack for that grain
	assert.Less(t, si.Nodes, int64(5000+10_000))
}
