package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabre-chess/sabre/pkg/common"
)

func findMove(t *testing.T, p *common.Position, lan string) common.Move {
	for _, move := range p.GenerateLegalMoves() {
		if move.String() == lan {
			return move
		}
	}
	t.Fatalf("move %v not found", lan)
	return common.MoveEmpty
}

func newAnalyzerFixture(t *testing.T, fen string) (*Engine, *common.Position) {
	var e = newTestEngine()
	e.Prepare()
	var p, err = common.NewPositionFromFEN(fen)
	require.NoError(t, err)
	e.analyzer.stack[0].position = p
	e.timeManager = newTimeManager(context.Background(), time.Now(),
		common.LimitsType{Infinite: true}, &p)
	t.Cleanup(e.timeManager.Close)
	return e, &p
}

func TestReplyMarginForcedReply(t *testing.T) {
	// after Re8+ the king has a single square
	var e, p = newAnalyzerFixture(t, "7k/7p/8/8/8/8/8/K3R3 w - - 0 1")
	var check = findMove(t, p, "e1e8")
	var quiet = findMove(t, p, "a1b2")

	var forcedMargin, reply = e.analyzer.replyMargin(check, 2)
	assert.Equal(t, marginForced, forcedMargin)
	assert.Equal(t, "h8g7", reply.String())

	var quietMargin, _ = e.analyzer.replyMargin(quiet, 2)
	assert.Less(t, quietMargin, forcedMargin)
	assert.GreaterOrEqual(t, quietMargin, 0)
}

func TestSharpMarginZeroKeepsLine(t *testing.T) {
	var e, p = newAnalyzerFixture(t, "7k/7p/8/8/8/8/8/K3R3 w - - 0 1")
	e.Options.SharpMargin = 0
	e.rootMoves = p.GenerateLegalMoves()
	var quiet = findMove(t, p, "a1b2")
	e.mainLine = mainLine{depth: 5, score: 42, moves: []common.Move{quiet}}

	e.analyzeSharpRoot(5)

	assert.Equal(t, 42, e.mainLine.score)
	require.Len(t, e.mainLine.moves, 1)
	assert.Equal(t, quiet, e.mainLine.moves[0])
}

func TestSharpSelectorPrefersForcingMove(t *testing.T) {
	var e, p = newAnalyzerFixture(t, "7k/7p/8/8/8/8/8/K3R3 w - - 0 1")
	e.Options.SharpMargin = 100
	e.rootMoves = p.GenerateLegalMoves()
	var quiet = findMove(t, p, "a1b2")
	var check = findMove(t, p, "e1e8")
	e.mainLine = mainLine{depth: 3, score: 500, moves: []common.Move{quiet}}

	e.analyzeSharpRoot(3)

	// within a wide margin the checking move wins: it forces the reply
	require.NotEmpty(t, e.mainLine.moves)
	assert.Equal(t, check, e.mainLine.moves[0])
	if len(e.mainLine.moves) > 1 {
		assert.Equal(t, "h8g7", e.mainLine.moves[1].String())
	}
	// the iteration score survives the override; candidate scores only rank
	assert.Equal(t, 500, e.mainLine.score)
	assert.Equal(t, 3, e.mainLine.depth)
}

func TestSharpLineStopsOnRepetition(t *testing.T) {
	var e, p = newAnalyzerFixture(t, "7k/7p/8/8/8/8/8/K3R3 w - - 0 1")
	var check = findMove(t, p, "e1e8")
	var line = e.analyzer.buildLine(check, common.MoveEmpty)
	assert.LessOrEqual(t, len(line), sharpLineMaxLen)
	require.NotEmpty(t, line)
	assert.Equal(t, check, line[0])
}
