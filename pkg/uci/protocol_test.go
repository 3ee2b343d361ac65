package uci

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabre-chess/sabre/pkg/common"
)

type stubEngine struct {
	prepared   int
	cleared    int
	ponderHits int
}

func (e *stubEngine) Prepare() { e.prepared++ }
func (e *stubEngine) Clear()   { e.cleared++ }
func (e *stubEngine) Search(ctx context.Context, searchParams common.SearchParams) common.SearchInfo {
	return common.SearchInfo{}
}
func (e *stubEngine) PonderHit() { e.ponderHits++ }

func newTestProtocol() (*Protocol, *stubEngine) {
	var eng = &stubEngine{}
	return New("test", "author", "dev", eng, zerolog.Nop(), nil), eng
}

func TestParseLimits(t *testing.T) {
	var limits = parseLimits(strings.Fields(
		"wtime 300000 btime 300000 winc 2000 binc 2000 movestogo 40"))
	assert.Equal(t, 300000, limits.WhiteTime)
	assert.Equal(t, 300000, limits.BlackTime)
	assert.Equal(t, 2000, limits.WhiteIncrement)
	assert.Equal(t, 2000, limits.BlackIncrement)
	assert.Equal(t, 40, limits.MovesToGo)

	limits = parseLimits(strings.Fields("ponder wtime 1000 btime 1000"))
	assert.True(t, limits.Ponder)

	limits = parseLimits(strings.Fields("movetime 5000"))
	assert.Equal(t, 5000, limits.MoveTime)

	limits = parseLimits(strings.Fields("infinite"))
	assert.True(t, limits.Infinite)

	limits = parseLimits(strings.Fields("depth 12 nodes 100000"))
	assert.Equal(t, 12, limits.Depth)
	assert.Equal(t, 100000, limits.Nodes)
}

func TestParseLimitsTruncated(t *testing.T) {
	// a value token with no value must parse as zero, not read past the end
	assert.NotPanics(t, func() {
		var limits = parseLimits(strings.Fields("depth"))
		assert.Equal(t, 0, limits.Depth)
		limits = parseLimits(strings.Fields("wtime 1000 btime"))
		assert.Equal(t, 1000, limits.WhiteTime)
		assert.Equal(t, 0, limits.BlackTime)
	})
}

func TestBestmoveToUci(t *testing.T) {
	var p, _ = common.NewPositionFromFEN(common.InitialPositionFen)
	var legal = p.GenerateLegalMoves()
	require.GreaterOrEqual(t, len(legal), 2)

	assert.Equal(t, "bestmove "+legal[0].String(),
		bestmoveToUci(common.SearchInfo{MainLine: legal[:1]}))
	assert.Equal(t,
		"bestmove "+legal[0].String()+" ponder "+legal[1].String(),
		bestmoveToUci(common.SearchInfo{MainLine: legal[:2]}))
	// no legal moves: a null move keeps the GUI from waiting forever
	assert.Equal(t, "bestmove 0000", bestmoveToUci(common.SearchInfo{}))
}

func TestParseSetOption(t *testing.T) {
	var name, value, ok = parseSetOption(strings.Fields("name Hash value 128"))
	require.True(t, ok)
	assert.Equal(t, "Hash", name)
	assert.Equal(t, "128", value)

	name, value, ok = parseSetOption(strings.Fields("name Clear Hash"))
	require.True(t, ok)
	assert.Equal(t, "Clear Hash", name)
	assert.Equal(t, "", value)

	_, _, ok = parseSetOption(strings.Fields("Hash 128"))
	assert.False(t, ok)
}

func TestPositionCommand(t *testing.T) {
	var uci, _ = newTestProtocol()

	var err = uci.positionCommand(strings.Fields("startpos moves e2e4 e7e5"))
	require.NoError(t, err)
	assert.Len(t, uci.positions, 3)

	err = uci.positionCommand(strings.Fields(
		"fen r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"))
	require.NoError(t, err)
	assert.Len(t, uci.positions, 1)

	err = uci.positionCommand(strings.Fields("startpos moves e2e5"))
	assert.Error(t, err)

	err = uci.positionCommand(strings.Fields("fen not a position"))
	assert.Error(t, err)
}

func TestSetOptionCommand(t *testing.T) {
	var eng = &stubEngine{}
	var hash = 16
	var uci = New("test", "author", "dev", eng, zerolog.Nop(), []Option{
		&IntOption{Name: "Hash", Min: 4, Max: 1024, Value: &hash},
		&ButtonOption{Name: "Clear Hash", Action: eng.Clear},
	})

	require.NoError(t, uci.handle("setoption name Hash value 256"))
	assert.Equal(t, 256, hash)

	assert.Error(t, uci.handle("setoption name Hash value 9999"))
	assert.Equal(t, 256, hash)

	require.NoError(t, uci.handle("setoption name Clear Hash"))
	assert.Equal(t, 1, eng.cleared)

	assert.Error(t, uci.handle("setoption name Unknown value 1"))
}

func TestPonderHitForwarded(t *testing.T) {
	var uci, eng = newTestProtocol()
	uci.thinking = true
	uci.cancel = func() {}
	require.NoError(t, uci.handle("ponderhit"))
	assert.Equal(t, 1, eng.ponderHits)

	// outside a search it is a no-op
	uci.thinking = false
	require.NoError(t, uci.handle("ponderhit"))
	assert.Equal(t, 1, eng.ponderHits)
}

func TestSearchInfoToUci(t *testing.T) {
	var p, _ = common.NewPositionFromFEN(common.InitialPositionFen)
	var legal = p.GenerateLegalMoves()
	require.NotEmpty(t, legal)

	var line = searchInfoToUci(common.SearchInfo{
		Depth:    10,
		Score:    common.UciScore{Centipawns: 35},
		Nodes:    1_000_000,
		Time:     time.Second,
		Hashfull: 42,
		MainLine: legal[:1],
	})
	assert.Contains(t, line, "info depth 10")
	assert.Contains(t, line, "score cp 35")
	assert.Contains(t, line, "nodes 1000000")
	assert.Contains(t, line, "hashfull 42")
	assert.Contains(t, line, "pv "+legal[0].String())

	line = searchInfoToUci(common.SearchInfo{
		Depth: 20,
		Score: common.UciScore{Mate: 3},
	})
	assert.Contains(t, line, "score mate 3")
}
