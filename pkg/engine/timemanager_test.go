package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabre-chess/sabre/pkg/common"
)

func TestTimeBands(t *testing.T) {
	assert.Equal(t, 0, timeBand(300*time.Millisecond))
	assert.Equal(t, 1, timeBand(700*time.Millisecond))
	assert.Equal(t, 2, timeBand(1500*time.Millisecond))
	assert.Equal(t, 3, timeBand(3*time.Second))
	assert.Equal(t, 4, timeBand(time.Minute))
}

func TestPhaseEstimation(t *testing.T) {
	var initial, err = common.NewPositionFromFEN(common.InitialPositionFen)
	require.NoError(t, err)
	assert.Equal(t, phaseOpening, detectPhase(&initial))

	var endgame, _ = common.NewPositionFromFEN("4k3/pppp4/8/8/8/8/PPPP4/4K3 w - - 0 1")
	assert.Equal(t, phaseEndgame, detectPhase(&endgame))

	var late, _ = common.NewPositionFromFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	assert.Equal(t, phaseLateEndgame, detectPhase(&late))

	assert.Equal(t, defaultGameLen+movesBuffer, estimateMovesToGo(phaseOpening))
	assert.Equal(t, minMovesToGo+movesBuffer+1, estimateMovesToGo(phaseLateEndgame))
}

func TestCalcLimits(t *testing.T) {
	var p, err = common.NewPositionFromFEN(common.InitialPositionFen)
	require.NoError(t, err)

	var budget, soft, hard = calcLimits(time.Minute, 0, 0, &p)
	assert.Greater(t, budget, time.Duration(0))
	assert.Greater(t, soft, time.Duration(0))
	assert.GreaterOrEqual(t, hard, soft)
	assert.LessOrEqual(t, hard, time.Minute-minReserve)

	// a near-empty clock still yields a usable budget under the reserve
	budget, soft, hard = calcLimits(200*time.Millisecond, 0, 0, &p)
	assert.Greater(t, budget, time.Duration(0))
	assert.LessOrEqual(t, hard, 200*time.Millisecond-minReserve)
	assert.LessOrEqual(t, soft, hard)

	// movestogo from the GUI overrides the estimate
	var _, softFew, _ = calcLimits(time.Minute, 0, 2, &p)
	var _, softMany, _ = calcLimits(time.Minute, 0, 40, &p)
	assert.Greater(t, softFew, softMany)
}

func TestHardLimitAuthority(t *testing.T) {
	var tm = newTimeManager(context.Background(), time.Now(),
		common.LimitsType{MoveTime: 5}, nil)
	defer tm.Close()
	assert.Eventually(t, tm.IsDone, time.Second, time.Millisecond)
}

func TestNodeLimit(t *testing.T) {
	var tm = newTimeManager(context.Background(), time.Now(),
		common.LimitsType{Nodes: 1000}, nil)
	defer tm.Close()
	tm.OnNodesChanged(500)
	assert.False(t, tm.IsDone())
	tm.OnNodesChanged(1500)
	assert.True(t, tm.IsDone())
}

func TestDepthLimit(t *testing.T) {
	var tm = newTimeManager(context.Background(), time.Now(),
		common.LimitsType{Depth: 3}, nil)
	defer tm.Close()
	tm.OnIterationComplete(mainLine{depth: 2})
	assert.False(t, tm.IsDone())
	tm.OnIterationComplete(mainLine{depth: 3})
	assert.True(t, tm.IsDone())
}

func TestMateStopsSearch(t *testing.T) {
	var tm = newTimeManager(context.Background(), time.Now(),
		common.LimitsType{}, nil)
	defer tm.Close()
	tm.OnIterationComplete(mainLine{depth: 10, score: winIn(3)})
	assert.True(t, tm.IsDone())
}

func TestInfiniteIgnoresHeuristics(t *testing.T) {
	var tm = newTimeManager(context.Background(), time.Now(),
		common.LimitsType{Infinite: true}, nil)
	defer tm.Close()
	tm.OnIterationComplete(mainLine{depth: 50, score: winIn(1)})
	assert.False(t, tm.IsDone())
}

func TestPonderDefersClock(t *testing.T) {
	var tm = newTimeManager(context.Background(), time.Now(),
		common.LimitsType{MoveTime: 5, Ponder: true}, nil)
	defer tm.Close()
	time.Sleep(20 * time.Millisecond)
	assert.False(t, tm.IsDone())
	tm.OnIterationComplete(mainLine{depth: 30})
	assert.False(t, tm.IsDone())

	tm.PonderHit()
	assert.Eventually(t, tm.IsDone, time.Second, time.Millisecond)
}

func TestExternalCancel(t *testing.T) {
	var ctx, cancel = context.WithCancel(context.Background())
	var tm = newTimeManager(ctx, time.Now(), common.LimitsType{Infinite: true}, nil)
	defer tm.Close()
	assert.False(t, tm.IsDone())
	cancel()
	assert.True(t, tm.IsDone())
}
