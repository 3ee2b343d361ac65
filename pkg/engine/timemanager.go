package engine

import (
	"context"
	"sync"
	"time"

	. "github.com/sabre-chess/sabre/pkg/common"
)

const (
	moveOverhead   = 50 * time.Millisecond
	minReserve     = 100 * time.Millisecond
	safetyPercent  = 85
	minSearchTime  = 1 * time.Millisecond
	defaultGameLen = 25
	movesBuffer    = 3
	minMovesToGo   = 5
)

type gamePhase int

const (
	phaseOpening gamePhase = iota
	phaseMiddlegame
	phaseEndgame
	phaseLateEndgame
)

// discrete remaining-clock bands; less time means stopping earlier and
// overshooting less
var (
	bandLimits       = []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 5 * time.Second}
	overshootPercent = []int{100, 110, 120, 130, 150}
	earlyStopPercent = []int{70, 80, 85, 90, 95}
)

// timeManager owns every stopping decision of one search call. IsDone is the
// single authoritative predicate; the hard limit is enforced by a timer
// independent of any heuristic.
type timeManager struct {
	start     time.Time
	limits    LimitsType
	budget    time.Duration
	softLimit time.Duration
	hardLimit time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	timer     *time.Timer
	pondering bool
}

func newTimeManager(ctx context.Context, start time.Time,
	limits LimitsType, p *Position) *timeManager {

	var tm = &timeManager{
		start:  start,
		limits: limits,
	}
	tm.ctx, tm.cancel = context.WithCancel(ctx)

	if limits.MoveTime > 0 {
		tm.hardLimit = time.Duration(limits.MoveTime) * time.Millisecond
		tm.softLimit = tm.hardLimit
	} else if limits.WhiteTime > 0 || limits.BlackTime > 0 {
		var main, inc time.Duration
		if p.WhiteMove {
			main = time.Duration(limits.WhiteTime) * time.Millisecond
			inc = time.Duration(limits.WhiteIncrement) * time.Millisecond
		} else {
			main = time.Duration(limits.BlackTime) * time.Millisecond
			inc = time.Duration(limits.BlackIncrement) * time.Millisecond
		}
		tm.budget, tm.softLimit, tm.hardLimit = calcLimits(main, inc, limits.MovesToGo, p)
	}

	tm.pondering = limits.Ponder
	if !tm.pondering {
		tm.armHardLimit()
	}
	return tm
}

func (tm *timeManager) armHardLimit() {
	if tm.hardLimit > 0 {
		tm.mu.Lock()
		tm.timer = time.AfterFunc(time.Until(tm.start.Add(tm.hardLimit)), tm.cancel)
		tm.mu.Unlock()
	}
}

// IsDone is the only cancellation check the search consults.
func (tm *timeManager) IsDone() bool {
	return tm.ctx.Err() != nil
}

// PonderHit converts a speculative search into a timed one: the clock
// starts now.
func (tm *timeManager) PonderHit() {
	tm.mu.Lock()
	if !tm.pondering {
		tm.mu.Unlock()
		return
	}
	tm.pondering = false
	tm.start = time.Now()
	tm.mu.Unlock()
	tm.armHardLimit()
}

func (tm *timeManager) OnNodesChanged(nodes int) {
	if tm.limits.Nodes > 0 && nodes >= tm.limits.Nodes {
		tm.cancel()
	}
}

// OnIterationComplete applies the soft stopping heuristics at the only safe
// boundary: a finished depth.
func (tm *timeManager) OnIterationComplete(line mainLine) {
	tm.mu.Lock()
	var pondering = tm.pondering
	var start = tm.start
	tm.mu.Unlock()
	if pondering || tm.limits.Infinite {
		return
	}
	if tm.limits.Depth != 0 && line.depth >= tm.limits.Depth {
		tm.cancel()
		return
	}
	if line.score >= winIn(line.depth-5) ||
		line.score <= lossIn(line.depth-5) {
		tm.cancel()
		return
	}
	if tm.softLimit != 0 && time.Since(start) >= tm.softLimit {
		tm.cancel()
	}
}

func (tm *timeManager) Close() {
	tm.mu.Lock()
	if tm.timer != nil {
		tm.timer.Stop()
	}
	tm.mu.Unlock()
	tm.cancel()
}

// calcLimits derives the nominal budget from the clock and the position, then
// widens it into a soft and a hard limit by the remaining-time band.
func calcLimits(main, inc time.Duration, movesToGo int, p *Position) (budget, soft, hard time.Duration) {
	var phase = detectPhase(p)
	if movesToGo == 0 {
		movesToGo = estimateMovesToGo(phase)
	}

	budget = main/time.Duration(movesToGo) + inc - moveOverhead
	budget = budget * time.Duration(complexityPercent(p)) / 100
	budget = budget * time.Duration(phasePercent(phase)) / 100
	budget = budget * safetyPercent / 100
	budget = clampDuration(budget, minSearchTime, main-minReserve)

	var band = timeBand(main)
	soft = budget * time.Duration(earlyStopPercent[band]) / 100
	hard = budget * time.Duration(overshootPercent[band]) / 100
	hard = clampDuration(hard, minSearchTime, main-minReserve)
	soft = clampDuration(soft, minSearchTime, hard)
	return budget, soft, hard
}

func timeBand(remaining time.Duration) int {
	for band, limit := range bandLimits {
		if remaining < limit {
			return band
		}
	}
	return len(bandLimits)
}

// detectPhase classifies the game from remaining material.
func detectPhase(p *Position) gamePhase {
	var pieces = PopCount(p.White | p.Black)
	switch {
	case pieces >= 28:
		return phaseOpening
	case pieces >= 20:
		return phaseMiddlegame
	case pieces > 8:
		return phaseEndgame
	default:
		return phaseLateEndgame
	}
}

func estimateMovesToGo(phase gamePhase) int {
	var expected int
	switch phase {
	case phaseOpening:
		expected = defaultGameLen
	case phaseMiddlegame:
		expected = defaultGameLen * 3 / 4
	case phaseEndgame:
		expected = defaultGameLen / 2
	default:
		expected = defaultGameLen / 4
	}
	return max(expected+movesBuffer, minMovesToGo)
}

func phasePercent(phase gamePhase) int {
	switch phase {
	case phaseOpening:
		return 110
	case phaseMiddlegame:
		return 100
	case phaseEndgame:
		return 90
	default:
		return 80
	}
}

// complexityPercent widens or narrows the share of the clock spent on this
// move from cheap position signals.
func complexityPercent(p *Position) int {
	var result = 100
	if p.IsCheck() {
		result = result * 120 / 100
	}
	var legalMoves = len(p.GenerateLegalMoves())
	if legalMoves > 30 {
		result = result * 115 / 100
	} else if legalMoves < 10 {
		result = result * 90 / 100
	}
	if isLateEndgame(p, p.WhiteMove) {
		result = result * 80 / 100
	}
	return result
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
