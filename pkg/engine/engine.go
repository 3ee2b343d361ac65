package engine

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	. "github.com/sabre-chess/sabre/pkg/common"
)

// Evaluator scores a position in centipawns from the side to move's point
// of view. Implementations must be safe to build once per worker.
type Evaluator interface {
	Evaluate(p *Position) int
}

type Options struct {
	Hash             int
	Threads          int
	SharpMargin      int
	ProgressMinNodes int

	AspirationWindows bool
	NullMovePruning   bool
	ReverseFutility   bool
	Probcut           bool
	Lmp               bool
	Futility          bool
	See               bool
	CheckExt          bool

	reductions [64][64]int
}

func NewOptions() Options {
	var result = Options{
		Hash:             16,
		Threads:          1,
		SharpMargin:      30,
		ProgressMinNodes: 200_000,

		AspirationWindows: true,
		NullMovePruning:   true,
		ReverseFutility:   true,
		Probcut:           true,
		Lmp:               true,
		Futility:          true,
		See:               true,
		CheckExt:          true,
	}
	result.initLmr()
	return result
}

func (o *Options) Lmr(d, m int) int {
	return o.reductions[min(d, 63)][min(m, 63)]
}

func (o *Options) initLmr() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			o.reductions[d][m] = int(lmrMult(float64(d), float64(m)))
		}
	}
}

func lmrMult(d, m float64) float64 {
	return lirp(math.Log(d)*math.Log(m), math.Log(5)*math.Log(22), math.Log(63)*math.Log(63), 3, 8)
}

func lirp(x, x1, x2, y1, y2 float64) float64 {
	return y1 + (y2-y1)*(x-x1)/(x2-x1)
}

type Engine struct {
	Options     Options
	evalBuilder func() Evaluator
	logger      zerolog.Logger
	timeManager *timeManager
	transTable  *transTable
	historyKeys map[uint64]int
	threads     []thread
	analyzer    *thread
	progress    func(SearchInfo)
	rootMoves   []Move
	mainLine    mainLine
	start       time.Time
}

// thread is the private state of one search worker: its slice of the game
// tree (the stack of positions), its move ordering heuristics and its node
// counter. Nothing here is shared; workers meet only in the table.
type thread struct {
	engine              *Engine
	evaluator           Evaluator
	nodes               int64
	rootDepth           int
	mainHistory         [8192]int16
	continuationHistory [1024][1024]int16
	stack               [stackSize]struct {
		position       Position
		moveList       [MaxMoves]OrderedMove
		quietsSearched [MaxMoves]Move
		pv             pv
		staticEval     int
		killer1        Move
		killer2        Move
	}
}

type pv struct {
	items [stackSize]Move
	size  int
}

type mainLine struct {
	moves []Move
	score int
	depth int
	nodes int64
}

func NewEngine(evalBuilder func() Evaluator, logger zerolog.Logger) *Engine {
	return &Engine{
		Options:     NewOptions(),
		evalBuilder: evalBuilder,
		logger:      logger,
	}
}

// Prepare allocates the table and worker state lazily, so option changes
// between searches take effect without restarting the process.
func (e *Engine) Prepare() {
	if e.transTable == nil || e.transTable.Size() != e.Options.Hash {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		e.transTable = newTransTable(e.Options.Hash)
		e.logger.Debug().Int("megabytes", e.Options.Hash).
			Int("entries", len(e.transTable.entries)).
			Msg("transposition table allocated")
	}
	if len(e.threads) != e.Options.Threads {
		e.threads = make([]thread, e.Options.Threads)
		for i := range e.threads {
			var t = &e.threads[i]
			t.engine = e
			t.evaluator = e.evalBuilder()
		}
	}
	if e.analyzer == nil {
		e.analyzer = &thread{engine: e, evaluator: e.evalBuilder()}
	}
}

func (e *Engine) Search(ctx context.Context, searchParams SearchParams) SearchInfo {
	e.start = time.Now()
	e.Prepare()
	var p = &searchParams.Positions[len(searchParams.Positions)-1]
	e.timeManager = newTimeManager(ctx, e.start, searchParams.Limits, p)
	defer e.timeManager.Close()

	e.transTable.IncDate()
	e.historyKeys = getHistoryKeys(searchParams.Positions)
	for i := range e.threads {
		var t = &e.threads[i]
		t.nodes = 0
		t.stack[0].position = *p
	}
	e.analyzer.nodes = 0
	e.analyzer.stack[0].position = *p
	e.progress = searchParams.Progress

	lazySmp(e)

	e.transTable.LogStats(e.logger)
	return e.currentSearchResult()
}

// PonderHit starts the clock on a search that was launched speculatively.
func (e *Engine) PonderHit() {
	if e.timeManager != nil {
		e.timeManager.PonderHit()
	}
}

func getHistoryKeys(positions []Position) map[uint64]int {
	var result = make(map[uint64]int)
	for i := len(positions) - 1; i >= 0; i-- {
		var p = &positions[i]
		result[p.Key]++
		if p.Rule50 == 0 {
			break
		}
	}
	return result
}

func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	for i := range e.threads {
		e.threads[i].clearHistory()
	}
	if e.analyzer != nil {
		e.analyzer.clearHistory()
	}
}

func (e *Engine) currentSearchResult() SearchInfo {
	return SearchInfo{
		Depth:    e.mainLine.depth,
		MainLine: e.mainLine.moves,
		Score:    newUciScore(e.mainLine.score),
		Nodes:    e.mainLine.nodes,
		Time:     time.Since(e.start),
		Hashfull: int(1000 * e.transTable.Utilization()),
	}
}

func (e *Engine) genRootMoves() []Move {
	var t = &e.threads[0]
	const height = 0
	var p = &t.stack[height].position
	var _, _, _, transMove, _ = e.transTable.Read(p.Key)

	var mi = t.initMoveIterator(height, transMove)

	var result []Move
	var child = &t.stack[height+1].position
	for mi.Reset(); ; {
		var move = mi.Next()
		if move == MoveEmpty {
			break
		}
		if p.MakeMove(move, child) {
			result = append(result, move)
		}
	}
	return result
}

func (pv *pv) clear() {
	pv.size = 0
}

func (pv *pv) assign(m Move, child *pv) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		pv.size += child.size
		copy(pv.items[1:], child.items[:child.size])
	}
}

func (pv *pv) toSlice() []Move {
	var result = make([]Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}
