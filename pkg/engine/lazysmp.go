package engine

import (
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/sabre-chess/sabre/pkg/common"
)

var errSearchTimeout = errors.New("search timeout")

type searchTask struct {
	depth         int
	startingMove  common.Move // seeds move ordering
	startingScore int         // seeds the aspiration window
}

// lazySmp runs duplicated-effort iterative deepening: every worker searches
// the full tree and convergence happens through the shared table. The
// coordinator loop hands out depths and keeps the deepest finished line.
func lazySmp(e *Engine) {
	e.rootMoves = e.genRootMoves()
	e.mainLine = mainLine{}
	if len(e.rootMoves) == 0 {
		// checkmated or stalemated at the root
		if e.threads[0].stack[0].position.IsCheck() {
			e.mainLine.score = lossIn(0)
		}
		return
	}
	// fallback before any iteration completes: a legal move is
	// always reportable
	e.mainLine = mainLine{
		depth: 0,
		score: 0,
		moves: []common.Move{e.rootMoves[0]},
	}
	if len(e.rootMoves) <= 1 {
		return
	}

	var tasks = make(chan searchTask)
	var taskResults = make(chan mainLine)

	var g errgroup.Group
	for i := 0; i < e.Options.Threads; i++ {
		var t = &e.threads[i]
		var ml = cloneMoves(e.rootMoves)
		g.Go(func() error {
			searchWorker(t, ml, tasks, taskResults)
			return nil
		})
	}

	go func() {
		g.Wait()
		close(taskResults)
	}()

	iterativeDeepening(e, tasks, taskResults)
}

func iterativeDeepening(
	e *Engine,
	tasks chan<- searchTask,
	taskResults <-chan mainLine,
) {
	var searchCountByDepth [stackSize]int
	for {
		var task = searchTask{
			depth:         e.mainLine.depth + 1,
			startingMove:  e.mainLine.moves[0],
			startingScore: e.mainLine.score,
		}
		if task.depth < len(searchCountByDepth) &&
			searchCountByDepth[task.depth] >= (e.Options.Threads+1)/2 {
			// enough workers on this depth already, send the rest deeper
			task.depth = e.mainLine.depth + 2
		}

		if task.depth > maxHeight || e.timeManager.IsDone() {
			if tasks != nil {
				close(tasks)
				tasks = nil
			}
		}

		select {
		case taskResult, ok := <-taskResults:
			if !ok {
				// all workers done
				return
			}
			e.mainLine.nodes += taskResult.nodes
			if taskResult.depth > e.mainLine.depth {
				e.mainLine.depth = taskResult.depth
				e.mainLine.score = taskResult.score
				e.mainLine.moves = taskResult.moves
				e.analyzeSharpRoot(taskResult.depth)
				e.timeManager.OnIterationComplete(e.mainLine)
				if e.progress != nil && e.mainLine.nodes >= int64(e.Options.ProgressMinNodes) {
					e.progress(e.currentSearchResult())
				}
			}
		case tasks <- task:
			searchCountByDepth[task.depth]++
		}
	}
}

func searchWorker(
	t *thread,
	ml []common.Move,
	tasks <-chan searchTask,
	taskResults chan<- mainLine,
) {
	defer func() {
		if r := recover(); r != nil {
			if r == errSearchTimeout {
				return
			}
			// a broken worker drops out; the remaining workers finish
			// the search
			t.engine.logger.Error().Interface("panic", r).Msg("search worker failed")
		}
	}()

	for h := 0; h <= 2; h++ {
		t.stack[h].killer1 = common.MoveEmpty
		t.stack[h].killer2 = common.MoveEmpty
	}

	const height = 0
	for task := range tasks {
		if task.startingMove != common.MoveEmpty {
			if index := findMoveIndex(ml, task.startingMove); index >= 0 {
				moveToBegin(ml, index)
			}
		}
		var score = aspirationWindow(t, ml, task.depth, task.startingScore)
		taskResults <- mainLine{
			depth: task.depth,
			score: score,
			moves: t.stack[height].pv.toSlice(),
			nodes: t.nodes,
		}
		t.nodes = 0
	}
}
