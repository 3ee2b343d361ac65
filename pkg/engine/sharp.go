package engine

import (
	. "github.com/sabre-chess/sabre/pkg/common"
)

const (
	// a sole (or absent) legal reply outranks any scored margin
	marginForced = 2 * valueInfinity

	sharpOwnDepthMax   = 4
	sharpReplyDepthMax = 3
	sharpLineMaxLen    = 16
)

// analyzeSharpRoot re-ranks the root moves after a finished iteration:
// among moves scoring within SharpMargin of the best one, it prefers the
// move that leaves the opponent the narrowest choice of good replies.
// Margin 0 keeps the plain best line untouched. Runs on the dedicated
// analyzer thread, off the worker pool; scores come from the shared table
// where possible and from shallow targeted searches otherwise.
func (e *Engine) analyzeSharpRoot(depth int) {
	if e.Options.SharpMargin <= 0 || len(e.rootMoves) < 2 {
		return
	}
	if len(e.mainLine.moves) == 0 {
		return
	}

	var t = e.analyzer
	defer func() {
		e.mainLine.nodes += t.nodes
		t.nodes = 0
		if r := recover(); r != nil && r != errSearchTimeout {
			panic(r)
		}
	}()

	for h := 0; h <= 2; h++ {
		t.stack[h].killer1 = MoveEmpty
		t.stack[h].killer2 = MoveEmpty
	}

	var ownDepth = max(1, min(depth-1, sharpOwnDepthMax))
	var replyDepth = max(1, min(depth-2, sharpReplyDepthMax))

	type candidate struct {
		move     Move
		ownScore int
	}

	var bestScore = -valueInfinity
	var scored = make([]candidate, 0, len(e.rootMoves))
	for _, move := range e.rootMoves {
		if !t.makeMove(move, 0) {
			continue
		}
		var score = -t.scoreAt(1, ownDepth)
		scored = append(scored, candidate{move: move, ownScore: score})
		bestScore = max(bestScore, score)
	}

	var threshold = bestScore - e.Options.SharpMargin
	var chosen Move
	var chosenScore, chosenMargin = -valueInfinity, -valueInfinity
	var chosenReply Move
	for _, cand := range scored {
		if cand.ownScore < threshold {
			continue
		}
		var margin, reply = t.replyMargin(cand.move, replyDepth)
		if margin > chosenMargin ||
			margin == chosenMargin && cand.ownScore > chosenScore {
			chosen = cand.move
			chosenScore = cand.ownScore
			chosenMargin = margin
			chosenReply = reply
		}
	}
	if chosen == MoveEmpty {
		return
	}
	if chosen == e.mainLine.moves[0] {
		// the selector agrees with the search; the deeper line stands
		return
	}

	// the shallow candidate scores only rank the moves; the iteration
	// score keeps seeding aspiration windows and reporting
	e.mainLine.moves = t.buildLine(chosen, chosenReply)
}

// replyMargin measures how committal a root move is for the opponent: the
// gap between their best and second-best answers. No choice at all counts
// as maximally forcing.
func (t *thread) replyMargin(move Move, depth int) (margin int, bestReply Move) {
	if !t.makeMove(move, 0) {
		return -valueInfinity, MoveEmpty
	}
	var parent = &t.stack[1].position

	var best1, best2 = -valueInfinity, -valueInfinity
	var legal = 0
	var ml = parent.GenerateMoves(t.stack[1].moveList[:])
	for i := range ml {
		if !t.makeMove(ml[i].Move, 1) {
			continue
		}
		legal++
		var score = -t.scoreAt(2, depth)
		if score > best1 {
			best1, best2 = score, best1
			bestReply = ml[i].Move
		} else if score > best2 {
			best2 = score
		}
	}
	if legal <= 1 {
		return marginForced, bestReply
	}
	return best1 - best2, bestReply
}

// scoreAt scores the position at the given stack height, from the table
// when a deep enough exact entry exists, by a shallow search otherwise.
func (t *thread) scoreAt(height, depth int) int {
	var position = &t.stack[height].position
	var ttDepth, ttValue, ttBound, _, ttHit = t.engine.transTable.Read(position.Key)
	if ttHit && ttDepth >= depth && ttBound == boundExact {
		return valueFromTT(ttValue, height)
	}
	return t.alphaBeta(-valueInfinity, valueInfinity, depth, height, 0)
}

// buildLine assembles the reported line: the chosen move, the opponent's
// best reply, then the continuation the table suggests, cut at the first
// repetition or illegal suggestion.
func (t *thread) buildLine(move, reply Move) []Move {
	var result = []Move{move}
	if !t.makeMove(move, 0) {
		return result
	}
	var height = 1
	if reply != MoveEmpty {
		if !t.makeMove(reply, height) {
			return result
		}
		result = append(result, reply)
		height++
	}

	var seen = map[uint64]bool{t.stack[0].position.Key: true}
	for len(result) < sharpLineMaxLen && height+1 < stackSize {
		var position = &t.stack[height].position
		if seen[position.Key] {
			break
		}
		seen[position.Key] = true
		var _, _, _, ttMove, ttHit = t.engine.transTable.Read(position.Key)
		if !ttHit || ttMove == MoveEmpty {
			break
		}
		if !t.makeMove(ttMove, height) {
			break
		}
		result = append(result, ttMove)
		height++
	}
	return result
}
