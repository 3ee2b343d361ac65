package engine

import . "github.com/sabre-chess/sabre/pkg/common"

const historyMax = 1 << 14

// historyContext bundles the side to move with the continuation slots of the
// last two plies, so reads and updates address the same tables.
type historyContext struct {
	thread     *thread
	sideToMove bool
	cont1      int
	cont2      int
}

func (h *historyContext) ReadTotal(m Move) int {
	var score = int(h.thread.mainHistory[sideFromToIndex(h.sideToMove, m)])
	var pieceToIndex = pieceSquareIndex(h.sideToMove, m)
	if h.cont1 != -1 {
		score += int(h.thread.continuationHistory[h.cont1][pieceToIndex])
	}
	if h.cont2 != -1 {
		score += int(h.thread.continuationHistory[h.cont2][pieceToIndex])
	}
	return score
}

func (h *historyContext) Update(quietsSearched []Move, bestMove Move, depth int) {
	var bonus = min(depth*depth, 400)
	var t = h.thread
	for _, m := range quietsSearched {
		var good = m == bestMove

		updateHistory(&t.mainHistory[sideFromToIndex(h.sideToMove, m)], bonus, good)
		var pieceToIndex = pieceSquareIndex(h.sideToMove, m)
		if h.cont1 != -1 {
			updateHistory(&t.continuationHistory[h.cont1][pieceToIndex], bonus, good)
		}
		if h.cont2 != -1 {
			updateHistory(&t.continuationHistory[h.cont2][pieceToIndex], bonus, good)
		}

		if good {
			break
		}
	}
}

// exponential moving average towards +-historyMax
func updateHistory(v *int16, bonus int, good bool) {
	var newVal = historyMax
	if !good {
		newVal = -historyMax
	}
	*v += int16((newVal - int(*v)) * bonus / 512)
}

func (t *thread) clearHistory() {
	for i := range t.mainHistory {
		t.mainHistory[i] = 0
	}
	for i := range t.continuationHistory {
		for j := range t.continuationHistory[i] {
			t.continuationHistory[i][j] = 0
		}
	}
}

func (t *thread) getHistoryContext(height int) historyContext {
	var sideToMove = t.stack[height].position.WhiteMove
	var cont1 = -1
	if prev := t.stack[height].position.LastMove; prev != MoveEmpty {
		cont1 = pieceSquareIndex(!sideToMove, prev)
	}
	var cont2 = -1
	if height > 0 {
		if prev := t.stack[height-1].position.LastMove; prev != MoveEmpty {
			cont2 = pieceSquareIndex(sideToMove, prev)
		}
	}
	return historyContext{
		thread:     t,
		sideToMove: sideToMove,
		cont1:      cont1,
		cont2:      cont2,
	}
}

func pieceSquareIndex(side bool, move Move) int {
	var result = (move.MovingPiece() << 6) | move.To()
	if side {
		result |= 1 << 9
	}
	return result
}

func sideFromToIndex(side bool, move Move) int {
	var result = (move.From() << 6) | move.To()
	if side {
		result |= 1 << 12
	}
	return result
}
