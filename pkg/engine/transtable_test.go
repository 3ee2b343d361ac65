package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabre-chess/sabre/pkg/common"
)

func TestTransTableRoundTrip(t *testing.T) {
	var tt = newTransTable(1)
	var key = uint64(0x123456789abcdef0)
	var move = common.Move(0x1234)

	var _, _, _, _, ok = tt.Read(key)
	assert.False(t, ok)

	tt.Update(key, 7, 150, boundExact, move)
	depth, score, bound, gotMove, ok := tt.Read(key)
	require.True(t, ok)
	assert.Equal(t, 7, depth)
	assert.Equal(t, 150, score)
	assert.Equal(t, boundExact, bound)
	assert.Equal(t, move, gotMove)
}

func TestTransTableReplacement(t *testing.T) {
	var tt = newTransTable(1)
	var key = uint64(0xfeedfacecafebeef)

	tt.Update(key, 10, 50, boundLower, common.Move(1))

	// same position, much shallower, not exact: keep the deep entry
	tt.Update(key, 2, -50, boundLower, common.Move(2))
	depth, score, _, _, ok := tt.Read(key)
	require.True(t, ok)
	assert.Equal(t, 10, depth)
	assert.Equal(t, 50, score)

	// nearly as deep wins
	tt.Update(key, 8, 75, boundLower, common.Move(3))
	depth, score, _, _, ok = tt.Read(key)
	require.True(t, ok)
	assert.Equal(t, 8, depth)
	assert.Equal(t, 75, score)

	// exact always wins for the same position
	tt.Update(key, 1, 33, boundExact, common.Move(4))
	depth, score, _, _, ok = tt.Read(key)
	require.True(t, ok)
	assert.Equal(t, 1, depth)
	assert.Equal(t, 33, score)
}

func TestTransTableAging(t *testing.T) {
	var tt = newTransTable(1)
	var key = uint64(0x0123456789abcdef)
	// same slot, different verification key
	var collision = key ^ (uint64(0xffff) << 40)

	tt.Update(key, 10, 50, boundLower, common.Move(1))

	// fresh entries resist shallower collisions
	tt.Update(collision, 2, 10, boundLower, common.Move(2))
	_, _, _, _, ok := tt.Read(key)
	assert.True(t, ok)

	// stale entries do not
	tt.IncDate()
	tt.Update(collision, 2, 10, boundLower, common.Move(2))
	_, _, _, _, ok = tt.Read(key)
	assert.False(t, ok)
	_, _, _, _, ok = tt.Read(collision)
	assert.True(t, ok)
}

func TestTransTableUtilization(t *testing.T) {
	var tt = newTransTable(1)
	assert.Equal(t, 0.0, tt.Utilization())

	tt.Update(0, 5, 0, boundExact, common.MoveEmpty)
	assert.Greater(t, tt.Utilization(), 0.0)

	// aged entries no longer count as current
	tt.IncDate()
	assert.Equal(t, 0.0, tt.Utilization())
}

func TestTransTableClear(t *testing.T) {
	var tt = newTransTable(1)
	tt.Update(42, 5, 100, boundExact, common.Move(7))
	tt.Clear()
	var _, _, _, _, ok = tt.Read(42)
	assert.False(t, ok)
}

func TestMateScoreAdjustment(t *testing.T) {
	for _, height := range []int{0, 1, 5, 50} {
		var score = winIn(height + 3)
		assert.Equal(t, score, valueFromTT(valueToTT(score, height), height))
		score = lossIn(height + 3)
		assert.Equal(t, score, valueFromTT(valueToTT(score, height), height))
	}
	// plain scores pass through untouched
	assert.Equal(t, 123, valueToTT(123, 10))
	assert.Equal(t, 123, valueFromTT(123, 10))
}
