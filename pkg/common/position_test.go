package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFenRoundTrip(t *testing.T) {
	var fens = []string{
		InitialPositionFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"4k3/8/8/8/8/8/4P3/4K3 b - - 0 1",
	}
	for _, fen := range fens {
		var p, err = NewPositionFromFEN(fen)
		require.NoError(t, err, fen)
		var p2, err2 = NewPositionFromFEN(p.String())
		require.NoError(t, err2, fen)
		assert.Equal(t, p.Key, p2.Key, fen)
	}
}

func TestFenErrors(t *testing.T) {
	var _, err = NewPositionFromFEN("garbage")
	assert.Error(t, err)
	// both kings required
	_, err = NewPositionFromFEN("8/8/8/8/8/8/8/4K3 w - - 0 1")
	assert.Error(t, err)
}

func TestIncrementalKey(t *testing.T) {
	var p, err = NewPositionFromFEN(InitialPositionFen)
	require.NoError(t, err)
	var moves = []string{"e2e4", "c7c5", "g1f3", "d7d6", "d2d4", "c5d4", "f3d4"}
	for _, lan := range moves {
		var next, ok = p.MakeMoveLAN(lan)
		require.True(t, ok, lan)
		assert.Equal(t, next.computeKey(), next.Key, lan)
		p = next
	}
}

func TestMakeMoveLegality(t *testing.T) {
	// pinned knight cannot move
	var p, err = NewPositionFromFEN("4k3/8/8/b7/8/2N5/8/4K3 w - - 0 1")
	require.NoError(t, err)
	var _, ok = p.MakeMoveLAN("c3d5")
	assert.False(t, ok)
}

func TestParseMoveSAN(t *testing.T) {
	var p, err = NewPositionFromFEN(InitialPositionFen)
	require.NoError(t, err)
	assert.Equal(t, "g1f3", ParseMoveSAN(&p, "Nf3").String())
	assert.Equal(t, "e2e4", ParseMoveSAN(&p, "e4").String())
	assert.Equal(t, MoveEmpty, ParseMoveSAN(&p, "Qxe7"))
}
