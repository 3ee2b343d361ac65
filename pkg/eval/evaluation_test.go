package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabre-chess/sabre/pkg/common"
)

var testFens = []string{
	common.InitialPositionFen,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"8/k7/3p4/p2P1p2/P2P1P2/8/8/K7 w - - 0 1",
}

// the evaluation must be symmetric under colour mirroring
func TestMirror(t *testing.T) {
	var e = NewEvaluationService()
	for _, fen := range testFens {
		var p, err = common.NewPositionFromFEN(fen)
		require.NoError(t, err, fen)
		var mirror = common.MirrorPosition(&p)
		assert.Equal(t, e.Evaluate(&p), e.Evaluate(&mirror), fen)
	}
}

func TestMaterialOrdering(t *testing.T) {
	var e = NewEvaluationService()
	var up, err = common.NewPositionFromFEN("4k3/8/8/8/8/8/4R3/4K3 w - - 0 1")
	require.NoError(t, err)
	var even, err2 = common.NewPositionFromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err2)
	assert.Greater(t, e.Evaluate(&up), e.Evaluate(&even))
}
