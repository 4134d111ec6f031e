package sky

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveConvergencePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convergence.png")
	stats := []StepStatistics{
		{Step: 0, SeparationSum: 50, MatchedPairs: 10},
		{Step: 1, SeparationSum: 12, MatchedPairs: 12},
		{Step: 2}, // reseed step, nothing matched, skipped
		{Step: 3, SeparationSum: 6, MatchedPairs: 12},
	}
	require.NoError(t, SaveConvergencePlot(stats, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestSaveConvergencePlotEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convergence.png")
	assert.Error(t, SaveConvergencePlot(nil, path))
	assert.Error(t, SaveConvergencePlot([]StepStatistics{{Step: 0}}, path),
		"a series with no matched pairs has nothing to draw")
}

func TestSaveMatchMatrixPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.png")
	m := BuildMatchMatrix(threeBeamField(), 9)
	require.NoError(t, SaveMatchMatrixPlot(m, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestMatrixGrid(t *testing.T) {
	m := BuildMatchMatrix(threeBeamField(), 9)
	g := matrixGrid{m: m}

	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 3, r)
	assert.Equal(t, 10.0, g.Z(1, 0))
	assert.Equal(t, 10.0, g.Z(0, 1))
	assert.Equal(t, 2.0, g.X(2))
	assert.Equal(t, 1.0, g.Y(1))
}
