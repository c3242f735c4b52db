package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccuracyPercent(t *testing.T) {
	assert.Equal(t, 90.0, AccuracyPercent(18, 20))
	assert.Equal(t, 0.0, AccuracyPercent(0, 20))
	assert.Equal(t, 0.0, AccuracyPercent(3, 0))
}

func TestDataMatchesPublishedResults(t *testing.T) {
	require.Len(t, Results, 5)
	assert.Equal(t, "Deepcon", Results[0].Name)
	assert.Equal(t, 18, Results[0].Passed)
	assert.Equal(t, 0, Results[4].Passed)

	sum := 0
	for _, tk := range Tokens {
		sum += tk.Total
	}
	assert.Equal(t, 112515+95065+47290+37457, sum)
}

func TestEfficiencyAxes(t *testing.T) {
	p, err := EfficiencyChart()
	require.NoError(t, err)
	assert.Equal(t, 1000.0, p.X.Min)
	assert.Equal(t, 6500.0, p.X.Max)
	assert.Equal(t, 0.0, p.Y.Min)
	assert.Equal(t, 20.0, p.Y.Max)

	acc, err := AccuracyChart()
	require.NoError(t, err)
	assert.Equal(t, 22.0, acc.X.Max)
}

func TestRender(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "visualizations")
	paths, err := Render(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, AccuracyFile),
		filepath.Join(dir, TokenUsageFile),
		filepath.Join(dir, EfficiencyFile),
	}, paths)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), p)
	}
}
