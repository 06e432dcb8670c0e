package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectSinglePointIsMeanOfWindow(t *testing.T) {
	got, err := Project([]float64{10, 20, 30}, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{20}, got)
}

func TestProjectFeedsBackIntoWindow(t *testing.T) {
	got, err := Project([]float64{10, 20, 30}, 2, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 20, got[0], 1e-9)
	// second point averages 20, 30 and the first projected 20
	assert.InDelta(t, 70.0/3, got[1], 1e-9)
}

func TestProjectDoesNotMutateHistory(t *testing.T) {
	history := []float64{1, 2, 3, 4}
	_, err := Project(history, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, history)
}

func TestProjectConvergesTowardRecentMean(t *testing.T) {
	history := []float64{0, 0, 0, 0, 90, -30, 60}
	got, err := Project(history, 7, 3)
	require.NoError(t, err)
	require.Len(t, got, 7)

	last := got[len(got)-1]
	spread := func(i int) float64 { return got[i] - last }
	assert.Less(t, abs(spread(5)), abs(spread(0))+1e-9)
	for _, v := range got {
		assert.GreaterOrEqual(t, v, -30.0)
		assert.LessOrEqual(t, v, 90.0)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name                    string
		n, horizon, window      int
		wantHorizon, wantWindow int
	}{
		{"window capped at three", 10, 4, 8, 4, 3},
		{"window capped at history", 2, 1, 3, 1, 2},
		{"default window", 5, 2, 0, 2, 3},
		{"horizon capped at history", 3, 10, 3, 3, 3},
		{"horizon capped at a year", 80, 80, 3, 52, 3},
		{"negative horizon", 5, -1, 2, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, w := Clamp(tt.n, tt.horizon, tt.window)
			assert.Equal(t, tt.wantHorizon, h)
			assert.Equal(t, tt.wantWindow, w)
		})
	}
}

func TestProjectEmptyHistory(t *testing.T) {
	_, err := Project(nil, 4, 3)
	require.Error(t, err)
	assert.True(t, IsInsufficientHistory(err))
}

func TestBaseline(t *testing.T) {
	series := Baseline(4, 0)
	assert.Equal(t, []float64{0, 0, 0, 0}, series)

	got, err := Project(series, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, got)

	assert.Len(t, Baseline(0, 1), 1)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
