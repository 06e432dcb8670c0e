// Package forecast projects weekly net cash flow with a recursive moving
// average: each projected week is appended to the series and feeds the
// averaging window of the weeks after it.
package forecast

import "errors"

const (
	MaxWindow  = 3
	MaxHorizon = 52
)

// InsufficientHistoryError is returned for an empty history. Callers are
// expected to substitute a Baseline series.
type InsufficientHistoryError struct{}

func (InsufficientHistoryError) Error() string {
	return "forecast: no historical data"
}

// IsInsufficientHistory reports whether err is an InsufficientHistoryError.
func IsInsufficientHistory(err error) bool {
	var target InsufficientHistoryError
	return errors.As(err, &target)
}

// Clamp returns the effective horizon and window for a history of n weeks.
func Clamp(n, horizon, window int) (int, int) {
	if window <= 0 || window > MaxWindow {
		window = MaxWindow
	}
	if window > n {
		window = n
	}
	if horizon > n {
		horizon = n
	}
	if horizon > MaxHorizon {
		horizon = MaxHorizon
	}
	if horizon < 0 {
		horizon = 0
	}
	return horizon, window
}

// Project returns horizon future values. history is ordered oldest first and
// is not modified.
func Project(history []float64, horizon, window int) ([]float64, error) {
	if len(history) == 0 {
		return nil, InsufficientHistoryError{}
	}
	horizon, window = Clamp(len(history), horizon, window)

	series := make([]float64, len(history), len(history)+horizon)
	copy(series, history)
	projected := make([]float64, 0, horizon)
	for i := 0; i < horizon; i++ {
		next := mean(series[len(series)-window:])
		series = append(series, next)
		projected = append(projected, next)
	}
	return projected, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Baseline is a flat placeholder history for users with no activity yet.
func Baseline(weeks int, level float64) []float64 {
	if weeks < 1 {
		weeks = 1
	}
	series := make([]float64, weeks)
	for i := range series {
		series[i] = level
	}
	return series
}
