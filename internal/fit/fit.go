// Package fit estimates exponential growth from a growth series.
package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/andresmejia3/growthlapse/internal/types"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNonPositive means a y value has no logarithm.
	ErrNonPositive = errors.New("growth series has non-positive values")
	// ErrTooFewPoints means the x values cannot determine a line.
	ErrTooFewPoints = errors.New("growth series needs at least 2 distinct hours")
)

// Fit regresses ln(y) on x by weighted least squares, weighting each residual
// by sqrt(y). Squared, that is a weight of y per point, which approximates a
// least squares fit of the exponential itself.
func Fit(s types.GrowthSeries) (types.FitResult, error) {
	if len(s.X) != len(s.Y) {
		return types.FitResult{}, fmt.Errorf("series length mismatch: %d hours, %d values", len(s.X), len(s.Y))
	}
	if distinct(s.X) < 2 {
		return types.FitResult{}, ErrTooFewPoints
	}

	xs := s.XFloat()
	logY := make([]float64, len(s.Y))
	minY := math.Inf(1)
	for i, y := range s.Y {
		if !(y > 0) || math.IsInf(y, 0) {
			return types.FitResult{}, fmt.Errorf("%w: y[%d] = %v", ErrNonPositive, i, y)
		}
		logY[i] = math.Log(y)
		minY = math.Min(minY, y)
	}

	// stat normalizes by (sum of weights - 1); scaling so the smallest weight
	// is 1 keeps that positive without changing the solution.
	weights := make([]float64, len(s.Y))
	for i, y := range s.Y {
		weights[i] = y / minY
	}

	intercept, slope := stat.LinearRegression(xs, logY, weights, false)
	return types.FitResult{
		Slope:         slope,
		Intercept:     intercept,
		RSquared:      stat.RSquared(xs, logY, weights, intercept, slope),
		DoublingHours: DoublingHours(slope),
	}, nil
}

// Curve evaluates the fitted exponential exp(intercept) * exp(slope*x) at xs.
func Curve(f types.FitResult, xs []float64) []float64 {
	ys := make([]float64, len(xs))
	scale := math.Exp(f.Intercept)
	for i, x := range xs {
		ys[i] = scale * math.Exp(f.Slope*x)
	}
	return ys
}

// DoublingHours is the time for the fitted curve to double.
func DoublingHours(slope float64) float64 {
	if slope <= 0 {
		return math.Inf(1)
	}
	return math.Ln2 / slope
}

func distinct(xs []int64) int {
	seen := make(map[int64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}
