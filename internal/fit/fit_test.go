package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/andresmejia3/growthlapse/internal/types"
)

func exponential(a, b float64, xs []int64) types.GrowthSeries {
	s := types.GrowthSeries{X: xs, Y: make([]float64, len(xs))}
	for i, x := range xs {
		s.Y[i] = math.Exp(a + b*float64(x))
	}
	return s
}

func TestFit_PerfectExponential(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		xs   []int64
	}{
		{"Three points", 0.5, 0.1, []int64{0, 1, 2}},
		{"Schedule hours", 2.0, 0.03, []int64{0, 2, 4, 6, 8, 10, 12, 24, 26}},
		{"Decay", 3.0, -0.2, []int64{0, 5, 10, 15}},
		{"Flat", 1.0, 0.0, []int64{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Fit(exponential(tt.a, tt.b, tt.xs))
			if err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			if math.Abs(res.Slope-tt.b) > 1e-9 {
				t.Errorf("Slope = %v, want %v", res.Slope, tt.b)
			}
			if math.Abs(res.Intercept-tt.a) > 1e-9 {
				t.Errorf("Intercept = %v, want %v", res.Intercept, tt.a)
			}
		})
	}
}

func TestFit_Weighted(t *testing.T) {
	// Two points on y=1 and one outlier: larger y values pull the line harder
	s := types.GrowthSeries{X: []int64{0, 1, 2}, Y: []float64{1, 1, 100}}
	res, err := Fit(s)
	if err != nil {
		t.Fatal(err)
	}
	// The weight-100 point dominates: the fitted curve must pass much closer
	// to it than an unweighted fit (which would give ln(100)/2 slope and a
	// residual of ln(100)/6 at x=2)
	residual := math.Abs(math.Log(100) - (res.Intercept + 2*res.Slope))
	if residual > 0.1 {
		t.Errorf("Weighted fit residual at heavy point = %v, expected < 0.1", residual)
	}
}

func TestFit_Errors(t *testing.T) {
	tests := []struct {
		name string
		s    types.GrowthSeries
		want error
	}{
		{"Zero value", types.GrowthSeries{X: []int64{0, 1, 2}, Y: []float64{1, 0, 3}}, ErrNonPositive},
		{"Negative value", types.GrowthSeries{X: []int64{0, 1}, Y: []float64{-1, 2}}, ErrNonPositive},
		{"NaN value", types.GrowthSeries{X: []int64{0, 1}, Y: []float64{math.NaN(), 2}}, ErrNonPositive},
		{"Single point", types.GrowthSeries{X: []int64{0}, Y: []float64{1}}, ErrTooFewPoints},
		{"Same hour", types.GrowthSeries{X: []int64{3, 3, 3}, Y: []float64{1, 2, 3}}, ErrTooFewPoints},
		{"Empty", types.GrowthSeries{}, ErrTooFewPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Fit(tt.s); !errors.Is(err, tt.want) {
				t.Errorf("Fit() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFit_LengthMismatch(t *testing.T) {
	if _, err := Fit(types.GrowthSeries{X: []int64{0, 1}, Y: []float64{1}}); err == nil {
		t.Error("Expected error for mismatched lengths")
	}
}

func TestCurve(t *testing.T) {
	f := types.FitResult{Slope: math.Ln2, Intercept: math.Log(3)}
	got := Curve(f, []float64{0, 1, 2})
	want := []float64{3, 6, 12}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Curve[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDoublingHours(t *testing.T) {
	if got := DoublingHours(math.Ln2 / 10); math.Abs(got-10) > 1e-9 {
		t.Errorf("DoublingHours = %v, want 10", got)
	}
	if got := DoublingHours(0); !math.IsInf(got, 1) {
		t.Errorf("DoublingHours(0) = %v, want +Inf", got)
	}
	if got := DoublingHours(-1); !math.IsInf(got, 1) {
		t.Errorf("DoublingHours(-1) = %v, want +Inf", got)
	}
}

func TestFit_ReportsFitQuality(t *testing.T) {
	res, err := Fit(exponential(1, 0.05, []int64{0, 2, 4, 6}))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.RSquared-1) > 1e-9 {
		t.Errorf("RSquared = %v, want 1 for an exact fit", res.RSquared)
	}
	if math.Abs(res.DoublingHours-math.Ln2/0.05) > 1e-6 {
		t.Errorf("DoublingHours = %v", res.DoublingHours)
	}
}
