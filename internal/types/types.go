package types

// Sample is one mask reading before the series transform is applied
type Sample struct {
	Filename string
	Hours    int64   // Whole hours since the Unix epoch
	RedSum   float64 // Sum of the mask's red plane
}

// GrowthSeries holds the (elapsed hours, intensity) pairs used for fitting.
// X and Y always have the same length and follow mask filename order.
type GrowthSeries struct {
	Label string
	Files []string
	X     []int64
	Y     []float64
}

// Len returns the number of samples in the series.
func (s GrowthSeries) Len() int {
	return len(s.X)
}

// XFloat returns the elapsed hours as float64 for numeric routines.
func (s GrowthSeries) XFloat() []float64 {
	xs := make([]float64, len(s.X))
	for i, x := range s.X {
		xs[i] = float64(x)
	}
	return xs
}

// FitResult is the outcome of a log-linear regression: ln(y) = Intercept + Slope*x
type FitResult struct {
	Slope         float64
	Intercept     float64
	RSquared      float64 // Weighted, in log space
	DoublingHours float64 // ln(2)/Slope, +Inf when the series is not growing
}
