// Package chart draws observed growth against the fitted exponential.
package chart

import (
	"errors"
	"image/color"

	"github.com/andresmejia3/growthlapse/internal/fit"
	"github.com/andresmejia3/growthlapse/internal/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	Title  = "Nature's exponential growth"
	XLabel = "hours from start"
	YLabel = "inverse red channel"

	ObservedLegend = "Nature"
)

var (
	observedColor = color.RGBA{R: 255, A: 255}
	fittedColor   = color.RGBA{B: 255, A: 255}
	dashes        = []vg.Length{vg.Points(5), vg.Points(3)}
)

// Chart plots the series ("Nature") and the fitted curve ("<label> Fit")
// over the series' hours.
func Chart(s types.GrowthSeries, f types.FitResult, label string) (*plot.Plot, error) {
	if s.Len() == 0 {
		return nil, errors.New("cannot chart an empty series")
	}

	xs := s.XFloat()
	observed := make(plotter.XYs, len(xs))
	fitted := make(plotter.XYs, len(xs))
	curve := fit.Curve(f, xs)
	for i, x := range xs {
		observed[i] = plotter.XY{X: x, Y: s.Y[i]}
		fitted[i] = plotter.XY{X: x, Y: curve[i]}
	}

	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel

	if err := addSeries(p, observed, observedColor, ObservedLegend); err != nil {
		return nil, err
	}
	if err := addSeries(p, fitted, fittedColor, FitLegend(label)); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// FitLegend is the legend entry for the fitted curve.
func FitLegend(label string) string {
	return label + " Fit"
}

func addSeries(p *plot.Plot, xys plotter.XYs, c color.Color, name string) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = c
	line.Dashes = dashes
	points.Shape = draw.CircleGlyph{}
	points.Color = c

	p.Add(line, points)
	p.Legend.Add(name, line, points)
	return nil
}
