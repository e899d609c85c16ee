// Package series turns a directory of masks into a growth series.
package series

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/andresmejia3/growthlapse/internal/imaging"
	"github.com/andresmejia3/growthlapse/internal/log"
	"github.com/andresmejia3/growthlapse/internal/types"
	"gonum.org/v1/gonum/floats"
)

// TimestampLayout is the exact shape of a capture filename.
const TimestampLayout = "2006-01-02--15-04-05.jpg"

// VolumeExponent converts a 2D area proxy into a 3D volume proxy.
const VolumeExponent = 1.5

// Dimension labels used on charts and in the result store.
const (
	Label2D = "2d"
	Label3D = "3d"
)

// ErrEmpty is returned when no samples are left to build a series from.
var ErrEmpty = errors.New("no samples to build a growth series")

// ParseTimestamp reads the capture time out of a mask filename, in local time.
func ParseTimestamp(name string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, name, time.Local)
}

// HoursSinceEpoch rounds t to the nearest whole hour since the Unix epoch,
// breaking ties towards the even hour.
func HoursSinceEpoch(t time.Time) int64 {
	return int64(math.RoundToEven(float64(t.Unix()) / 3600))
}

// Build shifts hours so the series starts at zero and inverts the red sums
// so that a shrinking red sum (a larger grown area) reads as growth:
// y = 1 + max(red) - red. With assume3D each y is raised to VolumeExponent.
func Build(samples []types.Sample, assume3D bool) (types.GrowthSeries, error) {
	if len(samples) == 0 {
		return types.GrowthSeries{}, ErrEmpty
	}

	minX := samples[0].Hours
	red := make([]float64, len(samples))
	for i, s := range samples {
		if s.Hours < minX {
			minX = s.Hours
		}
		red[i] = s.RedSum
	}
	maxY := floats.Max(red)

	out := types.GrowthSeries{
		Label: Label2D,
		Files: make([]string, len(samples)),
		X:     make([]int64, len(samples)),
		Y:     make([]float64, len(samples)),
	}
	if assume3D {
		out.Label = Label3D
	}
	for i, s := range samples {
		out.Files[i] = s.Filename
		out.X[i] = s.Hours - minX
		y := 1 + maxY - s.RedSum
		if assume3D {
			y = math.Pow(y, VolumeExponent)
		}
		out.Y[i] = y
	}
	return out, nil
}

// Read lists dir in filename order and measures every mask whose position in
// that listing is not in drop. Positions refer to the sorted listing, not to
// timestamps.
func Read(dir string, drop map[int]bool) ([]types.Sample, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var samples []types.Sample
	for i, name := range names {
		if drop[i] {
			log.Debugf("dropping sample %d (%s)", i, name)
			continue
		}
		ts, err := ParseTimestamp(name)
		if err != nil {
			return nil, fmt.Errorf("mask %s: %w", name, err)
		}
		img, err := imaging.Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		samples = append(samples, types.Sample{
			Filename: name,
			Hours:    HoursSinceEpoch(ts),
			RedSum:   float64(imaging.RedSum(img)),
		})
	}
	return samples, nil
}

// Extract reads the masks in dir and builds a single series.
func Extract(dir string, drop map[int]bool, assume3D bool) (types.GrowthSeries, error) {
	samples, err := Read(dir, drop)
	if err != nil {
		return types.GrowthSeries{}, err
	}
	return Build(samples, assume3D)
}

// ExtractBoth reads the masks once and returns the 2D and 3D series.
func ExtractBoth(dir string, drop map[int]bool) (flat, volume types.GrowthSeries, err error) {
	samples, err := Read(dir, drop)
	if err != nil {
		return flat, volume, err
	}
	if flat, err = Build(samples, false); err != nil {
		return flat, volume, err
	}
	volume, err = Build(samples, true)
	return flat, volume, err
}
