// Package imaging turns raw timelapse photos into edited previews and binary masks.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Camera geometry. Raw photos come off a 3280x2464 sensor; the useful area
// loses 80px at the top, ends 228px above the bottom edge and 410px before
// the right edge.
const (
	SensorWidth  = 3280
	SensorHeight = 2464

	cropTop    = 80
	cropBottom = SensorHeight - (154*2 - cropTop)
	cropRight  = SensorWidth - 205*2

	// MaxWidth and MaxHeight bound the edited image (a quarter of the sensor).
	MaxWidth  = 820
	MaxHeight = 616

	maskLeft   = 80
	maskTop    = 80
	maskRight  = MaxWidth - 80*2
	maskBottom = MaxHeight - 80*2

	// RedCutoff is the raw red intensity a pixel must exceed to be marked 255.
	RedCutoff = 110
)

// CropRect is the region of a raw photo kept by CropAndResize.
var CropRect = image.Rect(0, cropTop, cropRight, cropBottom)

// MaskRect is the region of an edited photo kept by Threshold.
var MaskRect = image.Rect(maskLeft, maskTop, maskRight, maskBottom)

// CropAndResize crops the raw photo to CropRect and downscales the result to
// fit within MaxWidth x MaxHeight, keeping the aspect ratio. It never upscales.
func CropAndResize(src image.Image) (*image.RGBA, error) {
	b := src.Bounds()
	rect := CropRect.Add(b.Min).Intersect(b)
	if rect.Empty() {
		return nil, fmt.Errorf("image %v does not overlap crop region %v", b.Size(), CropRect)
	}

	w, h := FitWithin(rect.Dx(), rect.Dy(), MaxWidth, MaxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, rect, draw.Src, nil)
	return dst, nil
}

// FitWithin returns the largest size no bigger than maxW x maxH that keeps
// the w:h aspect ratio. Sizes already inside the box are returned unchanged.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	return clamp(nw, 1, maxW), clamp(nh, 1, maxH)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Threshold crops an edited photo to MaskRect and binarizes it: the red
// plane becomes 255 where red > RedCutoff and 0 elsewhere, while green and
// blue are forced to 255. Every output pixel is either white or cyan.
func Threshold(src image.Image) (*image.RGBA, error) {
	b := src.Bounds()
	rect := MaskRect.Add(b.Min).Intersect(b)
	if rect.Empty() {
		return nil, fmt.Errorf("image %v does not overlap mask region %v", b.Size(), MaskRect)
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	pix := dst.Pix
	for y := 0; y < rect.Dy(); y++ {
		rowStart := y * dst.Stride
		for x := 0; x < rect.Dx(); x++ {
			off := rowStart + x*4
			if red8(src.At(rect.Min.X+x, rect.Min.Y+y)) > RedCutoff {
				pix[off] = 255
			} else {
				pix[off] = 0
			}
			pix[off+1] = 255
			pix[off+2] = 255
			pix[off+3] = 255
		}
	}
	return dst, nil
}

// RedSum adds up the 8-bit red channel of every pixel in img.
func RedSum(img image.Image) uint64 {
	b := img.Bounds()
	var sum uint64

	// Fast path for buffers we produced ourselves
	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			rowStart := (y-rgba.Rect.Min.Y)*rgba.Stride + (b.Min.X-rgba.Rect.Min.X)*4
			for x := 0; x < b.Dx(); x++ {
				sum += uint64(rgba.Pix[rowStart+x*4])
			}
		}
		return sum
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += uint64(red8(img.At(x, y)))
		}
	}
	return sum
}

func red8(c color.Color) uint8 {
	r, _, _, _ := c.RGBA()
	return uint8(r >> 8)
}
