package imaging

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"Sensor crop", 2870, 2156, 820, 616},
		{"Width bound", 1640, 616, 820, 308},
		{"Height bound", 616, 1232, 308, 616},
		{"Already small", 100, 50, 100, 50},
		{"Exact fit", 820, 616, 820, 616},
		{"Very wide", 4100, 100, 820, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitWithin(tt.w, tt.h, MaxWidth, MaxHeight)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitWithin(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCropAndResize(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"Full sensor", SensorWidth, SensorHeight},
		{"Half sensor", SensorWidth / 2, SensorHeight / 2},
		{"Small photo", 400, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := solid(tt.w, tt.h, color.RGBA{200, 50, 50, 255})
			out, err := CropAndResize(src)
			if err != nil {
				t.Fatalf("CropAndResize failed: %v", err)
			}

			size := out.Bounds().Size()
			if size.X > MaxWidth || size.Y > MaxHeight {
				t.Errorf("Output %v exceeds %dx%d", size, MaxWidth, MaxHeight)
			}

			cropped := CropRect.Intersect(src.Bounds())
			wantRatio := float64(cropped.Dx()) / float64(cropped.Dy())
			gotRatio := float64(size.X) / float64(size.Y)
			if math.Abs(gotRatio-wantRatio)/wantRatio > 0.01 {
				t.Errorf("Aspect ratio changed: got %.4f, want %.4f", gotRatio, wantRatio)
			}
		})
	}
}

func TestCropAndResize_SensorSize(t *testing.T) {
	out, err := CropAndResize(solid(SensorWidth, SensorHeight, color.RGBA{0, 0, 0, 255}))
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Bounds().Size(); got != image.Pt(MaxWidth, MaxHeight) {
		t.Errorf("Expected %dx%d, got %v", MaxWidth, MaxHeight, got)
	}
}

func TestCropAndResize_NoOverlap(t *testing.T) {
	// A strip shorter than the top margin has nothing left after cropping
	if _, err := CropAndResize(solid(100, 50, color.RGBA{A: 255})); err == nil {
		t.Error("Expected error for image above the crop region")
	}
}

func TestThreshold(t *testing.T) {
	// Red ramps with x so both sides of the cutoff are present
	src := image.NewRGBA(image.Rect(0, 0, MaxWidth, MaxHeight))
	for y := 0; y < MaxHeight; y++ {
		for x := 0; x < MaxWidth; x++ {
			src.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 17, 255})
		}
	}

	out, err := Threshold(src)
	if err != nil {
		t.Fatalf("Threshold failed: %v", err)
	}
	if got := out.Bounds().Size(); got != MaskRect.Size() {
		t.Fatalf("Expected mask size %v, got %v", MaskRect.Size(), got)
	}

	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < out.Bounds().Dx(); x++ {
			c := out.RGBAAt(x, y)
			if c.G != 255 || c.B != 255 {
				t.Fatalf("Pixel (%d,%d) green/blue not saturated: %v", x, y, c)
			}
			if c.R != 0 && c.R != 255 {
				t.Fatalf("Pixel (%d,%d) red is not binary: %d", x, y, c.R)
			}
		}
	}

	// Source x = 80 + dx, so red = (80 + dx) % 256
	cases := []struct {
		dx   int
		want uint8
	}{
		{30, 0},    // red 110, not above the cutoff
		{31, 255},  // red 111
		{0, 0},     // red 80
		{175, 255}, // red 255
		{176, 0},   // red wraps to 0
	}
	for _, c := range cases {
		if got := out.RGBAAt(c.dx, 0).R; got != c.want {
			t.Errorf("dx=%d: expected red %d, got %d", c.dx, c.want, got)
		}
	}
}

func TestRedSum(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	rgba.Set(0, 0, color.RGBA{10, 1, 1, 255})
	rgba.Set(1, 0, color.RGBA{20, 1, 1, 255})
	rgba.Set(0, 1, color.RGBA{30, 1, 1, 255})
	rgba.Set(1, 1, color.RGBA{40, 1, 1, 255})

	if got := RedSum(rgba); got != 100 {
		t.Errorf("RedSum(RGBA) = %d, want 100", got)
	}

	// Sub-images must only count their own pixels
	sub := rgba.SubImage(image.Rect(1, 0, 2, 2))
	if got := RedSum(sub); got != 60 {
		t.Errorf("RedSum(sub) = %d, want 60", got)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	for x := 0; x < 3; x++ {
		nrgba.Set(x, 0, color.NRGBA{255, 0, 0, 255})
	}
	if got := RedSum(nrgba); got != 765 {
		t.Errorf("RedSum(NRGBA) = %d, want 765", got)
	}
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.jpg")
	edited := filepath.Join(dir, "edited.jpg")
	mask := filepath.Join(dir, "mask.jpg")

	if err := Save(raw, solid(SensorWidth/2, SensorHeight/2, color.RGBA{220, 40, 40, 255})); err != nil {
		t.Fatal(err)
	}
	if err := ProcessFile(raw, edited, mask); err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	e, err := Load(edited)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Bounds().Size(); got != image.Pt(820, 576) {
		t.Errorf("Edited size = %v, want 820x576", got)
	}

	m, err := Load(mask)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Bounds().Size(); got != MaskRect.Size() {
		t.Errorf("Mask size = %v, want %v", got, MaskRect.Size())
	}
}

func TestProcessFile_Missing(t *testing.T) {
	dir := t.TempDir()
	err := ProcessFile(filepath.Join(dir, "nope.jpg"), filepath.Join(dir, "e.jpg"), filepath.Join(dir, "m.jpg"))
	if err == nil {
		t.Fatal("Expected error for missing source")
	}
	if !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jpg")
	if err := os.WriteFile(path, []byte("not a jpeg"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected decode error for corrupt file")
	}
}
