package animate

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresmejia3/growthlapse/internal/imaging"
)

func writeFrame(t *testing.T, dir, name string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	if err := imaging.Save(filepath.Join(dir, name), img); err != nil {
		t.Fatal(err)
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "2021-03-04--09-00-00.jpg", color.RGBA{0, 255, 255, 255})
	writeFrame(t, dir, "2021-03-04--07-00-00.jpg", color.RGBA{255, 255, 255, 255})
	writeFrame(t, dir, "2021-03-04--11-00-00.jpg", color.RGBA{0, 255, 255, 255})
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644)

	out := filepath.Join(t.TempDir(), "animated.gif")
	n, err := Build(dir, out, Options{DelayCS: 20, Progress: io.Discard})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 frames, got %d", n)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("Output is not a GIF: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("GIF has %d frames, want 3", len(anim.Image))
	}
	for i, d := range anim.Delay {
		if d != 20 {
			t.Errorf("Frame %d delay = %d, want 20", i, d)
		}
	}
	if anim.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0 (forever)", anim.LoopCount)
	}
}

func TestBuild_Resize(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "a.jpg", color.RGBA{10, 20, 30, 255})

	out := filepath.Join(t.TempDir(), "small.gif")
	if _, err := Build(dir, out, Options{DelayCS: 20, Width: 20, Progress: io.Discard}); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(out)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := anim.Image[0].Bounds().Size(); got != image.Pt(20, 15) {
		t.Errorf("Frame size = %v, want 20x15", got)
	}
}

func TestBuild_Empty(t *testing.T) {
	dir := t.TempDir()
	_, err := Build(dir, filepath.Join(dir, "x.gif"), Options{Progress: io.Discard})
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("Expected ErrNoFrames, got %v", err)
	}
}

func TestHints(t *testing.T) {
	hints := Hints("photos_edited", "photos_threshold")
	if len(hints) != 3 {
		t.Fatalf("Expected 3 hints, got %d", len(hints))
	}
	if !strings.Contains(hints[0], "photos_edited/*jpg animated.gif") {
		t.Errorf("Unexpected hint: %s", hints[0])
	}
	if !strings.Contains(hints[1], "photos_threshold/*jpg animated_threshold.gif") {
		t.Errorf("Unexpected hint: %s", hints[1])
	}
}
