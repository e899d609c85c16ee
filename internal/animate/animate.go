// Package animate assembles a directory of frames into an animated GIF preview.
package animate

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/growthlapse/internal/imaging"
	"github.com/andresmejia3/growthlapse/internal/utils"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/image/draw"
)

// Options controls the preview.
type Options struct {
	DelayCS  int       // Delay between frames in hundredths of a second
	Width    int       // Target width; 0 keeps the source size
	Progress io.Writer // nil means stderr
}

// DefaultOptions matches the 20cs looping preview.
var DefaultOptions = Options{DelayCS: 20}

// ErrNoFrames is returned when dir holds no JPEG frames.
var ErrNoFrames = errors.New("no frames to animate")

// Build writes an endlessly looping GIF of every JPEG in dir (in filename
// order) to out and returns the number of frames.
func Build(dir, out string, opts Options) (int, error) {
	names, err := utils.SortedNames(dir)
	if err != nil {
		return 0, err
	}
	var frames []string
	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".jpg" || ext == ".jpeg" {
			frames = append(frames, name)
		}
	}
	if len(frames) == 0 {
		return 0, fmt.Errorf("%s: %w", dir, ErrNoFrames)
	}

	w := opts.Progress
	if w == nil {
		w = os.Stderr
	}
	bar := progressbar.NewOptions(len(frames),
		progressbar.OptionSetDescription("🎞️  "+filepath.Base(out)),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
	)

	anim := &gif.GIF{LoopCount: 0}
	for _, name := range frames {
		img, err := imaging.Load(filepath.Join(dir, name))
		if err != nil {
			return 0, err
		}
		anim.Image = append(anim.Image, quantize(resize(img, opts.Width)))
		anim.Delay = append(anim.Delay, opts.DelayCS)
		bar.Add(1)
	}
	bar.Finish()
	fmt.Fprintln(w)

	f, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return 0, fmt.Errorf("failed to encode %s: %w", out, err)
	}
	return len(frames), f.Close()
}

// resize scales img to width, keeping the aspect ratio. Width 0 is a no-op.
func resize(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || width == b.Dx() {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), img, b.Min)
	return p
}

// Hints are the ImageMagick commands that produce the same previews by hand.
func Hints(editedDir, masksDir string) []string {
	return []string{
		fmt.Sprintf("convert -monitor -delay 20 -loop 0 %s/*jpg animated.gif", editedDir),
		fmt.Sprintf("convert -monitor -delay 20 -loop 0 %s/*jpg animated_threshold.gif", masksDir),
		"convert -monitor animated.gif -resize 274x205 animated_small.gif",
	}
}
