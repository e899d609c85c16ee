package chart

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/andresmejia3/growthlapse/internal/log"
	"github.com/andresmejia3/growthlapse/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Sink kinds accepted by NewSink.
const (
	KindWindow = "window"
	KindFile   = "file"
)

// DefaultViewer blocks until its window is closed, which is what makes
// consecutive charts show one after the other.
const DefaultViewer = "display"

// Chart dimensions for rendered PNGs
var (
	Width  = 8 * vg.Inch
	Height = 6 * vg.Inch
)

// Sink receives a finished chart.
type Sink interface {
	Show(ctx context.Context, name string, p *plot.Plot) error
}

// FileSink writes each chart to <Dir>/<name>.png.
type FileSink struct {
	Dir string
}

// Save renders the chart and returns the written path.
func (f FileSink) Save(name string, p *plot.Plot) (string, error) {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(f.Dir, name+".png")
	if err := p.Save(Width, Height, path); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	return path, nil
}

func (f FileSink) Show(_ context.Context, name string, p *plot.Plot) error {
	path, err := f.Save(name, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "📈 Chart saved to %s\n", path)
	return nil
}

// ViewerSink renders the chart to a PNG and opens it in an external viewer,
// returning only once the viewer exits.
type ViewerSink struct {
	Command string
	Dir     string
}

func (v ViewerSink) Show(ctx context.Context, name string, p *plot.Plot) error {
	path, err := FileSink{Dir: v.Dir}.Save(name, p)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "🖼️  Showing %s (close the window to continue)\n", name)
	cmd := utils.NewSafeCommand(ctx, v.Command, path)
	if err := cmd.Run(); err != nil {
		if cmd.Stderr.Len() > 0 {
			return fmt.Errorf("viewer %s failed: %w: %s", v.Command, err, cmd.Stderr.String())
		}
		return fmt.Errorf("viewer %s failed: %w", v.Command, err)
	}
	return nil
}

// NewSink builds the sink for kind. A window sink whose viewer is not
// installed degrades to writing files so a headless run still finishes.
func NewSink(kind, dir, viewer string) (Sink, error) {
	switch kind {
	case KindFile:
		return FileSink{Dir: dir}, nil
	case KindWindow:
		if viewer == "" {
			viewer = DefaultViewer
		}
		if _, err := exec.LookPath(viewer); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Viewer %q not found. Charts will be written to %s instead.\n", viewer, dir)
			log.Warnf("viewer %s unavailable: %v", viewer, err)
			return FileSink{Dir: dir}, nil
		}
		return ViewerSink{Command: viewer, Dir: dir}, nil
	default:
		return nil, fmt.Errorf("unknown sink %q (use %s or %s)", kind, KindWindow, KindFile)
	}
}
