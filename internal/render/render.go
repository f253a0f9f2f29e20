// Package render rasterizes particle cloud snapshots on the CPU with gg.
package render

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ayusman/handcloud/internal/engine"
)

// Defaults for rendered frames.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
	MinRadius     = 0.6
	HUDFontSize   = 14
)

// Background is the scene clear color.
var Background = gg.RGB(0, 0, 0)

// Options configure a Renderer.
type Options struct {
	Width  int
	Height int
	// HUD draws the shape name and frame counter in the corner.
	HUD bool
}

// Renderer draws snapshots into images. A Renderer is safe for concurrent
// use; every call draws on its own context.
type Renderer struct {
	opts      Options
	projector *Projector
	face      text.Face
}

// New creates a Renderer. Zero sizes take the defaults.
func New(opts Options) (*Renderer, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	r := &Renderer{
		opts:      opts,
		projector: NewProjector(opts.Width, opts.Height),
	}

	if opts.HUD {
		source, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("load hud font: %w", err)
		}
		r.face = source.Face(HUDFontSize)
	}
	return r, nil
}

// Size returns the output image size.
func (r *Renderer) Size() (width, height int) {
	return r.opts.Width, r.opts.Height
}

// Draw renders snap onto a new context. The caller closes it.
func (r *Renderer) Draw(snap engine.Snapshot) (*gg.Context, error) {
	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	dc.ClearWithColor(Background)

	if err := r.drawPoints(dc, snap); err != nil {
		dc.Close()
		return nil, err
	}
	if r.face != nil {
		r.drawHUD(dc, snap)
	}
	return dc, nil
}

// Image renders snap and returns the pixels.
func (r *Renderer) Image(snap engine.Snapshot) (image.Image, error) {
	dc, err := r.Draw(snap)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// EncodePNG renders snap as PNG into w.
func (r *Renderer) EncodePNG(w io.Writer, snap engine.Snapshot) error {
	dc, err := r.Draw(snap)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(w)
}

// EncodeJPEG renders snap as JPEG into w.
func (r *Renderer) EncodeJPEG(w io.Writer, snap engine.Snapshot, quality int) error {
	dc, err := r.Draw(snap)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodeJPEG(w, quality)
}

// JPEG renders snap and returns the encoded bytes.
func (r *Renderer) JPEG(snap engine.Snapshot, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.EncodeJPEG(&buf, snap, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG renders snap to a PNG file.
func (r *Renderer) SavePNG(path string, snap engine.Snapshot) error {
	dc, err := r.Draw(snap)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Dot is one projected particle in pixel space.
type Dot struct {
	X, Y   float32
	Radius float64
}

// Dots projects every visible particle of snap through p, appending to dst.
// Radii never fall below MinRadius.
func Dots(p *Projector, snap engine.Snapshot, dst []Dot) []Dot {
	mv := p.ModelView(snap.Rotation)

	for i := 0; i+2 < len(snap.Positions); i += 3 {
		pt := mgl32.Vec3{snap.Positions[i], snap.Positions[i+1], snap.Positions[i+2]}
		x, y, depth, ok := p.Project(mv, pt)
		if !ok {
			continue
		}
		radius := p.PointRadius(snap.PointSize, depth)
		if radius < MinRadius {
			radius = MinRadius
		}
		dst = append(dst, Dot{X: x, Y: y, Radius: radius})
	}
	return dst
}

// drawPoints adds every visible particle to one path and fills it once.
func (r *Renderer) drawPoints(dc *gg.Context, snap engine.Snapshot) error {
	dots := Dots(r.projector, snap, make([]Dot, 0, snap.Len()))
	if len(dots) == 0 {
		return nil
	}
	for _, d := range dots {
		dc.DrawCircle(float64(d.X), float64(d.Y), d.Radius)
	}

	dc.SetColor(snap.Color.Color())
	return dc.Fill()
}

func (r *Renderer) drawHUD(dc *gg.Context, snap engine.Snapshot) {
	dc.SetFont(r.face)
	dc.SetColor(gg.RGBA2(1, 1, 1, 0.8).Color())
	label := fmt.Sprintf("%s  %s  frame %d", snap.Shape, snap.ColorHex(), snap.Frame)
	dc.DrawString(label, 10, float64(r.opts.Height)-10)
}
