package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// DefaultBars is the number of spectrum bars.
const DefaultBars = 64

// HistoryMaxDb is the top of the history scale.
const HistoryMaxDb = 120.0

// ErrInvalidSize is returned for non-positive image sizes.
var ErrInvalidSize = errors.New("viz: invalid image size")

// Labels are the texts drawn on the charts.
type Labels struct {
	Hz0, Hz5k, Hz10k, Hz20k string
	Low, Mid, High          string
	Danger, Warning         string
	Ago30, Ago15, Now       string
	TopDb                   string
}

// DefaultLabels returns the English labels.
func DefaultLabels() Labels {
	return Labels{
		Hz0: "0Hz", Hz5k: "5kHz", Hz10k: "10kHz", Hz20k: "20kHz+",
		Low: "Low / Bass", Mid: "Mid / Voice", High: "High / Treble",
		Danger: "Danger Limit", Warning: "Warning",
		Ago30: "-30s", Ago15: "-15s", Now: "Now",
		TopDb: "120 dB",
	}
}

// Config controls a Renderer.
type Config struct {
	Bars   int
	Labels Labels
}

// Option mutates a Config.
type Option func(*Config)

// WithBars sets the spectrum bar count.
func WithBars(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Bars = n
		}
	}
}

// WithLabels replaces the chart texts.
func WithLabels(l Labels) Option {
	return func(cfg *Config) {
		cfg.Labels = l
	}
}

var (
	colBackground = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	colBaseline   = hex(0xf3f4f6)
	colAxis       = hex(0x9ca3af)
	colCaption    = hex(0x4b5563)
	colSeparator  = hex(0xd1d5db)
	colGrid       = hex(0xe5e7eb)
	colDanger     = hex(0xef4444)
	colWarning    = hex(0xeab308)
	colTrace      = hex(0x3b82f6)
	colDot        = hex(0x2563eb)
)

var barStops = []stop{
	{0, hex(0x10b981)},
	{0.5, hex(0xf59e0b)},
	{1, hex(0xef4444)},
}

// Renderer draws charts of a fixed size. It is not safe for concurrent use.
type Renderer struct {
	cfg    Config
	width  int
	height int
	z      *vector.Rasterizer
}

// NewRenderer creates a renderer for width x height images.
func NewRenderer(width, height int, opts ...Option) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	cfg := Config{Bars: DefaultBars, Labels: DefaultLabels()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Renderer{
		cfg:    cfg,
		width:  width,
		height: height,
		z:      vector.NewRasterizer(width, height),
	}, nil
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// NewImage allocates an image of the renderer's size.
func (r *Renderer) NewImage() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, r.width, r.height))
}

func (r *Renderer) canvas(dst *image.RGBA) *canvas {
	return &canvas{dst: dst, z: r.z}
}

// DrawSpectrum draws the spectrum part of f. A stopped meter with history
// leaves dst untouched and returns false so the last live frame stays
// visible.
func (r *Renderer) DrawSpectrum(dst *image.RGBA, f Frame) bool {
	c := r.canvas(dst)
	w, h := float32(r.width), float32(r.height)
	const padBottom = 30
	drawH := h - padBottom

	switch {
	case f.Placeholder:
		c.clear(colBackground)
		c.begin()
		c.rect(0, drawH-2, w, 2)
		c.fill(image.NewUniform(colBaseline))
		r.spectrumLabels(c)
		return true
	case !f.Active:
		return false
	}

	c.clear(colBackground)
	if len(f.Bars) > 0 {
		barW := w / float32(len(f.Bars))
		c.begin()
		for i, v := range f.Bars {
			bh := drawH * float32(math.Max(0, math.Min(1, v)))
			if bh <= 0 {
				continue
			}
			c.roundTop(float32(i)*barW, drawH-bh, barW-1, bh, 4)
		}
		c.fill(vgradient{y0: float64(drawH), y1: 0, stops: barStops})
	}
	r.spectrumLabels(c)

	c.begin()
	c.dashed(w*0.15, 0, w*0.15, drawH, 1, 4)
	c.dashed(w*0.4, 0, w*0.4, drawH, 1, 4)
	c.fill(image.NewUniform(colSeparator))
	return true
}

func (r *Renderer) spectrumLabels(c *canvas) {
	l := r.cfg.Labels
	w, h := r.width, r.height
	c.text(l.Hz0, 2, h-5, alignLeft, colAxis)
	c.text(l.Hz5k, w/4, h-5, alignCenter, colAxis)
	c.text(l.Hz10k, w/2, h-5, alignCenter, colAxis)
	c.text(l.Hz20k, w-2, h-5, alignRight, colAxis)

	c.text(l.Low, 2, h-18, alignLeft, colCaption)
	c.text(l.Mid, w/4, h-18, alignCenter, colCaption)
	c.text(l.High, w-2, h-18, alignRight, colCaption)
}

// DrawHistory draws the loudness trace, oldest first, stretched over
// [HistoryPoints] slots.
func (r *Renderer) DrawHistory(dst *image.RGBA, values []float64) {
	const (
		padTop    = 20
		padBottom = 20
		padLeft   = 40
	)
	c := r.canvas(dst)
	w, h := float32(r.width), float32(r.height)
	drawH := h - padTop - padBottom
	drawW := w - padLeft
	yOf := func(db float64) float32 {
		db = math.Max(0, math.Min(HistoryMaxDb, db))
		return padTop + drawH - float32(db/HistoryMaxDb)*drawH
	}
	l := r.cfg.Labels

	c.clear(colBackground)

	c.begin()
	for _, db := range []float64{30, 60, 90, 120} {
		y := yOf(db)
		c.segment(padLeft, y, w, y, 1)
	}
	c.fill(image.NewUniform(colGrid))
	for _, db := range []float64{30, 60, 90, 120} {
		label := fmt.Sprint(db)
		if db == HistoryMaxDb {
			label = l.TopDb
		}
		c.text(label, padLeft-5, int(yOf(db))+4, alignRight, colAxis)
	}

	for _, t := range []struct {
		db    float64
		col   color.NRGBA
		label string
	}{
		{85, colDanger, l.Danger},
		{70, colWarning, l.Warning},
	} {
		y := yOf(t.db)
		c.begin()
		c.dashed(padLeft, y, w, y, 1, 4)
		c.fill(image.NewUniform(t.col))
		c.text(t.label, r.width-2, int(y)-4, alignRight, t.col)
	}

	c.text(l.Ago30, padLeft, r.height-6, alignCenter, colAxis)
	c.text(l.Ago15, padLeft+int(drawW/2), r.height-6, alignCenter, colAxis)
	c.text(l.Now, r.width-2, r.height-6, alignRight, colAxis)

	if len(values) < 2 {
		return
	}
	step := drawW / float32(max(HistoryPoints, len(values))-1)
	pts := make([]point, len(values))
	for i, db := range values {
		pts[i] = point{padLeft + float32(i)*step, yOf(db)}
	}
	last := pts[len(pts)-1]
	base := padTop + drawH

	c.begin()
	c.z.MoveTo(pts[0].x, pts[0].y)
	for _, p := range pts[1:] {
		c.z.LineTo(p.x, p.y)
	}
	c.z.LineTo(last.x, base)
	c.z.LineTo(pts[0].x, base)
	c.z.ClosePath()
	c.fill(vgradient{
		y0: padTop,
		y1: float64(h - padBottom),
		stops: []stop{
			{0, color.NRGBA{59, 130, 246, 51}},
			{1, color.NRGBA{59, 130, 246, 0}},
		},
	})

	c.begin()
	c.polyline(pts, 2)
	c.fill(image.NewUniform(colTrace))

	c.begin()
	c.circle(last.x, last.y, 5)
	c.fill(image.NewUniform(colBackground))
	c.begin()
	c.circle(last.x, last.y, 4)
	c.fill(image.NewUniform(colDot))
}
