package viz

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

var face font.Face = basicfont.Face7x13

// canvas wraps a destination image and a reusable rasterizer.
type canvas struct {
	dst *image.RGBA
	z   *vector.Rasterizer
}

func (c *canvas) begin() {
	b := c.dst.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
	c.z.DrawOp = draw.Over
}

func (c *canvas) fill(src image.Image) {
	c.z.Draw(c.dst, c.dst.Bounds(), src, c.dst.Bounds().Min)
}

func (c *canvas) clear(col color.Color) {
	draw.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) rect(x, y, w, h float32) {
	c.z.MoveTo(x, y)
	c.z.LineTo(x+w, y)
	c.z.LineTo(x+w, y+h)
	c.z.LineTo(x, y+h)
	c.z.ClosePath()
}

// roundTop adds a rectangle whose top corners are rounded by r.
func (c *canvas) roundTop(x, y, w, h, r float32) {
	r = min(r, w/2, h)
	c.z.MoveTo(x, y+h)
	c.z.LineTo(x, y+r)
	c.z.QuadTo(x, y, x+r, y)
	c.z.LineTo(x+w-r, y)
	c.z.QuadTo(x+w, y, x+w, y+r)
	c.z.LineTo(x+w, y+h)
	c.z.ClosePath()
}

// segment adds a line of the given width as a quad.
func (c *canvas) segment(x0, y0, x1, y1, width float32) {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	c.z.MoveTo(x0+nx, y0+ny)
	c.z.LineTo(x1+nx, y1+ny)
	c.z.LineTo(x1-nx, y1-ny)
	c.z.LineTo(x0-nx, y0-ny)
	c.z.ClosePath()
}

// dashed adds a dashed line with equal dash and gap lengths.
func (c *canvas) dashed(x0, y0, x1, y1, width, dash float32) {
	l := float32(math.Hypot(float64(x1-x0), float64(y1-y0)))
	if l == 0 {
		return
	}
	ux, uy := (x1-x0)/l, (y1-y0)/l
	for s := float32(0); s < l; s += 2 * dash {
		e := min(s+dash, l)
		c.segment(x0+ux*s, y0+uy*s, x0+ux*e, y0+uy*e, width)
	}
}

// polyline adds the segments joining pts.
func (c *canvas) polyline(pts []point, width float32) {
	for i := 1; i < len(pts); i++ {
		c.segment(pts[i-1].x, pts[i-1].y, pts[i].x, pts[i].y, width)
	}
}

// circle adds a polygonal disc.
func (c *canvas) circle(cx, cy, r float32) {
	const n = 32
	c.z.MoveTo(cx+r, cy)
	for i := 1; i < n; i++ {
		a := 2 * math.Pi * float64(i) / n
		c.z.LineTo(cx+r*float32(math.Cos(a)), cy+r*float32(math.Sin(a)))
	}
	c.z.ClosePath()
}

// text draws s with its baseline at y.
func (c *canvas) text(s string, x, y int, a align, col color.Color) {
	w := font.MeasureString(face, s).Ceil()
	switch a {
	case alignCenter:
		x -= w / 2
	case alignRight:
		x -= w
	}
	d := font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(c.dst.Bounds().Min.X+x, c.dst.Bounds().Min.Y+y),
	}
	d.DrawString(s)
}

type point struct{ x, y float32 }

type stop struct {
	at float64
	c  color.NRGBA
}

// vgradient is a vertical colour ramp from y0 (first stop) to y1 (last stop).
type vgradient struct {
	y0, y1 float64
	stops  []stop
}

func (g vgradient) ColorModel() color.Model { return color.NRGBAModel }

func (g vgradient) Bounds() image.Rectangle {
	return image.Rect(-1<<20, -1<<20, 1<<20, 1<<20)
}

func (g vgradient) At(_, y int) color.Color {
	t := 0.0
	if g.y1 != g.y0 {
		t = (float64(y) + 0.5 - g.y0) / (g.y1 - g.y0)
	}
	t = math.Max(0, math.Min(1, t))
	for i := 1; i < len(g.stops); i++ {
		a, b := g.stops[i-1], g.stops[i]
		if t <= b.at {
			f := 0.0
			if b.at > a.at {
				f = (t - a.at) / (b.at - a.at)
			}
			return lerp(a.c, b.c, f)
		}
	}
	return g.stops[len(g.stops)-1].c
}

func lerp(a, b color.NRGBA, f float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return color.NRGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}

func hex(v uint32) color.NRGBA {
	return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}
