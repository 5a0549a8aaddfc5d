// Package plot draws citation tables as stacked bar charts with one bar per year.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/matsen/citegraph/internal/citestats"
)

const (
	DefaultWidth    = 800
	DefaultHeight   = 500
	DefaultFontSize = 12

	marginLeft   = 64
	marginRight  = 20
	marginTop    = 30
	marginBottom = 64
	legendWidth  = 170
	legendSwatch = 10
	legendMaxLen = 24
)

// Options configures rendering.
type Options struct {
	Width    int
	Height   int
	Title    string
	FontPath string // TrueType font file; a built-in bitmap font when empty
	FontSize float64
	// Legend adds a legend when the table has several series.
	Legend bool
}

var (
	background = color.White
	foreground = color.Black
	otherColor = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}

	// palette is the tab10 color cycle.
	palette = []color.NRGBA{
		{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
		{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
		{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
		{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
		{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
		{R: 0xbc, G: 0xbd, B: 0x22, A: 0xff},
		{R: 0x17, G: 0xbe, B: 0xcf, A: 0xff},
	}
)

// layout is the plotting area inside the margins.
type layout struct {
	left, top     float64
	width, height float64
	legend        bool
}

func newLayout(t *citestats.Table, opts Options) layout {
	l := layout{
		left:   marginLeft,
		top:    marginTop,
		legend: opts.Legend && len(t.Series) > 1,
	}
	right := float64(marginRight)
	if l.legend {
		right += legendWidth
	}
	l.width = math.Max(float64(opts.Width)-l.left-right, 1)
	l.height = math.Max(float64(opts.Height)-l.top-marginBottom, 1)
	return l
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	return o
}

// Render draws t and returns the image.
func Render(t *citestats.Table, opts Options) (image.Image, error) {
	dc, err := draw(t, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG draws t and encodes it as PNG to w.
func WritePNG(w io.Writer, t *citestats.Table, opts Options) error {
	dc, err := draw(t, opts)
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// SavePNG draws t and writes it as a PNG file.
func SavePNG(path string, t *citestats.Table, opts Options) error {
	dc, err := draw(t, opts)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}

func draw(t *citestats.Table, opts Options) (*gg.Context, error) {
	opts = opts.withDefaults()

	face := font.Face(basicfont.Face7x13)
	if opts.FontPath != "" {
		var err error
		face, err = loadFontFace(opts.FontPath, opts.FontSize)
		if err != nil {
			return nil, err
		}
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(background)
	dc.Clear()
	dc.SetFontFace(face)

	l := newLayout(t, opts)
	yMax, step := yScale(t.MaxYearTotal())

	drawBars(dc, t, l, yMax)
	drawAxes(dc, t, l, yMax, step)
	if l.legend {
		drawLegend(dc, t, l)
	}
	if opts.Title != "" {
		dc.SetColor(foreground)
		dc.DrawStringAnchored(opts.Title, l.left+l.width/2, marginTop/2, 0.5, 0.5)
	}
	return dc, nil
}

func drawBars(dc *gg.Context, t *citestats.Table, l layout, yMax int) {
	if len(t.Years) == 0 {
		return
	}
	slot := l.width / float64(len(t.Years))
	scale := l.height / float64(yMax)

	for i, y := range t.Years {
		x := l.left + float64(i)*slot
		base := l.top + l.height
		for si, s := range t.Series {
			n := t.Count(y, s)
			if n == 0 {
				continue
			}
			h := float64(n) * scale
			dc.SetColor(seriesColor(si, s))
			dc.DrawRectangle(x+1, base-h, math.Max(slot-2, 1), h)
			dc.Fill()
			base -= h
		}
	}
}

func drawAxes(dc *gg.Context, t *citestats.Table, l layout, yMax, step int) {
	bottom := l.top + l.height

	dc.SetColor(foreground)
	dc.SetLineWidth(1)
	dc.DrawLine(l.left, l.top, l.left, bottom)
	dc.DrawLine(l.left, bottom, l.left+l.width, bottom)
	dc.Stroke()

	for v := 0; v <= yMax; v += step {
		y := bottom - float64(v)/float64(yMax)*l.height
		dc.DrawLine(l.left-4, y, l.left, y)
		dc.Stroke()
		dc.DrawStringAnchored(strconv.Itoa(v), l.left-6, y, 1, 0.5)
	}

	if len(t.Years) > 0 {
		slot := l.width / float64(len(t.Years))
		for i, y := range t.Years {
			cx := l.left + (float64(i)+0.5)*slot
			ly := bottom + 6
			dc.Push()
			dc.RotateAbout(gg.Radians(-90), cx, ly)
			dc.DrawStringAnchored(yearLabel(y), cx, ly, 1, 0.5)
			dc.Pop()
		}
	}

	dc.DrawStringAnchored("Year", l.left+l.width/2, float64(dc.Height())-8, 0.5, 0)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 14, l.top+l.height/2)
	dc.DrawStringAnchored("Citations", 14, l.top+l.height/2, 0.5, 0.5)
	dc.Pop()
}

func drawLegend(dc *gg.Context, t *citestats.Table, l layout) {
	x := l.left + l.width + 16
	y := l.top
	for si := len(t.Series) - 1; si >= 0; si-- {
		s := t.Series[si]
		dc.SetColor(seriesColor(si, s))
		dc.DrawRectangle(x, y, legendSwatch, legendSwatch)
		dc.Fill()
		dc.SetColor(foreground)
		dc.DrawStringAnchored(truncate(s, legendMaxLen), x+legendSwatch+6, y+legendSwatch/2, 0, 0.5)
		y += legendSwatch + 8
	}
}

func seriesColor(i int, series string) color.Color {
	if series == citestats.OtherSeries {
		return otherColor
	}
	return palette[i%len(palette)]
}

// yScale rounds top up to a multiple of a 1-2-5 tick step giving about five ticks.
func yScale(top int) (yMax, step int) {
	if top <= 0 {
		return 1, 1
	}
	step = niceStep(top)
	yMax = (top + step - 1) / step * step
	return yMax, step
}

func niceStep(top int) int {
	raw := float64(top) / 5
	if raw <= 1 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= raw {
			return int(m * mag)
		}
	}
	return int(10 * mag)
}

func yearLabel(y int) string {
	if y == 0 {
		return "?"
	}
	return strconv.Itoa(y)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing TTF: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
