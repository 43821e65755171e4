// Package chart draws the categorical bar chart of raw inputs as a PNG.
package chart

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kjstillabower/solar-power-service/internal/report"
)

// Palette assigns one colour per category, cycling if there are more bars than colours.
var Palette = []color.RGBA{
	{0x4c, 0x78, 0xa8, 0xff},
	{0xf5, 0x85, 0x18, 0xff},
	{0xe4, 0x57, 0x56, 0xff},
	{0x72, 0xb7, 0xb2, 0xff},
	{0x54, 0xa2, 0x4b, 0xff},
	{0xee, 0xca, 0x3b, 0xff},
	{0xb2, 0x79, 0xa2, 0xff},
	{0xff, 0x9d, 0xa6, 0xff},
	{0x9d, 0x75, 0x5d, 0xff},
}

// Options controls the rendered size. Zero values take defaults.
type Options struct {
	Width  int
	Height int
}

const (
	defaultWidth  = 800
	defaultHeight = 360
	legendWidth   = 240
	margin        = 24
	lineHeight    = 16
)

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	axisColor  = color.RGBA{0x66, 0x66, 0x66, 0xff}
	textColor  = color.RGBA{0x22, 0x22, 0x22, 0xff}
)

// Render draws bars into a new RGBA image.
func Render(bars []report.Bar, opts Options) (*image.RGBA, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("chart: no bars")
	}
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	if w <= legendWidth+2*margin || h <= 4*margin {
		return nil, fmt.Errorf("chart: %dx%d too small", w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	plot := image.Rect(margin, margin, w-legendWidth-margin, h-margin)
	lo, hi := valueRange(bars)
	scale := float64(plot.Dy()) / (hi - lo)
	baseline := plot.Max.Y - int(math.Round(-lo*scale))

	// Axis at zero.
	fillRect(img, image.Rect(plot.Min.X, baseline, plot.Max.X, baseline+1), axisColor)

	slot := plot.Dx() / len(bars)
	gap := slot / 5
	for i, b := range bars {
		x0 := plot.Min.X + i*slot + gap/2
		x1 := x0 + slot - gap
		top := baseline - int(math.Round(b.Value*scale))
		r := image.Rect(x0, top, x1, baseline)
		if top > baseline {
			r = image.Rect(x0, baseline, x1, top)
		}
		fillRect(img, r.Canon(), colorAt(i))

		label := strconv.FormatFloat(b.Value, 'g', 6, 64)
		ly := r.Min.Y - 4
		if b.Value < 0 {
			ly = r.Max.Y + lineHeight - 2
		}
		drawText(img, x0, ly, label)
	}

	lx := w - legendWidth
	for i, b := range bars {
		y := margin + i*(lineHeight+4)
		fillRect(img, image.Rect(lx, y, lx+12, y+12), colorAt(i))
		drawText(img, lx+18, y+11, b.Label)
	}
	return img, nil
}

// RenderPNG encodes the chart for bars as PNG.
func RenderPNG(wr io.Writer, bars []report.Bar, opts Options) error {
	img, err := Render(bars, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(wr, img); err != nil {
		return fmt.Errorf("chart: encode png: %w", err)
	}
	return nil
}

// valueRange returns the y-axis extent, always including zero and never empty.
func valueRange(bars []report.Bar) (lo, hi float64) {
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	// Leave headroom for value labels.
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	if hi > 0 || lo == 0 {
		hi += pad
	}
	if lo < 0 {
		lo -= pad
	}
	return lo, hi
}

func colorAt(i int) color.RGBA {
	return Palette[i%len(Palette)]
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func drawText(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
