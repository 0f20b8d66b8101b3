// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/tiles/artwork.go
// Summary: Decodes tile artwork and samples it into half-block cells.
// Usage: Each terminal cell shows two vertical pixels ('▀' with foreground
// for the upper pixel and background for the lower one). The image is
// scaled to cover the tile and cropped around its center.

package tiles

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// samplesPerAxis bounds how many source pixels are averaged per axis for
// each output pixel.
const samplesPerAxis = 4

type thumbKey struct {
	path       string
	cols, rows int
}

// thumbnail holds the sampled colors of one tile: px has rows*2 lines of
// cols colors.
type thumbnail struct {
	cols, rows int
	px         [][]tcell.Color
	err        error
}

// top and bottom return the colors for the upper and lower half of cell
// (x, y).
func (t *thumbnail) top(x, y int) tcell.Color    { return t.px[2*y][x] }
func (t *thumbnail) bottom(x, y int) tcell.Color { return t.px[2*y+1][x] }

func loadThumbnail(path string, cols, rows int) *thumbnail {
	f, err := os.Open(path)
	if err != nil {
		return &thumbnail{err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return &thumbnail{err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return coverSample(img, cols, rows)
}

// coverSample scales img to cover a cols x rows*2 pixel area, cropping the
// overflow evenly on both sides, and averages each output pixel.
func coverSample(img image.Image, cols, rows int) *thumbnail {
	tw, th := cols, rows*2
	t := &thumbnail{cols: cols, rows: rows, px: make([][]tcell.Color, th)}

	b := img.Bounds()
	iw, ih := b.Dx(), b.Dy()
	if iw == 0 || ih == 0 || tw == 0 || th == 0 {
		for y := range t.px {
			t.px[y] = make([]tcell.Color, tw)
		}
		return t
	}

	cropW, cropH := iw, ih
	if iw*th > ih*tw {
		cropW = ih * tw / th
	} else {
		cropH = iw * th / tw
	}
	if cropW < 1 {
		cropW = 1
	}
	if cropH < 1 {
		cropH = 1
	}
	ox := b.Min.X + (iw-cropW)/2
	oy := b.Min.Y + (ih-cropH)/2

	for ty := 0; ty < th; ty++ {
		y0 := oy + ty*cropH/th
		y1 := oy + (ty+1)*cropH/th
		if y1 <= y0 {
			y1 = y0 + 1
		}
		row := make([]tcell.Color, tw)
		for tx := 0; tx < tw; tx++ {
			x0 := ox + tx*cropW/tw
			x1 := ox + (tx+1)*cropW/tw
			if x1 <= x0 {
				x1 = x0 + 1
			}
			row[tx] = averageColor(img, x0, y0, x1, y1)
		}
		t.px[ty] = row
	}
	return t
}

// averageColor averages the region [x0,x1) x [y0,y1) in linear RGB.
// Fully transparent pixels are skipped.
func averageColor(img image.Image, x0, y0, x1, y1 int) tcell.Color {
	stepX := (x1 - x0) / samplesPerAxis
	if stepX < 1 {
		stepX = 1
	}
	stepY := (y1 - y0) / samplesPerAxis
	if stepY < 1 {
		stepY = 1
	}

	var r, g, b float64
	n := 0
	for y := y0; y < y1; y += stepY {
		for x := x0; x < x1; x += stepX {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			lr, lg, lb := c.LinearRgb()
			r += lr
			g += lg
			b += lb
			n++
		}
	}
	if n == 0 {
		return tcell.ColorBlack
	}

	avg := colorful.LinearRgb(r/float64(n), g/float64(n), b/float64(n)).Clamped()
	cr, cg, cb := avg.RGB255()
	return tcell.NewRGBColor(int32(cr), int32(cg), int32(cb))
}
