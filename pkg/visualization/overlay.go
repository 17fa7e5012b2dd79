// Package visualization renders detection results on top of the source
// image: a circle per selected star sized by its area, and the edges of
// every quad colored by the seed that produced it.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"

	"starquads/pkg/pipeline"
	"starquads/pkg/quads"
)

// Overlay draws pipeline results onto a copy of the source image.
type Overlay struct {
	source image.Image
	result *pipeline.Result

	// starColor outlines selected stars; quads get per-seed hues.
	starColor color.RGBA
}

// NewOverlay creates an overlay renderer for the given source image and
// result. The source may be nil, in which case a black canvas of the
// result's dimensions is used.
func NewOverlay(source image.Image, result *pipeline.Result) *Overlay {
	return &Overlay{
		source:    source,
		result:    result,
		starColor: color.RGBA{R: 255, G: 255, B: 0, A: 255},
	}
}

// Render produces the annotated image.
func (o *Overlay) Render() (image.Image, error) {
	if o.result == nil {
		return nil, fmt.Errorf("no result to render")
	}
	if o.result.Width <= 0 || o.result.Height <= 0 {
		return nil, fmt.Errorf("result has invalid dimensions %dx%d", o.result.Width, o.result.Height)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, o.result.Width, o.result.Height))
	if o.source != nil {
		draw.Draw(canvas, canvas.Bounds(), o.source, o.source.Bounds().Min, draw.Src)
	}

	// Quad edges go underneath the star markers. Hues are spread evenly
	// over the seed groups so neighboring groups stay distinguishable.
	seeds := len(o.result.SeedQuads)
	for i, sq := range o.result.SeedQuads {
		hue := 360 * float64(i) / float64(max(seeds, 1))
		c := rgba(colorful.Hsv(hue, 0.9, 1))
		for _, q := range sq.Quads {
			if q.Degenerate {
				continue
			}
			o.drawQuadEdges(canvas, q.Stars, c)
		}
	}

	for _, s := range o.result.Stars {
		radius := int(math.Ceil(math.Sqrt(s.Area/math.Pi))) + 2
		drawCircle(canvas, int(math.Round(s.Centroid.X)), int(math.Round(s.Centroid.Y)), radius, o.starColor)
	}

	return canvas, nil
}

// drawQuadEdges connects all 6 star pairs of a quad.
func (o *Overlay) drawQuadEdges(canvas *image.RGBA, stars [4]quads.StarInfo, c color.RGBA) {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			drawLine(canvas,
				int(math.Round(stars[i].X)), int(math.Round(stars[i].Y)),
				int(math.Round(stars[j].X)), int(math.Round(stars[j].Y)), c)
		}
	}
}

// SavePNG renders the overlay and writes it to a PNG file.
func (o *Overlay) SavePNG(filename string) error {
	img, err := o.Render()
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawLine rasterizes a segment with Bresenham's algorithm, skipping
// pixels outside the canvas.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		setPixel(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawCircle rasterizes a circle outline with the midpoint algorithm.
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	if radius <= 0 {
		setPixel(img, cx, cy, c)
		return
	}

	x, y := radius, 0
	err := 1 - radius
	for x >= y {
		setPixel(img, cx+x, cy+y, c)
		setPixel(img, cx+y, cy+x, c)
		setPixel(img, cx-y, cy+x, c)
		setPixel(img, cx-x, cy+y, c)
		setPixel(img, cx-x, cy-y, c)
		setPixel(img, cx-y, cy-x, c)
		setPixel(img, cx+y, cy-x, c)
		setPixel(img, cx+x, cy-y, c)

		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
