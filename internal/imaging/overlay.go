package imaging

import (
	"errors"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultMargin is the number of character cells kept free at the right edge.
const DefaultMargin = 10

// DefaultTextColor is the overlay colour, an opaque bold red that reads well on
// most backgrounds.
var DefaultTextColor = color.NRGBA{R: 0xff, G: 0x40, B: 0x40, A: 0xff}

// Compositor draws wrapped text onto captured images.
type Compositor struct {
	Font   FontProvider
	Color  color.NRGBA
	Margin int
}

// NewCompositor returns a Compositor with the default colour and margin.
func NewCompositor(f FontProvider) *Compositor {
	return &Compositor{Font: f, Color: DefaultTextColor, Margin: DefaultMargin}
}

// Compose returns a new image with text drawn over base. The text block is placed
// one glyph advance right of and below (originX, originY). Each newline-separated
// paragraph is wrapped to the number of characters that fit in the image width.
//
// An empty text returns a normalized copy of base. base itself is never modified.
func (c *Compositor) Compose(base image.Image, text string, originX, originY int) (*image.NRGBA, error) {
	dst, err := Normalize(base)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return dst, nil
	}
	if c.Font == nil {
		return nil, errors.New("compositor has no font")
	}

	advance := c.Font.GlyphAdvance()
	if advance <= 0 {
		return nil, errors.New("font glyph advance must be positive")
	}

	n := AvailableChars(dst.Bounds().Dx(), advance, c.Margin)
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, Wrap(para, n)...)
	}

	canvas := c.render(lines, advance)
	return imaging.Overlay(dst, canvas, image.Pt(originX+advance, originY+advance), 1.0), nil
}

// render draws lines on a transparent canvas. Each line starts where the previous
// one's measured height ends.
func (c *Compositor) render(lines []string, advance int) *image.NRGBA {
	longest, width, height := 0, 0, 0
	heights := make([]int, len(lines))
	for i, l := range lines {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
		w, h := c.Font.MeasureLine(l)
		if w > width {
			width = w
		}
		heights[i] = h
		height += h
	}
	width = max(width, longest*advance, 1)
	height = max(height, len(lines)*advance, 1)

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	textColor := c.Color
	if textColor == (color.NRGBA{}) {
		textColor = DefaultTextColor
	}

	y := 0
	for i, l := range lines {
		c.Font.DrawLine(canvas, l, 0, y, textColor)
		y += heights[i]
	}
	return canvas
}

// AvailableChars returns how many glyph cells fit on one line of an image of the
// given width, minus margin cells, never less than one.
func AvailableChars(width, advance, margin int) int {
	if advance <= 0 {
		return 1
	}
	return max(width/advance-margin, 1)
}

// Wrap breaks text into lines of at most n runes, breaking after every n-th rune
// regardless of word boundaries. Whitespace is kept. Joining the lines gives back
// text; an exact multiple of n produces no trailing empty line.
func Wrap(text string, n int) []string {
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return []string{text}
	}
	lines := make([]string, 0, (len(runes)+n-1)/n)
	for start := 0; start < len(runes); start += n {
		end := min(start+n, len(runes))
		lines = append(lines, string(runes[start:end]))
	}
	return lines
}
