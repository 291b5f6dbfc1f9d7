package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultFontSize is the overlay font size in pixels. It doubles as the glyph
// advance used for wrapping, since CJK glyphs are square.
const DefaultFontSize = 32

// FontProvider measures and draws single lines of text.
type FontProvider interface {
	// GlyphAdvance is the nominal width of one character cell in pixels.
	GlyphAdvance() int

	// MeasureLine returns the rendered width and height of text.
	MeasureLine(text string) (w, h int)

	// DrawLine draws text with its top-left corner at (x, y).
	DrawLine(dst draw.Image, text string, x, y int, c color.Color)
}

// Face is a FontProvider backed by an x/image font.Face.
type Face struct {
	face    font.Face
	advance int
}

// NewFace wraps a font.Face. advance is the glyph cell width used for wrapping.
func NewFace(face font.Face, advance int) *Face {
	return &Face{face: face, advance: advance}
}

// LoadFont loads a TrueType or OpenType font (or the first font of a collection)
// at sizePx pixels.
func LoadFont(path string, sizePx float64) (*Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}

	f, err := opentype.Parse(data)
	if err != nil {
		coll, cerr := opentype.ParseCollection(data)
		if cerr != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
		}
		if f, err = coll.Font(0); err != nil {
			return nil, fmt.Errorf("failed to read first font of %s: %w", path, err)
		}
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return NewFace(face, int(math.Round(sizePx))), nil
}

// BasicFont returns the built-in 7x13 bitmap font. It has no CJK glyphs and is
// only meant as a fallback when no font file is configured.
func BasicFont() *Face {
	return NewFace(basicfont.Face7x13, basicfont.Face7x13.Advance)
}

// GlyphAdvance returns the fixed cell width used for wrapping.
func (f *Face) GlyphAdvance() int { return f.advance }

// MeasureLine returns the width of text and the line height, ascent plus
// descent, in pixels.
func (f *Face) MeasureLine(text string) (int, int) {
	m := f.face.Metrics()
	w := font.MeasureString(f.face, text).Ceil()
	return w, (m.Ascent + m.Descent).Ceil()
}

// DrawLine draws text with its top-left corner at (x, y). The baseline sits one
// ascent below y.
//
// Parameters:
//   - dst: the image to draw on
//   - text: a single line; newlines are not interpreted
//   - x, y: top-left corner of the line in dst coordinates
//   - c: text colour
func (f *Face) DrawLine(dst draw.Image, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + f.face.Metrics().Ascent},
	}
	d.DrawString(text)
}
