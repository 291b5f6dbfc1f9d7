// Package imaging holds the raster operations of the magnifier: colour
// normalization, the text overlay compositor, magnification, OCR preprocessing
// and debug dumps.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward. For regions, Min is inclusive and Max is
// exclusive.
//
// # Canonical Pixel Format
//
// Captures arrive in whatever format the screen grabber produces. Before any
// compositing they are converted with Normalize to *image.NRGBA (8 bits per
// channel, non-premultiplied alpha, bounds at the origin). Every operation here
// returns a new image and never writes into its input, so the pristine capture can
// still be shown when a later step fails.
//
// # Text Overlay
//
// Compositor wraps text at a fixed number of characters per line, derived from
// the image width and the font's glyph advance, and not at word boundaries. This
// suits Japanese, which has no spaces between words, but will split English words.
// Each line is drawn below the previous one using its measured height, and the
// block is placed one glyph advance in from the requested origin.
//
// # Fonts
//
// LoadFont reads any TrueType or OpenType font, including collections such as
// NotoSansCJK.ttc. The built-in BasicFont has no CJK glyphs and is only a fallback.
package imaging
