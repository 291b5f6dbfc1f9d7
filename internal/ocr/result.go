package ocr

import (
	"image"
	"strings"
	"unicode"
)

// Rect is a bounding box in image pixel coordinates. Bounds are signed because some
// backends report boxes relative to an origin that can lie outside the image.
type Rect struct {
	XMin int32 `json:"x_min"`
	YMin int32 `json:"y_min"`
	XMax int32 `json:"x_max"`
	YMax int32 `json:"y_max"`
}

// RectFrom converts an image.Rectangle.
func RectFrom(r image.Rectangle) Rect {
	return Rect{
		XMin: int32(r.Min.X),
		YMin: int32(r.Min.Y),
		XMax: int32(r.Max.X),
		YMax: int32(r.Max.Y),
	}
}

// Width returns XMax - XMin.
func (r Rect) Width() int32 { return r.XMax - r.XMin }

// Height returns YMax - YMin.
func (r Rect) Height() int32 { return r.YMax - r.YMin }

// Word is a single recognized word (or glyph run, for scripts without spaces).
type Word struct {
	Text string `json:"text"`

	// LineIndex is the index of the line in Result.StructuredLines that holds the word.
	LineIndex uint16 `json:"line_index"`

	Rect Rect `json:"rect"`

	// Confidence is the backend's confidence in the range 0.0 to 1.0, or -1 when the
	// backend does not report one.
	Confidence float64 `json:"confidence"`
}

// Line is an ordered run of words in the reading order the backend reported.
type Line struct {
	Words []Word `json:"words"`
}

// Bounds returns the union of the word boxes.
func (l Line) Bounds() Rect {
	if len(l.Words) == 0 {
		return Rect{}
	}
	b := l.Words[0].Rect
	for _, w := range l.Words[1:] {
		if w.Rect.XMin < b.XMin {
			b.XMin = w.Rect.XMin
		}
		if w.Rect.YMin < b.YMin {
			b.YMin = w.Rect.YMin
		}
		if w.Rect.XMax > b.XMax {
			b.XMax = w.Rect.XMax
		}
		if w.Rect.YMax > b.YMax {
			b.YMax = w.Rect.YMax
		}
	}
	return b
}

// Text joins the words of the line.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		parts = append(parts, w.Text)
	}
	return joinWords(parts)
}

// Result is the uniform output of every backend.
type Result struct {
	// FullText is Lines joined with "\n".
	FullText string `json:"full_text"`

	// Lines is the recognized text split into non-empty lines.
	Lines []string `json:"lines"`

	// StructuredLines carries per-word positions.
	StructuredLines []Line `json:"structured_lines"`

	// Backend names the engine that produced the result.
	Backend string `json:"backend"`

	// Coarse is set when the word boxes are whole-image placeholders.
	Coarse bool `json:"coarse,omitempty"`
}

// NewResult builds a Result from raw backend text. Blank lines are dropped and
// trailing whitespace is trimmed from each line.
func NewResult(backend, text string, structured []Line) *Result {
	lines := splitLines(text)
	if structured == nil {
		structured = []Line{}
	}
	return &Result{
		FullText:        strings.Join(lines, "\n"),
		Lines:           lines,
		StructuredLines: structured,
		Backend:         backend,
	}
}

// Empty reports whether nothing was recognized.
func (r *Result) Empty() bool {
	return r == nil || strings.TrimSpace(r.FullText) == ""
}

// WordCount returns the number of words across all structured lines.
func (r *Result) WordCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, l := range r.StructuredLines {
		n += len(l.Words)
	}
	return n
}

// PlaceholderLines builds one single-word line per text line, each boxed by the
// whole image. It is used by backends that cannot report word positions.
func PlaceholderLines(lines []string, bounds image.Rectangle) []Line {
	out := make([]Line, 0, len(lines))
	for i, text := range lines {
		out = append(out, Line{Words: []Word{{
			Text:       text,
			LineIndex:  uint16(i),
			Rect:       RectFrom(bounds),
			Confidence: -1,
		}}})
	}
	return out
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRightFunc(l, unicode.IsSpace)
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// joinWords joins words with a space, except between two CJK characters where
// no separator is written.
func joinWords(words []string) string {
	var b strings.Builder
	var prev rune
	for i, w := range words {
		if w == "" {
			continue
		}
		first := []rune(w)[0]
		if i > 0 && b.Len() > 0 && !(isWide(prev) && isWide(first)) {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		r := []rune(w)
		prev = r[len(r)-1]
	}
	return b.String()
}

func isWide(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) ||
		(r >= 0x3000 && r <= 0x303F) || // CJK punctuation
		(r >= 0xFF00 && r <= 0xFFEF) // full-width forms
}
