package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// textImage renders text with basicfont and scales it up so Tesseract can read it.
func textImage(text string, scale int) *image.RGBA {
	w, h := len(text)*7+40, 40
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h*scale; y++ {
		for x := 0; x < w*scale; x++ {
			img.Set(x, y, small.At(x/scale, y/scale))
		}
	}
	return img
}

func requireTesseract(t *testing.T, lang string) *TesseractEngine {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed")
	}
	e := NewTesseractEngine(TesseractConfig{Languages: lang, PageSegMode: 6})
	if _, err := e.Init(context.Background()); err != nil {
		t.Skipf("tesseract not usable for %s: %v", lang, err)
	}
	return e
}

func TestTesseract_RecognizesRenderedText(t *testing.T) {
	e := requireTesseract(t, "eng")

	res, err := e.Evaluate(context.Background(), textImage("HELLO WORLD", 4))
	require.NoError(t, err)
	assert.Equal(t, BackendTesseract, res.Backend)
	assert.Contains(t, strings.ToUpper(res.FullText), "HELLO")
	assert.Equal(t, strings.Join(res.Lines, "\n"), res.FullText)
	for i, l := range res.StructuredLines {
		for _, w := range l.Words {
			assert.Equal(t, uint16(i), w.LineIndex)
		}
	}
}

func TestTesseract_BlankImageYieldsEmptyResult(t *testing.T) {
	e := requireTesseract(t, "eng")

	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	res, err := e.Evaluate(context.Background(), img)
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Lines)
}

func TestTesseract_EvaluateBeforeInit(t *testing.T) {
	e := NewTesseractEngine(TesseractConfig{})
	_, err := e.Evaluate(context.Background(), textImage("X", 1))
	var rerr *RecognitionError
	require.ErrorAs(t, err, &rerr)
}

func TestTesseract_UnsupportedImage(t *testing.T) {
	e := NewTesseractEngine(TesseractConfig{})
	e.languages = []string{"eng"}

	_, err := e.Evaluate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnsupportedImageFormat)

	_, err = e.Evaluate(context.Background(), image.NewRGBA(image.Rectangle{}))
	assert.ErrorIs(t, err, ErrUnsupportedImageFormat)
}

func TestTesseract_MissingBinaryIsConfigurationError(t *testing.T) {
	e := NewTesseractEngine(TesseractConfig{
		Binary:         "/nonexistent/tesseract",
		TessdataPrefix: t.TempDir(),
	})
	// Skip when language data is found on the host through the usual locations.
	if findTessdata(t.TempDir()) != "" {
		t.Skip("host tessdata found")
	}
	_, err := e.Init(context.Background())
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestNewTesseractEngine_Defaults(t *testing.T) {
	e := NewTesseractEngine(TesseractConfig{})
	assert.Equal(t, DefaultTesseractLanguages, e.cfg.Languages)
	assert.Equal(t, DefaultPageSegMode, e.cfg.PageSegMode)
	assert.Equal(t, "tesseract", e.cfg.Binary)
	assert.Equal(t, BackendTesseract, e.Name())
}

func TestResolveLanguages(t *testing.T) {
	installed := []string{"eng", "jpn", "jpn_vert", "osd"}

	langs, dropped, err := resolveLanguages("jpn+jpn_vert", installed)
	require.NoError(t, err)
	assert.Equal(t, []string{"jpn", "jpn_vert"}, langs)
	assert.Empty(t, dropped)

	langs, _, err = resolveLanguages("auto", installed)
	require.NoError(t, err)
	assert.Equal(t, installed, langs)

	langs, _, err = resolveLanguages("", installed)
	require.NoError(t, err)
	assert.Equal(t, installed, langs)

	_, _, err = resolveLanguages("+", installed)
	assert.Error(t, err)
}

func TestResolveLanguages_DropsMissing(t *testing.T) {
	langs, dropped, err := resolveLanguages("jpn+jpn_vert", []string{"eng", "jpn"})
	require.NoError(t, err)
	assert.Equal(t, []string{"jpn"}, langs)
	assert.Equal(t, []string{"jpn_vert"}, dropped)

	langs, dropped, err = resolveLanguages("jpn+kor", []string{"eng", "jpn", "osd"})
	require.NoError(t, err)
	assert.Equal(t, []string{"jpn"}, langs)
	assert.Equal(t, []string{"kor"}, dropped)
}

func TestResolveLanguages_NoneInstalled(t *testing.T) {
	_, dropped, err := resolveLanguages("kor+chi_sim", []string{"eng"})
	require.Error(t, err)
	assert.Equal(t, []string{"kor", "chi_sim"}, dropped)
	assert.Contains(t, err.Error(), "kor, chi_sim")
}

func TestParseListLangs(t *testing.T) {
	out := `List of available languages in "/usr/share/tesseract-ocr/5/tessdata/" (4):
eng
jpn
jpn_vert
osd
`
	assert.Equal(t, []string{"eng", "jpn", "jpn_vert", "osd"}, parseListLangs(out))
	assert.Empty(t, parseListLangs(""))
}

func TestGroupWords(t *testing.T) {
	lineBoxes := []image.Rectangle{
		image.Rect(0, 0, 200, 20),
		image.Rect(0, 30, 200, 50),
		image.Rect(0, 60, 200, 80), // no words
	}
	words := []Word{
		{Text: "b", Rect: Rect{XMin: 0, YMin: 32, XMax: 10, YMax: 48}},
		{Text: "a", Rect: Rect{XMin: 0, YMin: 2, XMax: 10, YMax: 18}},
		{Text: " ", Rect: Rect{XMin: 20, YMin: 2, XMax: 30, YMax: 18}},
		{Text: "c", Rect: Rect{XMin: 20, YMin: 32, XMax: 30, YMax: 48}},
		{Text: "stray", Rect: Rect{XMin: 500, YMin: 500, XMax: 510, YMax: 510}},
	}

	lines := groupWords(lineBoxes, words)
	require.Len(t, lines, 3)
	assert.Equal(t, "a", lines[0].Text())
	assert.Equal(t, "b c", lines[1].Text())
	assert.Equal(t, "stray", lines[2].Text())
	for i, l := range lines {
		for _, w := range l.Words {
			assert.Equal(t, uint16(i), w.LineIndex)
		}
	}
}

func TestParseTSV(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"1\t1\t0\t0\t0\t0\t0\t0\t640\t480\t-1\t\n" +
		"4\t1\t1\t1\t1\t0\t10\t10\t200\t30\t-1\t\n" +
		"5\t1\t1\t1\t1\t1\t10\t10\t40\t30\t96.5\t日本\n" +
		"5\t1\t1\t1\t1\t2\t50\t10\t40\t30\t91\t語\n" +
		"5\t1\t1\t1\t1\t3\t90\t10\t40\t30\t95\t \n" +
		"5\t1\t1\t1\t2\t1\t10\t50\t60\t30\t88\thello\n" +
		"5\t1\t1\t1\t2\t2\t80\t50\t60\t30\t87\tworld\n"

	lines, err := parseTSV(strings.NewReader(tsv))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "日本語", lines[0].Text())
	assert.Equal(t, "hello world", lines[1].Text())

	w := lines[0].Words[0]
	assert.Equal(t, Rect{XMin: 10, YMin: 10, XMax: 50, YMax: 40}, w.Rect)
	assert.InDelta(t, 0.965, w.Confidence, 1e-9)
	assert.Equal(t, uint16(1), lines[1].Words[1].LineIndex)
	assert.Equal(t, Rect{XMin: 10, YMin: 10, XMax: 90, YMax: 40}, lines[0].Bounds())
}

func TestParseTSV_Malformed(t *testing.T) {
	_, err := parseTSV(strings.NewReader("5\t1\tx\t1\t1\t1\t10\t10\t40\t30\t96\tword\n"))
	assert.Error(t, err)

	_, err = parseTSV(strings.NewReader("5\t1\t1\n"))
	assert.Error(t, err)
}

func TestNewResult_DropsBlankLines(t *testing.T) {
	res := NewResult("test", "first  \n\n  \r\nsecond\n", nil)
	assert.Equal(t, []string{"first", "second"}, res.Lines)
	assert.Equal(t, "first\nsecond", res.FullText)
	assert.NotNil(t, res.StructuredLines)
	assert.False(t, res.Empty())

	assert.True(t, NewResult("test", "\n \n", nil).Empty())
}

func TestLineBounds_Empty(t *testing.T) {
	assert.Equal(t, Rect{}, Line{}.Bounds())
}

func TestPlaceholderLines(t *testing.T) {
	lines := PlaceholderLines([]string{"a", "b"}, image.Rect(0, 0, 30, 20))
	require.Len(t, lines, 2)
	assert.Equal(t, uint16(1), lines[1].Words[0].LineIndex)
	assert.Equal(t, Rect{XMax: 30, YMax: 20}, lines[1].Words[0].Rect)
}

func TestRunWithContext_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	_, err := runWithContext(ctx, func() (*Result, error) {
		<-release
		return &Result{}, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunWithContext_PassesThrough(t *testing.T) {
	want := errors.New("boom")
	_, err := runWithContext(context.Background(), func() (*Result, error) { return nil, want })
	assert.ErrorIs(t, err, want)
}
