package magnifier

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsheep/lenzu/internal/imaging"
	"github.com/ironsheep/lenzu/internal/translate"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

func TestPipeline_Success(t *testing.T) {
	engine := &fakeEngine{text: "漢字\nかな"}
	tr := &fakeTranslator{prefix: "> "}
	p := NewPipeline(engine, tr, newTestCompositor(), PipelineOptions{}, zerolog.Nop())

	raw := solidImage(120, 60)
	out := p.Run(context.Background(), raw)

	require.NoError(t, out.OCRErr)
	require.NoError(t, out.TranslateErr)
	require.NoError(t, out.ComposeErr)
	assert.Equal(t, []string{"漢字", "かな"}, out.OCR.Lines)
	assert.Equal(t, []string{"漢字\nかな"}, tr.inputs)
	require.NotNil(t, out.Translation)
	assert.Equal(t, "> 漢字\nかな", out.Text)
	require.NotNil(t, out.Composed)
	assert.Same(t, out.Composed, out.Display())

	// The overlay lands one advance in from the corner; the capture is untouched.
	composed := out.Composed.(*image.NRGBA)
	assert.Equal(t, imaging.DefaultTextColor, composed.NRGBAAt(4, 4))
	assert.Equal(t, uint8(0), raw.NRGBAAt(4, 4).R)
}

func TestPipeline_NilTranslatorOverlaysOCRText(t *testing.T) {
	p := NewPipeline(&fakeEngine{text: "日本"}, nil, newTestCompositor(), PipelineOptions{}, zerolog.Nop())
	out := p.Run(context.Background(), solidImage(40, 20))

	assert.Nil(t, out.Translation)
	assert.Equal(t, "日本", out.Text)
	assert.NotNil(t, out.Composed)
}

func TestPipeline_TranslationFailureOverlaysOCRText(t *testing.T) {
	tr := &fakeTranslator{err: errFake}
	p := NewPipeline(&fakeEngine{text: "日本"}, tr, newTestCompositor(), PipelineOptions{}, zerolog.Nop())
	out := p.Run(context.Background(), solidImage(40, 20))

	assert.ErrorIs(t, out.TranslateErr, errFake)
	assert.Nil(t, out.Translation)
	assert.Equal(t, "日本", out.Text)
	assert.NotNil(t, out.Composed)
}

func TestPipeline_ComposeFailureShowsRaw(t *testing.T) {
	tr := &fakeTranslator{prefix: "> "}
	p := NewPipeline(&fakeEngine{text: "日本"}, tr, &imaging.Compositor{}, PipelineOptions{}, zerolog.Nop())

	raw := solidImage(40, 20)
	out := p.Run(context.Background(), raw)

	require.NoError(t, out.OCRErr)
	require.NoError(t, out.TranslateErr)
	assert.Error(t, out.ComposeErr)
	assert.Equal(t, "> 日本", out.Text, "the text that failed to compose is still recorded")
	assert.Nil(t, out.Composed)
	assert.Same(t, raw, out.Display())
}

// emptyTranslator succeeds with no output.
type emptyTranslator struct{}

func (emptyTranslator) Name() string { return "empty" }

func (emptyTranslator) Init(context.Context) ([]string, error) { return nil, nil }

func (emptyTranslator) Convert(context.Context, string) (*translate.Result, error) {
	return translate.NewResult("\n"), nil
}

func TestPipeline_EmptyTranslationOverlaysOCRText(t *testing.T) {
	p := NewPipeline(&fakeEngine{text: "日本"}, emptyTranslator{}, newTestCompositor(), PipelineOptions{}, zerolog.Nop())
	out := p.Run(context.Background(), solidImage(40, 20))

	assert.NoError(t, out.TranslateErr)
	assert.Nil(t, out.Translation)
	assert.Equal(t, "日本", out.Text)
	assert.NotNil(t, out.Composed)
}

func TestPipeline_NoTextShowsRaw(t *testing.T) {
	tr := &fakeTranslator{}
	p := NewPipeline(&fakeEngine{text: "  \n\n"}, tr, newTestCompositor(), PipelineOptions{}, zerolog.Nop())
	raw := solidImage(40, 20)
	out := p.Run(context.Background(), raw)

	require.NoError(t, out.OCRErr)
	assert.True(t, out.OCR.Empty())
	assert.Empty(t, tr.inputs, "nothing to translate")
	assert.Nil(t, out.Composed)
	assert.Same(t, raw, out.Display())
}

func TestPipeline_OCRTimeout(t *testing.T) {
	engine := &fakeEngine{block: true}
	p := NewPipeline(engine, nil, newTestCompositor(), PipelineOptions{OCRTimeout: 20 * time.Millisecond}, zerolog.Nop())
	raw := solidImage(40, 20)

	start := time.Now()
	out := p.Run(context.Background(), raw)

	assert.ErrorIs(t, out.OCRErr, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, "fake", out.OCR.Backend)
	assert.Same(t, raw, out.Display())
}

func TestPipeline_ContrastPreprocessesOCRInputOnly(t *testing.T) {
	engine := &fakeEngine{text: "字"}
	p := NewPipeline(engine, nil, newTestCompositor(), PipelineOptions{Contrast: 20}, zerolog.Nop())
	raw := solidImage(40, 20)
	out := p.Run(context.Background(), raw)

	require.Len(t, engine.images, 1)
	_, gray := engine.images[0].(*image.Gray)
	assert.True(t, gray, "OCR input should be grayscale")
	assert.Same(t, raw, out.Raw)
	assert.IsType(t, &image.NRGBA{}, out.Composed)
}

func TestPipeline_DumpsStages(t *testing.T) {
	dir := t.TempDir()
	opts := PipelineOptions{Dumper: &imaging.Dumper{Dir: dir}}
	p := NewPipeline(&fakeEngine{text: "字"}, nil, newTestCompositor(), opts, zerolog.Nop())
	p.Run(context.Background(), solidImage(40, 20))

	raw, err := filepath.Glob(filepath.Join(dir, "raw-*.png"))
	require.NoError(t, err)
	composed, err := filepath.Glob(filepath.Join(dir, "composed-*.png"))
	require.NoError(t, err)
	assert.Len(t, raw, 1)
	assert.Len(t, composed, 1)

	info, err := os.Stat(composed[0])
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPipeline_CropToTextKeepsBlankCapture(t *testing.T) {
	engine := &fakeEngine{text: "字"}
	p := NewPipeline(engine, nil, newTestCompositor(), PipelineOptions{CropToText: true}, zerolog.Nop())
	raw := solidImage(240, 120)
	p.Run(context.Background(), raw)

	require.Len(t, engine.images, 1)
	assert.Same(t, raw, engine.images[0], "nothing looks like text, so the whole capture is recognized")
}
