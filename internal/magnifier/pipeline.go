package magnifier

import (
	"context"
	"image"
	"time"

	"github.com/ironsheep/lenzu/internal/imaging"
	"github.com/ironsheep/lenzu/internal/ocr"
	"github.com/ironsheep/lenzu/internal/translate"
	"github.com/rs/zerolog"
)

// PipelineOptions tunes a Pipeline.
type PipelineOptions struct {
	// OCRTimeout and TranslateTimeout bound each backend call. Zero means no limit.
	OCRTimeout       time.Duration
	TranslateTimeout time.Duration

	// Contrast, when non-zero, converts the capture to grayscale with this contrast
	// change before OCR.
	Contrast float64

	// CropToText narrows the OCR input to the area that looks like text.
	CropToText bool

	// Dumper, when enabled, receives the raw and composed images.
	Dumper *imaging.Dumper
}

// Text block detection for CropToText.
const (
	textConfidence = 0.3
	textPadding    = 8
)

// Pipeline recognizes, translates and overlays the text of one capture.
type Pipeline struct {
	engine     ocr.Engine
	translator translate.Translator
	compositor *imaging.Compositor
	opts       PipelineOptions
	log        zerolog.Logger
}

// NewPipeline creates a Pipeline. translator may be nil, in which case the
// recognized text is overlaid as is.
func NewPipeline(engine ocr.Engine, translator translate.Translator, compositor *imaging.Compositor,
	opts PipelineOptions, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		engine:     engine,
		translator: translator,
		compositor: compositor,
		opts:       opts,
		log:        log,
	}
}

// Outcome records every step of one pipeline run. Failed steps leave their error
// set and the later steps fall back to what is available.
type Outcome struct {
	Raw image.Image

	OCR    *ocr.Result
	OCRErr error

	Translation  *translate.Result
	TranslateErr error

	// Text is what was drawn: the translation, or the OCR text when translation failed.
	Text string

	Composed   image.Image
	ComposeErr error
}

// Display returns the composed image, or the raw capture when composition did not
// happen.
func (o *Outcome) Display() image.Image {
	if o.Composed != nil {
		return o.Composed
	}
	return o.Raw
}

// Run processes raw. It never fails as a whole: every error is recorded in the
// Outcome and the raw capture remains presentable.
func (p *Pipeline) Run(ctx context.Context, raw image.Image) *Outcome {
	out := &Outcome{Raw: raw}
	p.dump("raw", raw)

	src := raw
	if p.opts.Contrast != 0 && raw != nil {
		src = imaging.PrepareForOCR(raw, p.opts.Contrast)
	}
	if p.opts.CropToText && src != nil {
		src = p.cropToText(src)
	}

	ocrCtx, cancel := withTimeout(ctx, p.opts.OCRTimeout)
	start := time.Now()
	res, err := p.engine.Evaluate(ocrCtx, src)
	cancel()
	if err != nil {
		p.log.Warn().Err(err).Str("backend", p.engine.Name()).Msg("OCR failed; showing raw capture")
		out.OCRErr = err
		out.OCR = &ocr.Result{Backend: p.engine.Name(), Lines: []string{}, StructuredLines: []ocr.Line{}}
		return out
	}
	out.OCR = res
	p.log.Debug().
		Dur("elapsed", time.Since(start)).
		Int("lines", len(res.Lines)).
		Str("text", res.FullText).
		Msg("OCR result")

	if res.Empty() {
		p.log.Info().Msg("no text recognized")
		return out
	}

	text := res.FullText
	if p.translator != nil {
		trCtx, cancel := withTimeout(ctx, p.opts.TranslateTimeout)
		start = time.Now()
		tr, err := p.translator.Convert(trCtx, text)
		cancel()
		switch {
		case err != nil:
			p.log.Warn().Err(err).Str("translator", p.translator.Name()).Msg("translation failed; overlaying OCR text")
			out.TranslateErr = err
		case tr.Empty():
			p.log.Debug().Msg("translation empty; overlaying OCR text")
		default:
			out.Translation = tr
			text = tr.Text
			p.log.Debug().Dur("elapsed", time.Since(start)).Str("text", text).Msg("translated")
		}
	}
	out.Text = text

	composed, err := p.compositor.Compose(raw, text, 0, 0)
	if err != nil {
		p.log.Warn().Err(err).Msg("compose failed; showing raw capture")
		out.ComposeErr = err
		return out
	}
	out.Composed = composed
	p.dump("composed", composed)
	return out
}

func (p *Pipeline) cropToText(img image.Image) image.Image {
	block, ok := imaging.TextBlock(img, textConfidence, textPadding)
	if !ok || block == img.Bounds() {
		return img
	}
	cropped, err := imaging.Crop(img, block)
	if err != nil {
		p.log.Debug().Err(err).Msg("text crop failed; using the whole capture")
		return img
	}
	p.log.Debug().Stringer("block", block).Msg("cropped OCR input to text")
	return cropped
}

func (p *Pipeline) dump(stage string, img image.Image) {
	if !p.opts.Dumper.Enabled() {
		return
	}
	path, err := p.opts.Dumper.Dump(stage, img)
	if err != nil {
		p.log.Warn().Err(err).Str("stage", stage).Msg("debug dump failed")
		return
	}
	p.log.Debug().Str("path", path).Str("stage", stage).Msg("dumped image")
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
