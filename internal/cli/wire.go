package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ironsheep/lenzu/internal/config"
	"github.com/ironsheep/lenzu/internal/imaging"
	"github.com/ironsheep/lenzu/internal/logging"
	"github.com/ironsheep/lenzu/internal/magnifier"
	"github.com/ironsheep/lenzu/internal/ocr"
	"github.com/ironsheep/lenzu/internal/translate"
	"github.com/rs/zerolog"
)

func ocrOptions(cfg *config.Config, preferPlatform bool, log zerolog.Logger) ocr.SelectOptions {
	return ocr.SelectOptions{
		Backend:        cfg.OCR.Backend,
		PreferPlatform: preferPlatform,
		Tesseract: ocr.TesseractConfig{
			Languages:      cfg.OCR.Languages,
			PageSegMode:    cfg.OCR.PSM,
			TessdataPrefix: cfg.OCR.Tessdata,
			Binary:         cfg.OCR.TesseractPath,
			Logger:         logging.Component(log, "tesseract"),
		},
		Platform: ocr.PlatformConfig{
			Language: cfg.OCR.PlatformLanguage,
			Logger:   logging.Component(log, "platform-ocr"),
		},
	}
}

func translateOptions(cfg *config.Config, log zerolog.Logger) translate.Options {
	t := cfg.Translate
	return translate.Options{
		Backend: t.Backend,
		Kakasi: translate.KakasiConfig{
			Path:     t.KakasiPath,
			Furigana: t.Furigana,
			Encoding: t.Encoding,
			Timeout:  t.Timeout,
		},
		OpenAI: translate.OpenAIConfig{
			BaseURL:        t.OpenAI.BaseURL,
			Model:          t.OpenAI.Model,
			TargetLanguage: t.OpenAI.TargetLanguage,
			APIKey:         t.OpenAI.APIKey,
			Timeout:        t.Timeout,
		},
		CacheSize: t.CacheSize,
		Logger:    logging.Component(log, "translate"),
	}
}

// newCompositor builds the overlay compositor. Without a font file the built-in
// font is used, which cannot draw Japanese.
func newCompositor(cfg *config.Config, log zerolog.Logger) (*imaging.Compositor, error) {
	var face *imaging.Face
	if cfg.Overlay.Font == "" {
		log.Warn().Msg("no overlay.font configured; the built-in font has no Japanese glyphs")
		face = imaging.BasicFont()
	} else {
		f, err := imaging.LoadFont(cfg.Overlay.Font, cfg.Overlay.FontSize)
		if err != nil {
			return nil, err
		}
		face = f
	}

	c := imaging.NewCompositor(face)
	c.Margin = cfg.Overlay.Margin
	col, err := imaging.ParseColor(cfg.Overlay.Color)
	if err != nil {
		return nil, err
	}
	c.Color = col
	return c, nil
}

// stack is everything the pipeline needs, initialized and ready.
type stack struct {
	engine     ocr.Engine
	ocrLangs   []string
	translator translate.Translator
	trLangs    []string
	pipeline   *magnifier.Pipeline
}

// buildStack selects and initializes the OCR engine and translator. Any failure
// here is a configuration problem and ends the program.
func buildStack(ctx context.Context, cfg *config.Config, preferPlatform bool, log zerolog.Logger) (*stack, error) {
	engine, ocrLangs, err := ocr.Select(ctx, ocrOptions(cfg, preferPlatform, log))
	if err != nil {
		return nil, err
	}
	log.Info().Str("backend", engine.Name()).Strs("languages", ocrLangs).Msg("OCR ready")

	translator, err := translate.New(translateOptions(cfg, log))
	if err != nil {
		return nil, err
	}
	trLangs, err := translator.Init(ctx)
	if err != nil {
		if errors.Is(err, translate.ErrUnavailable) {
			return nil, fmt.Errorf("%w (set translate.backend = \"none\" to overlay the recognized text as is)", err)
		}
		return nil, err
	}
	log.Info().Str("translator", translator.Name()).Strs("languages", trLangs).Msg("translator ready")

	compositor, err := newCompositor(cfg, log)
	if err != nil {
		return nil, err
	}

	pipeline := magnifier.NewPipeline(engine, translator, compositor, magnifier.PipelineOptions{
		OCRTimeout:       cfg.OCR.Timeout,
		TranslateTimeout: cfg.Translate.Timeout,
		Contrast:         cfg.OCR.Contrast,
		CropToText:       cfg.OCR.CropToText,
		Dumper:           &imaging.Dumper{Dir: cfg.Debug.DumpDir},
	}, logging.Component(log, "pipeline"))

	return &stack{
		engine:     engine,
		ocrLangs:   ocrLangs,
		translator: translator,
		trLangs:    trLangs,
		pipeline:   pipeline,
	}, nil
}
