package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultPlatformLanguage is the BCP-47 tag requested from the OS recognizer.
const DefaultPlatformLanguage = "ja"

// PlatformConfig configures a PlatformEngine.
type PlatformConfig struct {
	// Language is a BCP-47 tag such as "ja".
	Language string

	Logger zerolog.Logger
}

// platformRunner talks to the OS recognizer. Implementations live in the
// per-platform files; platforms without a recognizer have none.
type platformRunner interface {
	// Supported reports whether the language is installed in the user profile.
	Supported(ctx context.Context, language string) (bool, error)

	// Recognize returns the recognizer's JSON document for a PNG image.
	Recognize(ctx context.Context, language string, png []byte) ([]byte, error)
}

// PlatformEngine recognizes text with the operating system's built-in OCR.
type PlatformEngine struct {
	cfg    PlatformConfig
	log    zerolog.Logger
	runner platformRunner
}

// NewPlatformEngine creates an engine for the current platform.
func NewPlatformEngine(cfg PlatformConfig) *PlatformEngine {
	if cfg.Language == "" {
		cfg.Language = DefaultPlatformLanguage
	}
	return &PlatformEngine{
		cfg:    cfg,
		log:    cfg.Logger.With().Str("backend", BackendPlatform).Logger(),
		runner: newPlatformRunner(),
	}
}

// Name returns "platform".
func (e *PlatformEngine) Name() string { return BackendPlatform }

// Init checks that the recognizer exists and that the configured language is
// installed. A missing language is a configuration error.
func (e *PlatformEngine) Init(ctx context.Context) ([]string, error) {
	if e.runner == nil {
		return nil, &ConfigurationError{
			Backend: BackendPlatform,
			Reason:  fmt.Sprintf("no built-in OCR on %s", runtime.GOOS),
			Err:     ErrBackendUnavailable,
		}
	}

	ok, err := e.runner.Supported(ctx, e.cfg.Language)
	if err != nil {
		return nil, &ConfigurationError{
			Backend: BackendPlatform,
			Reason:  "cannot query the OS recognizer",
			Err:     fmt.Errorf("%w: %v", ErrBackendUnavailable, err),
		}
	}
	if !ok {
		return nil, &ConfigurationError{
			Backend: BackendPlatform,
			Reason: fmt.Sprintf("language %q is not installed; add it under Settings > Time & Language > Language",
				e.cfg.Language),
		}
	}

	e.log.Info().Str("language", e.cfg.Language).Msg("platform OCR ready")
	return []string{e.cfg.Language}, nil
}

// Evaluate recognizes the text in img.
func (e *PlatformEngine) Evaluate(ctx context.Context, img image.Image) (*Result, error) {
	if e.runner == nil {
		return nil, &RecognitionError{Backend: BackendPlatform, Err: ErrBackendUnavailable}
	}
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	out, err := e.runner.Recognize(ctx, e.cfg.Language, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RecognitionError{Backend: BackendPlatform, Err: err}
	}

	res, err := parsePlatformOutput(out, img.Bounds())
	if err != nil {
		return nil, &RecognitionError{Backend: BackendPlatform, Detail: "malformed recognizer output", Err: err}
	}
	e.log.Debug().Int("lines", len(res.Lines)).Bool("coarse", res.Coarse).Msg("recognized")
	return res, nil
}

type platformDoc struct {
	Text  string         `json:"text"`
	Lines []platformLine `json:"lines"`
}

type platformLine struct {
	Text  string         `json:"text"`
	Words []platformWord `json:"words"`
}

type platformWord struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// parsePlatformOutput converts the recognizer's JSON document into a Result. When
// the recognizer reports lines without words, the lines get whole-image
// placeholder boxes and the result is marked coarse.
func parsePlatformOutput(data []byte, bounds image.Rectangle) (*Result, error) {
	data = []byte(strings.TrimPrefix(string(data), "\ufeff"))

	var doc platformDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(doc.Lines))
	structured := make([]Line, 0, len(doc.Lines))
	coarse := false

	for _, pl := range doc.Lines {
		if strings.TrimSpace(pl.Text) == "" && len(pl.Words) == 0 {
			continue
		}
		idx := uint16(len(structured))
		line := Line{}
		for _, pw := range pl.Words {
			x, y := int32(pw.X), int32(pw.Y)
			line.Words = append(line.Words, Word{
				Text:       pw.Text,
				LineIndex:  idx,
				Rect:       Rect{XMin: x, YMin: y, XMax: x + int32(pw.Width), YMax: y + int32(pw.Height)},
				Confidence: -1,
			})
		}
		text := pl.Text
		if text == "" {
			text = line.Text()
		}
		if len(line.Words) == 0 {
			coarse = true
			line.Words = []Word{{Text: text, LineIndex: idx, Rect: RectFrom(bounds), Confidence: -1}}
		}
		texts = append(texts, text)
		structured = append(structured, line)
	}

	// Some recognizer versions only fill the top-level text.
	if len(structured) == 0 && strings.TrimSpace(doc.Text) != "" {
		res := NewResult(BackendPlatform, doc.Text, nil)
		res.StructuredLines = PlaceholderLines(res.Lines, bounds)
		res.Coarse = true
		return res, nil
	}

	res := NewResult(BackendPlatform, strings.Join(texts, "\n"), structured)
	res.Coarse = coarse
	return res, nil
}
