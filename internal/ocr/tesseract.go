package ocr

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultTesseractLanguages is the language list used when none is configured.
const DefaultTesseractLanguages = "jpn+jpn_vert"

// DefaultPageSegMode is Tesseract's "single uniform block of vertically aligned
// text" mode.
const DefaultPageSegMode = 5

// TesseractConfig configures a TesseractEngine.
type TesseractConfig struct {
	// Languages is a "+"-joined language list, or "auto" for every installed
	// language.
	Languages string

	// PageSegMode is Tesseract's --psm value.
	PageSegMode int

	// TessdataPrefix is the directory holding *.traineddata files. When empty the
	// TESSDATA_PREFIX environment variable and the usual install locations are
	// searched.
	TessdataPrefix string

	// Binary is the tesseract executable, used for language discovery and by the
	// non-cgo build. Defaults to "tesseract".
	Binary string

	Logger zerolog.Logger
}

// TesseractEngine recognizes text with Tesseract.
type TesseractEngine struct {
	cfg       TesseractConfig
	log       zerolog.Logger
	tessdata  string
	languages []string
}

// NewTesseractEngine creates an engine. Init must be called before Evaluate.
func NewTesseractEngine(cfg TesseractConfig) *TesseractEngine {
	if cfg.Languages == "" {
		cfg.Languages = DefaultTesseractLanguages
	}
	if cfg.PageSegMode == 0 {
		cfg.PageSegMode = DefaultPageSegMode
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	return &TesseractEngine{
		cfg: cfg,
		log: cfg.Logger.With().Str("backend", BackendTesseract).Logger(),
	}
}

// Name returns "tesseract".
func (e *TesseractEngine) Name() string { return BackendTesseract }

// Languages returns the "+"-joined list resolved by Init.
func (e *TesseractEngine) Languages() string {
	return strings.Join(e.languages, "+")
}

// Init discovers the installed language data and resolves the configured language
// list against it. Requested languages that are not installed are dropped with a
// warning; Init fails only when none remain.
func (e *TesseractEngine) Init(ctx context.Context) ([]string, error) {
	e.tessdata = findTessdata(e.cfg.TessdataPrefix)

	installed, err := e.installedLanguages(ctx)
	if err != nil {
		return nil, &ConfigurationError{
			Backend: BackendTesseract,
			Reason:  "cannot list installed languages",
			Err:     fmt.Errorf("%w: %v", ErrBackendUnavailable, err),
		}
	}
	if len(installed) == 0 {
		return nil, &ConfigurationError{
			Backend: BackendTesseract,
			Reason:  "no language data installed",
			Err:     ErrBackendUnavailable,
		}
	}

	langs, dropped, err := resolveLanguages(e.cfg.Languages, installed)
	for _, l := range dropped {
		e.log.Warn().Str("language", l).Msg("language data not installed; skipping")
	}
	if err != nil {
		return nil, &ConfigurationError{Backend: BackendTesseract, Reason: err.Error()}
	}
	e.languages = langs

	version, err := backendVersion(ctx, e.cfg.Binary)
	if err != nil {
		return nil, &ConfigurationError{
			Backend: BackendTesseract,
			Reason:  "tesseract is not usable",
			Err:     fmt.Errorf("%w: %v", ErrBackendUnavailable, err),
		}
	}

	e.log.Info().
		Str("version", version).
		Str("tessdata", e.tessdata).
		Str("languages", e.Languages()).
		Int("psm", e.cfg.PageSegMode).
		Msg("tesseract ready")

	return installed, nil
}

// Evaluate recognizes the text in img.
func (e *TesseractEngine) Evaluate(ctx context.Context, img image.Image) (*Result, error) {
	if len(e.languages) == 0 {
		return nil, &RecognitionError{Backend: BackendTesseract, Detail: "engine not initialized"}
	}
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	res, err := runWithContext(ctx, func() (*Result, error) {
		return e.recognize(ctx, data, img.Bounds())
	})
	if err != nil {
		return nil, err
	}

	e.log.Debug().
		Int("lines", len(res.Lines)).
		Int("words", res.WordCount()).
		Msg("recognized")
	return res, nil
}

func (e *TesseractEngine) installedLanguages(ctx context.Context) ([]string, error) {
	if e.tessdata != "" {
		if langs, err := languagesInDir(e.tessdata); err == nil && len(langs) > 0 {
			return langs, nil
		}
	}

	out, err := exec.CommandContext(ctx, e.cfg.Binary, "--list-langs").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to run %s --list-langs: %w", e.cfg.Binary, err)
	}
	return parseListLangs(string(out)), nil
}

// resolveLanguages expands "auto" and keeps the requested languages that are
// installed. dropped lists the ones that are not.
func resolveLanguages(requested string, installed []string) (langs, dropped []string, err error) {
	requested = strings.TrimSpace(requested)
	if requested == "" || strings.EqualFold(requested, "auto") {
		return installed, nil, nil
	}

	have := make(map[string]bool, len(installed))
	for _, l := range installed {
		have[l] = true
	}

	for _, l := range strings.Split(requested, "+") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if !have[l] {
			dropped = append(dropped, l)
			continue
		}
		langs = append(langs, l)
	}
	if len(dropped) > 0 && len(langs) == 0 {
		return nil, dropped, fmt.Errorf("language data not installed: %s", strings.Join(dropped, ", "))
	}
	if len(langs) == 0 {
		return nil, nil, fmt.Errorf("empty language list %q", requested)
	}
	return langs, dropped, nil
}

// parseListLangs parses the output of "tesseract --list-langs".
func parseListLangs(out string) []string {
	var langs []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "List of") || strings.Contains(line, " ") {
			continue
		}
		langs = append(langs, line)
	}
	return langs
}

func languagesInDir(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.traineddata"))
	if err != nil {
		return nil, err
	}
	langs := make([]string, 0, len(matches))
	for _, m := range matches {
		langs = append(langs, strings.TrimSuffix(filepath.Base(m), ".traineddata"))
	}
	sort.Strings(langs)
	return langs, nil
}

var tessdataCandidates = []string{
	"/usr/share/tesseract-ocr/5/tessdata",
	"/usr/share/tesseract-ocr/4.00/tessdata",
	"/usr/share/tessdata",
	"/usr/local/share/tessdata",
	"/opt/homebrew/share/tessdata",
	`C:\Program Files\Tesseract-OCR\tessdata`,
}

// findTessdata returns the first directory that holds language data. An explicit
// prefix wins, then TESSDATA_PREFIX, then the usual install locations. Both the
// tessdata directory and its parent are accepted.
func findTessdata(explicit string) string {
	var candidates []string
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	if env := os.Getenv("TESSDATA_PREFIX"); env != "" {
		candidates = append(candidates, env)
	}
	candidates = append(candidates, tessdataCandidates...)

	for _, dir := range candidates {
		for _, d := range []string{dir, filepath.Join(dir, "tessdata")} {
			if langs, err := languagesInDir(d); err == nil && len(langs) > 0 {
				return d
			}
		}
	}
	return ""
}

// groupWords assigns each word to the line box containing its centre. Words that
// fall outside every line box are collected into one trailing line.
func groupWords(lineBoxes []image.Rectangle, words []Word) []Line {
	lines := make([]Line, len(lineBoxes))
	var stray []Word

	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		cx := int((w.Rect.XMin + w.Rect.XMax) / 2)
		cy := int((w.Rect.YMin + w.Rect.YMax) / 2)
		idx := -1
		for i, lb := range lineBoxes {
			if image.Pt(cx, cy).In(lb) {
				idx = i
				break
			}
		}
		if idx < 0 {
			stray = append(stray, w)
			continue
		}
		w.LineIndex = uint16(idx)
		lines[idx].Words = append(lines[idx].Words, w)
	}

	out := make([]Line, 0, len(lines)+1)
	for _, l := range lines {
		if len(l.Words) > 0 {
			out = append(out, l)
		}
	}
	if len(stray) > 0 {
		out = append(out, Line{Words: stray})
	}
	for i := range out {
		for j := range out[i].Words {
			out[i].Words[j].LineIndex = uint16(i)
		}
	}
	return out
}
