// Package translate converts recognized text into a more readable form: Kanji
// to Hiragana through kakasi, or a full translation through an OpenAI-compatible
// chat endpoint.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnavailable means the translator backend is not installed or not configured.
var ErrUnavailable = errors.New("translator unavailable")

// Translator converts text. Implementations block until done or ctx expires.
type Translator interface {
	Name() string

	// Init checks the backend's preconditions and returns the languages it works
	// between.
	Init(ctx context.Context) ([]string, error)

	Convert(ctx context.Context, text string) (*Result, error)
}

// Result is the converted text and its lines.
type Result struct {
	Text  string
	Lines []string
}

// NewResult trims trailing newlines from out and splits it into lines. Inner empty
// lines are kept so the layout of the input survives.
func NewResult(out string) *Result {
	text := strings.TrimRight(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	if text == "" {
		return &Result{}
	}
	return &Result{Text: text, Lines: strings.Split(text, "\n")}
}

// Empty reports whether the result has no text.
func (r *Result) Empty() bool {
	return r == nil || r.Text == ""
}

func (r *Result) clone() *Result {
	c := &Result{Text: r.Text}
	if r.Lines != nil {
		c.Lines = append([]string(nil), r.Lines...)
	}
	return c
}

// Error is a failed conversion. Stderr holds what the backend printed, if anything.
type Error struct {
	Translator string
	Stderr     string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Stderr != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s (%v)", e.Translator, e.Stderr, e.Err)
	case e.Stderr != "":
		return fmt.Sprintf("%s: %s", e.Translator, e.Stderr)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Translator, e.Err)
	default:
		return e.Translator + ": conversion failed"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Backend names accepted by New.
const (
	BackendKakasi = "kakasi"
	BackendOpenAI = "openai"
	BackendNone   = "none"
)

// Options configures New.
type Options struct {
	Backend   string
	Kakasi    KakasiConfig
	OpenAI    OpenAIConfig
	CacheSize int
	Logger    zerolog.Logger
}

// New builds the configured translator, wrapped in a cache when CacheSize > 0.
func New(opts Options) (Translator, error) {
	var t Translator
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendKakasi:
		opts.Kakasi.Logger = opts.Logger
		t = NewKakasi(opts.Kakasi)
	case BackendOpenAI:
		opts.OpenAI.Logger = opts.Logger
		t = NewOpenAI(opts.OpenAI)
	case BackendNone, "passthrough":
		t = Passthrough{}
	default:
		return nil, fmt.Errorf("unknown translator %q (want kakasi, openai or none)", opts.Backend)
	}
	return WithCache(t, opts.CacheSize, opts.Logger)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
