package translate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/unicode/norm"
)

// Kakasi encodings.
const (
	EncodingUTF8  = "utf8"
	EncodingEUCJP = "euc-jp"
)

// KakasiConfig configures Kakasi.
type KakasiConfig struct {
	// Path is the kakasi executable. Defaults to "kakasi".
	Path string

	// Furigana keeps the Kanji and appends the reading in brackets (-f).
	Furigana bool

	// Encoding is EncodingUTF8, or EncodingEUCJP for builds without UTF-8 support.
	Encoding string

	Timeout time.Duration
	Logger  zerolog.Logger
}

// Kakasi converts Kanji to Hiragana with the kakasi command.
type Kakasi struct {
	cfg KakasiConfig
	log zerolog.Logger
}

// NewKakasi creates a Kakasi translator.
func NewKakasi(cfg KakasiConfig) *Kakasi {
	if cfg.Path == "" {
		cfg.Path = "kakasi"
	}
	cfg.Encoding = strings.ToLower(strings.TrimSpace(cfg.Encoding))
	if cfg.Encoding == "" {
		cfg.Encoding = EncodingUTF8
	}
	return &Kakasi{
		cfg: cfg,
		log: cfg.Logger.With().Str("translator", BackendKakasi).Logger(),
	}
}

// Name returns "kakasi".
func (k *Kakasi) Name() string { return BackendKakasi }

// Init checks that the kakasi binary can be found.
func (k *Kakasi) Init(context.Context) ([]string, error) {
	path, err := exec.LookPath(k.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found: %v", ErrUnavailable, k.cfg.Path, err)
	}
	switch k.cfg.Encoding {
	case EncodingUTF8, EncodingEUCJP:
	default:
		return nil, fmt.Errorf("unsupported kakasi encoding %q", k.cfg.Encoding)
	}
	k.log.Info().Str("path", path).Str("encoding", k.cfg.Encoding).Bool("furigana", k.cfg.Furigana).Msg("kakasi ready")
	return []string{"ja", "en"}, nil
}

func (k *Kakasi) args() []string {
	enc := "utf8"
	if k.cfg.Encoding == EncodingEUCJP {
		enc = "euc"
	}
	args := []string{"-JH", "-i", enc, "-o", enc}
	if k.cfg.Furigana {
		args = append(args, "-f")
	}
	return args
}

// Convert runs kakasi on text. Any output on stderr is treated as failure, even
// with a zero exit status, because kakasi reports missing dictionaries that way.
func (k *Kakasi) Convert(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return &Result{}, nil
	}

	input := []byte(norm.NFKC.String(text))
	if k.cfg.Encoding == EncodingEUCJP {
		encoded, err := japanese.EUCJP.NewEncoder().Bytes(input)
		if err != nil {
			return nil, &Error{Translator: BackendKakasi, Err: fmt.Errorf("failed to encode input: %w", err)}
		}
		input = encoded
	}

	ctx, cancel := withTimeout(ctx, k.cfg.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, k.cfg.Path, k.args()...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, &Error{Translator: BackendKakasi, Err: ctx.Err()}
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return nil, &Error{Translator: BackendKakasi, Stderr: msg, Err: runErr}
	}
	if runErr != nil {
		return nil, &Error{Translator: BackendKakasi, Err: runErr}
	}

	out := stdout.Bytes()
	if k.cfg.Encoding == EncodingEUCJP {
		decoded, err := japanese.EUCJP.NewDecoder().Bytes(out)
		if err != nil {
			return nil, &Error{Translator: BackendKakasi, Err: fmt.Errorf("failed to decode output: %w", err)}
		}
		out = decoded
	}

	k.log.Debug().Dur("elapsed", time.Since(start)).Int("bytes", len(out)).Msg("converted")
	return NewResult(string(out)), nil
}
