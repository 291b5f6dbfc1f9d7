package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"runtime"
	"strings"
)

// Engine is an OCR backend.
type Engine interface {
	// Name identifies the backend in logs and results.
	Name() string

	// Init verifies the backend's preconditions and returns the recognition
	// languages it has available. It is called once at startup; an error is a
	// configuration problem.
	Init(ctx context.Context) ([]string, error)

	// Evaluate recognizes the text in img. It blocks until the backend finishes or
	// ctx expires.
	Evaluate(ctx context.Context, img image.Image) (*Result, error)
}

// Backend names accepted by Select.
const (
	BackendAuto      = "auto"
	BackendTesseract = "tesseract"
	BackendPlatform  = "platform"
)

// SelectOptions configures Select.
type SelectOptions struct {
	// Backend is one of BackendAuto, BackendTesseract or BackendPlatform.
	Backend string

	// PreferPlatform forces the platform engine (the --platform-ocr flag).
	PreferPlatform bool

	Tesseract TesseractConfig
	Platform  PlatformConfig

	// GOOS overrides runtime.GOOS; only tests set it.
	GOOS string
}

// ResolveBackend applies the selection policy without touching any backend.
func ResolveBackend(opts SelectOptions) (string, error) {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	if opts.PreferPlatform {
		return BackendPlatform, nil
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendAuto:
		if platformOS(goos) {
			return BackendPlatform, nil
		}
		return BackendTesseract, nil
	case BackendTesseract:
		return BackendTesseract, nil
	case BackendPlatform:
		return BackendPlatform, nil
	default:
		return "", &ConfigurationError{
			Backend: opts.Backend,
			Reason:  "unknown OCR backend (want auto, tesseract or platform)",
		}
	}
}

// Select builds the engine chosen by the policy and initializes it. When the chosen
// backend cannot be initialized there is no silent fallback: the returned error is a
// *ConfigurationError.
//
// Parameters:
//   - ctx: bounds backend discovery (language listing, version checks)
//   - opts: backend choice and per-backend configuration
//
// Returns:
//   - Engine: the initialized engine
//   - []string: the languages the engine reports as available
//   - error: a *ConfigurationError when the backend is unknown or unusable
func Select(ctx context.Context, opts SelectOptions) (Engine, []string, error) {
	backend, err := ResolveBackend(opts)
	if err != nil {
		return nil, nil, err
	}

	var engine Engine
	switch backend {
	case BackendPlatform:
		engine = NewPlatformEngine(opts.Platform)
	default:
		engine = NewTesseractEngine(opts.Tesseract)
	}

	langs, err := engine.Init(ctx)
	if err != nil {
		return nil, nil, asConfigurationError(engine.Name(), err)
	}
	return engine, langs, nil
}

func asConfigurationError(backend string, err error) error {
	if _, ok := err.(*ConfigurationError); ok {
		return err
	}
	return &ConfigurationError{Backend: backend, Reason: "initialization failed", Err: err}
}

// platformOS reports whether goos has a built-in recognizer this package can drive.
func platformOS(goos string) bool {
	return goos == "windows"
}

// encodePNG serializes img for backends that take encoded bytes.
func encodePNG(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrUnsupportedImageFormat
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImageFormat, err)
	}
	return buf.Bytes(), nil
}

// runWithContext runs a blocking backend call and gives up when ctx expires. The
// call itself keeps running to completion in the background and its result is
// discarded.
func runWithContext(ctx context.Context, fn func() (*Result, error)) (*Result, error) {
	if ctx.Done() == nil {
		return fn()
	}

	type outcome struct {
		result *Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := fn()
		done <- outcome{r, err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
