//go:build windows

package ocr

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed platform_ocr.ps1
var platformScript []byte

// psRunner drives Windows.Media.Ocr through PowerShell, which can await WinRT
// async operations without any cgo or COM bindings.
type psRunner struct {
	once       sync.Once
	scriptPath string
	scriptErr  error
}

func newPlatformRunner() platformRunner { return &psRunner{} }

func (r *psRunner) script() (string, error) {
	r.once.Do(func() {
		dir, err := os.MkdirTemp("", "lenzu-ocr-")
		if err != nil {
			r.scriptErr = fmt.Errorf("failed to create script directory: %w", err)
			return
		}
		path := filepath.Join(dir, "platform_ocr.ps1")
		if err := os.WriteFile(path, platformScript, 0o600); err != nil {
			r.scriptErr = fmt.Errorf("failed to write script: %w", err)
			return
		}
		r.scriptPath = path
	})
	return r.scriptPath, r.scriptErr
}

func (r *psRunner) run(ctx context.Context, args ...string) ([]byte, error) {
	path, err := r.script()
	if err != nil {
		return nil, err
	}
	full := append([]string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-File", path}, args...)
	cmd := exec.CommandContext(ctx, "powershell.exe", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

func (r *psRunner) Supported(ctx context.Context, language string) (bool, error) {
	out, err := r.run(ctx, "-Mode", "check", "-Language", language)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(string(out)), "true"), nil
}

func (r *psRunner) Recognize(ctx context.Context, language string, png []byte) ([]byte, error) {
	f, err := os.CreateTemp("", "lenzu-capture-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp image: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(png); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp image: %w", err)
	}

	return r.run(ctx, "-Mode", "recognize", "-Language", language, "-Path", f.Name())
}
