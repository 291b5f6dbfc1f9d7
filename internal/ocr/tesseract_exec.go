//go:build !cgo

package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os/exec"
	"strconv"
	"strings"
)

// backendVersion runs "tesseract --version" and returns its first line.
func backendVersion(ctx context.Context, binary string) (string, error) {
	out, err := exec.CommandContext(ctx, binary, "--version").CombinedOutput()
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(first), nil
}

// recognize pipes the PNG into the tesseract binary and parses its TSV output.
func (e *TesseractEngine) recognize(ctx context.Context, data []byte, _ image.Rectangle) (*Result, error) {
	args := []string{"stdin", "stdout",
		"-l", e.Languages(),
		"--psm", strconv.Itoa(e.cfg.PageSegMode),
	}
	if e.tessdata != "" {
		args = append(args, "--tessdata-dir", e.tessdata)
	}
	args = append(args, "tsv")

	cmd := exec.CommandContext(ctx, e.cfg.Binary, args...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// tesseract prints warnings on stderr even when it succeeds, so only the exit
	// status decides failure.
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &RecognitionError{
				Backend: BackendTesseract,
				Detail:  strings.TrimSpace(stderr.String()),
				Err:     err,
			}
		}
		return nil, &RecognitionError{Backend: BackendTesseract, Detail: "cannot run tesseract", Err: err}
	}

	lines, err := parseTSV(&stdout)
	if err != nil {
		return nil, &RecognitionError{Backend: BackendTesseract, Detail: "malformed TSV output", Err: err}
	}

	text := make([]string, 0, len(lines))
	for _, l := range lines {
		text = append(text, l.Text())
	}
	return NewResult(BackendTesseract, strings.Join(text, "\n"), lines), nil
}
