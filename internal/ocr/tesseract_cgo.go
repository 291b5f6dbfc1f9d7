//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"
)

// backendVersion reports the linked libtesseract version.
func backendVersion(_ context.Context, _ string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version(), nil
}

// recognize runs libtesseract through gosseract. A fresh client is used per call
// because a gosseract client is not safe for concurrent use.
func (e *TesseractEngine) recognize(_ context.Context, data []byte, _ image.Rectangle) (*Result, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if e.tessdata != "" {
		if err := client.SetTessdataPrefix(e.tessdata); err != nil {
			return nil, e.fail("failed to set tessdata path", err)
		}
	}
	if err := client.SetLanguage(e.languages...); err != nil {
		return nil, e.fail("failed to set language", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(e.cfg.PageSegMode)); err != nil {
		return nil, e.fail("failed to set page segmentation mode", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImageFormat, err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, e.fail("OCR failed", err)
	}

	// Boxes are best effort: the text alone is still a usable result.
	lineBoxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		e.log.Warn().Err(err).Msg("line boxes unavailable")
		return NewResult(BackendTesseract, text, nil), nil
	}
	wordBoxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		e.log.Warn().Err(err).Msg("word boxes unavailable")
		return NewResult(BackendTesseract, text, nil), nil
	}

	rects := make([]image.Rectangle, 0, len(lineBoxes))
	for _, b := range lineBoxes {
		rects = append(rects, b.Box)
	}
	words := make([]Word, 0, len(wordBoxes))
	for _, b := range wordBoxes {
		words = append(words, Word{
			Text:       b.Word,
			Rect:       RectFrom(b.Box),
			Confidence: b.Confidence / 100.0,
		})
	}

	return NewResult(BackendTesseract, text, groupWords(rects, words)), nil
}

func (e *TesseractEngine) fail(detail string, err error) error {
	return &RecognitionError{Backend: BackendTesseract, Detail: detail, Err: err}
}
