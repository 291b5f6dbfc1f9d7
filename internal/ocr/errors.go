package ocr

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable means the backend is not installed or not supported on
	// this platform.
	ErrBackendUnavailable = errors.New("ocr backend unavailable")

	// ErrUnsupportedImageFormat means the image cannot be handed to the backend
	// (nil, empty, or not encodable).
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
)

// RecognitionError reports a failure while recognizing one image.
type RecognitionError struct {
	Backend string
	Detail  string
	Err     error
}

func (e *RecognitionError) Error() string {
	msg := fmt.Sprintf("%s: recognition failed", e.Backend)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Err)
	}
	return msg
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a startup precondition that does not hold, such as a
// missing binary or language pack. It is meant to abort startup.
type ConfigurationError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
