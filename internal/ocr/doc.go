// Package ocr provides Optical Character Recognition (OCR) behind a single Engine
// interface with interchangeable backends.
//
// # Backends
//
//   - TesseractEngine: the cross-platform engine. With cgo it uses the gosseract
//     bindings; without cgo it drives the tesseract binary and parses its TSV
//     output. Both report words with bounding boxes.
//   - PlatformEngine: the operating system's built-in recognizer
//     (Windows.Media.Ocr). It is only available on Windows and requires the target
//     language to be installed in the user's language profile.
//
// Select applies the startup policy: an explicit platform flag wins, otherwise the
// configured backend is used, and "auto" prefers the platform engine on the
// platform that has one.
//
// # Prerequisites
//
// Tesseract must be installed together with the language data for each requested
// language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-jpn tesseract-ocr-jpn-vert
//   - macOS: brew install tesseract tesseract-lang
//   - Windows: https://github.com/UB-Mannheim/tesseract/wiki
//
// # Languages
//
// Languages are given as a "+"-joined list ("jpn+jpn_vert"). Every extra language
// multiplies recognition time, so keep the list short. "auto" selects every
// installed language, matching Tesseract's own behaviour when given the full list.
//
// # Page Segmentation
//
// The default page-segmentation mode is 5 (a single uniform block of vertically
// aligned text). It is the closest mode to mixed vertical/horizontal manga and UI
// text.
//
// # Results
//
// Every backend returns the same Result shape: FullText, the text split into Lines,
// and StructuredLines holding words with boxes. Backends that cannot locate words
// fill in whole-image placeholder boxes and set Result.Coarse.
//
// # Error Handling
//
// Startup problems (missing binary, missing language data, language not installed
// in the OS profile) are reported as *ConfigurationError and are meant to be fatal.
// Problems while recognizing one image are reported as *RecognitionError or
// ErrUnsupportedImageFormat and are recoverable by the caller.
package ocr
