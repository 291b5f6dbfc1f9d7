package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	supported bool
	checkErr  error
	output    string
	runErr    error
	calls     int
}

func (f *fakeRunner) Supported(context.Context, string) (bool, error) {
	return f.supported, f.checkErr
}

func (f *fakeRunner) Recognize(context.Context, string, []byte) ([]byte, error) {
	f.calls++
	return []byte(f.output), f.runErr
}

func newFakePlatform(r *fakeRunner) *PlatformEngine {
	e := NewPlatformEngine(PlatformConfig{})
	e.runner = r
	return e
}

func TestPlatformEngine_Init(t *testing.T) {
	langs, err := newFakePlatform(&fakeRunner{supported: true}).Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ja"}, langs)

	_, err = newFakePlatform(&fakeRunner{supported: false}).Init(context.Background())
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, `"ja"`)

	_, err = newFakePlatform(&fakeRunner{checkErr: errors.New("no powershell")}).Init(context.Background())
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestPlatformEngine_NoRunner(t *testing.T) {
	e := NewPlatformEngine(PlatformConfig{})
	e.runner = nil

	_, err := e.Init(context.Background())
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	_, err = e.Evaluate(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestPlatformEngine_Evaluate(t *testing.T) {
	r := &fakeRunner{
		supported: true,
		output: `{"text":"漢字 テスト","lines":[` +
			`{"text":"漢字","words":[{"text":"漢字","x":4,"y":5,"width":20,"height":10}]},` +
			`{"text":"テスト","words":[{"text":"テ","x":1,"y":20,"width":5,"height":8},{"text":"スト","x":7,"y":19,"width":9,"height":9}]}` +
			`]}`,
	}
	e := newFakePlatform(r)

	res, err := e.Evaluate(context.Background(), image.NewRGBA(image.Rect(0, 0, 50, 40)))
	require.NoError(t, err)
	assert.Equal(t, BackendPlatform, res.Backend)
	assert.Equal(t, []string{"漢字", "テスト"}, res.Lines)
	assert.Equal(t, "漢字\nテスト", res.FullText)
	assert.False(t, res.Coarse)
	require.Len(t, res.StructuredLines, 2)
	assert.Equal(t, Rect{XMin: 1, YMin: 19, XMax: 16, YMax: 28}, res.StructuredLines[1].Bounds())
	assert.Equal(t, uint16(1), res.StructuredLines[1].Words[0].LineIndex)
}

func TestPlatformEngine_EvaluateErrors(t *testing.T) {
	e := newFakePlatform(&fakeRunner{runErr: errors.New("exit status 2")})
	_, err := e.Evaluate(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	var rerr *RecognitionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, BackendPlatform, rerr.Backend)

	e = newFakePlatform(&fakeRunner{output: "not json"})
	_, err = e.Evaluate(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	require.ErrorAs(t, err, &rerr)

	r := &fakeRunner{}
	_, err = newFakePlatform(r).Evaluate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnsupportedImageFormat)
	assert.Zero(t, r.calls)
}

func TestParsePlatformOutput_Coarse(t *testing.T) {
	bounds := image.Rect(0, 0, 64, 32)

	res, err := parsePlatformOutput([]byte("\ufeff"+`{"text":"一行目\n二行目","lines":[]}`), bounds)
	require.NoError(t, err)
	assert.True(t, res.Coarse)
	assert.Equal(t, []string{"一行目", "二行目"}, res.Lines)
	require.Len(t, res.StructuredLines, 2)
	assert.Equal(t, RectFrom(bounds), res.StructuredLines[0].Bounds())

	res, err = parsePlatformOutput([]byte(`{"text":"a","lines":[{"text":"a","words":[]}]}`), bounds)
	require.NoError(t, err)
	assert.True(t, res.Coarse)
	assert.Equal(t, "a", res.FullText)

	res, err = parsePlatformOutput([]byte(`{"text":"","lines":[]}`), bounds)
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestResolveBackend(t *testing.T) {
	tests := []struct {
		name string
		opts SelectOptions
		want string
	}{
		{"auto on linux", SelectOptions{Backend: "auto", GOOS: "linux"}, BackendTesseract},
		{"auto on windows", SelectOptions{Backend: "auto", GOOS: "windows"}, BackendPlatform},
		{"empty on darwin", SelectOptions{GOOS: "darwin"}, BackendTesseract},
		{"explicit tesseract on windows", SelectOptions{Backend: "Tesseract", GOOS: "windows"}, BackendTesseract},
		{"flag wins", SelectOptions{Backend: "tesseract", PreferPlatform: true, GOOS: "linux"}, BackendPlatform},
		{"explicit platform", SelectOptions{Backend: "platform", GOOS: "linux"}, BackendPlatform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBackend(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveBackend(SelectOptions{Backend: "easyocr"})
	var cerr *ConfigurationError
	assert.ErrorAs(t, err, &cerr)
}

func TestSelect_PlatformUnavailableIsFatal(t *testing.T) {
	if newPlatformRunner() != nil {
		t.Skip("platform recognizer present")
	}
	_, _, err := Select(context.Background(), SelectOptions{PreferPlatform: true})
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, BackendPlatform, cerr.Backend)
}

func TestErrorMessages(t *testing.T) {
	err := &RecognitionError{Backend: "tesseract", Detail: "bad", Err: errors.New("io")}
	assert.Equal(t, "tesseract: recognition failed: bad (caused by: io)", err.Error())

	cerr := &ConfigurationError{Backend: "platform", Reason: "missing"}
	assert.Equal(t, "platform: missing", cerr.Error())
}
