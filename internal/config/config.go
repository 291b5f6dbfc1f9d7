// Package config loads lenzu settings from defaults, an optional .lenzu.toml,
// LENZU_* environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ironsheep/lenzu/internal/imaging"
	"github.com/ironsheep/lenzu/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. LENZU_OCR_BACKEND.
const EnvPrefix = "lenzu"

// FileName is the config file searched for in $HOME and the working directory.
const FileName = ".lenzu"

// Config holds all settings.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	Translate TranslateConfig `mapstructure:"translate"`
	Overlay   OverlayConfig   `mapstructure:"overlay"`
	Window    WindowConfig    `mapstructure:"window"`
	Debug     DebugConfig     `mapstructure:"debug"`
}

// LogConfig holds the [log] settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OCRConfig holds the [ocr] settings: backend choice, Tesseract options and
// preprocessing.
type OCRConfig struct {
	// Backend is auto, tesseract or platform.
	Backend          string        `mapstructure:"backend"`
	Languages        string        `mapstructure:"languages"`
	PSM              int           `mapstructure:"psm"`
	Tessdata         string        `mapstructure:"tessdata"`
	TesseractPath    string        `mapstructure:"tesseract_path"`
	PlatformLanguage string        `mapstructure:"platform_language"`
	Timeout          time.Duration `mapstructure:"timeout"`

	// Contrast enables grayscale and contrast preprocessing when non-zero. The
	// range is -1 to 1.
	Contrast float64 `mapstructure:"contrast"`

	// CropToText narrows OCR to the part of the capture that looks like text.
	CropToText bool `mapstructure:"crop_to_text"`
}

// TranslateConfig holds the [translate] settings.
type TranslateConfig struct {
	// Backend is kakasi, openai or none.
	Backend    string        `mapstructure:"backend"`
	KakasiPath string        `mapstructure:"kakasi_path"`
	Furigana   bool          `mapstructure:"furigana"`
	Encoding   string        `mapstructure:"encoding"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CacheSize  int           `mapstructure:"cache_size"`
	OpenAI     OpenAIConfig  `mapstructure:"openai"`
}

// OpenAIConfig holds [translate.openai]. BaseURL may point at any compatible
// server.
type OpenAIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TargetLanguage string `mapstructure:"target_language"`
	APIKey         string `mapstructure:"api_key"`
}

// OverlayConfig controls how text is drawn over captures.
type OverlayConfig struct {
	// Font is a TrueType/OpenType file; empty uses the built-in fallback, which has
	// no CJK glyphs.
	Font     string  `mapstructure:"font"`
	FontSize float64 `mapstructure:"font_size"`
	Margin   int     `mapstructure:"margin"`
	Color    string  `mapstructure:"color"`
}

// WindowConfig holds the [window] settings.
type WindowConfig struct {
	Width         int  `mapstructure:"width"`
	Height        int  `mapstructure:"height"`
	Magnify       int  `mapstructure:"magnify"`
	TPS           int  `mapstructure:"tps"`
	HideOnCapture bool `mapstructure:"hide_on_capture"`
}

// DebugConfig holds the [debug] settings.
type DebugConfig struct {
	// DumpDir receives raw and composed captures when set.
	DumpDir string `mapstructure:"dump_dir"`
}

// SetDefaults registers every key with its default value. Keys must be known to
// viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("ocr.backend", "auto")
	v.SetDefault("ocr.languages", "jpn+jpn_vert")
	v.SetDefault("ocr.psm", 5)
	v.SetDefault("ocr.tessdata", "")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.platform_language", "ja")
	v.SetDefault("ocr.timeout", 30*time.Second)
	v.SetDefault("ocr.contrast", 0.0)
	v.SetDefault("ocr.crop_to_text", false)

	v.SetDefault("translate.backend", "kakasi")
	v.SetDefault("translate.kakasi_path", "kakasi")
	v.SetDefault("translate.furigana", false)
	v.SetDefault("translate.encoding", "utf8")
	v.SetDefault("translate.timeout", 10*time.Second)
	v.SetDefault("translate.cache_size", 64)
	v.SetDefault("translate.openai.base_url", "")
	v.SetDefault("translate.openai.model", "gpt-4o-mini")
	v.SetDefault("translate.openai.target_language", "English")
	v.SetDefault("translate.openai.api_key", "")

	v.SetDefault("overlay.font", "")
	v.SetDefault("overlay.font_size", float64(imaging.DefaultFontSize))
	v.SetDefault("overlay.margin", imaging.DefaultMargin)
	v.SetDefault("overlay.color", "#ff4040")

	v.SetDefault("window.width", 1024)
	v.SetDefault("window.height", 768)
	v.SetDefault("window.magnify", 1)
	v.SetDefault("window.tps", 30)
	v.SetDefault("window.hide_on_capture", true)

	v.SetDefault("debug.dump_dir", "")
}

// NewViper returns a viper instance with defaults, env binding and the config
// file loaded. cfgFile overrides the search for .lenzu.toml. A missing default
// config file is not an error; a missing explicit one is.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("toml")
		v.SetConfigName(FileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// LoadDotEnv loads environment variables from the given .env files, or ./.env when
// none are given. Existing variables win and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if !oneOf(c.OCR.Backend, "auto", "tesseract", "platform") {
		return fmt.Errorf("ocr.backend must be auto, tesseract or platform, got %q", c.OCR.Backend)
	}
	if c.OCR.Languages == "" {
		return fmt.Errorf("ocr.languages is required")
	}
	if c.OCR.PSM < 0 || c.OCR.PSM > 13 {
		return fmt.Errorf("ocr.psm must be between 0 and 13, got %d", c.OCR.PSM)
	}
	if c.OCR.Timeout <= 0 {
		return fmt.Errorf("ocr.timeout must be positive, got %s", c.OCR.Timeout)
	}
	if c.OCR.Contrast < -1 || c.OCR.Contrast > 1 {
		return fmt.Errorf("ocr.contrast must be between -1 and 1, got %g", c.OCR.Contrast)
	}

	if !oneOf(c.Translate.Backend, "kakasi", "openai", "none") {
		return fmt.Errorf("translate.backend must be kakasi, openai or none, got %q", c.Translate.Backend)
	}
	if !oneOf(c.Translate.Encoding, "utf8", "euc-jp") {
		return fmt.Errorf("translate.encoding must be utf8 or euc-jp, got %q", c.Translate.Encoding)
	}
	if c.Translate.Timeout <= 0 {
		return fmt.Errorf("translate.timeout must be positive, got %s", c.Translate.Timeout)
	}
	if c.Translate.CacheSize < 0 {
		return fmt.Errorf("translate.cache_size must not be negative, got %d", c.Translate.CacheSize)
	}

	if c.Overlay.FontSize <= 0 {
		return fmt.Errorf("overlay.font_size must be positive, got %g", c.Overlay.FontSize)
	}
	if c.Overlay.Margin < 0 {
		return fmt.Errorf("overlay.margin must not be negative, got %d", c.Overlay.Margin)
	}
	if _, err := imaging.ParseColor(c.Overlay.Color); err != nil {
		return fmt.Errorf("overlay.color: %w", err)
	}

	if c.Window.Width < 1 || c.Window.Height < 1 {
		return fmt.Errorf("window size must be at least 1x1, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.Magnify < 1 || c.Window.Magnify > 8 {
		return fmt.Errorf("window.magnify must be between 1 and 8, got %d", c.Window.Magnify)
	}
	if c.Window.TPS < 1 || c.Window.TPS > 240 {
		return fmt.Errorf("window.tps must be between 1 and 240, got %d", c.Window.TPS)
	}

	return nil
}

func oneOf(v string, allowed ...string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
