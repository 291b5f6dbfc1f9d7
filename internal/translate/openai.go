package translate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/zalando/go-keyring"
)

// Keyring entry holding the API key when it is not configured or in the
// environment.
const (
	KeyringService = "lenzu"
	KeyringUser    = "openai"
)

// OpenAIConfig configures OpenAI.
type OpenAIConfig struct {
	// BaseURL points at any OpenAI-compatible API, such as a local Ollama
	// ("http://localhost:11434/v1"). Empty means the OpenAI API.
	BaseURL string

	Model          string
	TargetLanguage string

	// APIKey falls back to OPENAI_API_KEY and then to the OS keyring.
	APIKey string

	Timeout time.Duration
	Logger  zerolog.Logger
}

// OpenAI translates text with a chat completion model.
type OpenAI struct {
	cfg    OpenAIConfig
	log    zerolog.Logger
	client *openai.Client
}

// NewOpenAI creates an OpenAI translator. Init must be called before Convert.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "English"
	}
	return &OpenAI{
		cfg: cfg,
		log: cfg.Logger.With().Str("translator", BackendOpenAI).Logger(),
	}
}

// Name returns "openai".
func (o *OpenAI) Name() string { return BackendOpenAI }

// Init resolves the API key and builds the client. A custom BaseURL does not
// require a key since local servers usually accept anonymous requests.
func (o *OpenAI) Init(context.Context) ([]string, error) {
	key, source := o.apiKey()
	if key == "" && o.cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: no OpenAI API key (set translate.openai.api_key, OPENAI_API_KEY, or keyring %s/%s)",
			ErrUnavailable, KeyringService, KeyringUser)
	}

	c := openai.DefaultConfig(key)
	if o.cfg.BaseURL != "" {
		c.BaseURL = o.cfg.BaseURL
	}
	o.client = openai.NewClientWithConfig(c)

	o.log.Info().
		Str("model", o.cfg.Model).
		Str("base_url", c.BaseURL).
		Str("key_source", source).
		Msg("openai translator ready")
	return []string{"ja", o.cfg.TargetLanguage}, nil
}

func (o *OpenAI) apiKey() (string, string) {
	if o.cfg.APIKey != "" {
		return o.cfg.APIKey, "config"
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		return k, "env"
	}
	k, err := keyring.Get(KeyringService, KeyringUser)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			o.log.Debug().Err(err).Msg("keyring lookup failed")
		}
		return "", "none"
	}
	return k, "keyring"
}

func (o *OpenAI) prompt() string {
	return fmt.Sprintf("Translate the user's text from Japanese to %s. "+
		"Keep one output line per input line. Reply with the translation only.", o.cfg.TargetLanguage)
}

// Convert sends text to the chat completion endpoint.
func (o *OpenAI) Convert(ctx context.Context, text string) (*Result, error) {
	if o.client == nil {
		return nil, &Error{Translator: BackendOpenAI, Err: errors.New("translator not initialized")}
	}
	if strings.TrimSpace(text) == "" {
		return &Result{}, nil
	}

	ctx, cancel := withTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.prompt()},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &Error{Translator: BackendOpenAI, Stderr: apiErr.Message, Err: err}
		}
		return nil, &Error{Translator: BackendOpenAI, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Translator: BackendOpenAI, Err: errors.New("empty completion")}
	}

	o.log.Debug().
		Dur("elapsed", time.Since(start)).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("translated")
	return NewResult(resp.Choices[0].Message.Content), nil
}
