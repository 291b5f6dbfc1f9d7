package translate

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// Cache remembers recent conversions keyed by input text. Failed conversions are
// not remembered.
type Cache struct {
	next    Translator
	entries *lru.Cache[string, *Result]
	log     zerolog.Logger
}

// WithCache wraps next in a Cache of the given size. A size of zero or less
// returns next unchanged.
func WithCache(next Translator, size int, log zerolog.Logger) (Translator, error) {
	if size <= 0 {
		return next, nil
	}
	entries, err := lru.New[string, *Result](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation cache: %w", err)
	}
	return &Cache{next: next, entries: entries, log: log}, nil
}

// Name reports the wrapped translator's name.
func (c *Cache) Name() string { return c.next.Name() }

// Init initializes the wrapped translator.
func (c *Cache) Init(ctx context.Context) ([]string, error) { return c.next.Init(ctx) }

// Convert returns the cached result for text, or converts it with the wrapped
// translator and remembers the result. Callers get their own copy, so mutating a
// returned Result never changes the cache.
//
// Returns:
//   - *Result: the conversion
//   - error: the wrapped translator's error, which is not cached
func (c *Cache) Convert(ctx context.Context, text string) (*Result, error) {
	if r, ok := c.entries.Get(text); ok {
		c.log.Debug().Str("translator", c.next.Name()).Msg("cache hit")
		return r.clone(), nil
	}
	r, err := c.next.Convert(ctx, text)
	if err != nil {
		return nil, err
	}
	c.entries.Add(text, r.clone())
	return r, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return c.entries.Len() }
