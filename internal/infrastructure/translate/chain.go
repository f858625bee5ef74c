package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"TeluguNews/internal/logging"
	"TeluguNews/internal/ports"
	"TeluguNews/internal/textutil"
)

// defaultFallbackChars bounds the source text returned when every provider fails.
const defaultFallbackChars = 1000

// ErrAllProvidersFailed is logged when no provider produced a translation and
// the truncated source text is returned instead.
var ErrAllProvidersFailed = errors.New("all translation providers failed")

// Chain tries providers in order and degrades to the truncated source text.
type Chain struct {
	providers     []ports.TranslationProvider
	target        string
	fallbackChars int
	logger        *slog.Logger
}

var _ ports.TextTranslator = (*Chain)(nil)

// NewChain builds a fallback chain translating into target. The first
// provider's limit also bounds the untranslated fallback text.
func NewChain(target string, log *slog.Logger, providers ...ports.TranslationProvider) *Chain {
	fallback := defaultFallbackChars
	if len(providers) > 0 && providers[0].MaxChars() > 0 {
		fallback = providers[0].MaxChars()
	}
	return &Chain{
		providers:     providers,
		target:        target,
		fallbackChars: fallback,
		logger:        logging.OrDiscard(log),
	}
}

// Providers lists provider names in fallback order.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// TranslateText implements ports.TextTranslator. Empty input and input
// already in the target language are returned without a network call.
func (c *Chain) TranslateText(ctx context.Context, text, from string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || from == c.target {
		return text, true
	}

	var errs []error
	for _, p := range c.providers {
		input := textutil.Truncate(text, p.MaxChars())
		out, err := p.Translate(ctx, input, from, c.target)
		if err == nil && strings.TrimSpace(out) != "" {
			return out, true
		}
		if err == nil {
			err = ErrEmptyTranslation
		}
		c.logger.Warn("translation provider failed", "provider", p.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}

	c.logger.Warn("falling back to source text",
		"error", errors.Join(append([]error{ErrAllProvidersFailed}, errs...)...),
		"text", textutil.Truncate(text, 50),
	)
	return textutil.Truncate(text, c.fallbackChars), false
}
