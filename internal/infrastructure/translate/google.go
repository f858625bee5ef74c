// Package translate holds the machine-translation providers and their fallback chain.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TeluguNews/internal/config"
	"TeluguNews/internal/ports"
)

// ErrEmptyTranslation reports a well-formed response that carried no text.
var ErrEmptyTranslation = errors.New("empty translation")

const browserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// GoogleProvider calls the keyless gtx endpoint of Google Translate.
type GoogleProvider struct {
	endpoint string
	timeout  time.Duration
	maxChars int
	client   *http.Client
}

var _ ports.TranslationProvider = (*GoogleProvider)(nil)

// NewGoogleProvider builds a provider from configuration.
func NewGoogleProvider(cfg config.ProviderConfig, client *http.Client) *GoogleProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &GoogleProvider{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		maxChars: cfg.MaxChars,
		client:   client,
	}
}

// Name identifies the provider in logs.
func (g *GoogleProvider) Name() string { return "google" }

// MaxChars is the longest input the provider accepts.
func (g *GoogleProvider) MaxChars() int { return g.maxChars }

// Translate sends text and reassembles the segmented response.
func (g *GoogleProvider) Translate(ctx context.Context, text, from, to string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", from)
	query.Set("tl", to)
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", browserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google translate returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return parseGoogleSegments(raw)
}

// parseGoogleSegments joins the first element of every segment in payload[0],
// e.g. [[["అనువాదం","translation",null,null,10]],null,"en"].
func parseGoogleSegments(raw []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", ErrEmptyTranslation
	}

	var segments [][]any
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("decode segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if part, ok := seg[0].(string); ok {
			b.WriteString(part)
		}
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyTranslation
	}
	return b.String(), nil
}
