package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"TeluguNews/internal/config"
	"TeluguNews/internal/ports"
)

// MyMemoryProvider calls the free MyMemory API. Requests are paced because the
// service enforces a small daily quota and throttles bursts.
type MyMemoryProvider struct {
	endpoint string
	email    string
	timeout  time.Duration
	maxChars int
	client   *http.Client
	limiter  *rate.Limiter
}

var _ ports.TranslationProvider = (*MyMemoryProvider)(nil)

// NewMyMemoryProvider builds a provider from configuration.
func NewMyMemoryProvider(cfg config.ProviderConfig, client *http.Client) *MyMemoryProvider {
	if client == nil {
		client = &http.Client{}
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &MyMemoryProvider{
		endpoint: cfg.Endpoint,
		email:    cfg.Email,
		timeout:  cfg.Timeout,
		maxChars: cfg.MaxChars,
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Name identifies the provider in logs.
func (m *MyMemoryProvider) Name() string { return "mymemory" }

// MaxChars is the longest input the provider accepts.
func (m *MyMemoryProvider) MaxChars() int { return m.maxChars }

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus flexibleInt `json:"responseStatus"`
}

// flexibleInt accepts both 200 and "200"; the API is inconsistent on errors.
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("response status %q: %w", data, err)
	}
	*f = flexibleInt(n)
	return nil
}

// Translate sends text as a langpair query and returns responseData.translatedText.
func (m *MyMemoryProvider) Translate(ctx context.Context, text, from, to string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for slot: %w", err)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", from+"|"+to)
	if m.email != "" {
		query.Set("de", m.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory returned %s", resp.Status)
	}

	var payload myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if payload.ResponseStatus != http.StatusOK {
		return "", fmt.Errorf("mymemory status %d", payload.ResponseStatus)
	}

	translated := strings.TrimSpace(payload.ResponseData.TranslatedText)
	if translated == "" {
		return "", ErrEmptyTranslation
	}
	return translated, nil
}
