package shortener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a configured URL-shortening provider. Providers disagree
// wildly on API shape, so the client tries the common GET patterns in order
// and accepts either a bare-URL body or a JSON envelope. A provider echoing
// the input back counts as a failure.
type Client struct {
	httpClient *http.Client
	domain     string
	apiKey     string
}

type shortenResponse struct {
	ShortenedURL string `json:"shortenedUrl"`
	ShortURL     string `json:"short_url"`
	ShortURLAlt  string `json:"shortUrl"`
	URL          string `json:"url"`
	Link         string `json:"link"`
}

func (r *shortenResponse) first() string {
	for _, candidate := range []string{r.ShortenedURL, r.ShortURL, r.ShortURLAlt, r.URL, r.Link} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func NewClient(domain, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		domain:     domain,
		apiKey:     apiKey,
	}
}

// Shorten returns a short URL for longURL or an error. It never fabricates
// a link: if every endpoint pattern fails or echoes the input, the caller
// gets an error.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	encoded := url.QueryEscape(longURL)

	endpoints := []string{
		fmt.Sprintf("https://%s/api?api=%s&url=%s", c.domain, c.apiKey, encoded),
		fmt.Sprintf("https://%s/api?key=%s&url=%s", c.domain, c.apiKey, encoded),
		fmt.Sprintf("https://api.%s/shorten?key=%s&url=%s", c.domain, c.apiKey, encoded),
		fmt.Sprintf("https://%s/shorten?api=%s&url=%s", c.domain, c.apiKey, encoded),
	}

	var lastErr error
	for _, endpoint := range endpoints {
		short, err := c.tryEndpoint(ctx, endpoint, longURL)
		if err != nil {
			lastErr = err
			continue
		}
		return short, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no shortener endpoint produced a result")
	}
	return "", fmt.Errorf("shortener %s failed: %w", c.domain, lastErr)
}

func (c *Client) tryEndpoint(ctx context.Context, endpoint, longURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("shortener API error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	result := strings.TrimSpace(string(body))

	// JSON envelope
	var parsed shortenResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if short := parsed.first(); short != "" {
			return c.validate(short, longURL)
		}
	}

	// Bare URL body
	if strings.HasPrefix(result, "http") && len(result) < 200 &&
		!strings.Contains(result, "\n") && !strings.Contains(strings.ToLower(result), "html") {
		return c.validate(result, longURL)
	}

	return "", fmt.Errorf("unrecognized response format")
}

func (c *Client) validate(short, longURL string) (string, error) {
	if short == longURL {
		return "", fmt.Errorf("shortener echoed the input URL")
	}
	return short, nil
}
