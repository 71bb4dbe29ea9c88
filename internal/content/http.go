package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/edgard/dailybot/internal/errors"
)

const maxBodySize = 4 << 20

// HTTPClient is the shared GET helper of the providers.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewHTTPClient returns a client with a fixed request timeout.
func NewHTTPClient(timeout time.Duration, userAgent string) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// get performs a GET and returns the body of a 2xx response. Non-2xx
// responses are returned as statusError together with the body.
func (c *HTTPClient) get(ctx context.Context, provider, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.NewProviderError(provider, "failed to build request", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderError(provider, "request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("close response body", "provider", provider, "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperrors.NewProviderError(provider, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, &statusError{StatusCode: resp.StatusCode}
	}
	return body, nil
}

// getJSON performs a GET and decodes a 2xx JSON body into out.
func (c *HTTPClient) getJSON(ctx context.Context, provider, rawURL string, out any) error {
	body, err := c.get(ctx, provider, rawURL)
	if err != nil {
		return wrapStatus(provider, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewProviderError(provider, "failed to decode response", err)
	}
	return nil
}

type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func wrapStatus(provider string, err error) error {
	se, ok := err.(*statusError) //nolint:errorlint // get returns it unwrapped
	if !ok {
		return err
	}
	switch se.StatusCode {
	case http.StatusUnauthorized:
		return apperrors.NewProviderError(provider, "invalid API key", se)
	case http.StatusNotFound:
		return apperrors.NewProviderError(provider, "not found", ErrNotFound)
	case http.StatusTooManyRequests:
		return apperrors.NewProviderError(provider, "rate limit exceeded", se)
	case http.StatusServiceUnavailable:
		return apperrors.NewProviderError(provider, "service unavailable", se)
	default:
		return apperrors.NewProviderError(provider, se.Error()+" error", se)
	}
}
