package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"cwa-dashboard/internal/models"
	"cwa-dashboard/pkg/logger"
)

const (
	CWABaseURL        = "https://opendata.cwa.gov.tw/fileapi/v1/opendataapi"
	CWADataset        = "F-A0010-001"
	CWADefaultTimeout = 30 * time.Second

	bodyExcerptLimit = 256
)

type CWAOptions struct {
	BaseURL string
	Dataset string
	// BreakerFailures consecutive failures open the breaker. Zero means 5.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// CWARepository downloads the agricultural forecast file. Every call is a
// single attempt; the breaker only makes a dead upstream fail fast.
type CWARepository struct {
	apiKey     string
	baseURL    string
	dataset    string
	httpClient HTTPClient
	circuit    *gobreaker.CircuitBreaker
	l          *logger.Logger
}

func NewCWARepository(apiKey string, opts CWAOptions, l *logger.Logger, httpClient HTTPClient) (*CWARepository, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: CWADefaultTimeout}
	}
	if l == nil {
		l = logger.Nop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = CWABaseURL
	}
	if opts.Dataset == "" {
		opts.Dataset = CWADataset
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = time.Minute
	}

	r := &CWARepository{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		dataset:    opts.Dataset,
		httpClient: httpClient,
		l:          l,
	}

	failures := opts.BreakerFailures
	r.circuit = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        r.Name(),
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warning("circuit breaker state changed", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return r, nil
}

func (c *CWARepository) Name() string {
	return "cwa"
}

func (c *CWARepository) requestURL() string {
	params := url.Values{}
	params.Set("Authorization", c.apiKey)
	params.Set("format", "JSON")
	params.Set("downloadType", "WEB")
	return fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(c.dataset), params.Encode())
}

func (c *CWARepository) redactedURL() string {
	return fmt.Sprintf("%s/%s?Authorization=REDACTED", c.baseURL, url.PathEscape(c.dataset))
}

// FetchRaw returns the response body of one download.
func (c *CWARepository) FetchRaw(ctx context.Context) ([]byte, error) {
	c.l.Info("making cwa API request", map[string]any{
		"dataset": c.dataset,
	})

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.download(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("cwa upstream unavailable: %w", err)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

func (c *CWARepository) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the URL carries the token
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = c.redactedURL()
		}
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	c.l.Info("received cwa API response", map[string]any{
		"status":     resp.StatusCode,
		"statusText": resp.Status,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       excerpt(body),
		}
	}

	return body, nil
}

// FetchForecast downloads the document and walks it down to the location list.
func (c *CWARepository) FetchForecast(ctx context.Context) (*models.RawForecastPayload, error) {
	body, err := c.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := models.ParsePayload(body)
	if err != nil {
		return nil, err
	}

	c.l.Info("parsed cwa API response", map[string]any{
		"locations": len(payload.Locations),
	})
	return payload, nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > bodyExcerptLimit {
		s = strings.ToValidUTF8(s[:bodyExcerptLimit], "") + "..."
	}
	return s
}
