package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cwa-dashboard/internal/models"
)

// ErrUpstreamStatus marks a non-2xx answer from the forecast API.
var ErrUpstreamStatus = errors.New("upstream returned error status")

// HTTPClient is the part of *http.Client the repositories need.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ForecastRepository interface {
	Name() string
	FetchRaw(ctx context.Context) ([]byte, error)
	FetchForecast(ctx context.Context) (*models.RawForecastPayload, error)
}

// StatusError carries the upstream status and the start of its body.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error (status %d): %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("HTTP error (status %d): %s: %s", e.StatusCode, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstreamStatus
}
