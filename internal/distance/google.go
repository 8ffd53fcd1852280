package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kmtracker/kmtracker/internal/maps"
	"github.com/kmtracker/kmtracker/internal/model"
)

// DefaultMatrixURL is the Distance Matrix JSON endpoint.
const DefaultMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

const statusOK = "OK"

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

type matrixResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	Rows         []matrixRow `json:"rows"`
}

type matrixRow struct {
	Elements []matrixElement `json:"elements"`
}

type matrixElement struct {
	Status   string       `json:"status"`
	Distance *matrixValue `json:"distance"`
	Duration *matrixValue `json:"duration"`
}

type matrixValue struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

// GoogleProvider queries the Google Distance Matrix API for driving distances.
// It is safe for concurrent use.
type GoogleProvider struct {
	client  *http.Client
	apiKey  string
	baseURL string
	origin  string
	backoff time.Duration
}

// GoogleOption customizes a GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithBaseURL points the provider at another endpoint.
func WithBaseURL(u string) GoogleOption {
	return func(p *GoogleProvider) { p.baseURL = u }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(p *GoogleProvider) { p.client = c }
}

// WithBackoff sets the initial retry delay.
func WithBackoff(d time.Duration) GoogleOption {
	return func(p *GoogleProvider) { p.backoff = d }
}

// NewGoogleProvider returns a provider for apiKey. publicOrigin is used in
// key restriction messages.
func NewGoogleProvider(apiKey, publicOrigin string, opts ...GoogleOption) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, errors.New("maps api key is empty")
	}

	p := &GoogleProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: DefaultMatrixURL,
		origin:  publicOrigin,
		backoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Distance returns the driving distance between origin and destination.
func (p *GoogleProvider) Distance(ctx context.Context, origin, destination string) (Result, error) {
	q := url.Values{}
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("mode", "driving")
	q.Set("units", "metric")
	q.Set("key", p.apiKey)
	endpoint := p.baseURL + "?" + q.Encode()

	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, endpoint)
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrDistanceUnavailable, err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return Result{}, fmt.Errorf("%w: decode matrix response: %w", ErrDistanceUnavailable, err)
	}

	if mr.Status != statusOK {
		cause := fmt.Errorf("matrix status %s: %s", mr.Status, mr.ErrorMessage)
		if mr.Status == "REQUEST_DENIED" {
			return Result{}, fmt.Errorf("%w: %w", ErrDistanceUnavailable,
				maps.ClassifyAuthPayload(mr.ErrorMessage, p.origin, cause))
		}
		return Result{}, fmt.Errorf("%w: %w", ErrDistanceUnavailable, cause)
	}

	if len(mr.Rows) == 0 || len(mr.Rows[0].Elements) == 0 {
		return Result{}, fmt.Errorf("%w: empty matrix", ErrDistanceUnavailable)
	}

	el := mr.Rows[0].Elements[0]
	if el.Status != statusOK || el.Distance == nil {
		return Result{}, fmt.Errorf("%w: element status %s", ErrDistanceUnavailable, el.Status)
	}

	var duration string
	if el.Duration != nil {
		duration = el.Duration.Text
	}

	return Result{
		Km:       model.RoundKm(el.Distance.Value / 1000),
		Duration: duration,
		Source:   SourceMaps,
	}, nil
}

func (p *GoogleProvider) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (p *GoogleProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx responses with
// exponential backoff, stopping early when ctx is done.
func (p *GoogleProvider) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	const maxAttempts = 4
	backoff := p.backoff

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := p.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
