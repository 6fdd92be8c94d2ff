package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the public YQL endpoint.
const DefaultEndpoint = "https://query.yahooapis.com/v1/public/yql"

var (
	// ErrNotFound is the error returned when the weather service has no
	// report for a location.
	ErrNotFound = errors.New("no weather report")
	// ErrUnavailable is the error returned when requests to the weather
	// service are failing persistently and are not being attempted.
	ErrUnavailable = errors.New("weather service unavailable")
)

// Client looks up weather reports.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Endpoint is the URL of the YQL service.
	Endpoint string
	// Rate limits requests to the service. If nil, requests are unlimited.
	Rate *rate.Limiter

	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a weather client. After five consecutive failures, the
// client stops attempting requests for a minute.
func NewClient(hc *http.Client, endpoint string, lim *rate.Limiter) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather",
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		HTTP:     hc,
		Endpoint: endpoint,
		Rate:     lim,
		breaker:  cb,
	}
}

// Query builds the YQL query for a location's weather in the given unit.
func Query(location string, u Unit) string {
	loc := strings.ReplaceAll(location, `"`, "")
	return fmt.Sprintf(`select * from weather.forecast where woeid in (select woeid from geo.places(1) where text="%s") and u='%s'`, loc, u.norm())
}

type response struct {
	Query struct {
		Count   int `json:"count"`
		Results *struct {
			Channel *Result `json:"channel"`
		} `json:"results"`
	} `json:"query"`
}

// Lookup retrieves the weather report for a location with temperatures in
// the given unit. It returns ErrNotFound if the service doesn't know the
// location. The result may still be a degenerate report; use [Found] to
// check it. Failed requests are not retried.
func (c *Client) Lookup(ctx context.Context, location string, u Unit) (*Result, error) {
	u, err := ParseUnit(string(u))
	if err != nil {
		return nil, err
	}
	if c.Rate != nil {
		if err := c.Rate.Wait(ctx); err != nil {
			return nil, fmt.Errorf("couldn't wait for weather rate limit: %w", err)
		}
	}
	v := url.Values{
		"q":      {Query(location, u)},
		"format": {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't make request: %w", err)
	}
	r, err := c.execute(req)
	if err != nil {
		return nil, err
	}
	if r.Query.Results == nil || r.Query.Results.Channel == nil {
		return nil, fmt.Errorf("%w for %q", ErrNotFound, location)
	}
	return r.Query.Results.Channel, nil
}

func (c *Client) execute(req *http.Request) (*response, error) {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	do := func() (*response, error) {
		resp, err := hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("couldn't get weather: %w", err)
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("couldn't read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("weather request failed: %s (%s)", b, resp.Status)
		}
		var r response
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("couldn't decode weather response: %w", err)
		}
		return &r, nil
	}
	if c.breaker == nil {
		return do()
	}
	v, err := c.breaker.Execute(func() (any, error) { return do() })
	switch {
	case err == nil:
		return v.(*response), nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		return nil, err
	}
}
