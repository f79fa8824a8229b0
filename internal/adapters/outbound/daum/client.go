package daum

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/charleschow/pennant-race/internal/telemetry"
)

const (
	DefaultBaseURL = "https://sports.daum.net"
	requestTimeout = 20 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; pennant-race/1.0)"
)

// Client fetches monthly schedule pages. Concurrent requests for the same
// month share one HTTP round trip.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	sfGroup    singleflight.Group
}

// NewClient builds a client allowing rps requests per second. rps <= 0
// means one request per second.
func NewClient(baseURL string, rps int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *Client) scheduleURL(slug string, year, month int) string {
	return fmt.Sprintf("%s/schedule/%s?date=%04d%02d", c.baseURL, slug, year, month)
}

// FetchMonth returns every completed game listed for one month. slug is
// the league path segment, for example "kbo".
func (c *Client) FetchMonth(ctx context.Context, slug string, year, month int) ([]RawGame, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month out of range: %d", month)
	}
	url := c.scheduleURL(slug, year, month)
	v, err, shared := c.sfGroup.Do(url, func() (any, error) {
		body, err := c.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return ParseSchedule(body, year)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		telemetry.Debugf("daum: shared fetch for %s", url)
	}
	return v.([]RawGame), nil
}

func (c *Client) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", userAgent)

	telemetry.Metrics.ScrapeRequests.Inc()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Metrics.ScrapeErrors.Inc()
		return nil, fmt.Errorf("http get: %w", err)
	}
	telemetry.Metrics.ScrapeLatency.Since(start)
	telemetry.Debugf("daum: GET %s -> %d (%s)", url, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		telemetry.Metrics.ScrapeErrors.Inc()
		return nil, fmt.Errorf("daum schedule: status %d", resp.StatusCode)
	}

	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			telemetry.Metrics.ScrapeErrors.Inc()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return &gzipBody{Reader: gz, body: resp.Body}, nil
	}
	return resp.Body, nil
}

type gzipBody struct {
	*gzip.Reader
	body io.ReadCloser
}

func (g *gzipBody) Close() error {
	g.Reader.Close()
	return g.body.Close()
}
