package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/matzehuels/smfinstall/pkg/httputil"
	"github.com/matzehuels/smfinstall/pkg/observability"
)

// ErrMirrorDown is returned without contacting a mirror whose circuit
// breaker is open.
var ErrMirrorDown = errors.New("mirror unavailable")

// Artifact is an open download.
type Artifact struct {
	Body io.ReadCloser
	Size int64 // -1 if unknown
}

// Getter opens a package URL for reading. The caller closes Artifact.Body.
type Getter interface {
	Get(ctx context.Context, url string) (*Artifact, error)
}

// HTTPGetter downloads over HTTP with per-host circuit breakers. Transient
// failures (5xx, 429, connection errors) are retried before the attempt
// counts as failed.
type HTTPGetter struct {
	client    *http.Client
	userAgent string
	retries   int
	delay     time.Duration
	threshold int64

	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// Option configures an HTTPGetter.
type Option func(*HTTPGetter)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *HTTPGetter) { g.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(g *HTTPGetter) { g.userAgent = ua }
}

// WithRetries sets how many times one mirror is tried for one file.
func WithRetries(n int) Option {
	return func(g *HTTPGetter) { g.retries = n }
}

// WithRetryDelay sets the initial delay between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(g *HTTPGetter) { g.delay = d }
}

// WithBreakerThreshold sets the consecutive failures that open a host's
// breaker.
func WithBreakerThreshold(n int64) Option {
	return func(g *HTTPGetter) { g.threshold = n }
}

// NewHTTPGetter creates an HTTPGetter. Without options it uses a DNS-caching
// client with a 5 minute timeout, 2 tries per mirror, and trips a host's
// breaker after 5 consecutive failures.
func NewHTTPGetter(opts ...Option) *HTTPGetter {
	g := &HTTPGetter{
		client:    httputil.NewClient(5 * time.Minute),
		userAgent: httputil.DefaultUserAgent,
		retries:   2,
		delay:     500 * time.Millisecond,
		threshold: 5,
		breakers:  make(map[string]*circuit.Breaker),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Get opens rawURL, going through the breaker of its host. Network errors
// and server errors count against the host; a 404 does not.
func (g *HTTPGetter) Get(ctx context.Context, rawURL string) (*Artifact, error) {
	host := hostOf(rawURL)
	breaker := g.breaker(host)

	if !breaker.Ready() {
		return nil, fmt.Errorf("%s: %w", host, ErrMirrorDown)
	}

	// A missing file says nothing about the mirror's health, so a 404 is
	// reported to the breaker as a success and returned afterwards.
	var artifact *Artifact
	var notFound error
	err := breaker.Call(func() error {
		err := httputil.Retry(ctx, g.retries, g.delay, func() error {
			var getErr error
			artifact, getErr = g.do(ctx, rawURL)
			return getErr
		})
		if errors.Is(err, httputil.ErrNotFound) {
			notFound = err
			return nil
		}
		return err
	}, 0)
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, notFound
	}
	return artifact, nil
}

// BreakerStates reports "open" or "closed" per host seen so far.
func (g *HTTPGetter) BreakerStates() map[string]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	states := make(map[string]string, len(g.breakers))
	for host, b := range g.breakers {
		if b.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

func (g *HTTPGetter) breaker(host string) *circuit.Breaker {
	g.mu.RLock()
	b, ok := g.breakers[host]
	g.mu.RUnlock()
	if ok {
		return b
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.breakers[host]; ok {
		return b
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	b = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ConsecutiveTripFunc(g.threshold),
	})
	g.breakers[host] = b
	return b
}

func (g *HTTPGetter) do(ctx context.Context, rawURL string) (*Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "*/*")

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := g.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", httputil.ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return &Artifact{Body: resp.Body, Size: resp.ContentLength}, nil
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
