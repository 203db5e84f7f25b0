package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smfinstall/pkg/errors"
	"github.com/matzehuels/smfinstall/pkg/httputil"
	"github.com/matzehuels/smfinstall/pkg/observability"
)

// DefaultURL is the location of the official mirror and package list.
const DefaultURL = "http://www.simplemachines.org/smf/mirrors.xml"

// maxDocumentSize bounds the metadata document read into memory.
const maxDocumentSize = 8 << 20

// Source downloads the remote metadata document.
type Source struct {
	URL       string
	UserAgent string
	Attempts  int
	Delay     time.Duration
	Logger    *log.Logger

	http *http.Client
}

// NewSource creates a Source for url. Pass nil for client to use a
// DNS-caching client with a 30 second timeout.
func NewSource(url string, client *http.Client, logger *log.Logger) *Source {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = httputil.NewClient(30 * time.Second)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Source{
		URL:       url,
		UserAgent: httputil.DefaultUserAgent,
		Attempts:  3,
		Delay:     time.Second,
		Logger:    logger,
		http:      client,
	}
}

// Load fetches and parses the metadata document.
//
// This is the only network failure that ends a run: without the document
// there is nothing to choose from. The returned error carries
// [errors.ErrCodeNetwork], or [errors.ErrCodeTimeout] when ctx ran out of
// time.
func (s *Source) Load(ctx context.Context) (*Catalog, error) {
	raw, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c := Parse(raw)
	s.Logger.Debug("parsed metadata",
		"mirrors", len(c.Mirrors),
		"versions", len(c.Versions),
		"languages", len(c.Languages.Plain)+len(c.Languages.UTF8))
	return c, nil
}

// Fetch returns the raw metadata document.
func (s *Source) Fetch(ctx context.Context) (string, error) {
	var raw string
	err := httputil.Retry(ctx, s.Attempts, s.Delay, func() error {
		var fetchErr error
		raw, fetchErr = s.get(ctx)
		return fetchErr
	})
	if err != nil {
		code := errors.ErrCodeNetwork
		if ctx.Err() == context.DeadlineExceeded {
			code = errors.ErrCodeTimeout
		}
		return "", errors.Wrap(code, err, "could not load the mirror information from %s", s.URL)
	}
	return raw, nil
}

func (s *Source) get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.UserAgent)

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := s.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return "", &httputil.RetryableError{Err: fmt.Errorf("%w: %v", httputil.ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", &httputil.RetryableError{Err: fmt.Errorf("%w: %v", httputil.ErrNetwork, err)}
	}
	return string(data), nil
}
