package mirror

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/smfinstall/pkg/catalog"
	"github.com/matzehuels/smfinstall/pkg/httputil"
)

func TestHTTPGetterGet(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write([]byte("zipdata"))
	}))
	defer srv.Close()

	g := NewHTTPGetter(WithHTTPClient(srv.Client()), WithUserAgent("test/1.0"))
	a, err := g.Get(context.Background(), srv.URL+"/2.0install.zip")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	defer a.Body.Close()

	data, _ := io.ReadAll(a.Body)
	if string(data) != "zipdata" {
		t.Errorf("body = %q", data)
	}
	if a.Size != 7 {
		t.Errorf("Size = %d, want 7", a.Size)
	}
	if ua != "test/1.0" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestHTTPGetterNotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	g := NewHTTPGetter(WithHTTPClient(srv.Client()), WithRetries(3), WithRetryDelay(time.Millisecond))
	_, err := g.Get(context.Background(), srv.URL+"/missing.zip")
	if !stderrors.Is(err, httputil.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestHTTPGetterRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	g := NewHTTPGetter(WithHTTPClient(srv.Client()), WithRetries(3), WithRetryDelay(time.Millisecond))
	a, err := g.Get(context.Background(), srv.URL+"/x.zip")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	a.Body.Close()
	if hits.Load() != 3 {
		t.Errorf("server hit %d times, want 3", hits.Load())
	}
}

func TestHTTPGetterBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewHTTPGetter(
		WithHTTPClient(srv.Client()),
		WithRetries(1),
		WithBreakerThreshold(2),
	)

	for range 2 {
		if _, err := g.Get(context.Background(), srv.URL+"/x.zip"); err == nil {
			t.Fatal("Get() succeeded against a failing server")
		}
	}

	_, err := g.Get(context.Background(), srv.URL+"/y.zip")
	if !stderrors.Is(err, ErrMirrorDown) {
		t.Errorf("Get() error = %v, want ErrMirrorDown", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}

	states := g.BreakerStates()
	if len(states) != 1 {
		t.Fatalf("BreakerStates() = %v", states)
	}
	for _, s := range states {
		if s != "open" {
			t.Errorf("breaker state = %q, want open", s)
		}
	}
}

func TestHTTPGetterNotFoundKeepsBreakerClosed(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/2.0install.zip" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("zipdata"))
	}))
	defer srv.Close()

	g := NewHTTPGetter(WithHTTPClient(srv.Client()), WithRetries(1), WithBreakerThreshold(2))

	for _, lang := range []string{"a", "b", "c", "d", "e"} {
		_, err := g.Get(context.Background(), srv.URL+"/2.0"+lang+".zip")
		if !stderrors.Is(err, httputil.ErrNotFound) {
			t.Fatalf("Get(2.0%s.zip) error = %v, want ErrNotFound", lang, err)
		}
	}

	a, err := g.Get(context.Background(), srv.URL+"/2.0install.zip")
	if err != nil {
		t.Fatalf("Get() after 404s error: %v", err)
	}
	a.Body.Close()
	if hits.Load() != 6 {
		t.Errorf("server hit %d times, want 6", hits.Load())
	}
}

func TestHTTPGetterBreakerNeedsConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/ok.zip" {
			w.Write([]byte("ok"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewHTTPGetter(WithHTTPClient(srv.Client()), WithRetries(1), WithBreakerThreshold(2))
	ctx := context.Background()

	// fail, succeed, fail: never two in a row
	for _, path := range []string{"/bad.zip", "/ok.zip", "/bad.zip"} {
		a, err := g.Get(ctx, srv.URL+path)
		if err == nil {
			a.Body.Close()
		}
	}

	a, err := g.Get(ctx, srv.URL+"/ok.zip")
	if err != nil {
		t.Fatalf("Get() error = %v, breaker opened without consecutive failures", err)
	}
	a.Body.Close()
	if hits.Load() != 4 {
		t.Errorf("server hit %d times, want 4", hits.Load())
	}
}

func TestFetchAllAfterMissingFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2.0install.zip" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("zipdata"))
	}))
	defer srv.Close()

	g := NewHTTPGetter(WithHTTPClient(srv.Client()), WithRetries(1))
	f := NewFetcher(t.TempDir(), g, io.Discard, nil)

	files := []string{"2.0a.zip", "2.0b.zip", "2.0c.zip", "2.0d.zip", "2.0e.zip", "2.0install.zip"}
	report := f.FetchAll(context.Background(), files, []catalog.Mirror{{Name: "Main", URL: srv.URL + "/"}})

	last := report.Results[len(report.Results)-1]
	if last.Status != StatusOK {
		t.Errorf("2.0install.zip status = %v, err = %v; want ok", last.Status, last.Err)
	}
	if len(report.Failed()) != 5 {
		t.Errorf("Failed() = %d results, want 5", len(report.Failed()))
	}
}

func TestHostOf(t *testing.T) {
	tests := []struct{ in, want string }{
		{"http://download.example.org/smf/2.0install.zip", "download.example.org"},
		{"https://mirror.example:8443/x.zip", "mirror.example:8443"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := hostOf(tt.in); got != tt.want {
			t.Errorf("hostOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
