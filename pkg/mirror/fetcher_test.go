package mirror

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/smfinstall/pkg/catalog"
	"github.com/matzehuels/smfinstall/pkg/errors"
)

// fakeGetter serves bodies by URL and records every request.
type fakeGetter struct {
	mu     sync.Mutex
	bodies map[string]string
	short  map[string]bool // declare a larger size than delivered
	calls  []string
}

func (g *fakeGetter) Get(_ context.Context, url string) (*Artifact, error) {
	g.mu.Lock()
	g.calls = append(g.calls, url)
	g.mu.Unlock()

	body, ok := g.bodies[url]
	if !ok {
		return nil, stderrors.New("connection refused")
	}
	size := int64(len(body))
	if g.short[url] {
		size += 10
	}
	return &Artifact{Body: io.NopCloser(strings.NewReader(body)), Size: size}, nil
}

func (g *fakeGetter) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func testMirrors(n int) []catalog.Mirror {
	var m []catalog.Mirror
	for i := range n {
		name := string(rune('a' + i))
		m = append(m, catalog.Mirror{Name: name, URL: "http://" + name + ".example/"})
	}
	return m
}

func newTestFetcher(t *testing.T, g Getter) (*Fetcher, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	f := NewFetcher(t.TempDir(), g, &out, nil)
	return f, &out
}

func TestFetchLastMirrorSucceeds(t *testing.T) {
	mirrors := testMirrors(3)
	g := &fakeGetter{bodies: map[string]string{}}
	f, out := newTestFetcher(t, g)
	f.Rand = rand.New(rand.NewPCG(1, 1))

	// Whichever mirror ends up last after the shuffle is the only good one.
	last := shuffled(mirrors, 1)[len(mirrors)-1]
	g.bodies[last.URL+"2.0install.zip"] = "archive"

	report := f.FetchAll(context.Background(), []string{"2.0install.zip"}, mirrors)

	res := report.Results[0]
	if res.Status != StatusOK {
		t.Fatalf("Status = %s, want ok (err %v)", res.Status, res.Err)
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
	if res.Mirror != last.Name {
		t.Errorf("Mirror = %q, want %q", res.Mirror, last.Name)
	}
	data, err := os.ReadFile(filepath.Join(f.Dir, "2.0install.zip"))
	if err != nil || string(data) != "archive" {
		t.Errorf("file content = %q, %v", data, err)
	}
	if strings.Count(out.String(), ": Failed\n") != 2 || strings.Count(out.String(), ": Success\n") != 1 {
		t.Errorf("unexpected progress output:\n%s", out.String())
	}
}

func TestFetchAllMirrorsFail(t *testing.T) {
	g := &fakeGetter{bodies: map[string]string{}}
	f, out := newTestFetcher(t, g)

	report := f.FetchAll(context.Background(), []string{"2.0install.zip"}, testMirrors(2))

	res := report.Results[0]
	if res.Status != StatusFailed {
		t.Fatalf("Status = %s, want failed", res.Status)
	}
	if !stderrors.Is(res.Err, ErrAllMirrorsFailed) {
		t.Errorf("Err = %v, want ErrAllMirrorsFailed", res.Err)
	}
	if !errors.Is(res.Err, errors.ErrCodeMirrorsExhausted) {
		t.Errorf("code = %s", errors.GetCode(res.Err))
	}
	if res.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", res.Attempts)
	}
	entries, _ := os.ReadDir(f.Dir)
	if len(entries) != 0 {
		t.Errorf("files left behind: %v", entries)
	}
	if !strings.Contains(out.String(), "Unable to download the package 2.0install.zip") {
		t.Errorf("missing failure line:\n%s", out.String())
	}
}

func TestFetchNoMirrors(t *testing.T) {
	f, _ := newTestFetcher(t, &fakeGetter{})

	report := f.FetchAll(context.Background(), []string{"2.0install.zip"}, nil)
	if res := report.Results[0]; res.Status != StatusFailed || res.Attempts != 0 {
		t.Errorf("Result = %+v, want failed with no attempts", res)
	}
}

func TestFetchSkipsExisting(t *testing.T) {
	g := &fakeGetter{bodies: map[string]string{}}
	f, _ := newTestFetcher(t, g)
	if err := os.WriteFile(filepath.Join(f.Dir, "2.0install.zip"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	report := f.FetchAll(context.Background(), []string{"2.0install.zip"}, testMirrors(2))

	if report.Results[0].Status != StatusSkipped {
		t.Errorf("Status = %s, want skipped", report.Results[0].Status)
	}
	if g.callCount() != 0 {
		t.Errorf("getter called %d times, want 0", g.callCount())
	}
	data, _ := os.ReadFile(filepath.Join(f.Dir, "2.0install.zip"))
	if string(data) != "old" {
		t.Errorf("existing file was overwritten: %q", data)
	}
}

func shuffled(mirrors []catalog.Mirror, seed uint64) []catalog.Mirror {
	order := slices.Clone(mirrors)
	rand.New(rand.NewPCG(seed, seed)).Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

func TestFetchShortBodyTriesNextMirror(t *testing.T) {
	mirrors := testMirrors(2)
	order := shuffled(mirrors, 3)
	g := &fakeGetter{
		bodies: map[string]string{
			order[0].URL + "x.zip": "partial",
			order[1].URL + "x.zip": "complete",
		},
		short: map[string]bool{order[0].URL + "x.zip": true},
	}
	f, _ := newTestFetcher(t, g)
	f.Rand = rand.New(rand.NewPCG(3, 3))

	report := f.FetchAll(context.Background(), []string{"x.zip"}, mirrors)

	res := report.Results[0]
	if res.Status != StatusOK || res.Attempts != 2 {
		t.Fatalf("Result = %+v, want ok after 2 attempts", res)
	}
	data, _ := os.ReadFile(filepath.Join(f.Dir, "x.zip"))
	if string(data) != "complete" {
		t.Errorf("content = %q, want complete", data)
	}
	if _, err := os.Stat(filepath.Join(f.Dir, "x.zip"+partSuffix)); !os.IsNotExist(err) {
		t.Error("part file left behind")
	}
}

func TestFetchOneShufflePerBatch(t *testing.T) {
	mirrors := testMirrors(4)
	g := &fakeGetter{bodies: map[string]string{}}
	f, _ := newTestFetcher(t, g)
	f.Rand = rand.New(rand.NewPCG(7, 7))

	f.FetchAll(context.Background(), []string{"a.zip", "b.zip"}, mirrors)

	if len(g.calls) != 8 {
		t.Fatalf("calls = %d, want 8", len(g.calls))
	}
	var hostsA, hostsB []string
	for _, c := range g.calls[:4] {
		hostsA = append(hostsA, strings.TrimSuffix(c, "a.zip"))
	}
	for _, c := range g.calls[4:] {
		hostsB = append(hostsB, strings.TrimSuffix(c, "b.zip"))
	}
	if !slices.Equal(hostsA, hostsB) {
		t.Errorf("mirror order differs between files: %v vs %v", hostsA, hostsB)
	}
}

func TestFetchParallelKeepsOrder(t *testing.T) {
	mirrors := testMirrors(1)
	files := []string{"1.zip", "2.zip", "3.zip", "4.zip", "5.zip"}
	g := &fakeGetter{bodies: map[string]string{}}
	for _, name := range files {
		if name != "3.zip" {
			g.bodies[mirrors[0].URL+name] = name
		}
	}
	f, _ := newTestFetcher(t, g)
	f.Parallel = 3

	report := f.FetchAll(context.Background(), files, mirrors)

	for i, res := range report.Results {
		if res.File != files[i] {
			t.Errorf("Results[%d].File = %q, want %q", i, res.File, files[i])
		}
	}
	if len(report.OK()) != 4 || len(report.Failed()) != 1 || report.Failed()[0].File != "3.zip" {
		t.Errorf("OK=%d Failed=%v", len(report.OK()), report.Failed())
	}
}

func TestFetchProgressLines(t *testing.T) {
	mirrors := testMirrors(1)
	files := []string{"2.0install.zip", "2.0german.zip"}
	g := &fakeGetter{bodies: map[string]string{mirrors[0].URL + "2.0install.zip": "zip"}}

	tests := []struct {
		parallel int
		want     []string
	}{
		{1, []string{"Trying mirror a: Success\n", "Trying mirror a: Failed\n"}},
		{2, []string{"Trying mirror a for 2.0install.zip: Success\n", "Trying mirror a for 2.0german.zip: Failed\n"}},
	}
	for _, tt := range tests {
		f, out := newTestFetcher(t, g)
		f.Parallel = tt.parallel
		f.FetchAll(context.Background(), files, mirrors)

		for _, want := range tt.want {
			if !strings.Contains(out.String(), want) {
				t.Errorf("Parallel=%d: output missing %q:\n%s", tt.parallel, want, out.String())
			}
		}
	}
}

func TestFetchRejectsUnsafeName(t *testing.T) {
	g := &fakeGetter{}
	f, _ := newTestFetcher(t, g)

	report := f.FetchAll(context.Background(), []string{"../evil.zip"}, testMirrors(1))
	if report.Results[0].Status != StatusFailed || g.callCount() != 0 {
		t.Errorf("Result = %+v, calls = %d", report.Results[0], g.callCount())
	}
}

func TestStatusString(t *testing.T) {
	if StatusOK.String() != "ok" || StatusSkipped.String() != "skipped" || StatusFailed.String() != "failed" {
		t.Error("unexpected status strings")
	}
}
