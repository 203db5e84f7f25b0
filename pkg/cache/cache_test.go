package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type decision struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Langs []string `json:"langs"`
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "key", "value"); err != nil {
		t.Errorf("Set error: %v", err)
	}

	var got string
	hit, err := c.Get(ctx, "key", &got)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}

	n, err := c.Clear(ctx)
	if err != nil || n != 0 {
		t.Errorf("Clear() = %d, %v; want 0, nil", n, err)
	}
	if c.Dir() != "" {
		t.Errorf("Dir() = %q, want empty", c.Dir())
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestFileCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	tests := []struct {
		name string
		key  string
		set  any
		get  func() any
		eq   func(any) bool
	}{
		{
			name: "bool",
			key:  "upgrade",
			set:  true,
			get:  func() any { return new(bool) },
			eq:   func(v any) bool { return *v.(*bool) },
		},
		{
			name: "struct",
			key:  "version",
			set:  decision{ID: "2.0", Label: "SMF 2.0", Langs: []string{"english"}},
			get:  func() any { return new(decision) },
			eq: func(v any) bool {
				d := v.(*decision)
				return d.ID == "2.0" && d.Label == "SMF 2.0" && len(d.Langs) == 1 && d.Langs[0] == "english"
			},
		},
		{
			name: "empty slice",
			key:  "languages",
			set:  []string{},
			get:  func() any { return new([]string) },
			eq: func(v any) bool {
				s := *v.(*[]string)
				return s != nil && len(s) == 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Set(ctx, tt.key, tt.set); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			got := tt.get()
			hit, err := c.Get(ctx, tt.key, got)
			if err != nil {
				t.Fatalf("Get() error: %v", err)
			}
			if !hit {
				t.Fatal("Get() returned miss for stored key")
			}
			if !tt.eq(got) {
				t.Errorf("Get() value = %#v, want %#v", got, tt.set)
			}
		})
	}
}

func TestFileCache_Miss(t *testing.T) {
	c, _ := NewFileCache(t.TempDir(), 0)
	var v string
	hit, err := c.Get(context.Background(), "missing", &v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Error("Get() returned hit for missing key")
	}
}

func TestFileCache_EmptyKey(t *testing.T) {
	c, _ := NewFileCache(t.TempDir(), 0)
	if err := c.Set(context.Background(), "", 1); err != ErrEmptyKey {
		t.Errorf("Set(\"\") error = %v, want ErrEmptyKey", err)
	}
	var v int
	if _, err := c.Get(context.Background(), "", &v); err != ErrEmptyKey {
		t.Errorf("Get(\"\") error = %v, want ErrEmptyKey", err)
	}
}

func TestFileCache_RecordNaming(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewFileCache(dir, 0)

	if err := c.Set(context.Background(), "version", "2.0"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	want := filepath.Join(dir, FilePrefix+Hash([]byte("version")))
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected record at %s: %v", want, err)
	}
	if c.path("version") != c.path("version") {
		t.Error("path should be deterministic")
	}
	if c.path("version") == c.path("upgrade") {
		t.Error("different keys should produce different paths")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected exactly one file after Set, got %d", len(entries))
	}
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewFileCache(dir, 0)

	path := c.path("catalog")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var v string
	hit, err := c.Get(context.Background(), "catalog", &v)
	if err != nil || hit {
		t.Fatalf("Get() = %v, %v; want false, nil", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt record should have been removed")
	}
}

func TestFileCache_TypeMismatchIsMiss(t *testing.T) {
	c, _ := NewFileCache(t.TempDir(), 0)
	ctx := context.Background()

	if err := c.Set(ctx, "upgrade", "not a bool"); err != nil {
		t.Fatal(err)
	}
	var v bool
	hit, err := c.Get(ctx, "upgrade", &v)
	if err != nil || hit {
		t.Errorf("Get() = %v, %v; want false, nil", hit, err)
	}
}

func TestFileCache_Expiration(t *testing.T) {
	c, _ := NewFileCache(t.TempDir(), time.Hour)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "catalog", "value"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	var v string
	if hit, err := c.Get(ctx, "catalog", &v); err != nil || !hit {
		t.Fatalf("Get() = %v, %v; want true, nil", hit, err)
	}

	now = now.Add(2 * time.Hour)
	if hit, err := c.Get(ctx, "catalog", &v); err != nil || hit {
		t.Errorf("Get() after ttl = %v, %v; want false, nil", hit, err)
	}
}

func TestFileCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewFileCache(dir, 0)
	ctx := context.Background()

	for _, key := range []string{"catalog", "upgrade", "version", "languages"} {
		if err := c.Set(ctx, key, key); err != nil {
			t.Fatalf("Set(%q) error: %v", key, err)
		}
	}

	// Files that do not belong to the cache must survive.
	keep := []string{"Settings.php", "2.0install.zip", ".htaccess", "cache_notes.txt"}
	for _, name := range keep {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, FilePrefix+"dir"), 0o755); err != nil {
		t.Fatal(err)
	}

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 4 {
		t.Errorf("Clear() removed %d records, want 4", n)
	}

	for _, name := range keep {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Clear() removed unrelated file %s", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, FilePrefix+"dir")); err != nil {
		t.Error("Clear() should not remove directories")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), FilePrefix) {
			t.Errorf("record %s survived Clear()", e.Name())
		}
	}

	// Every previously stored key now misses.
	for _, key := range []string{"catalog", "upgrade", "version", "languages"} {
		var v string
		if hit, _ := c.Get(ctx, key, &v); hit {
			t.Errorf("Get(%q) hit after Clear()", key)
		}
	}
}

func TestNewFileCache_NotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileCache(path, 0); err == nil {
		t.Error("NewFileCache() on a regular file should fail")
	}
}
