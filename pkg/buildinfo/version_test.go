package buildinfo

import "testing"

func TestUserAgent(t *testing.T) {
	defer func(v string) { Version = v }(Version)

	tests := []struct {
		version string
		want    string
	}{
		{"dev", "smfinstall/dev"},
		{"v1.2.0", "smfinstall/1.2.0"},
		{"1.2.0", "smfinstall/1.2.0"},
	}
	for _, tt := range tests {
		Version = tt.version
		if got := UserAgent(); got != tt.want {
			t.Errorf("UserAgent() with Version %q = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestTemplateShortensCommit(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	Version, Commit, Date = "v1.0.0", "0123456789abcdef0123", "2024-01-02T03:04:05Z"
	want := "{{.Name}} v1.0.0 (commit 0123456789ab, built 2024-01-02T03:04:05Z)\n"
	if got := Template(); got != want {
		t.Errorf("Template() = %q, want %q", got, want)
	}
}
