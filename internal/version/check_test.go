package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func releaseServer(t *testing.T, tag string, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tag_name":"` + tag + `","html_url":"https://github.com/dhabedank/cost-analyzer/releases/tag/` + tag + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		latest  string
		current string
		want    bool
	}{
		{"same version", "v1.0.0", "1.0.0", false},
		{"patch newer", "v1.0.1", "1.0.0", true},
		{"minor newer", "v1.1.0", "1.0.0", true},
		{"major newer", "v2.0.0", "v1.9.9", true},
		{"current newer", "v1.0.0", "1.0.1", false},
		{"double digit", "v1.10.0", "1.9.0", true},
		{"prerelease is older than release", "v1.1.0-rc1", "1.1.0", false},
		{"short tag", "v0.5", "0.4.2", true},
		{"dev build skipped", "v9.0.0", "dev", false},
		{"bad tag ignored", "latest", "1.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := 0
			srv := releaseServer(t, tt.latest, &hits)
			c := &Checker{ReleaseURL: srv.URL, Client: srv.Client()}

			got := c.Check(context.Background(), tt.current)
			if (got != nil) != tt.want {
				t.Fatalf("Check(%q) with latest %q = %+v, want update=%v", tt.current, tt.latest, got, tt.want)
			}
			if got != nil && got.LatestVersion != tt.latest {
				t.Errorf("LatestVersion = %q, want %q", got.LatestVersion, tt.latest)
			}
		})
	}
}

func TestCheckIsThrottled(t *testing.T) {
	hits := 0
	srv := releaseServer(t, "v2.0.0", &hits)
	c := &Checker{
		ReleaseURL: srv.URL,
		MarkerPath: filepath.Join(t.TempDir(), "state", ".last-update-check"),
		Client:     srv.Client(),
	}

	if c.Check(context.Background(), "1.0.0") == nil {
		t.Fatal("first check should report the update")
	}
	if c.Check(context.Background(), "1.0.0") != nil {
		t.Error("second check within the interval should be skipped")
	}
	if hits != 1 {
		t.Errorf("release API hit %d times, want 1", hits)
	}
}

func TestCheckServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Checker{ReleaseURL: srv.URL, Client: srv.Client()}
	if got := c.Check(context.Background(), "1.0.0"); got != nil {
		t.Errorf("Check() = %+v, want nil on server error", got)
	}
}
