package updater

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"v0.1.0", "v0.1.0", 0},
		{"v0.1.1", "0.1.0", 1},
		{"v0.2.0", "v0.10.0", -1},
		{"v1.0", "v1.0.0", 0},
		{"v1.2.0-rc1", "v1.1.9", 1},
		{"v0.1.0", "dev", 1},
		{"dev", "dev", 0},
	}
	for _, tt := range tests {
		if got := compareVersions(tt.v1, tt.v2); got != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.want)
		}
	}
}

func releaseServer(t *testing.T, status int, body string) string {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestCheckForUpdates_Newer(t *testing.T) {
	url := releaseServer(t, http.StatusOK, `{"tag_name":"v1.4.0","html_url":"https://example.com/r/v1.4.0"}`)

	tag, link, err := CheckForUpdates(context.Background(), url, "v1.3.2")
	if err != nil {
		t.Fatalf("CheckForUpdates: %v", err)
	}
	if tag != "v1.4.0" || link != "https://example.com/r/v1.4.0" {
		t.Errorf("got %q %q", tag, link)
	}
}

func TestCheckForUpdates_UpToDate(t *testing.T) {
	url := releaseServer(t, http.StatusOK, `{"tag_name":"v1.3.2","html_url":"x"}`)

	tag, _, err := CheckForUpdates(context.Background(), url, "v1.3.2")
	if err != nil {
		t.Fatal(err)
	}
	if tag != "" {
		t.Errorf("expected no update, got %q", tag)
	}
}

func TestCheckForUpdates_BadStatus(t *testing.T) {
	url := releaseServer(t, http.StatusForbidden, `{"message":"rate limited"}`)

	if _, _, err := CheckForUpdates(context.Background(), url, "v1.0.0"); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}
