package export

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analytics.svg")
	err := SaveAnalyticsSnapshot(SnapshotOptions{Path: path, Analytics: sampleAnalytics(), Generated: time.Now()})
	if err != nil {
		t.Fatalf("SaveAnalyticsSnapshot: %v", err)
	}
	return path
}

func TestPreviewServer_ServesSnapshot(t *testing.T) {
	path := writeSnapshot(t)
	ts := httptest.NewServer(NewPreviewServer(path).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/analytics.svg")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "<svg") {
		t.Error("expected SVG content")
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestPreviewServer_IndexEmbedsSnapshot(t *testing.T) {
	ts := httptest.NewServer(NewPreviewServer(writeSnapshot(t)).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), `<img src="/analytics.svg"`) {
		t.Errorf("index = %s", body)
	}
}

func TestPreviewServer_Status(t *testing.T) {
	path := writeSnapshot(t)
	ts := httptest.NewServer(NewPreviewServer(path).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/__preview__/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var st previewStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Status != "running" || !st.Exists || st.Size == 0 || st.Snapshot != path {
		t.Errorf("status = %+v", st)
	}
}

func TestPreviewServer_StartAndStop(t *testing.T) {
	p := NewPreviewServer(writeSnapshot(t))
	if err := p.Start("localhost:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !strings.HasPrefix(p.URL(), "http://") {
		t.Errorf("URL = %q", p.URL())
	}

	resp, err := http.Get(p.URL() + "/analytics.svg")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestPreviewServer_StartMissingSnapshot(t *testing.T) {
	p := NewPreviewServer(filepath.Join(t.TempDir(), "nope.svg"))
	if err := p.Start("localhost:0"); err == nil {
		t.Error("expected an error for a missing snapshot")
	}
}

func TestFindAvailablePort(t *testing.T) {
	port, err := FindAvailablePort(19000, 19100)
	if err != nil {
		t.Fatalf("FindAvailablePort failed: %v", err)
	}
	if port < 19000 || port > 19100 {
		t.Errorf("Port %d is outside expected range 19000-19100", port)
	}
}
