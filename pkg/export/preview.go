package export

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Preview ports tried when none is given
const (
	PreviewPortRangeStart = 9000
	PreviewPortRangeEnd   = 9100
)

// PreviewServer serves one exported snapshot locally so it can be viewed in
// a browser. The file is re-read on every request, so re-exporting to the
// same path shows up on reload.
type PreviewServer struct {
	snapshot string
	server   *http.Server
	addr     string
}

// NewPreviewServer creates a preview server for the snapshot at path
func NewPreviewServer(path string) *PreviewServer {
	return &PreviewServer{snapshot: path}
}

var previewPage = template.Must(template.New("preview").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Name}}</title>
<style>body{margin:0;background:#11111b;display:flex;justify-content:center;padding:24px}</style>
</head><body><img src="/{{.Name}}" alt="{{.Name}}"></body></html>`))

// Handler returns the preview routes
func (p *PreviewServer) Handler() http.Handler {
	name := filepath.Base(p.snapshot)

	r := chi.NewRouter()
	r.Use(noCacheMiddleware)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = previewPage.Execute(w, struct{ Name string }{name})
	})
	r.Get("/"+name, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, p.snapshot)
	})
	r.Get("/__preview__/status", p.statusHandler)
	return r
}

// Start listens on addr (":0" picks a free port) and serves in the background
func (p *PreviewServer) Start(addr string) error {
	if _, err := os.Stat(p.snapshot); err != nil {
		return fmt.Errorf("snapshot not found: %w", err)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	p.addr = ln.Addr().String()
	p.server = &http.Server{
		Handler:           p.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = p.server.Serve(ln)
	}()
	return nil
}

// Stop gracefully stops the preview server
func (p *PreviewServer) Stop(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}

// URL returns the address to open in a browser
func (p *PreviewServer) URL() string {
	host := p.addr
	if strings.HasPrefix(host, "[::]") || strings.HasPrefix(host, "0.0.0.0") || strings.HasPrefix(host, ":") {
		_, port, _ := net.SplitHostPort(host)
		host = "localhost:" + port
	}
	return "http://" + host
}

type previewStatus struct {
	Status   string    `json:"status"`
	Snapshot string    `json:"snapshot"`
	Exists   bool      `json:"exists"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified,omitempty"`
}

func (p *PreviewServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	st := previewStatus{Status: "running", Snapshot: p.snapshot}
	if info, err := os.Stat(p.snapshot); err == nil {
		st.Exists = true
		st.Size = info.Size()
		st.Modified = info.ModTime()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

// noCacheMiddleware keeps browsers from showing a stale snapshot
func noCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// FindAvailablePort finds a free port in the given range
func FindAvailablePort(start, end int) (int, error) {
	for port := start; port <= end; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			ln.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", start, end)
}
