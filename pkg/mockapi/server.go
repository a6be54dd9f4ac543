package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/api"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/logging"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/metrics"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// Options configures the fixture server
type Options struct {
	APIKey string // empty disables the key check
	Store  *Store
	Logger *zerolog.Logger
}

// Fault is a canned failure returned by the next matching request
type Fault struct {
	Status int
	Detail string // empty sends a body without a detail field
	Raw    string // sent verbatim when set
}

// Server is the fixture reviews API
type Server struct {
	mux    *chi.Mux
	store  *Store
	apiKey string
	log    zerolog.Logger

	mu     sync.Mutex
	faults map[string]Fault
}

// New builds the router with the same middleware stack the real service
// would sit behind
func New(opts Options) *Server {
	store := opts.Store
	if store == nil {
		store = NewStore(SeedReviews(97, 1))
	}
	l := logging.For("mockapi")
	if opts.Logger != nil {
		l = *opts.Logger
	}

	s := &Server{
		mux:    chi.NewRouter(),
		store:  store,
		apiKey: opts.APIKey,
		log:    l,
		faults: map[string]Fault{},
	}

	s.mux.Use(chimw.RequestID)
	s.mux.Use(chimw.Recoverer)
	s.mux.Use(s.observe)

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.mux.Group(func(r chi.Router) {
		r.Use(s.requireKey)
		r.Use(s.injectFaults)
		r.Get("/reviews", s.listReviews)
		r.Patch("/reviews/{id}", s.updateReview)
		r.Post("/reviews/{id}/suggest-reply", s.suggestReply)
		r.Get("/analytics", s.analytics)
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Store exposes the backing data
func (s *Server) Store() *Store {
	return s.store
}

// FailNext makes the next request to route (e.g. "/analytics" or
// "/reviews/{id}") fail with f
func (s *Server) FailNext(route string, f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[route] = f
}

func (s *Server) takeFault(route string) (Fault, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.faults[route]
	if ok {
		delete(s.faults, route)
	}
	return f, ok
}

// ---- middleware ----

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		metrics.ObserveServed(route, r.Method, status)
		s.log.Info().
			Str("route", route).
			Str("method", r.Method).
			Int("status", status).
			Str("request_id", r.Header.Get(api.HeaderRequestID)).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get(api.HeaderAPIKey) != s.apiKey {
			writeDetail(w, http.StatusUnauthorized, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f, ok := s.takeFault(faultRoute(r.URL.Path)); ok {
			writeFault(w, f)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// faultRoute maps a concrete path onto the pattern used by FailNext. The
// route context is not populated yet inside group middleware.
func faultRoute(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

// ---- handlers ----

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := Query{
		Location:  q.Get("location"),
		Sentiment: q.Get("sentiment"),
		Q:         q.Get("q"),
	}
	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			writeDetail(w, http.StatusUnprocessableEntity, "skip must be a non-negative integer")
			return
		}
		query.Skip = skip
	}
	writeJSON(w, http.StatusOK, s.store.List(query))
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Analytics())
}

func (s *Server) reviewID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "id must be an integer")
		return 0, false
	}
	return id, true
}

func (s *Server) suggestReply(w http.ResponseWriter, r *http.Request) {
	id, ok := s.reviewID(w, r)
	if !ok {
		return
	}
	review, found := s.store.Get(id)
	if !found {
		writeDetail(w, http.StatusNotFound, "Review not found")
		return
	}
	writeJSON(w, http.StatusOK, model.SuggestedReply{Reply: SuggestReply(review)})
}

func (s *Server) updateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.reviewID(w, r)
	if !ok {
		return
	}
	var body struct {
		Reply *string `json:"reply"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Reply == nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "reply: field required"}},
		})
		return
	}
	review, found := s.store.SetReply(id, *body.Reply)
	if !found {
		writeDetail(w, http.StatusNotFound, "Review not found")
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeFault(w http.ResponseWriter, f Fault) {
	status := f.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	switch {
	case f.Raw != "":
		w.WriteHeader(status)
		_, _ = w.Write([]byte(f.Raw))
	case f.Detail != "":
		writeDetail(w, status, f.Detail)
	default:
		writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
	}
}
