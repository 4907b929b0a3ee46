package upstream

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/roach88/soundcheck/internal/log"
)

// Mode selects the behavior of a Server instance.
type Mode string

const (
	ModeOK       Mode = "ok"
	ModeEmpty    Mode = "empty"
	ModeError    Mode = "error"
	ModeThrottle Mode = "throttle"
	ModeSlow     Mode = "slow"
)

// ParseMode converts a flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOK, ModeEmpty, ModeError, ModeThrottle, ModeSlow:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown upstream mode %q (ok, empty, error, throttle, slow)", s)
	}
}

// DefaultFixture is served when no fixture is configured: a small, already
// canonically ordered listing.
var DefaultFixture = []byte(`[
  {"name": "Download", "bands": [
    {"name": "Iron Hide", "recordLabel": "Nuclear Blast"}
  ]},
  {"name": "Glasto", "bands": [
    {"name": "Echo", "recordLabel": "EMI"},
    {"name": "Pulse", "recordLabel": "Sub Pop"}
  ]},
  {"name": "Reading", "bands": []}
]`)

// Config describes one Server instance.
type Config struct {
	Mode        Mode
	Fixture     []byte        // payload bytes; used when FixturePath is empty
	FixturePath string        // payload file; loaded at startup, reloadable via Watch
	Delay       time.Duration // slow mode response delay; defaults to 1s
	// Throttle mode: requests allowed per window before 429. The defaults
	// (1 per minute) make the second request within a test window
	// deterministically throttled.
	ThrottleLimit  int
	ThrottleWindow time.Duration
}

// Server is the mock upstream. Create one per scenario; mode is fixed for
// the instance's lifetime.
type Server struct {
	cfg      Config
	router   chi.Router
	log      zerolog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec

	mu      sync.RWMutex
	fixture []byte
}

// New builds a Server for the given config.
func New(cfg Config) (*Server, error) {
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		log:      log.WithComponent("upstream"),
		registry: prometheus.NewRegistry(),
	}
	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soundcheck",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Festival endpoint requests served, by mode.",
	}, []string{"mode"})
	s.registry.MustRegister(s.requests)

	switch {
	case cfg.FixturePath != "":
		if err := s.loadFixture(); err != nil {
			return nil, err
		}
	case cfg.Fixture != nil:
		s.fixture = cfg.Fixture
	default:
		s.fixture = DefaultFixture
	}

	s.router = s.buildRouter()
	return s, nil
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if s.cfg.Mode == ModeThrottle {
		limit := s.cfg.ThrottleLimit
		if limit <= 0 {
			limit = 1
		}
		window := s.cfg.ThrottleWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Group(func(gr chi.Router) {
			gr.Use(httprate.LimitAll(limit, window))
			gr.Get("/festivals", s.handleFestivals)
		})
	} else {
		r.Get("/festivals", s.handleFestivals)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// chi answers 404 for everything unrouted, which is exactly the
	// negative-path contract for unknown sub-paths.
	return r
}

func (s *Server) handleFestivals(w http.ResponseWriter, r *http.Request) {
	s.requests.WithLabelValues(string(s.cfg.Mode)).Inc()

	switch s.cfg.Mode {
	case ModeEmpty:
		s.respond(w, http.StatusOK, []byte("[]"))
	case ModeError:
		s.respond(w, http.StatusInternalServerError, []byte("internal server error"))
	case ModeSlow:
		delay := s.cfg.Delay
		if delay <= 0 {
			delay = time.Second
		}
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		s.respond(w, http.StatusOK, s.currentFixture())
	default: // ok, throttle (under the limit)
		s.respond(w, http.StatusOK, s.currentFixture())
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

func (s *Server) currentFixture() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixture
}

func (s *Server) loadFixture() error {
	data, err := os.ReadFile(s.cfg.FixturePath)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}
	s.mu.Lock()
	s.fixture = data
	s.mu.Unlock()
	return nil
}
