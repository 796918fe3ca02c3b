package httpapi

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/MimeLyc/caption-transcript/internal/transcript"
)

type transcriber interface {
	Get(ctx context.Context, ref string) transcript.Result
}

type Server struct {
	svc   transcriber
	sem   *semaphore.Weighted
	group singleflight.Group
	// nil means unlimited
	limiter *rate.Limiter

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

// WithMaxConcurrent caps how many extractions run at once.
func WithMaxConcurrent(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRateLimit admits at most perMinute new extractions per minute, with
// bursts up to the same count. Requests joining an in-flight extraction are
// not counted. perMinute <= 0 disables the limit.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute > 0 {
			s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
		}
	}
}

func NewServer(svc transcriber, opts ...Option) *Server {
	s := &Server{
		svc: svc,
		sem: semaphore.NewWeighted(1),
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/transcript", s.handleTranscript)
	s.mux.HandleFunc("/healthz", s.handleHealth)
}
