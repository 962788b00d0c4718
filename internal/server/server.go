package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DenisStobert/hh-autoapply-backend/internal/enrichment"
	"github.com/DenisStobert/hh-autoapply-backend/internal/headhunter"
	"github.com/DenisStobert/hh-autoapply-backend/internal/session"
)

const (
	defaultState           = "random_state"
	defaultDeepLink        = "exp://10.0.0.56:8081/--/auth-success"
	defaultShutdownTimeout = 10 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

// HeadHunter is the part of the hh.ru client used by the handlers.
type HeadHunter interface {
	AuthCodeURL(state string) string
	Me(ctx context.Context, token string) (json.RawMessage, error)
	Negotiations(ctx context.Context, token string, q url.Values) ([]headhunter.Negotiation, error)
	Messages(ctx context.Context, token, negotiationID string) (json.RawMessage, error)
	MineResumesRaw(ctx context.Context, token string) (json.RawMessage, error)
	MineResumes(ctx context.Context, token string) (*headhunter.Resumes, error)
	Search(ctx context.Context, token string, params *headhunter.SearchParams) (json.RawMessage, error)
	Apply(ctx context.Context, token string, params headhunter.ApplyParams) (*headhunter.ApplyResult, error)
}

// Enricher decorates negotiation records before they are returned.
type Enricher interface {
	Apply(ctx context.Context, token string, items []headhunter.Negotiation) ([]headhunter.Negotiation, enrichment.Step)
}

type Config struct {
	Addr string
	// State is sent as the OAuth state parameter.
	State string
	// DeepLink is where the callback page sends the issued tokens.
	DeepLink        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

type Deps struct {
	HH       HeadHunter
	Session  *session.Manager
	Enricher Enricher
	Logger   *zap.Logger
}

type Server struct {
	cfg      Config
	hh       HeadHunter
	session  *session.Manager
	enricher Enricher
	logger   *zap.Logger

	engine *gin.Engine
	http   *http.Server
}

func New(cfg Config, deps Deps) *Server {
	if cfg.State == "" {
		cfg.State = defaultState
	}
	if cfg.DeepLink == "" {
		cfg.DeepLink = defaultDeepLink
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		hh:       deps.HH,
		session:  deps.Session,
		enricher: deps.Enricher,
		logger:   logger,
	}

	s.engine = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done and then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errC := make(chan error, 1)
	go func() {
		s.logger.Info("server is listening", zap.String("addr", ln.Addr().String()))
		errC <- s.http.Serve(ln)
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("attempting graceful shutdown", zap.Duration("timeout", s.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("graceful shutdown failed, closing connections", zap.Error(err))
		_ = s.http.Close()
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
