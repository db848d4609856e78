// Package web serves the interactive cost analysis page.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dhabedank/cost-analyzer/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionCookie = "cost_analyzer_session"
	sessionIDKey  = "session_id"
	sessionKey    = "session"

	DefaultListen      = "127.0.0.1:8501"
	DefaultMaxUploadMB = 20
	DefaultMaxSessions = 256
)

// Config configures the web server.
type Config struct {
	Listen          string
	MaxUploadBytes  int64
	MaxSessions     int
	PreviewRows     int // head rows per sheet in the overview
	RawPreviewChars int // raw flattened text shown on the page
	Provider        string
	Analysis        core.AnalysisConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Listen:          DefaultListen,
		MaxUploadBytes:  DefaultMaxUploadMB << 20,
		MaxSessions:     DefaultMaxSessions,
		PreviewRows:     core.DefaultPreviewRows,
		RawPreviewChars: core.DefaultRawPreviewChars,
		Analysis:        core.DefaultAnalysisConfig(),
	}
}

// Server is the web front end of the analysis pipeline.
type Server struct {
	config   Config
	sessions *SessionStore
	log      *logrus.Logger
	page     *template.Template
}

// NewServer creates a server building inferencers with factory.
func NewServer(config Config, factory core.InferencerFactory, log *logrus.Logger) (*Server, error) {
	if config.MaxSessions <= 0 {
		config.MaxSessions = DefaultMaxSessions
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultMaxUploadMB << 20
	}
	if config.PreviewRows <= 0 {
		config.PreviewRows = core.DefaultPreviewRows
	}
	if err := config.Analysis.Validate(); err != nil {
		return nil, err
	}

	sessions, err := NewSessionStore(config.MaxSessions, config.Analysis, factory)
	if err != nil {
		return nil, err
	}

	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &Server{
		config:   config,
		sessions: sessions,
		log:      log,
		page:     page,
	}, nil
}

// Router returns the HTTP handler with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = s.config.MaxUploadBytes
	router.Use(gin.Recovery(), requestLogger(s.log))

	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "health")
	})

	pages := router.Group("/", s.sessionMiddleware)
	pages.GET("/", s.IndexAction)
	pages.POST("/upload", s.UploadAction)
	pages.GET("/preview", s.PreviewAction)
	pages.POST("/analyze", s.AnalyzeAction)
	pages.GET("/download", s.DownloadAction)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("listen", s.config.Listen).Info("server started")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.sessions.Purge()
	s.log.Info("server stopped")
	return err
}

// sessionMiddleware attaches the caller's session, creating one if needed.
func (s *Server) sessionMiddleware(c *gin.Context) {
	var session *core.Session
	if id, err := c.Cookie(sessionCookie); err == nil {
		session, _ = s.sessions.Get(id)
	}
	if session == nil {
		session = s.sessions.Create()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, session.ID, 0, "/", "", false, true)
	}

	c.Set(sessionKey, session)
	c.Set(sessionIDKey, session.ID)
	c.Next()
}

func sessionFrom(c *gin.Context) *core.Session {
	return c.MustGet(sessionKey).(*core.Session)
}
