package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"workpulse.dev/pulse/internal/auth"
	"workpulse.dev/pulse/internal/db"
	"workpulse.dev/pulse/internal/globaltime"
	"workpulse.dev/pulse/internal/intake"
	"workpulse.dev/pulse/internal/moderation"
)

type Options struct {
	Host                string
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	ShutdownTimeout     time.Duration
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool
	AllowedOrigins      []string
}

type Server struct {
	pool       *db.Pool
	logger     zerolog.Logger
	moderation *moderation.Service
	intake     *intake.Service
	dispatcher *intake.ScanDispatcher
	opts       Options
}

func NewServer(pool *db.Pool, logger zerolog.Logger, mod *moderation.Service, ingest *intake.Service, dispatcher *intake.ScanDispatcher, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	opts.Host = host
	if opts.Port <= 0 {
		opts.Port = 8090
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if strings.TrimSpace(opts.SessionCookieName) == "" {
		opts.SessionCookieName = "pulse_session"
	}

	return &Server{
		pool:       pool,
		logger:     logger,
		moderation: mod,
		intake:     ingest,
		dispatcher: dispatcher,
		opts:       opts,
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	allowedOrigins := s.opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.POST("/auth/login", s.handleLogin)

	authed := api.Group("", s.requireAuth())
	authed.POST("/auth/logout", s.handleLogout)
	authed.GET("/auth/me", s.handleAuthMe)
	authed.GET("/moderation/keywords", s.handleModerationKeywords)
	authed.POST("/feedback", s.handleSubmitFeedback)
	authed.GET("/feedback/browse", s.handleBrowseFeedback)
	authed.POST("/feedback/:id/upvote", s.handleUpvote)

	manager := authed.Group("", s.requireRole(auth.RoleManager))
	manager.GET("/feedback", s.handleListAllFeedback)
	manager.GET("/feedback/:id", s.handleGetFeedback)
	manager.PUT("/feedback/:id", s.handleUpdateWorkflow)
	manager.GET("/moderation/flags", s.handleListFlags)
	manager.POST("/moderation/flags/:id/approve", s.handleApproveFlag)
	manager.POST("/moderation/flags/:id/reject", s.handleRejectFlag)
	manager.GET("/moderation/pairs", s.handleListPairs)
	manager.POST("/moderation/pairs/:id/ignore", s.handleIgnorePair)
	manager.POST("/moderation/merge", s.handleMerge)
	manager.POST("/moderation/rescan", s.handleRescan)
	manager.GET("/stats", s.handleStats)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("pulse api server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("pulse api server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	var one int
	if err := s.pool.QueryRow(c.Request().Context(), "SELECT 1").Scan(&one); err != nil {
		s.logger.Error().Err(err).Msg("health check failed")
		return internalError(c, "Database unreachable")
	}
	return success(c, map[string]any{
		"service": "pulse",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.pool.QueryModerationStats(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("query stats failed")
		return internalError(c, "Failed to load stats")
	}
	return success(c, stats)
}
