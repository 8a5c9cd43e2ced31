package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"spamsniffer/internal/domain"
	"spamsniffer/internal/mailtext"
	"spamsniffer/internal/pipeline"
	"spamsniffer/internal/scanner"
	"spamsniffer/internal/storage"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type Scanner interface {
	Scan(ctx context.Context, req scanner.Request) (*domain.Scan, error)
}

type Options struct {
	AllowOrigins []string
	BodyLimit    string
}

type Server struct {
	echo    *echo.Echo
	scanner Scanner
	repo    storage.ScanRepository
	model   pipeline.Info
	sse     *SSEBroker
}

// NewServer builds the HTTP API. Verdicts broadcast on sse are streamed
// to /api/events subscribers.
func NewServer(sc Scanner, repo storage.ScanRepository, model pipeline.Info, sse *SSEBroker, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.AllowOrigins,
	}))
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	if sse == nil {
		sse = NewSSEBroker()
	}

	s := &Server{
		echo:    e,
		scanner: sc,
		repo:    repo,
		model:   model,
		sse:     sse,
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.health)
	s.echo.POST("/check_spam", s.checkSpam)
	s.echo.POST("/api/check/raw", s.checkRaw)
	s.echo.GET("/api/scans", s.getScans)
	s.echo.GET("/api/scans/:id", s.getScan)
	s.echo.GET("/api/stats", s.stats)
	s.echo.GET("/api/model", s.modelInfo)
	s.echo.GET("/api/events", s.events)
}

func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("server starting")
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// checkSpam accepts {"text": "..."}. Malformed bodies and missing or
// non-string text are scored as empty text.
func (s *Server) checkSpam(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "reading body"})
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Debug().Err(err).Msg("malformed check request, scoring empty text")
	}
	text, _ := payload["text"].(string)

	scan, err := s.scanner.Scan(c.Request().Context(), scanner.Request{
		Source: domain.SourceAPI,
		Text:   text,
	})
	if err != nil {
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, scan.Verdict)
}

// checkRaw scores a complete RFC 5322 message.
func (s *Server) checkRaw(c echo.Context) error {
	msg, err := mailtext.Extract(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	scan, err := s.scanner.Scan(c.Request().Context(), scanner.Request{
		Source:  domain.SourceAPI,
		Subject: msg.Subject,
		From:    msg.From,
		Text:    msg.Text,
	})
	if err != nil {
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, scan)
}

func (s *Server) getScans(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	scans, err := s.repo.FindAll(c.Request().Context(), limit, offset)
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, scans)
}

func (s *Server) getScan(c echo.Context) error {
	scan, err := s.repo.FindByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, scan)
}

func (s *Server) stats(c echo.Context) error {
	st, err := s.repo.GetStats(c.Request().Context())
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (s *Server) modelInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, s.model)
}

func (s *Server) events(c echo.Context) error {
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")

	ch := s.sse.Subscribe()
	defer s.sse.Unsubscribe(ch)

	fmt.Fprintf(c.Response(), ": ping\n\n")
	c.Response().Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case msg := <-ch:
			fmt.Fprintf(c.Response(), "event: scan\n")
			for _, line := range strings.Split(msg, "\n") {
				fmt.Fprintf(c.Response(), "data: %s\n", line)
			}
			fmt.Fprintf(c.Response(), "\n")
			c.Response().Flush()
		}
	}
}

func (s *Server) internalError(c echo.Context, err error) error {
	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return n, nil
}
