package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"syncwatch/internal/logger"
	"syncwatch/internal/model"
	"syncwatch/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type WatermarkSource interface {
	Watermark() (int64, bool)
}

type HistoryReader interface {
	GetRecent(limit int) ([]model.History, error)
	GetFailed(limit int) ([]model.History, error)
	GetStats() (repository.Stats, error)
}

type watcherInfo struct {
	Name      string `json:"name"`
	Folder    string `json:"folder"`
	Pattern   string `json:"pattern"`
	Action    string `json:"action"`
	EventType string `json:"event_type"`
	Command   string `json:"command"`
	Valid     bool   `json:"valid"`
}

// Server exposes the running loop's status on localhost.
type Server struct {
	echo      *echo.Echo
	loop      *Loop
	watermark WatermarkSource
	histRepo  HistoryReader
	port      int
	stopCh    chan struct{}
}

func NewServer(loop *Loop, watermark WatermarkSource, histRepo HistoryReader, port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		loop:      loop,
		watermark: watermark,
		histRepo:  histRepo,
		port:      port,
		stopCh:    make(chan struct{}, 1),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/stop", s.handleStop)
	s.echo.GET("/watchers", s.handleWatchers)
	s.echo.GET("/history", s.handleHistory)
}

func (s *Server) Start() {
	go func() {
		addr := fmt.Sprintf("127.0.0.1:%d", s.port)
		logger.Log.Info("status server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("status server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

func (s *Server) handleStatus(c echo.Context) error {
	snap := s.loop.Snapshot()
	if s.watermark != nil {
		if id, ok := s.watermark.Watermark(); ok {
			snap.Watermark = &id
		}
	}

	return c.JSON(http.StatusOK, snap)
}

func (s *Server) handleStop(c echo.Context) error {
	select {
	case s.stopCh <- struct{}{}:
	default:
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) handleWatchers(c echo.Context) error {
	watchers := s.loop.Watchers()
	infos := make([]watcherInfo, 0, len(watchers))
	for _, w := range watchers {
		infos = append(infos, watcherInfo{
			Name:      w.Name,
			Folder:    w.Folder,
			Pattern:   w.Pattern().String(),
			Action:    w.Action,
			EventType: w.EventType,
			Command:   w.Command,
			Valid:     w.Valid(),
		})
	}

	return c.JSON(http.StatusOK, infos)
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.histRepo == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "history is not available"})
	}

	n := 20
	if nStr := c.QueryParam("n"); nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil && parsed > 0 {
			n = parsed
		}
	}

	query := s.histRepo.GetRecent
	if failed, _ := strconv.ParseBool(c.QueryParam("failed")); failed {
		query = s.histRepo.GetFailed
	}

	histories, err := query(n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	stats, err := s.histRepo.GetStats()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"history": histories,
		"stats":   stats,
	})
}
