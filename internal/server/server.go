// Package server is the daemon's local control API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/devbydaniel/voicerec/internal/api"
	"github.com/devbydaniel/voicerec/internal/domain/recording/usecases"
)

// UseCases are the operations the API exposes.
type UseCases struct {
	Start     *usecases.StartRecording
	Pause     *usecases.PauseRecording
	Resume    *usecases.ResumeRecording
	Stop      *usecases.StopRecording
	Status    *usecases.GetStatus
	List      *usecases.ListRecordings
	Interrupt *usecases.ReportInterruption
}

type Server struct {
	uc       UseCases
	hub      *Hub
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	router   *gin.Engine
}

func New(uc UseCases, hub *Hub, gatherer prometheus.Gatherer, logger *zap.Logger, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		uc:       uc,
		hub:      hub,
		gatherer: gatherer,
		logger:   logger,
		router:   gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), RequestLogger(s.logger))

	// Browser front-ends on other local ports drive the recorder too.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "voicerec"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.router.Group(api.Prefix)
	{
		rec := v1.Group("/recording")
		rec.POST("/start", s.StartRecording)
		rec.POST("/pause", s.PauseRecording)
		rec.POST("/resume", s.ResumeRecording)
		rec.POST("/stop", s.StopRecording)
		rec.GET("/status", s.GetStatus)

		v1.POST("/interruptions", s.ReportInterruption)
		v1.GET("/events", s.Events)
		v1.GET("/recordings", s.ListRecordings)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains open requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("control API listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Event streams never end on their own.
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
