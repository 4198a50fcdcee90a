// Package server exposes waveform extraction and rendering over HTTP.
package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wavescrub/wavescrub/internal/config"
	"github.com/wavescrub/wavescrub/internal/decode"
	"github.com/wavescrub/wavescrub/pkg/envelope"
	"github.com/wavescrub/wavescrub/pkg/render"
	"github.com/wavescrub/wavescrub/pkg/wavescrub"
)

// Server represents the HTTP server.
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	// Set Gin mode based on environment
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		config: cfg,
		logger: logger,
		router: router,
	}

	setupSecurityMiddleware(router, cfg)
	server.setupRoutes()

	return server
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server.
func Run(s *Server) error {
	s.logger.Info("Server listening", "port", s.config.Port)
	return s.router.Run(":" + s.config.Port)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1")
	{
		api.POST("/waveform", s.handleWaveform)
		api.POST("/render", s.handleRender)
	}
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "wavescrub",
	})
}

// handleWaveform decodes the uploaded audio, extracts an envelope, and
// returns it in the export format.
func (s *Server) handleWaveform(c *gin.Context) {
	samples, ok := s.decodeBody(c)
	if !ok {
		return
	}

	segments := s.queryInt(c, "segments", s.config.DefaultSegments)
	quality := envelope.Quality(c.DefaultQuery("quality", s.config.DefaultQuality))
	rtl := c.Query("rtl") == "true"

	env, err := envelope.Extract(samples, segments, quality, nil)
	if err != nil {
		s.logger.Warn("extraction rejected", "segments", segments, "quality", quality, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, wavescrub.Export{
		Version: wavescrub.FormatVersion,
		Data:    env,
		Settings: wavescrub.Settings{
			SamplingQuality: quality,
			RTL:             rtl,
		},
	})
}

// handleRender decodes, extracts, and paints a waveform PNG.
func (s *Server) handleRender(c *gin.Context) {
	samples, ok := s.decodeBody(c)
	if !ok {
		return
	}

	width := s.queryInt(c, "width", s.config.RenderWidth)
	height := s.queryInt(c, "height", s.config.RenderHeight)
	segments := s.queryInt(c, "segments", s.config.DefaultSegments)
	quality := envelope.Quality(c.DefaultQuery("quality", s.config.DefaultQuality))

	progress, err := strconv.ParseFloat(c.DefaultQuery("progress", "0"), 64)
	if err != nil || progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	env, err := envelope.Extract(samples, segments, quality, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := render.Config{
		Width:            float64(width),
		Height:           float64(height),
		Gap:              s.queryFloat(c, "gap", 1),
		ActiveColor:      c.DefaultQuery("active", "#2563eb"),
		InactiveColor:    c.DefaultQuery("inactive", "#d1d5db"),
		BackgroundColor:  c.Query("background"),
		RTL:              c.Query("rtl") == "true",
		RoundedCorners:   c.DefaultQuery("rounded", "true") == "true",
		CornerDivisor:    s.queryFloat(c, "divisor", 0),
		MinHeightPercent: s.queryFloat(c, "minheight", 2),
	}

	surface := render.NewSurface(width, height, s.queryFloat(c, "ratio", 1))
	render.Render(surface.Context(), env, progress, cfg)

	c.Writer.Header().Set("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := surface.EncodePNG(c.Writer); err != nil {
		s.logger.Error("png encode failed", "error", err)
	}
}

// decodeBody reads the request body (bounded by MaxUploadBytes) and
// decodes it to samples. Writes the error response itself on failure.
func (s *Server) decodeBody(c *gin.Context) ([]float64, bool) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)

	data, err := io.ReadAll(body)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return nil, false
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return nil, false
	}

	samples, rate, err := decode.Bytes(data)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, decode.ErrUnsupportedFormat) {
			status = http.StatusUnsupportedMediaType
		}
		s.logger.Warn("decode failed", "bytes", len(data), "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}

	s.logger.Debug("decoded audio", "samples", len(samples), "rate", rate)

	return samples, true
}

func (s *Server) queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func (s *Server) queryFloat(c *gin.Context, key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(c.DefaultQuery(key, strconv.FormatFloat(fallback, 'f', -1, 64)), 64)
	if err != nil {
		return fallback
	}
	return v
}
