package bot

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const maxUpdateBody = 1 << 20

// WebhookPath путь вебхука относительно базового URL
func WebhookPath(token string) string {
	return "/webhook/" + token
}

// webhookHandler то, что сервер вызывает для каждого обновления
type webhookHandler interface {
	HandleWebhook(ctx context.Context, body []byte) error
}

type Server struct {
	handler webhookHandler
	token   string
	metrics http.Handler
	engine  *gin.Engine
	log     *slog.Logger
}

// NewServer собирает HTTP-сервер: вебхук, healthcheck и метрики.
// metrics может быть nil.
func NewServer(handler webhookHandler, token string, metrics http.Handler, log *slog.Logger) *Server {
	s := &Server{handler: handler, token: token, metrics: metrics, log: log}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())

	engine.GET("/", s.health)
	engine.GET("/healthz", s.health)
	engine.POST("/webhook/:token", s.webhook)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics))
	}

	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// путь вебхука содержит токен, в лог пишем шаблон маршрута
		s.log.Debug("http request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) webhook(c *gin.Context) {
	if subtle.ConstantTimeCompare([]byte(c.Param("token")), []byte(s.token)) != 1 {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUpdateBody))
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	if err := s.handler.HandleWebhook(c.Request.Context(), body); err != nil {
		if errors.Is(err, ErrBadUpdate) {
			s.log.Warn("malformed update", "error", err)
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		// Telegram повторяет неподтверждённые обновления, поэтому отвечаем 200
		s.log.Error("error handling update", "error", err)
	}
	c.Status(http.StatusOK)
}

// Run слушает addr до отмены контекста, затем мягко останавливается
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-srvErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
