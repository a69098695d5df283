package httpapi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"propguard/internal/engine"
	"propguard/internal/logger"
	"propguard/internal/transport/ws"
)

// 中文说明：
// 对外 HTTP 面：REST 查询/下单 + websocket 订阅 + /metrics。
// 鉴权是显式非目标，这层只做薄路由，业务全部在 engine。

type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述 HTTP 服务依赖。
type ServerConfig struct {
	Addr      string
	Engine    *engine.Engine
	Hub       *ws.Hub
	StaticDir string
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("http server requires engine")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	h := &handlers{engine: cfg.Engine}
	api := router.Group("/api")
	{
		api.GET("/status", h.status)
		api.GET("/market_data", h.marketData)
		api.GET("/positions", h.positions)
		api.POST("/analyze/:symbol", h.analyze)
		api.GET("/risk_gate", h.riskGate)
		api.POST("/trade", h.trade)
		api.POST("/symbols", h.addSymbol)
		api.POST("/position/modify", h.modifyPosition)
		api.POST("/position/close", h.closePosition)
	}

	if cfg.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			cfg.Hub.Serve(c.Writer, c.Request)
		})
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.StaticDir != "" {
		if stat, err := os.Stat(cfg.StaticDir); err == nil && stat.IsDir() {
			router.Static("/ui", cfg.StaticDir)
		}
	}

	return &Server{addr: cfg.Addr, router: router}, nil
}

// requestLogger 记录接口调用，便于追踪人工操作。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出错。
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
