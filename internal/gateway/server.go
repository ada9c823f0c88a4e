package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tronix365/sensorbridge/internal/api"
	"github.com/tronix365/sensorbridge/internal/config"
	"github.com/tronix365/sensorbridge/internal/control"
	"github.com/tronix365/sensorbridge/internal/gateway/websocket"
	"github.com/tronix365/sensorbridge/internal/session"
	"github.com/tronix365/sensorbridge/internal/store"
	"github.com/tronix365/sensorbridge/internal/telemetry"
	"go.uber.org/zap"
)

// Server is the local HTTP surface for the browser shell. It only
// republishes bridge state and forwards user actions; it renders nothing.
type Server struct {
	router  *gin.Engine
	logger  *zap.Logger
	server  *http.Server
	wsHub   *websocket.Hub
	session *session.Manager
	watcher *telemetry.Watcher
	store   *store.Store
	control *control.Service
	client  *api.Client
}

func NewServer(cfg *config.Config, sess *session.Manager, watcher *telemetry.Watcher, st *store.Store, ctl *control.Service, client *api.Client, wsHub *websocket.Hub, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:  gin.New(),
		logger:  logger,
		wsHub:   wsHub,
		session: sess,
		watcher: watcher,
		store:   st,
		control: ctl,
		client:  client,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Gateway.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting gateway server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("Gateway server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down gateway server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	// Public routes
	s.router.GET("/health", s.healthCheck)

	root := s.router.Group("/api")
	{
		// ==================== SESSION ====================
		sess := root.Group("/session")
		{
			sess.GET("", s.getSession)
			sess.POST("/login", s.login)
			sess.POST("/logout", s.logout)
			sess.POST("/register", s.register)
			sess.PUT("/profile", s.updateProfile)
		}

		// ==================== DEVICE ROSTER ====================
		devices := root.Group("/devices")
		{
			devices.GET("", s.listDevices)
			devices.POST("", s.registerDevice)
			devices.GET("/:id", s.getDevice)
			devices.DELETE("/:id", s.deleteDevice)

			// View subscription (one active device at a time)
			devices.POST("/:id/watch", s.watchDevice)
			devices.DELETE("/:id/watch", s.unwatchDevice)
			devices.GET("/:id/view", s.getDeviceView)

			// Actuators
			devices.POST("/:id/outputs", s.addOutput)
		}

		// ==================== OUTPUTS ====================
		root.POST("/outputs/:id/toggle", s.toggleOutput)
	}

	// ==================== WEBSOCKET ====================
	s.router.GET("/ws/live", s.wsLiveConnection)
}

// WebSocket handler
func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

// Health check (public)
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"watching":  s.watcher.Current(),
		"clients":   s.wsHub.GetClientCount(),
		"timestamp": time.Now().Unix(),
	})
}
