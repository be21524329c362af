package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/firewatch/internal/alerts"
	"github.com/your-org/firewatch/internal/api/handlers"
	"github.com/your-org/firewatch/internal/api/ws"
	"github.com/your-org/firewatch/internal/auth"
	"github.com/your-org/firewatch/internal/queue"
	"github.com/your-org/firewatch/internal/registry"
	"github.com/your-org/firewatch/internal/session"
	"github.com/your-org/firewatch/internal/storage"
	"github.com/your-org/firewatch/internal/users"
)

type RouterConfig struct {
	APIKey   string
	KV       handlers.Pinger
	Registry *registry.Registry
	Feed     *alerts.Feed
	Sessions *session.Manager
	Users    *users.Manager
	MinIO    *storage.MinIOStore
	Producer *queue.Producer
	Hub      *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.KV, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// Auth — login is reachable while logged out, everything else is not.
	authH := handlers.NewAuthHandler(cfg.Users)
	v1.POST("/auth/login", authH.Login)

	gated := v1.Group("")
	gated.Use(auth.SessionGate(cfg.Users))

	gated.POST("/auth/logout", authH.Logout)
	gated.GET("/auth/me", authH.Me)

	// WebSocket
	gated.GET("/ws", cfg.Hub.HandleWS)

	// Cameras
	cameraH := handlers.NewCameraHandler(cfg.Registry)
	gated.GET("/cameras", cameraH.List)
	gated.POST("/cameras", cameraH.Create)
	gated.DELETE("/cameras/:id", cameraH.Delete)

	// Alerts (filter with ?camera_id= for per-camera correlation)
	alertH := handlers.NewAlertHandler(cfg.Feed, cfg.MinIO)
	gated.GET("/alerts", alertH.List)
	gated.GET("/alerts/:id/snapshot", alertH.Snapshot)

	// Playback session
	streamH := handlers.NewStreamHandler(cfg.Registry, cfg.Sessions)
	gated.POST("/stream/start", streamH.Start)
	gated.POST("/stream/stop", streamH.Stop)
	gated.GET("/stream", streamH.Current)

	return r
}
