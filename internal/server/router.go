package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"reminders-lite/internal/auth"
	"reminders-lite/internal/handler"
	"reminders-lite/internal/hub"
	"reminders-lite/internal/middleware"
	"reminders-lite/internal/store"
)

type Deps struct {
	Store       *store.Store
	TokenConfig auth.TokenConfig
	// LoginRateLimit is attempts per minute per client IP; zero means 10.
	LoginRateLimit int
	// Hub receives reminder change events; a fresh one is created when nil.
	Hub *hub.Hub
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	limit := deps.LoginRateLimit
	if limit <= 0 {
		limit = 10
	}
	loginLimiter := middleware.NewRateLimiter(limit, time.Minute)
	loginHandler := &handler.LoginHandler{Verifier: auth.NewVerifier(deps.Store, deps.TokenConfig)}
	r.POST("/login", middleware.RateLimitMiddleware(loginLimiter), loginHandler.Login)

	wsHub := deps.Hub
	if wsHub == nil {
		wsHub = hub.New()
	}

	reminderHandler := &handler.ReminderHandler{Store: deps.Store, Publisher: wsHub}
	protected := r.Group("/reminders")
	protected.Use(middleware.RequireAuth(deps.TokenConfig))
	protected.GET("", reminderHandler.List)
	protected.POST("", reminderHandler.Create)
	protected.GET("/:id", reminderHandler.Get)
	protected.PUT("/:id", reminderHandler.Update)
	protected.DELETE("/:id", reminderHandler.Delete)

	wsHandler := &handler.WebSocketHandler{Hub: wsHub, TokenConfig: deps.TokenConfig}
	r.GET("/ws", wsHandler.Serve)

	return r
}
