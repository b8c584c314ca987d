package server

import (
	"net/http"

	"spotted-backend/internal/config"
	"spotted-backend/internal/handler"
	"spotted-backend/internal/middleware"
	"spotted-backend/internal/models"
	"spotted-backend/internal/moderation"
	"spotted-backend/internal/repository"
	"spotted-backend/internal/service"
	"spotted-backend/internal/stats"
	"spotted-backend/internal/triage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

type Deps struct {
	Cfg           *config.Config
	AuthService   service.AuthService
	TriageService *triage.Service
	Moderation    *moderation.Service
	Store         repository.SpottedStore
	Aggregator    *stats.Aggregator
	RateLimiter   *middleware.RateLimiter
}

func NewServer(deps Deps, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		logger: logger,
	}

	s.setupRoutes(deps)

	return s
}

func (s *Server) setupRoutes(deps Deps) {
	authHandler := handler.NewAuthHandler(deps.AuthService, s.logger)
	spottedHandler := handler.NewSpottedHandler(deps.TriageService, deps.Moderation, deps.Store, deps.Cfg, s.logger)
	statsHandler := handler.NewStatsHandler(deps.Aggregator, s.logger)
	limiter := deps.RateLimiter

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// Authenticated routes
	api := s.router.Group("/api")
	api.Use(middleware.AuthMiddleware(s.logger))

	// Fixed option lists, any authenticated client
	options := api.Group("/options")
	{
		options.GET("/reject", handler.RejectOptions)
		options.GET("/my-delete", handler.MyDeleteOptions)
		options.GET("/forme-delete", handler.ForMeDeleteOptions)
	}

	// Triage and moderation actions: admin or the trusted spotted page
	spotteds := api.Group("/spotteds")
	spotteds.Use(middleware.RequireCapability(models.CanModerate))
	{
		spotteds.POST("", limiter.Scope("new_spotted"), spottedHandler.ProcessNew)
		spotteds.POST("/approve", limiter.Scope("approved_spotted"), spottedHandler.Approve)
		spotteds.POST("/reject", limiter.Scope("rejected_spotted"), spottedHandler.Reject)
		spotteds.POST("/delete", limiter.Scope("deleted_spotted"), spottedHandler.Delete)
	}

	// Admin-only listing and user management
	admin := api.Group("")
	admin.Use(middleware.RequireCapability(func(role string) bool { return role == models.RoleAdmin }))
	{
		admin.GET("/spotteds/:state", limiter.Scope("list"), spottedHandler.List)
		admin.POST("/users", authHandler.CreateUser)
	}

	// Stats dashboard: admin or moderator
	statsGroup := api.Group("/stats")
	statsGroup.Use(middleware.RequireCapability(models.CanViewStats))
	{
		statsGroup.GET("", statsHandler.GetStats)
	}
}

func (s *Server) Run(addr string) {
	s.logger.Info("Server starting", zap.String("port", addr))
	if err := s.router.Run(addr); err != nil {
		s.logger.Fatal("Server failed to start", zap.Error(err))
	}
}
