// Package server wires the HTTP surface: routing, middleware, the static
// uploads mount and the JSON handlers.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/copasapp/copas-api/internal/app"
	svcErr "github.com/copasapp/copas-api/internal/errors"
	"github.com/copasapp/copas-api/internal/service/account"
	"github.com/copasapp/copas-api/internal/service/engagement"
	"github.com/copasapp/copas-api/internal/service/profile"
	"github.com/copasapp/copas-api/internal/service/roulette"
)

// Server holds the services behind the HTTP handlers.
type Server struct {
	appCtx     *app.AppContext
	account    *account.Service
	profile    *profile.Service
	engagement *engagement.Service
	roulette   *roulette.Service
}

// New builds the Server and its services from the shared AppContext.
func New(appCtx *app.AppContext) *Server {
	return &Server{
		appCtx:     appCtx,
		account:    account.NewService(appCtx),
		profile:    profile.NewService(appCtx),
		engagement: engagement.NewService(appCtx),
		roulette:   roulette.NewService(appCtx),
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	if s.appCtx.Config.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(cors.Default())

	// photo references returned by the API resolve against this mount
	r.Static("/uploads", s.appCtx.Photos.Root())

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
	}

	users := api.Group("/users")
	{
		users.GET("", s.handleAvailableUsers)
		users.GET("/available", s.handleAvailableUsers)
		users.GET("/:id", s.handleGetUser)
		users.POST("", s.handleCreateUser)
		users.PUT("/:id", s.handleUpdateUser)
		users.DELETE("/:id", s.handleDeleteUser)
		users.POST("/upload/photos/:id", s.handleUploadPhoto)
		users.DELETE("/delete/photos/:id", s.handleDeletePhoto)
	}

	matches := api.Group("/matches")
	{
		matches.GET("", s.handleListMatches)
		matches.POST("/react", s.handleReact)
		matches.PUT("/:id/viewed", s.handleSetMatchViewed)
	}

	rou := api.Group("/roulette")
	{
		rou.POST("", s.handleCreateOption)
		rou.GET("", s.handleListOptions)
		rou.GET("/:id", s.handleGetOption)
		rou.PUT("/:id", s.handleUpdateOption)
		rou.DELETE("/:id", s.handleDeleteOption)
	}

	return r
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := s.appCtx.Config.HTTP.Host + ":" + s.appCtx.Config.HTTP.Port
	s.appCtx.Logger.Info("starting HTTP server", "addr", addr)
	return s.Router().Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.appCtx.Logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// respondError maps a service error to its HTTP status. Internal detail is
// logged server-side; clients only ever see the mapped message.
func (s *Server) respondError(c *gin.Context, err error) {
	status, msg := svcErr.Map(err)
	if status == http.StatusInternalServerError {
		s.appCtx.Logger.Error("request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, gin.H{"message": msg})
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.Validation("invalid id")
	}
	return id, nil
}
