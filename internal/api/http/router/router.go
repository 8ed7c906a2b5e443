package router

import (
	"github.com/labstack/echo/v4"

	"github.com/magiclink/server/internal/api/http/handler"
	"github.com/magiclink/server/internal/api/http/middleware"
	"github.com/magiclink/server/internal/logger"
	"github.com/magiclink/server/internal/model"
)

// Router wires middleware and routes for the magic-link server.
type Router struct {
	authService handler.AuthService
	storage     model.Storage
	pagesDir    string
	cookieName  string
	logger      *logger.Logger
}

// New creates a new Router instance.
func New(
	authService handler.AuthService,
	storage model.Storage,
	pagesDir string,
	cookieName string,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService: authService,
		storage:     storage,
		pagesDir:    pagesDir,
		cookieName:  cookieName,
		logger:      logger,
	}
}

// Register sets up the echo instance with request logging and all routes.
func (r *Router) Register() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logging := middleware.NewLogging(r.logger)
	e.Use(logging.Handle)

	authHandler := handler.NewAuth(r.authService, r.pagesDir, r.cookieName, r.logger)
	pagesHandler := handler.NewPages(r.authService, r.pagesDir, r.cookieName, r.logger)
	filesHandler := handler.NewFiles(r.storage, r.logger)

	e.GET("/", pagesHandler.Home)
	e.GET("/users", pagesHandler.Users)
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.RequestLogin)
	e.GET("/login", authHandler.CompleteLogin)
	e.GET("/logout", authHandler.Logout)
	e.POST("/image", filesHandler.Upload)
	e.GET("/download", filesHandler.Download)
	e.GET("/avatars/:name", filesHandler.Avatar)
	e.GET("/:page", pagesHandler.StaticPage)

	return e
}
