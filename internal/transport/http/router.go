package httptransport

import (
	"log/slog"
	"time"

	"github.com/ErlanBelekov/account-service/internal/token"
	"github.com/ErlanBelekov/account-service/internal/transport/http/handler"
	"github.com/ErlanBelekov/account-service/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	accountHandler *handler.AccountHandler,
	issuer *token.Issuer,
	accessKey []byte,
	requestTimeout time.Duration,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Deadline(requestTimeout))

	r.GET("/", handler.Health)

	users := r.Group("/api/v1/user")
	users.POST("/register", accountHandler.Register)
	users.GET("/activate", accountHandler.Activate)
	users.POST("/login", accountHandler.Login)
	users.GET("/me", middleware.Auth(issuer, accessKey), accountHandler.Me)

	return r
}
