package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sariqm/brandmate/internal/api/handlers"
	"github.com/sariqm/brandmate/internal/api/middleware"
	"github.com/sariqm/brandmate/internal/services"
)

type Deps struct {
	User     *handlers.UserHandler
	Message  *handlers.MessageHandler
	Document *handlers.DocumentHandler
	Users    services.UserService
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/user/register", d.User.Register)
	r.POST("/user/login", d.User.Login)

	auth := r.Group("/")
	auth.Use(middleware.Auth(d.Users))

	auth.GET("/user/me", d.User.Me)
	auth.DELETE("/user/me", d.User.Delete)

	auth.POST("/messages/process", d.Message.Process)
	auth.GET("/messages/history", d.Message.History)

	auth.POST("/documents/ingest", d.Document.Ingest)
	auth.DELETE("/documents/namespace", d.Document.Reset)
}
