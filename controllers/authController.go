package controllers

import (
	"ClinicDesk/handlers"
	"ClinicDesk/middlewares"
	"ClinicDesk/models"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler) *AuthController {
	return &AuthController{
		Handler: authHandler,
	}
}

// RegisterRoutes mounts /auth. The reset routes exist only when the service
// can store and mail reset codes.
func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/auth")
	{
		auth.POST("/guest", ac.Handler.Guest)
		auth.POST("/guest/upgrade", ac.Handler.UpgradeGuest)
		auth.POST("/native/signup", ac.Handler.Signup)
		auth.POST("/native/login", ac.Handler.Login)
		auth.POST("/logout", ac.Handler.Logout)
		auth.GET("/me", ac.Handler.Me)
	}

	if ac.Handler.UserService.ResetEnabled() {
		auth.POST("/send-reset-code", ac.Handler.SendResetCode)
		auth.POST("/change-password", ac.Handler.ChangePassword)
	}

	admin := router.Group("/auth/admin", middlewares.RequireRoles(models.ManagerRoles...))
	{
		admin.GET("/users", ac.Handler.ListUsers)
	}
}
