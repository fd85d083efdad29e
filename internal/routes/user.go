package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/controllers"
)

func runUserRouter(secureGroup *echo.Group, svc *Services, logger *zap.Logger) {
	userCtrl := controllers.NewUserController(svc.User, logger)

	users := secureGroup.Group("/users")
	users.GET("", userCtrl.GetUsers)
	users.POST("", userCtrl.CreateUser)
	users.GET("/:id", userCtrl.FindUser)
	users.PUT("/:id", userCtrl.UpdateUser)
	users.DELETE("/:id", userCtrl.DeleteUser)
	users.POST("/:id/status", userCtrl.UpdateStatus)
}
