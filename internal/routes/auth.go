package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/controllers"
)

func runAuthRouter(admin *echo.Group, svc *Services, logger *zap.Logger) {
	authCtrl := controllers.NewAuthController(svc.Auth, logger)

	admin.POST("/login", authCtrl.Login)
	admin.POST("/refresh", authCtrl.RefreshToken)
}
