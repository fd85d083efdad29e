package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/controllers"
)

func runProfileRouter(secureGroup *echo.Group, svc *Services, logger *zap.Logger) {
	profileCtrl := controllers.NewProfileController(svc.Profile, svc.Menu, logger)

	profile := secureGroup.Group("/profile")
	profile.GET("", profileCtrl.GetProfile)
	profile.PUT("", profileCtrl.UpdateProfile)
	profile.PUT("/password", profileCtrl.ChangePassword)
	profile.GET("/menus", profileCtrl.ProfileMenus)
}

func runCacheRouter(secureGroup *echo.Group, svc *Services, logger *zap.Logger) {
	cacheCtrl := controllers.NewCacheController(svc.Cache, logger)

	secureGroup.POST("/cache/refresh", cacheCtrl.Refresh)
}
