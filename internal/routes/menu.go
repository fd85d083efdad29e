package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/controllers"
)

func runMenuRouter(secureGroup *echo.Group, svc *Services, logger *zap.Logger) {
	menuCtrl := controllers.NewMenuController(svc.Menu, logger)

	menus := secureGroup.Group("/menus")
	menus.GET("", menuCtrl.GetMenus)
	menus.POST("", menuCtrl.CreateMenu)
	menus.GET("/tree", menuCtrl.GetMenuTree)
	menus.GET("/user", menuCtrl.UserMenus)
	menus.PUT("/:id", menuCtrl.UpdateMenu)
	menus.DELETE("/:id", menuCtrl.DeleteMenu)
}
