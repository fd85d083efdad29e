package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/controllers"
)

func runRoleRouter(secureGroup *echo.Group, svc *Services, logger *zap.Logger) {
	roleCtrl := controllers.NewRoleController(svc.Role, svc.Menu, logger)

	roles := secureGroup.Group("/roles")
	roles.GET("", roleCtrl.GetRoles)
	roles.POST("", roleCtrl.CreateRole)
	roles.GET("/all", roleCtrl.GetAllRoles)
	roles.GET("/:id", roleCtrl.FindRole)
	roles.PUT("/:id", roleCtrl.UpdateRole)
	roles.DELETE("/:id", roleCtrl.DeleteRole)
	roles.POST("/:id/menus", roleCtrl.SetRoleMenus)
	roles.POST("/:id/departments", roleCtrl.SetRoleDepartments)
}
