package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/controllers"
)

func runPermissionRouter(secureGroup *echo.Group, svc *Services, logger *zap.Logger) {
	permCtrl := controllers.NewPermissionController(svc.Permission, logger)

	perms := secureGroup.Group("/permissions")
	perms.GET("", permCtrl.GetPermissions)
	perms.POST("", permCtrl.CreatePermission)
	perms.GET("/tree", permCtrl.GetPermissionTree)
	perms.GET("/user", permCtrl.UserPermissions)
	perms.GET("/role/:roleId", permCtrl.RolePermissions)
	perms.POST("/role/:roleId", permCtrl.SetRolePermissions)
	perms.PUT("/:id", permCtrl.UpdatePermission)
	perms.DELETE("/:id", permCtrl.DeletePermission)
}
