package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/controllers"
)

func runDepartmentRouter(secureGroup *echo.Group, svc *Services, logger *zap.Logger) {
	deptCtrl := controllers.NewDepartmentController(svc.Department, logger)

	depts := secureGroup.Group("/departments")
	depts.GET("", deptCtrl.GetDepartments)
	depts.POST("", deptCtrl.CreateDepartment)
	depts.GET("/tree", deptCtrl.GetDepartmentTree)
	depts.GET("/:id", deptCtrl.FindDepartment)
	depts.GET("/:id/path", deptCtrl.DepartmentPath)
	depts.PUT("/:id", deptCtrl.UpdateDepartment)
	depts.DELETE("/:id", deptCtrl.DeleteDepartment)
}
