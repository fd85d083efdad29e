package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/services"
	"admin-backoffice/pkg/middleware"
)

// Services - собранные сервисы, которые роутер раздаёт контроллерам.
type Services struct {
	Auth       services.AuthServiceInterface
	User       services.UserServiceInterface
	Role       services.RoleServiceInterface
	Permission services.PermissionServiceInterface
	Menu       services.MenuServiceInterface
	Department services.DepartmentServiceInterface
	Profile    services.ProfileServiceInterface
	Cache      services.AuthCacheServiceInterface
}

func InitRouter(e *echo.Echo, svc *Services, authMW *middleware.AuthMiddleware, logger *zap.Logger) {
	logger.Info("InitRouter: начало создания маршрутов")

	admin := e.Group("/admin")
	runAuthRouter(admin, svc, logger)

	// вход, проверка маршрута по таблице привилегий, затем область видимости
	secureGroup := admin.Group("", authMW.Auth, authMW.Authorize, authMW.DataScope)

	runUserRouter(secureGroup, svc, logger)
	runRoleRouter(secureGroup, svc, logger)
	runPermissionRouter(secureGroup, svc, logger)
	runMenuRouter(secureGroup, svc, logger)
	runDepartmentRouter(secureGroup, svc, logger)
	runProfileRouter(secureGroup, svc, logger)
	runCacheRouter(secureGroup, svc, logger)

	logger.Info("InitRouter: создание маршрутов завершено")
}
