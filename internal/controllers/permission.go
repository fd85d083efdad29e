package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/services"
	"admin-backoffice/pkg/utils"
)

type PermissionController struct {
	permissionService services.PermissionServiceInterface
	logger            *zap.Logger
}

func NewPermissionController(permissionService services.PermissionServiceInterface, logger *zap.Logger) *PermissionController {
	return &PermissionController{permissionService: permissionService, logger: logger}
}

func (ctrl *PermissionController) GetPermissions(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	list, total, err := ctrl.permissionService.GetPermissions(c.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, list, "Привилегии успешно получены", http.StatusOK, total)
}

func (ctrl *PermissionController) GetPermissionTree(c echo.Context) error {
	tree, err := ctrl.permissionService.GetPermissionTree(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, tree, "Дерево привилегий успешно получено", http.StatusOK)
}

// UserPermissions - коды текущего пользователя для кнопок на фронте.
func (ctrl *PermissionController) UserPermissions(c echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	codes, err := ctrl.permissionService.UserPermissionCodes(c.Request().Context(), userID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, codes, "Привилегии пользователя успешно получены", http.StatusOK)
}

func (ctrl *PermissionController) RolePermissions(c echo.Context) error {
	roleID, err := parseID(c, "roleId")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	ids, err := ctrl.permissionService.RolePermissionIDs(c.Request().Context(), roleID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, ids, "Привилегии роли успешно получены", http.StatusOK)
}

func (ctrl *PermissionController) SetRolePermissions(c echo.Context) error {
	roleID, err := parseID(c, "roleId")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SetRolePermissionsDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.permissionService.SetRolePermissions(c.Request().Context(), roleID, payload.PermissionIDs); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Привилегии роли обновлены", http.StatusOK)
}

func (ctrl *PermissionController) CreatePermission(c echo.Context) error {
	var payload dto.CreatePermissionDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := ctrl.permissionService.CreatePermission(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Привилегия успешно создана", http.StatusCreated)
}

func (ctrl *PermissionController) UpdatePermission(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.UpdatePermissionDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := ctrl.permissionService.UpdatePermission(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Привилегия успешно обновлена", http.StatusOK)
}

func (ctrl *PermissionController) DeletePermission(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.permissionService.DeletePermission(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Привилегия успешно удалена", http.StatusOK)
}
