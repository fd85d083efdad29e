package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/services"
	"admin-backoffice/pkg/utils"
)

type RoleController struct {
	roleService services.RoleServiceInterface
	menuService services.MenuServiceInterface
	logger      *zap.Logger
}

func NewRoleController(
	roleService services.RoleServiceInterface,
	menuService services.MenuServiceInterface,
	logger *zap.Logger,
) *RoleController {
	return &RoleController{roleService: roleService, menuService: menuService, logger: logger}
}

func (ctrl *RoleController) GetRoles(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	roles, total, err := ctrl.roleService.GetRoles(c.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, roles, "Роли успешно получены", http.StatusOK, total)
}

// GetAllRoles - короткий список включённых ролей для выпадающих списков.
func (ctrl *RoleController) GetAllRoles(c echo.Context) error {
	roles, err := ctrl.roleService.GetAllRoles(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, roles, "Роли успешно получены", http.StatusOK)
}

func (ctrl *RoleController) FindRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	role, err := ctrl.roleService.FindRole(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, role, "Роль успешно найдена", http.StatusOK)
}

func (ctrl *RoleController) CreateRole(c echo.Context) error {
	var payload dto.CreateRoleDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	role, err := ctrl.roleService.CreateRole(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, role, "Роль успешно создана", http.StatusCreated)
}

func (ctrl *RoleController) UpdateRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.UpdateRoleDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	role, err := ctrl.roleService.UpdateRole(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, role, "Роль успешно обновлена", http.StatusOK)
}

func (ctrl *RoleController) DeleteRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.roleService.DeleteRole(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Роль успешно удалена", http.StatusOK)
}

func (ctrl *RoleController) SetRoleMenus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SetRoleMenusDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.menuService.SetRoleMenus(c.Request().Context(), id, payload.MenuIDs); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Меню роли обновлены", http.StatusOK)
}

func (ctrl *RoleController) SetRoleDepartments(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SetRoleDepartmentsDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.roleService.SetRoleDepartments(c.Request().Context(), id, payload.DepartmentIDs); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Департаменты роли обновлены", http.StatusOK)
}
