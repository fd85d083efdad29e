package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/services"
	"admin-backoffice/pkg/utils"
)

type MenuController struct {
	menuService services.MenuServiceInterface
	logger      *zap.Logger
}

func NewMenuController(menuService services.MenuServiceInterface, logger *zap.Logger) *MenuController {
	return &MenuController{menuService: menuService, logger: logger}
}

func (ctrl *MenuController) GetMenus(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	list, total, err := ctrl.menuService.GetMenus(c.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, list, "Меню успешно получены", http.StatusOK, total)
}

func (ctrl *MenuController) GetMenuTree(c echo.Context) error {
	tree, err := ctrl.menuService.GetMenuTree(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, tree, "Дерево меню успешно получено", http.StatusOK)
}

// UserMenus - навигация текущего пользователя.
func (ctrl *MenuController) UserMenus(c echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	tree, err := ctrl.menuService.UserMenus(c.Request().Context(), userID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, tree, "Меню пользователя успешно получено", http.StatusOK)
}

func (ctrl *MenuController) CreateMenu(c echo.Context) error {
	var payload dto.CreateMenuDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := ctrl.menuService.CreateMenu(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Меню успешно создано", http.StatusCreated)
}

func (ctrl *MenuController) UpdateMenu(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.UpdateMenuDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := ctrl.menuService.UpdateMenu(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Меню успешно обновлено", http.StatusOK)
}

func (ctrl *MenuController) DeleteMenu(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.menuService.DeleteMenu(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Меню успешно удалено", http.StatusOK)
}
