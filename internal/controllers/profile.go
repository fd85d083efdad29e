package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/services"
	"admin-backoffice/pkg/utils"
)

type ProfileController struct {
	profileService services.ProfileServiceInterface
	menuService    services.MenuServiceInterface
	logger         *zap.Logger
}

func NewProfileController(
	profileService services.ProfileServiceInterface,
	menuService services.MenuServiceInterface,
	logger *zap.Logger,
) *ProfileController {
	return &ProfileController{profileService: profileService, menuService: menuService, logger: logger}
}

func (ctrl *ProfileController) GetProfile(c echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	info, err := ctrl.profileService.UserInfo(c.Request().Context(), userID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, info, "Профиль успешно получен", http.StatusOK)
}

func (ctrl *ProfileController) UpdateProfile(c echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.UpdateProfileDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	info, err := ctrl.profileService.UpdateProfile(c.Request().Context(), userID, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, info, "Профиль успешно обновлен", http.StatusOK)
}

func (ctrl *ProfileController) ChangePassword(c echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.ChangePasswordDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.profileService.ChangePassword(c.Request().Context(), userID, payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Пароль успешно изменен", http.StatusOK)
}

func (ctrl *ProfileController) ProfileMenus(c echo.Context) error {
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
