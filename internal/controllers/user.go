package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/services"
	"admin-backoffice/pkg/utils"
)

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

func (ctrl *UserController) GetUsers(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	users, total, err := ctrl.userService.GetUsers(c.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, users, "Пользователи успешно получены", http.StatusOK, total)
}

func (ctrl *UserController) FindUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	user, err := ctrl.userService.FindUser(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, user, "Пользователь успешно найден", http.StatusOK)
}

func (ctrl *UserController) CreateUser(c echo.Context) error {
	var payload dto.CreateUserDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	user, err := ctrl.userService.CreateUser(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, user, "Пользователь успешно создан", http.StatusCreated)
}

func (ctrl *UserController) UpdateUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.UpdateUserDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	user, err := ctrl.userService.UpdateUser(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, user, "Пользователь успешно обновлен", http.StatusOK)
}

func (ctrl *UserController) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.UserStatusDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.userService.UpdateStatus(c.Request().Context(), id, *payload.Enabled); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Статус пользователя изменен", http.StatusOK)
}

func (ctrl *UserController) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.userService.DeleteUser(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Пользователь успешно удален", http.StatusOK)
}
