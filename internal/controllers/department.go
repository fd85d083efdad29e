package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/services"
	"admin-backoffice/pkg/utils"
)

type DepartmentController struct {
	departmentService services.DepartmentServiceInterface
	logger            *zap.Logger
}

func NewDepartmentController(service services.DepartmentServiceInterface, logger *zap.Logger) *DepartmentController {
	return &DepartmentController{departmentService: service, logger: logger}
}

func (ctrl *DepartmentController) GetDepartments(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	departments, total, err := ctrl.departmentService.GetDepartments(c.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, departments, "Департаменты успешно получены", http.StatusOK, total)
}

func (ctrl *DepartmentController) GetDepartmentTree(c echo.Context) error {
	tree, err := ctrl.departmentService.GetDepartmentTree(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, tree, "Дерево департаментов успешно получено", http.StatusOK)
}

func (ctrl *DepartmentController) FindDepartment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := ctrl.departmentService.FindDepartment(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Департамент успешно найден", http.StatusOK)
}

func (ctrl *DepartmentController) DepartmentPath(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	path, err := ctrl.departmentService.DepartmentPath(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, path, "Путь департамента успешно получен", http.StatusOK)
}

func (ctrl *DepartmentController) CreateDepartment(c echo.Context) error {
	var payload dto.CreateDepartmentDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := ctrl.departmentService.CreateDepartment(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Департамент успешно создан", http.StatusCreated)
}

func (ctrl *DepartmentController) UpdateDepartment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.UpdateDepartmentDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := ctrl.departmentService.UpdateDepartment(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Департамент успешно обновлен", http.StatusOK)
}

func (ctrl *DepartmentController) DeleteDepartment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.departmentService.DeleteDepartment(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Департамент успешно удален", http.StatusOK)
}
