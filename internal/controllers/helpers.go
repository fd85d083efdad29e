package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// parseID читает положительный id из параметра пути.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Неверный формат ID")
	}
	return id, nil
}

// bindAndValidate разбирает тело запроса и прогоняет его через валидатор echo.
func bindAndValidate(c echo.Context, payload interface{}) error {
	if err := c.Bind(payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса")
	}
	return c.Validate(payload)
}
