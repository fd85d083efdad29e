package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/services"
	"admin-backoffice/pkg/utils"
)

type CacheController struct {
	cache  services.AuthCacheServiceInterface
	logger *zap.Logger
}

func NewCacheController(cache services.AuthCacheServiceInterface, logger *zap.Logger) *CacheController {
	return &CacheController{cache: cache, logger: logger}
}

// Refresh сбрасывает весь кеш авторизации.
func (ctrl *CacheController) Refresh(c echo.Context) error {
	ctx, cancel := utils.ContextWithTimeout(c, 30*time.Second)
	defer cancel()
	if err := ctrl.cache.RefreshAll(ctx); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	userID, _ := utils.GetUserIDFromCtx(c.Request().Context())
	ctrl.logger.Info("Кеш авторизации сброшен вручную", zap.Uint64("userID", userID))
	return utils.SuccessResponse(c, nil, "Кеш авторизации сброшен", http.StatusOK)
}
