package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"admin-backoffice/internal/authz"
	"admin-backoffice/internal/entities"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/metrics"
	"admin-backoffice/pkg/service"
	"admin-backoffice/pkg/utils"
)

type UserInfoProvider interface {
	UserInfo(ctx context.Context, userID uint64) (*entities.UserInfo, error)
}

type ScopeResolver interface {
	Resolve(ctx context.Context, p authz.Principal) (authz.ScopeFilter, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	users      UserInfoProvider
	gatekeeper *authz.Gatekeeper
	scopes     ScopeResolver
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewAuthMiddleware(
	jwtSvc service.JWTService,
	users UserInfoProvider,
	gatekeeper *authz.Gatekeeper,
	scopes ScopeResolver,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		users:      users,
		gatekeeper: gatekeeper,
		scopes:     scopes,
		metrics:    metrics,
		logger:     logger,
	}
}

// Auth проверяет access-токен и кладёт в контекст Principal.
// Токен задаёт только личность: роль, департамент и область берутся из актуального профиля.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			m.logger.Debug("AuthMiddleware: пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			m.logger.Warn("AuthMiddleware: неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}
		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: попытка доступа с refresh-токеном", zap.Uint64("userID", claims.UserID))
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		ctx := c.Request().Context()
		info, err := m.users.UserInfo(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) || errors.Is(err, apperrors.ErrNotFound) {
				return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
			}
			return utils.ErrorResponse(c, err, m.logger)
		}
		if !info.Enabled || !info.RoleEnabled {
			m.logger.Info("AuthMiddleware: пользователь или роль отключены", zap.Uint64("userID", info.ID))
			return utils.ErrorResponse(c, apperrors.ErrUserDisabled, m.logger)
		}

		principal := authz.Principal{
			UserID:       info.ID,
			RoleID:       info.RoleID,
			DepartmentID: info.DepartmentID,
			DataScope:    info.DataScope,
			IsSuperAdmin: info.IsSuperAdmin,
		}
		c.SetRequest(c.Request().WithContext(utils.WithPrincipal(ctx, principal)))
		return next(c)
	}
}

// Authorize сверяет маршрут с таблицей привилегий. Маршрут без правила открыт.
func (m *AuthMiddleware) Authorize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		principal, err := utils.GetPrincipalFromCtx(ctx)
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		method, path := c.Request().Method, c.Request().URL.Path
		required, err := m.gatekeeper.Authorize(ctx, principal, method, path)
		switch {
		case err == nil:
			m.metrics.AuthzDecisionsTotal.WithLabelValues("allow").Inc()
		case errors.Is(err, apperrors.ErrForbidden):
			m.metrics.AuthzDecisionsTotal.WithLabelValues("deny").Inc()
			m.logger.Info("Доступ запрещён",
				zap.Uint64("userID", principal.UserID),
				zap.String("method", method),
				zap.String("path", path),
				zap.String("permission", required))
			return utils.ErrorResponse(c, err, m.logger)
		default:
			m.metrics.AuthzDecisionsTotal.WithLabelValues("error").Inc()
			return utils.ErrorResponse(c, err, m.logger)
		}
		return next(c)
	}
}

// DataScope кладёт в контекст фильтр видимости строк для текущего пользователя.
func (m *AuthMiddleware) DataScope(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		principal, err := utils.GetPrincipalFromCtx(ctx)
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		filter, err := m.scopes.Resolve(ctx, principal)
		if err != nil {
			m.logger.Error("Не удалось вычислить область видимости", zap.Uint64("userID", principal.UserID), zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}
		c.SetRequest(c.Request().WithContext(utils.WithScopeFilter(ctx, filter)))
		return next(c)
	}
}
