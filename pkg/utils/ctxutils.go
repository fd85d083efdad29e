package utils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"admin-backoffice/internal/authz"
	"admin-backoffice/pkg/contextkeys"
	apperrors "admin-backoffice/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetPrincipalFromCtx(ctx context.Context) (authz.Principal, error) {
	p, ok := ctx.Value(contextkeys.PrincipalKey).(authz.Principal)
	if !ok || p.UserID == 0 {
		return authz.Principal{}, apperrors.ErrUnauthorized
	}
	return p, nil
}

// GetScopeFilterFromCtx возвращает фильтр видимости. Без фильтра в контексте строки не видны никому.
func GetScopeFilterFromCtx(ctx context.Context) authz.ScopeFilter {
	f, ok := ctx.Value(contextkeys.ScopeFilterKey).(authz.ScopeFilter)
	if !ok {
		return authz.DepartmentIn()
	}
	return f
}

func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, p.UserID)
	return context.WithValue(ctx, contextkeys.PrincipalKey, p)
}

func WithScopeFilter(ctx context.Context, f authz.ScopeFilter) context.Context {
	return context.WithValue(ctx, contextkeys.ScopeFilterKey, f)
}

// ContextWithTimeout ограничивает запрос к сервисам сроком, отменяясь вместе с HTTP-запросом.
func ContextWithTimeout(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), timeout)
}
