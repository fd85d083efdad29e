package authz

import (
	"context"
	"fmt"

	apperrors "admin-backoffice/pkg/errors"
)

// PermissionChecker - точная проверка кода привилегии у пользователя.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID uint64, code string) (bool, error)
}

// Gatekeeper объединяет таблицу маршрутов и проверку привилегий.
type Gatekeeper struct {
	routes  *RouteMatcher
	checker PermissionChecker
}

func NewGatekeeper(routes *RouteMatcher, checker PermissionChecker) *Gatekeeper {
	return &Gatekeeper{routes: routes, checker: checker}
}

// Authorize возвращает требуемый код (может быть пустым) и ErrForbidden при отказе.
func (g *Gatekeeper) Authorize(ctx context.Context, p Principal, method, path string) (string, error) {
	required := g.routes.Match(method, path)

	// Суперадмин проходит любой маршрут
	if p.IsSuperAdmin {
		return required, nil
	}

	if required == "" {
		return "", nil
	}

	ok, err := g.checker.HasPermission(ctx, p.UserID, required)
	if err != nil {
		return required, fmt.Errorf("проверка привилегии %s: %w", required, err)
	}
	if !ok {
		return required, apperrors.ErrForbidden
	}
	return required, nil
}
