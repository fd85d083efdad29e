package authz

import "admin-backoffice/internal/entities"

// Principal - субъект запроса: поля токена плюс департамент и флаг суперадмина из профиля.
type Principal struct {
	UserID       uint64
	RoleID       uint64
	DepartmentID uint64
	DataScope    entities.DataScope
	IsSuperAdmin bool
}
