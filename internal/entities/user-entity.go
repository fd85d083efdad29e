package entities

import (
	"time"

	"admin-backoffice/pkg/types"
)

type User struct {
	ID       uint64 `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Password string `json:"-" db:"password"`
	Nickname string `json:"nickname" db:"nickname"`
	Email    string `json:"email" db:"email"`
	Phone    string `json:"phone" db:"phone"`

	RoleID       uint64  `json:"role_id" db:"role_id"`
	DepartmentID *uint64 `json:"department_id" db:"department_id"`
	// 0 - наследуется от роли при выдаче токена
	DataScope DataScope `json:"data_scope" db:"data_scope"`
	Enabled   bool      `json:"enabled" db:"enabled"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`

	types.BaseEntity
}

// UserInfo - снимок профиля для кеша userInfo:<id>.
type UserInfo struct {
	ID             uint64    `json:"id"`
	Username       string    `json:"username"`
	Nickname       string    `json:"nickname"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	RoleID         uint64    `json:"role_id"`
	RoleName       string    `json:"role_name"`
	RoleEnabled    bool      `json:"role_enabled"`
	IsSuperAdmin   bool      `json:"is_super_admin"`
	DepartmentID   uint64    `json:"department_id"`
	DepartmentName string    `json:"department_name"`
	DataScope      DataScope `json:"data_scope"`
	Enabled        bool      `json:"enabled"`
}
