package dto

import "admin-backoffice/internal/entities"

type CreateRoleDTO struct {
	Name      string             `json:"name" validate:"required,max=50"`
	Code      string             `json:"code" validate:"required,max=50"`
	DataScope entities.DataScope `json:"data_scope" validate:"omitempty,data_scope"`
	Remark    string             `json:"remark" validate:"omitempty,max=255"`
	SortOrder int                `json:"sort_order" validate:"gte=0"`
	Enabled   *bool              `json:"enabled"`
}

type UpdateRoleDTO struct {
	Name      *string             `json:"name" validate:"omitempty,min=1,max=50"`
	Code      *string             `json:"code" validate:"omitempty,min=1,max=50"`
	DataScope *entities.DataScope `json:"data_scope" validate:"omitempty,data_scope"`
	Remark    *string             `json:"remark" validate:"omitempty,max=255"`
	SortOrder *int                `json:"sort_order" validate:"omitempty,gte=0"`
	Enabled   *bool               `json:"enabled"`
}

type SetRoleMenusDTO struct {
	MenuIDs []uint64 `json:"menu_ids" validate:"omitempty,dive,gt=0"`
}

type SetRoleDepartmentsDTO struct {
	DepartmentIDs []uint64 `json:"department_ids" validate:"omitempty,dive,gt=0"`
}

// RoleDetailDTO - роль вместе с id привязанных меню, привилегий и департаментов.
type RoleDetailDTO struct {
	entities.Role
	MenuIDs       []uint64 `json:"menu_ids"`
	PermissionIDs []uint64 `json:"permission_ids"`
	DepartmentIDs []uint64 `json:"department_ids"`
}

type ShortRoleDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
