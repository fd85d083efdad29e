package dto

import "admin-backoffice/internal/entities"

type CreatePermissionDTO struct {
	ParentID  uint64                  `json:"parent_id"`
	Name      string                  `json:"name" validate:"required,max=50"`
	Code      string                  `json:"code" validate:"required,perm_code"`
	Type      entities.PermissionType `json:"type" validate:"required,oneof=1 2"`
	SortOrder int                     `json:"sort_order" validate:"gte=0"`
	Enabled   *bool                   `json:"enabled"`
}

type UpdatePermissionDTO struct {
	ParentID  *uint64                  `json:"parent_id"`
	Name      *string                  `json:"name" validate:"omitempty,min=1,max=50"`
	Code      *string                  `json:"code" validate:"omitempty,perm_code"`
	Type      *entities.PermissionType `json:"type" validate:"omitempty,oneof=1 2"`
	SortOrder *int                     `json:"sort_order" validate:"omitempty,gte=0"`
	Enabled   *bool                    `json:"enabled"`
}

type SetRolePermissionsDTO struct {
	PermissionIDs []uint64 `json:"permission_ids" validate:"omitempty,dive,gt=0"`
}
