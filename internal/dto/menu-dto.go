package dto

import "admin-backoffice/internal/entities"

type CreateMenuDTO struct {
	ParentID   uint64            `json:"parent_id"`
	Name       string            `json:"name" validate:"required,max=50"`
	Path       string            `json:"path" validate:"omitempty,max=200"`
	Component  string            `json:"component" validate:"omitempty,max=200"`
	Icon       string            `json:"icon" validate:"omitempty,max=50"`
	Type       entities.MenuType `json:"type" validate:"required,oneof=1 2 3"`
	Permission string            `json:"permission" validate:"omitempty,perm_code"`
	SortOrder  int               `json:"sort_order" validate:"gte=0"`
	Enabled    *bool             `json:"enabled"`
}

type UpdateMenuDTO struct {
	ParentID   *uint64            `json:"parent_id"`
	Name       *string            `json:"name" validate:"omitempty,min=1,max=50"`
	Path       *string            `json:"path" validate:"omitempty,max=200"`
	Component  *string            `json:"component" validate:"omitempty,max=200"`
	Icon       *string            `json:"icon" validate:"omitempty,max=50"`
	Type       *entities.MenuType `json:"type" validate:"omitempty,oneof=1 2 3"`
	Permission *string            `json:"permission" validate:"omitempty,perm_code"`
	SortOrder  *int               `json:"sort_order" validate:"omitempty,gte=0"`
	Enabled    *bool              `json:"enabled"`
}
