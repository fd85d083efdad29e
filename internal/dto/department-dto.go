package dto

import "github.com/aarondl/null/v8"

type CreateDepartmentDTO struct {
	ParentID  uint64      `json:"parent_id"`
	Name      string      `json:"name" validate:"required,max=50"`
	Code      string      `json:"code" validate:"omitempty,max=50"`
	Leader    null.String `json:"leader"`
	Phone     null.String `json:"phone"`
	Email     null.String `json:"email" validate:"omitempty,custom_email"`
	SortOrder int         `json:"sort_order" validate:"gte=0"`
	Enabled   *bool       `json:"enabled"`
}

type UpdateDepartmentDTO struct {
	ParentID  *uint64     `json:"parent_id"`
	Name      *string     `json:"name" validate:"omitempty,min=1,max=50"`
	Code      *string     `json:"code" validate:"omitempty,max=50"`
	Leader    null.String `json:"leader"`
	Phone     null.String `json:"phone"`
	Email     null.String `json:"email" validate:"omitempty,custom_email"`
	SortOrder *int        `json:"sort_order" validate:"omitempty,gte=0"`
	Enabled   *bool       `json:"enabled"`
}
