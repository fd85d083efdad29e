package dto

import "admin-backoffice/internal/entities"

type CreateUserDTO struct {
	Username     string             `json:"username" validate:"required,min=3,max=50"`
	Password     string             `json:"password" validate:"required,min=6"`
	Nickname     string             `json:"nickname" validate:"omitempty,max=50"`
	Email        string             `json:"email" validate:"omitempty,email"`
	Phone        string             `json:"phone" validate:"omitempty,max=20"`
	RoleID       uint64             `json:"role_id" validate:"required,gt=0"`
	DepartmentID *uint64            `json:"department_id" validate:"omitempty,gt=0"`
	DataScope    entities.DataScope `json:"data_scope" validate:"omitempty,data_scope"`
	Enabled      *bool              `json:"enabled"`
}

type UpdateUserDTO struct {
	Password     *string             `json:"password" validate:"omitempty,min=6"`
	Nickname     *string             `json:"nickname" validate:"omitempty,max=50"`
	Email        *string             `json:"email" validate:"omitempty,email"`
	Phone        *string             `json:"phone" validate:"omitempty,max=20"`
	RoleID       *uint64             `json:"role_id" validate:"omitempty,gt=0"`
	DepartmentID *uint64             `json:"department_id"`
	DataScope    *entities.DataScope `json:"data_scope" validate:"omitempty,data_scope"`
	Enabled      *bool               `json:"enabled"`
}

type UserStatusDTO struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type UpdateProfileDTO struct {
	Nickname *string `json:"nickname" validate:"omitempty,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,nefield=OldPassword"`
}
