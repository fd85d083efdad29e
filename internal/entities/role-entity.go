package entities

import (
	"admin-backoffice/pkg/types"
)

type Role struct {
	ID           uint64    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Code         string    `json:"code" db:"code"`
	DataScope    DataScope `json:"data_scope" db:"data_scope"`
	Remark       string    `json:"remark" db:"remark"`
	SortOrder    int       `json:"sort_order" db:"sort_order"`
	Enabled      bool      `json:"enabled" db:"enabled"`
	IsSuperAdmin bool      `json:"is_super_admin" db:"is_super_admin"`

	types.BaseEntity
}
