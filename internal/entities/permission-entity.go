package entities

import (
	"admin-backoffice/pkg/types"
)

type Permission struct {
	ID        uint64         `json:"id" db:"id"`
	ParentID  uint64         `json:"parent_id" db:"parent_id"`
	Name      string         `json:"name" db:"name"`
	Code      string         `json:"code" db:"code"`
	Type      PermissionType `json:"type" db:"type"`
	SortOrder int            `json:"sort_order" db:"sort_order"`
	Enabled   bool           `json:"enabled" db:"enabled"`

	types.BaseEntity
}

func (p Permission) NodeID() uint64       { return p.ID }
func (p Permission) NodeParentID() uint64 { return p.ParentID }
func (p Permission) NodeSortOrder() int   { return p.SortOrder }
