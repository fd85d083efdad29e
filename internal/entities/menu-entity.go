package entities

import "admin-backoffice/pkg/types"

type Menu struct {
	ID         uint64   `json:"id" db:"id"`
	ParentID   uint64   `json:"parent_id" db:"parent_id"`
	Name       string   `json:"name" db:"name"`
	Path       string   `json:"path" db:"path"`
	Component  string   `json:"component" db:"component"`
	Icon       string   `json:"icon" db:"icon"`
	Type       MenuType `json:"type" db:"type"`
	Permission string   `json:"permission" db:"permission"`
	SortOrder  int      `json:"sort_order" db:"sort_order"`
	Enabled    bool     `json:"enabled" db:"enabled"`

	types.BaseEntity
}

func (m Menu) NodeID() uint64       { return m.ID }
func (m Menu) NodeParentID() uint64 { return m.ParentID }
func (m Menu) NodeSortOrder() int   { return m.SortOrder }
