package entities

import (
	"github.com/aarondl/null/v8"

	"admin-backoffice/pkg/types"
)

type Department struct {
	ID        uint64      `json:"id" db:"id"`
	ParentID  uint64      `json:"parent_id" db:"parent_id"`
	Name      string      `json:"name" db:"name"`
	Code      string      `json:"code" db:"code"`
	Leader    null.String `json:"leader" db:"leader"`
	Phone     null.String `json:"phone" db:"phone"`
	Email     null.String `json:"email" db:"email"`
	SortOrder int         `json:"sort_order" db:"sort_order"`
	Enabled   bool        `json:"enabled" db:"enabled"`

	types.BaseEntity
}

func (d Department) NodeID() uint64       { return d.ID }
func (d Department) NodeParentID() uint64 { return d.ParentID }
func (d Department) NodeSortOrder() int   { return d.SortOrder }
