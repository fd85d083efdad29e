package types

import (
	"fmt"
	"slices"
	"strings"
)

// Filter - разобранные параметры списка:
// ?search=ivan&sort[created_at]=desc&filter[department_id]=1,2&limit=10&page=2
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}

// FilterKeys возвращает ключи фильтров по алфавиту, чтобы SQL не зависел от порядка обхода map.
func (f Filter) FilterKeys() []string {
	keys := make([]string, 0, len(f.Filter))
	for key := range f.Filter {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Values разбивает значение фильтра по запятым, пустые элементы отбрасываются.
func (f Filter) Values(key string) []string {
	raw, ok := f.Filter[key]
	if !ok || raw == nil {
		return nil
	}
	var out []string
	for _, item := range strings.Split(fmt.Sprintf("%v", raw), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// SortFields возвращает поля сортировки по алфавиту.
func (f Filter) SortFields() []string {
	fields := make([]string, 0, len(f.Sort))
	for field := range f.Sort {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fields
}

type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}
