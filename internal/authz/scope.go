package authz

import (
	sq "github.com/Masterminds/squirrel"

	"admin-backoffice/internal/entities"
)

type ScopeKind int

const (
	ScopeUnrestricted ScopeKind = iota
	ScopeDepartmentIn
	ScopeOwnerOnly
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeUnrestricted:
		return "unrestricted"
	case ScopeDepartmentIn:
		return "department_in"
	case ScopeOwnerOnly:
		return "owner_only"
	}
	return "unknown"
}

// ScopeFilter - набор строк, видимых субъекту.
// DepartmentIn с пустым DepartmentIDs не пропускает ни одной строки.
type ScopeFilter struct {
	Kind          ScopeKind
	DepartmentIDs []uint64
	OwnerID       uint64
}

func Unrestricted() ScopeFilter { return ScopeFilter{Kind: ScopeUnrestricted} }

func DepartmentIn(ids ...uint64) ScopeFilter {
	if ids == nil {
		ids = []uint64{}
	}
	return ScopeFilter{Kind: ScopeDepartmentIn, DepartmentIDs: ids}
}

func OwnerOnly(userID uint64) ScopeFilter {
	return ScopeFilter{Kind: ScopeOwnerOnly, OwnerID: userID}
}

// Resolve переводит DataScope в фильтр. descendants и custom подготавливает вызывающая сторона:
// потомки departmentID и департаменты роли соответственно.
// Неизвестное значение и пользователь без департамента дают пустой набор.
func Resolve(scope entities.DataScope, userID, departmentID uint64, descendants, custom []uint64) ScopeFilter {
	switch scope {
	case entities.DataScopeAll:
		return Unrestricted()
	case entities.DataScopeDept:
		if departmentID == 0 {
			return DepartmentIn()
		}
		return DepartmentIn(departmentID)
	case entities.DataScopeDeptAndChildren:
		if departmentID == 0 {
			return DepartmentIn()
		}
		ids := make([]uint64, 0, len(descendants)+1)
		ids = append(ids, departmentID)
		for _, id := range descendants {
			if id != departmentID {
				ids = append(ids, id)
			}
		}
		return DepartmentIn(ids...)
	case entities.DataScopeSelf:
		return OwnerOnly(userID)
	case entities.DataScopeCustom:
		return DepartmentIn(append([]uint64(nil), custom...)...)
	}
	return DepartmentIn()
}

// Allows проверяет одну строку, для которой известны департамент и владелец.
func (f ScopeFilter) Allows(departmentID, ownerID uint64) bool {
	switch f.Kind {
	case ScopeUnrestricted:
		return true
	case ScopeOwnerOnly:
		return ownerID == f.OwnerID
	case ScopeDepartmentIn:
		for _, id := range f.DepartmentIDs {
			if id == departmentID {
				return true
			}
		}
	}
	return false
}

// Apply добавляет фильтр к выборке. deptColumn и ownerColumn - имена колонок в запросе.
func (f ScopeFilter) Apply(builder sq.SelectBuilder, deptColumn, ownerColumn string) sq.SelectBuilder {
	switch f.Kind {
	case ScopeUnrestricted:
		return builder
	case ScopeOwnerOnly:
		return builder.Where(sq.Eq{ownerColumn: f.OwnerID})
	case ScopeDepartmentIn:
		if len(f.DepartmentIDs) == 0 {
			return builder.Where(sq.Expr("1 = 0"))
		}
		return builder.Where(sq.Eq{deptColumn: f.DepartmentIDs})
	}
	return builder.Where(sq.Expr("1 = 0"))
}
