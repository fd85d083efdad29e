package entities

// DataScope определяет, какие строки с привязкой к департаменту видит пользователь.
type DataScope int

const (
	DataScopeAll             DataScope = 1
	DataScopeDept            DataScope = 2
	DataScopeDeptAndChildren DataScope = 3
	DataScopeSelf            DataScope = 4
	DataScopeCustom          DataScope = 5
)

func (d DataScope) Valid() bool {
	return d >= DataScopeAll && d <= DataScopeCustom
}

func (d DataScope) String() string {
	switch d {
	case DataScopeAll:
		return "all"
	case DataScopeDept:
		return "dept"
	case DataScopeDeptAndChildren:
		return "dept_and_children"
	case DataScopeSelf:
		return "self"
	case DataScopeCustom:
		return "custom"
	}
	return "unknown"
}

type MenuType int

const (
	MenuTypeDirectory MenuType = 1
	MenuTypeMenu      MenuType = 2
	MenuTypeButton    MenuType = 3
)

func (t MenuType) Valid() bool {
	return t >= MenuTypeDirectory && t <= MenuTypeButton
}

type PermissionType int

const (
	PermissionTypeMenu   PermissionType = 1
	PermissionTypeButton PermissionType = 2
)

func (t PermissionType) Valid() bool {
	return t == PermissionTypeMenu || t == PermissionTypeButton
}
