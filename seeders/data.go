package seeders

import (
	"admin-backoffice/internal/authz"
	"admin-backoffice/internal/entities"
)

type permissionSeed struct {
	Code     string
	Name     string
	Type     entities.PermissionType
	Children []permissionSeed
}

func button(code, name string) permissionSeed {
	return permissionSeed{Code: code, Name: name, Type: entities.PermissionTypeButton}
}

// permissionsData - дерево привилегий. Коды кнопок совпадают с таблицей маршрутов.
var permissionsData = []permissionSeed{
	{Code: "system", Name: "Система", Type: entities.PermissionTypeMenu, Children: []permissionSeed{
		{Code: "system:user", Name: "Пользователи", Type: entities.PermissionTypeMenu, Children: []permissionSeed{
			button(authz.UserList, "Просмотр пользователей"),
			button(authz.UserAdd, "Создание пользователей"),
			button(authz.UserEdit, "Изменение пользователей"),
			button(authz.UserDelete, "Удаление пользователей"),
		}},
		{Code: "system:role", Name: "Роли", Type: entities.PermissionTypeMenu, Children: []permissionSeed{
			button(authz.RoleList, "Просмотр ролей"),
			button(authz.RoleAdd, "Создание ролей"),
			button(authz.RoleEdit, "Изменение ролей"),
			button(authz.RoleDelete, "Удаление ролей"),
		}},
		{Code: "system:permission", Name: "Привилегии", Type: entities.PermissionTypeMenu, Children: []permissionSeed{
			button(authz.PermissionList, "Просмотр привилегий"),
			button(authz.PermissionAdd, "Создание привилегий"),
			button(authz.PermissionEdit, "Изменение привилегий"),
			button(authz.PermissionDelete, "Удаление привилегий"),
		}},
		{Code: "system:menu", Name: "Меню", Type: entities.PermissionTypeMenu, Children: []permissionSeed{
			button(authz.MenuList, "Просмотр меню"),
			button(authz.MenuAdd, "Создание меню"),
			button(authz.MenuEdit, "Изменение меню"),
			button(authz.MenuDelete, "Удаление меню"),
		}},
		{Code: "system:dept", Name: "Департаменты", Type: entities.PermissionTypeMenu, Children: []permissionSeed{
			button(authz.DeptList, "Просмотр департаментов"),
			button(authz.DeptAdd, "Создание департаментов"),
			button(authz.DeptEdit, "Изменение департаментов"),
			button(authz.DeptDelete, "Удаление департаментов"),
		}},
		{Code: "system:cache", Name: "Кеш", Type: entities.PermissionTypeMenu, Children: []permissionSeed{
			button(authz.CacheRefresh, "Сброс кеша авторизации"),
		}},
	}},
}

type menuSeed struct {
	Name       string
	Path       string
	Component  string
	Icon       string
	Type       entities.MenuType
	Permission string
	Children   []menuSeed
}

var menusData = []menuSeed{
	{Name: "Система", Path: "/system", Icon: "setting", Type: entities.MenuTypeDirectory, Children: []menuSeed{
		{Name: "Пользователи", Path: "/system/users", Component: "system/user/index", Icon: "user", Type: entities.MenuTypeMenu, Permission: authz.UserList},
		{Name: "Роли", Path: "/system/roles", Component: "system/role/index", Icon: "team", Type: entities.MenuTypeMenu, Permission: authz.RoleList},
		{Name: "Привилегии", Path: "/system/permissions", Component: "system/permission/index", Icon: "lock", Type: entities.MenuTypeMenu, Permission: authz.PermissionList},
		{Name: "Меню", Path: "/system/menus", Component: "system/menu/index", Icon: "menu", Type: entities.MenuTypeMenu, Permission: authz.MenuList},
		{Name: "Департаменты", Path: "/system/departments", Component: "system/dept/index", Icon: "apartment", Type: entities.MenuTypeMenu, Permission: authz.DeptList},
	}},
}

type roleSeed struct {
	Code         string
	Name         string
	DataScope    entities.DataScope
	IsSuperAdmin bool
	// коды привилегий; для суперадмина не нужны
	Permissions []string
}

var rolesData = []roleSeed{
	{Code: "super_admin", Name: "Суперадминистратор", DataScope: entities.DataScopeAll, IsSuperAdmin: true},
	{
		Code:      "auditor",
		Name:      "Аудитор",
		DataScope: entities.DataScopeDeptAndChildren,
		Permissions: []string{
			authz.UserList, authz.RoleList, authz.PermissionList, authz.MenuList, authz.DeptList,
		},
	},
}
