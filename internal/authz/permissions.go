package authz

// --- КОДЫ ПРИВИЛЕГИЙ, НА КОТОРЫЕ ССЫЛАЕТСЯ ТАБЛИЦА МАРШРУТОВ ---

const (
	// Пользователи
	UserList   = "system:user:list"
	UserAdd    = "system:user:add"
	UserEdit   = "system:user:edit"
	UserDelete = "system:user:delete"

	// Роли
	RoleList   = "system:role:list"
	RoleAdd    = "system:role:add"
	RoleEdit   = "system:role:edit"
	RoleDelete = "system:role:delete"

	// Привилегии
	PermissionList   = "system:permission:list"
	PermissionAdd    = "system:permission:add"
	PermissionEdit   = "system:permission:edit"
	PermissionDelete = "system:permission:delete"

	// Меню
	MenuList   = "system:menu:list"
	MenuAdd    = "system:menu:add"
	MenuEdit   = "system:menu:edit"
	MenuDelete = "system:menu:delete"

	// Департаменты
	DeptList   = "system:dept:list"
	DeptAdd    = "system:dept:add"
	DeptEdit   = "system:dept:edit"
	DeptDelete = "system:dept:delete"

	// Обслуживание
	CacheRefresh = "system:cache:refresh"
)
