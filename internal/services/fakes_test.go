package services

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"admin-backoffice/internal/authz"
	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
	"admin-backoffice/internal/repositories"
	"admin-backoffice/pkg/config"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/metrics"
	"admin-backoffice/pkg/types"
	"admin-backoffice/pkg/utils"
)

// store - общая память для фейковых репозиториев.
type store struct {
	mu sync.Mutex

	users       map[uint64]entities.User
	roles       map[uint64]entities.Role
	permissions map[uint64]entities.Permission
	menus       map[uint64]entities.Menu
	departments map[uint64]entities.Department

	rolePermissions map[uint64][]uint64
	roleMenus       map[uint64][]uint64
	roleDepartments map[uint64][]uint64

	nextID uint64
	// счётчики обращений к "БД" по имени метода
	calls map[string]int
}

func ptr[T any](v T) *T { return &v }

func sortedValues[T any](m map[uint64]T, id func(T) uint64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}

// newStore заполняет дерево HQ(1) -> Eng(2) -> Backend(3), HQ -> Sales(4).
func newStore(t *testing.T) *store {
	t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)

	s := &store{
		users:           map[uint64]entities.User{},
		roles:           map[uint64]entities.Role{},
		permissions:     map[uint64]entities.Permission{},
		menus:           map[uint64]entities.Menu{},
		departments:     map[uint64]entities.Department{},
		rolePermissions: map[uint64][]uint64{},
		roleMenus:       map[uint64][]uint64{},
		roleDepartments: map[uint64][]uint64{},
		nextID:          100,
		calls:           map[string]int{},
	}

	for _, d := range []entities.Department{
		{ID: 1, ParentID: 0, Name: "HQ", Enabled: true},
		{ID: 2, ParentID: 1, Name: "Eng", Enabled: true},
		{ID: 3, ParentID: 2, Name: "Backend", Enabled: true},
		{ID: 4, ParentID: 1, Name: "Sales", Enabled: true},
	} {
		s.departments[d.ID] = d
	}

	s.roles[1] = entities.Role{ID: 1, Name: "Super", Code: "super_admin", DataScope: entities.DataScopeAll, Enabled: true, IsSuperAdmin: true}
	s.roles[2] = entities.Role{ID: 2, Name: "Editor", Code: "editor", DataScope: entities.DataScopeDept, Enabled: true}
	s.roles[3] = entities.Role{ID: 3, Name: "Custom", Code: "custom", DataScope: entities.DataScopeCustom, Enabled: true}

	for _, p := range []entities.Permission{
		{ID: 1, ParentID: 0, Code: "system", Type: entities.PermissionTypeMenu, Enabled: true},
		{ID: 2, ParentID: 1, Code: "system:user", Type: entities.PermissionTypeMenu, Enabled: true},
		{ID: 3, ParentID: 2, Code: authz.UserList, Type: entities.PermissionTypeButton, Enabled: true},
		{ID: 4, ParentID: 2, Code: authz.UserAdd, Type: entities.PermissionTypeButton, Enabled: true},
		{ID: 5, ParentID: 1, Code: authz.RoleList, Type: entities.PermissionTypeButton, Enabled: true},
		{ID: 6, ParentID: 1, Code: authz.RoleAdd, Type: entities.PermissionTypeButton, Enabled: false},
	} {
		s.permissions[p.ID] = p
	}
	s.rolePermissions[2] = []uint64{3, 6}
	s.roleDepartments[3] = []uint64{4}

	for _, m := range []entities.Menu{
		{ID: 1, ParentID: 0, Name: "System", Type: entities.MenuTypeDirectory, Enabled: true},
		{ID: 2, ParentID: 1, Name: "Users", Type: entities.MenuTypeMenu, Permission: authz.UserList, SortOrder: 1, Enabled: true},
		{ID: 3, ParentID: 1, Name: "Roles", Type: entities.MenuTypeMenu, Permission: authz.RoleList, SortOrder: 2, Enabled: false},
		{ID: 4, ParentID: 1, Name: "Departments", Type: entities.MenuTypeMenu, Permission: authz.DeptList, SortOrder: 3, Enabled: true},
	} {
		s.menus[m.ID] = m
	}
	s.roleMenus[2] = []uint64{1, 2, 3}

	for _, u := range []entities.User{
		{ID: 1, Username: "admin", RoleID: 1, DepartmentID: ptr(uint64(1)), Enabled: true},
		{ID: 2, Username: "alice", RoleID: 2, DepartmentID: ptr(uint64(3)), Enabled: true},
		{ID: 3, Username: "bob", RoleID: 2, DepartmentID: ptr(uint64(4)), Enabled: true},
		{ID: 4, Username: "carol", RoleID: 2, DepartmentID: ptr(uint64(2)), DataScope: entities.DataScopeDeptAndChildren, Enabled: true},
		{ID: 5, Username: "dave", RoleID: 3, DepartmentID: ptr(uint64(1)), Enabled: true},
		{ID: 6, Username: "eve", RoleID: 2, DepartmentID: ptr(uint64(3)), Enabled: false},
	} {
		u.Password = hash
		s.users[u.ID] = u
	}
	return s
}

func (s *store) hit(name string) {
	s.calls[name]++
}

func (s *store) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *store) newID() uint64 {
	s.nextID++
	return s.nextID
}

func countWhere[T any](m map[uint64]T, pred func(T) bool) uint64 {
	var n uint64
	for _, v := range m {
		if pred(v) {
			n++
		}
	}
	return n
}

func linkedTo(links map[uint64][]uint64, id uint64) uint64 {
	var n uint64
	for _, ids := range links {
		if slices.Contains(ids, id) {
			n++
		}
	}
	return n
}

// --- пользователи ---

type fakeUserRepo struct{ s *store }

func (r fakeUserRepo) GetUsers(_ context.Context, _ types.Filter, scope authz.ScopeFilter) ([]entities.User, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entities.User
	for _, u := range sortedValues(r.s.users, func(u entities.User) uint64 { return u.ID }) {
		if scope.Allows(departmentOf(&u), u.ID) {
			out = append(out, u)
		}
	}
	return out, uint64(len(out)), nil
}

func (r fakeUserRepo) FindUser(_ context.Context, id uint64) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r fakeUserRepo) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r fakeUserRepo) FindUserInfo(_ context.Context, id uint64) (*entities.UserInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.hit("FindUserInfo")
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	role := r.s.roles[u.RoleID]
	info := &entities.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Nickname:     u.Nickname,
		Email:        u.Email,
		Phone:        u.Phone,
		RoleID:       role.ID,
		RoleName:     role.Name,
		RoleEnabled:  role.Enabled,
		IsSuperAdmin: role.IsSuperAdmin,
		DataScope:    u.DataScope,
		Enabled:      u.Enabled,
	}
	if info.DataScope == 0 {
		info.DataScope = role.DataScope
	}
	if u.DepartmentID != nil {
		info.DepartmentID = *u.DepartmentID
		info.DepartmentName = r.s.departments[*u.DepartmentID].Name
	}
	return info, nil
}

func (r fakeUserRepo) CreateUser(_ context.Context, user entities.User) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = r.s.newID()
	r.s.users[user.ID] = user
	return &user, nil
}

func (r fakeUserRepo) UpdateUser(_ context.Context, id uint64, d dto.UpdateUserDTO) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if d.Password != nil {
		u.Password = *d.Password
	}
	if d.Nickname != nil {
		u.Nickname = *d.Nickname
	}
	if d.Email != nil {
		u.Email = *d.Email
	}
	if d.Phone != nil {
		u.Phone = *d.Phone
	}
	if d.RoleID != nil {
		u.RoleID = *d.RoleID
	}
	if d.DepartmentID != nil {
		if *d.DepartmentID == 0 {
			u.DepartmentID = nil
		} else {
			u.DepartmentID = ptr(*d.DepartmentID)
		}
	}
	if d.DataScope != nil {
		u.DataScope = *d.DataScope
	}
	if d.Enabled != nil {
		u.Enabled = *d.Enabled
	}
	r.s.users[id] = u
	return &u, nil
}

func (r fakeUserRepo) UpdateStatus(_ context.Context, id uint64, enabled bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Enabled = enabled
	r.s.users[id] = u
	return nil
}

func (r fakeUserRepo) UpdateLastLogin(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	r.s.users[id] = u
	return nil
}

func (r fakeUserRepo) DeleteUser(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// --- роли ---

type fakeRoleRepo struct {
	s          *store
	userIDsErr error
}

func (r *fakeRoleRepo) GetRoles(_ context.Context, _ types.Filter) ([]entities.Role, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sortedValues(r.s.roles, func(x entities.Role) uint64 { return x.ID })
	return out, uint64(len(out)), nil
}

func (r *fakeRoleRepo) ListEnabled(_ context.Context) ([]entities.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.DeleteFunc(sortedValues(r.s.roles, func(x entities.Role) uint64 { return x.ID }),
		func(x entities.Role) bool { return !x.Enabled }), nil
}

func (r *fakeRoleRepo) FindByID(_ context.Context, id uint64) (*entities.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &role, nil
}

func (r *fakeRoleRepo) CreateRole(_ context.Context, role entities.Role) (*entities.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role.ID = r.s.newID()
	r.s.roles[role.ID] = role
	return &role, nil
}

func (r *fakeRoleRepo) UpdateRole(_ context.Context, id uint64, d dto.UpdateRoleDTO) (*entities.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if d.Name != nil {
		role.Name = *d.Name
	}
	if d.DataScope != nil {
		role.DataScope = *d.DataScope
	}
	if d.Enabled != nil {
		role.Enabled = *d.Enabled
	}
	r.s.roles[id] = role
	return &role, nil
}

func (r *fakeRoleRepo) DeleteRoleInTx(_ context.Context, _ pgx.Tx, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.roles, id)
	delete(r.s.rolePermissions, id)
	delete(r.s.roleMenus, id)
	delete(r.s.roleDepartments, id)
	return nil
}

func (r *fakeRoleRepo) ReplacePermissionsInTx(_ context.Context, _ pgx.Tx, roleID uint64, ids []uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rolePermissions[roleID] = slices.Clone(ids)
	return nil
}

func (r *fakeRoleRepo) ReplaceMenusInTx(_ context.Context, _ pgx.Tx, roleID uint64, ids []uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.roleMenus[roleID] = slices.Clone(ids)
	return nil
}

func (r *fakeRoleRepo) ReplaceDepartmentsInTx(_ context.Context, _ pgx.Tx, roleID uint64, ids []uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.roleDepartments[roleID] = slices.Clone(ids)
	return nil
}

func (r *fakeRoleRepo) PermissionIDs(_ context.Context, roleID uint64) ([]uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.rolePermissions[roleID]), nil
}

func (r *fakeRoleRepo) MenuIDs(_ context.Context, roleID uint64) ([]uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.roleMenus[roleID]), nil
}

func (r *fakeRoleRepo) DepartmentIDs(_ context.Context, roleID uint64) ([]uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.roleDepartments[roleID]), nil
}

func (r *fakeRoleRepo) CountUsers(_ context.Context, roleID uint64) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return countWhere(r.s.users, func(u entities.User) bool { return u.RoleID == roleID }), nil
}

func (r *fakeRoleRepo) UserIDs(_ context.Context, roleID uint64) ([]uint64, error) {
	if r.userIDsErr != nil {
		return nil, r.userIDsErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint64
	for _, u := range sortedValues(r.s.users, func(u entities.User) uint64 { return u.ID }) {
		if u.RoleID == roleID {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// --- привилегии ---

type fakePermissionRepo struct{ s *store }

func (r fakePermissionRepo) ListAll(_ context.Context) ([]entities.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedValues(r.s.permissions, func(p entities.Permission) uint64 { return p.ID }), nil
}

func (r fakePermissionRepo) GetPermissions(ctx context.Context, _ types.Filter) ([]entities.Permission, uint64, error) {
	all, _ := r.ListAll(ctx)
	return all, uint64(len(all)), nil
}

func (r fakePermissionRepo) FindPermission(_ context.Context, id uint64) (*entities.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.permissions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (r fakePermissionRepo) CreatePermission(_ context.Context, p entities.Permission) (*entities.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.newID()
	r.s.permissions[p.ID] = p
	return &p, nil
}

func (r fakePermissionRepo) UpdatePermission(_ context.Context, id uint64, d dto.UpdatePermissionDTO) (*entities.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.permissions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if d.ParentID != nil {
		p.ParentID = *d.ParentID
	}
	if d.Name != nil {
		p.Name = *d.Name
	}
	if d.Code != nil {
		p.Code = *d.Code
	}
	if d.Enabled != nil {
		p.Enabled = *d.Enabled
	}
	r.s.permissions[id] = p
	return &p, nil
}

func (r fakePermissionRepo) DeletePermission(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.permissions, id)
	return nil
}

func (r fakePermissionRepo) CountChildren(_ context.Context, id uint64) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return countWhere(r.s.permissions, func(p entities.Permission) bool { return p.ParentID == id }), nil
}

func (r fakePermissionRepo) CountRoleLinks(_ context.Context, id uint64) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return linkedTo(r.s.rolePermissions, id), nil
}

func (r fakePermissionRepo) ListEnabledCodes(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.hit("ListEnabledCodes")
	var codes []string
	for _, p := range sortedValues(r.s.permissions, func(p entities.Permission) uint64 { return p.ID }) {
		if p.Enabled {
			codes = append(codes, p.Code)
		}
	}
	return codes, nil
}

func (r fakePermissionRepo) ListEnabledCodesByRoleID(_ context.Context, roleID uint64) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.hit("ListEnabledCodesByRoleID")
	codes := []string{}
	for _, id := range r.s.rolePermissions[roleID] {
		if p, ok := r.s.permissions[id]; ok && p.Enabled {
			codes = append(codes, p.Code)
		}
	}
	return codes, nil
}

// --- меню ---

type fakeMenuRepo struct{ s *store }

func (r fakeMenuRepo) ListAll(_ context.Context) ([]entities.Menu, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.hit("MenuListAll")
	return sortedValues(r.s.menus, func(m entities.Menu) uint64 { return m.ID }), nil
}

func (r fakeMenuRepo) ListByRoleID(_ context.Context, roleID uint64) ([]entities.Menu, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.hit("MenuListByRoleID")
	out := []entities.Menu{}
	for _, id := range r.s.roleMenus[roleID] {
		if m, ok := r.s.menus[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r fakeMenuRepo) GetMenus(ctx context.Context, _ types.Filter) ([]entities.Menu, uint64, error) {
	all, _ := r.ListAll(ctx)
	return all, uint64(len(all)), nil
}

func (r fakeMenuRepo) FindMenu(_ context.Context, id uint64) (*entities.Menu, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.menus[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &m, nil
}

func (r fakeMenuRepo) CreateMenu(_ context.Context, m entities.Menu) (*entities.Menu, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.newID()
	r.s.menus[m.ID] = m
	return &m, nil
}

func (r fakeMenuRepo) UpdateMenu(_ context.Context, id uint64, d dto.UpdateMenuDTO) (*entities.Menu, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.menus[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if d.ParentID != nil {
		m.ParentID = *d.ParentID
	}
	if d.Name != nil {
		m.Name = *d.Name
	}
	if d.Enabled != nil {
		m.Enabled = *d.Enabled
	}
	r.s.menus[id] = m
	return &m, nil
}

func (r fakeMenuRepo) DeleteMenu(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.menus, id)
	return nil
}

func (r fakeMenuRepo) CountChildren(_ context.Context, id uint64) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return countWhere(r.s.menus, func(m entities.Menu) bool { return m.ParentID == id }), nil
}

func (r fakeMenuRepo) CountRoleLinks(_ context.Context, id uint64) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return linkedTo(r.s.roleMenus, id), nil
}

// --- департаменты ---

type fakeDepartmentRepo struct{ s *store }

func (r fakeDepartmentRepo) ListAll(_ context.Context) ([]entities.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedValues(r.s.departments, func(d entities.Department) uint64 { return d.ID }), nil
}

func (r fakeDepartmentRepo) GetDepartments(ctx context.Context, _ types.Filter) ([]entities.Department, uint64, error) {
	all, _ := r.ListAll(ctx)
	return all, uint64(len(all)), nil
}

func (r fakeDepartmentRepo) FindDepartment(_ context.Context, id uint64) (*entities.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.departments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &d, nil
}

func (r fakeDepartmentRepo) CreateDepartment(_ context.Context, d entities.Department) (*entities.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.newID()
	r.s.departments[d.ID] = d
	return &d, nil
}

func (r fakeDepartmentRepo) UpdateDepartment(_ context.Context, id uint64, d dto.UpdateDepartmentDTO) (*entities.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	dep, ok := r.s.departments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if d.ParentID != nil {
		dep.ParentID = *d.ParentID
	}
	if d.Name != nil {
		dep.Name = *d.Name
	}
	r.s.departments[id] = dep
	return &dep, nil
}

func (r fakeDepartmentRepo) DeleteDepartment(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.departments, id)
	return nil
}

func (r fakeDepartmentRepo) CountChildren(_ context.Context, id uint64) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return countWhere(r.s.departments, func(d entities.Department) bool { return d.ParentID == id }), nil
}

func (r fakeDepartmentRepo) CountUsers(_ context.Context, id uint64) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return countWhere(r.s.users, func(u entities.User) bool { return departmentOf(&u) == id }), nil
}

func (r fakeDepartmentRepo) CountRoleLinks(_ context.Context, id uint64) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return linkedTo(r.s.roleDepartments, id), nil
}

func (r fakeDepartmentRepo) UserIDs(_ context.Context, id uint64) ([]uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint64
	for _, u := range sortedValues(r.s.users, func(u entities.User) uint64 { return u.ID }) {
		if departmentOf(&u) == id {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// fakeTxManager выполняет fn без транзакции.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

// brokenCache отвечает ошибкой на любую операцию.
type brokenCache struct{}

var errCacheDown = errors.New("кеш недоступен")

func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errCacheDown
}
func (brokenCache) Get(context.Context, string) (string, error)         { return "", errCacheDown }
func (brokenCache) Del(context.Context, ...string) error                { return errCacheDown }
func (brokenCache) Incr(context.Context, string) (int64, error)         { return 0, errCacheDown }
func (brokenCache) Expire(context.Context, string, time.Duration) error { return errCacheDown }
func (brokenCache) DelByPrefix(context.Context, string) (int64, error)  { return 0, errCacheDown }
func (brokenCache) Close() error                                        { return nil }

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Driver:        "memory",
		Prefix:        "admin:",
		PermissionTTL: time.Hour,
		UserInfoTTL:   time.Hour,
		MenuTreeTTL:   time.Hour,
	}
}

// env - сервисы поверх фейкового хранилища и кеша.
type env struct {
	store    *store
	roleRepo *fakeRoleRepo
	cacheRaw repositories.CacheRepositoryInterface
	metrics  *metrics.Metrics

	cache       *AuthCacheService
	profile     ProfileServiceInterface
	permissions PermissionServiceInterface
	menus       MenuServiceInterface
	roles       RoleServiceInterface
	departments DepartmentServiceInterface
	users       UserServiceInterface
	scopes      DataScopeServiceInterface
}

func newEnvWithCache(t *testing.T, cacheRepo repositories.CacheRepositoryInterface) *env {
	t.Helper()
	s := newStore(t)
	logger := zap.NewNop()
	m := metrics.NewMetrics(prometheus.NewRegistry())

	roleRepo := &fakeRoleRepo{s: s}
	userRepo := fakeUserRepo{s: s}
	deptRepo := fakeDepartmentRepo{s: s}

	cache := NewAuthCacheService(cacheRepo, roleRepo, testCacheConfig(), m, logger)
	profile := NewProfileService(userRepo, cache, logger)

	return &env{
		store:       s,
		roleRepo:    roleRepo,
		cacheRaw:    cacheRepo,
		metrics:     m,
		cache:       cache,
		profile:     profile,
		permissions: NewPermissionService(fakePermissionRepo{s: s}, roleRepo, fakeTxManager{}, profile, cache, logger),
		menus:       NewMenuService(fakeMenuRepo{s: s}, roleRepo, fakeTxManager{}, profile, cache, logger),
		roles:       NewRoleService(roleRepo, fakeTxManager{}, cache, logger),
		departments: NewDepartmentService(deptRepo, cache, logger),
		users:       NewUserService(userRepo, roleRepo, deptRepo, cache, logger),
		scopes:      NewDataScopeService(deptRepo, roleRepo, logger),
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithCache(t, repositories.NewMemoryCacheRepository(1024, time.Hour))
}

// asUser собирает контекст запроса так же, как это делает middleware.
func (e *env) asUser(t *testing.T, userID uint64) context.Context {
	t.Helper()
	ctx := context.Background()
	info, err := e.profile.UserInfo(ctx, userID)
	require.NoError(t, err)

	p := authz.Principal{
		UserID:       info.ID,
		RoleID:       info.RoleID,
		DepartmentID: info.DepartmentID,
		DataScope:    info.DataScope,
		IsSuperAdmin: info.IsSuperAdmin,
	}
	filter, err := e.scopes.Resolve(ctx, p)
	require.NoError(t, err)
	return utils.WithScopeFilter(utils.WithPrincipal(ctx, p), filter)
}
