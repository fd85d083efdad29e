package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-backoffice/internal/authz"
	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
	apperrors "admin-backoffice/pkg/errors"
)

func TestPermissionService_SuperAdminGetsEveryEnabledCode(t *testing.T) {
	e := newEnv(t)

	codes, err := e.permissions.UserPermissionCodes(context.Background(), 1)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"system", "system:user", authz.UserList, authz.UserAdd, authz.RoleList}, codes)
	assert.NotContains(t, codes, authz.RoleAdd)
}

func TestPermissionService_DisabledPermissionIsNotGranted(t *testing.T) {
	e := newEnv(t)

	// привилегия 6 назначена роли, но отключена
	ok, err := e.permissions.HasPermission(context.Background(), 2, authz.RoleAdd)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPermissionService_HasPermission(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID uint64
		code   string
		want   bool
	}{
		{"granted", 2, authz.UserList, true},
		{"not granted", 2, authz.UserAdd, false},
		{"empty code", 2, "", false},
		{"prefix is not a match", 2, "system:user", false},
		{"super admin", 1, authz.RoleList, true},
		{"unknown code for super admin", 1, "system:unknown:list", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := e.permissions.HasPermission(ctx, tt.userID, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestPermissionService_DisabledRoleOrUserGetsNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	codes, err := e.permissions.UserPermissionCodes(ctx, 6)
	require.NoError(t, err)
	assert.Empty(t, codes)

	role := e.store.roles[2]
	role.Enabled = false
	e.store.roles[2] = role

	codes, err = e.permissions.UserPermissionCodes(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestPermissionService_UnknownUser(t *testing.T) {
	e := newEnv(t)

	_, err := e.permissions.UserPermissionCodes(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestPermissionService_Tree(t *testing.T) {
	e := newEnv(t)

	tree, err := e.permissions.GetPermissionTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "system", tree[0].Node.Code)
	// отключённые узлы тоже в дереве управления
	assert.Len(t, tree[0].Children, 3)
}

func TestPermissionService_Delete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.permissions.DeletePermission(ctx, 2), apperrors.ErrHasChildren)
	assert.ErrorIs(t, e.permissions.DeletePermission(ctx, 3), apperrors.ErrHasDependents)
	assert.ErrorIs(t, e.permissions.DeletePermission(ctx, 999), apperrors.ErrNotFound)

	require.NoError(t, e.permissions.DeletePermission(ctx, 4))
	_, ok := e.store.permissions[4]
	assert.False(t, ok)
}

func TestPermissionService_CreateAndUpdateValidateParent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.permissions.CreatePermission(ctx, dto.CreatePermissionDTO{
		ParentID: 999, Name: "x", Code: "system:x:list", Type: entities.PermissionTypeButton,
	})
	assert.ErrorIs(t, err, apperrors.ErrParentNotFound)

	created, err := e.permissions.CreatePermission(ctx, dto.CreatePermissionDTO{
		ParentID: 2, Name: "Export", Code: "system:user:export", Type: entities.PermissionTypeButton,
	})
	require.NoError(t, err)
	assert.True(t, created.Enabled)

	_, err = e.permissions.UpdatePermission(ctx, 1, dto.UpdatePermissionDTO{ParentID: ptr(uint64(2))})
	assert.ErrorIs(t, err, apperrors.ErrParentCycle)

	_, err = e.permissions.UpdatePermission(ctx, 2, dto.UpdatePermissionDTO{ParentID: ptr(uint64(2))})
	assert.ErrorIs(t, err, apperrors.ErrSelfParent)
}

func TestPermissionService_NewCodeVisibleToSuperAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.permissions.UserPermissionCodes(ctx, 1)
	require.NoError(t, err)

	_, err = e.permissions.CreatePermission(ctx, dto.CreatePermissionDTO{
		ParentID: 2, Name: "Export", Code: "system:user:export", Type: entities.PermissionTypeButton,
	})
	require.NoError(t, err)

	ok, err := e.permissions.HasPermission(ctx, 1, "system:user:export")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPermissionService_RolePermissionIDs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ids, err := e.permissions.RolePermissionIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 6}, ids)

	_, err = e.permissions.RolePermissionIDs(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, e.permissions.SetRolePermissions(ctx, 999, nil), apperrors.ErrNotFound)
}
