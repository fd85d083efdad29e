package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-backoffice/internal/dto"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/utils"
)

func TestProfileService_UserInfoIsCached(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for range 3 {
		info, err := e.profile.UserInfo(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "carol", info.Username)
		assert.Equal(t, "Editor", info.RoleName)
	}
	assert.Equal(t, 1, e.store.callCount("FindUserInfo"))

	_, err := e.profile.UserInfo(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestProfileService_UpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.profile.UserInfo(ctx, 2)
	require.NoError(t, err)

	info, err := e.profile.UpdateProfile(ctx, 2, dto.UpdateProfileDTO{Nickname: ptr("Alice"), Email: ptr("alice@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", info.Nickname)
	assert.Equal(t, "alice@example.com", info.Email)

	_, err = e.profile.UpdateProfile(ctx, 999, dto.UpdateProfileDTO{Nickname: ptr("x")})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestProfileService_ChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	var invalid *apperrors.InvalidInputError
	err := e.profile.ChangePassword(ctx, 2, dto.ChangePasswordDTO{OldPassword: "wrong-pass", NewPassword: "newsecret"})
	assert.ErrorAs(t, err, &invalid)

	require.NoError(t, e.profile.ChangePassword(ctx, 2, dto.ChangePasswordDTO{OldPassword: "secret123", NewPassword: "newsecret"}))
	assert.NoError(t, utils.ComparePasswords(e.store.users[2].Password, "newsecret"))

	assert.ErrorIs(t, e.profile.ChangePassword(ctx, 999, dto.ChangePasswordDTO{OldPassword: "a", NewPassword: "b"}), apperrors.ErrUserNotFound)
}
