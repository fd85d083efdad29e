package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
	"admin-backoffice/internal/repositories"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/utils"
)

// UserInfoProvider отдаёт закешированный профиль пользователя.
type UserInfoProvider interface {
	UserInfo(ctx context.Context, userID uint64) (*entities.UserInfo, error)
}

type ProfileServiceInterface interface {
	UserInfoProvider
	UpdateProfile(ctx context.Context, userID uint64, dto dto.UpdateProfileDTO) (*entities.UserInfo, error)
	ChangePassword(ctx context.Context, userID uint64, dto dto.ChangePasswordDTO) error
}

type ProfileService struct {
	userRepo repositories.UserRepositoryInterface
	cache    AuthCacheServiceInterface
	logger   *zap.Logger
}

func NewProfileService(
	userRepo repositories.UserRepositoryInterface,
	cache AuthCacheServiceInterface,
	logger *zap.Logger,
) ProfileServiceInterface {
	return &ProfileService{userRepo: userRepo, cache: cache, logger: logger}
}

func (s *ProfileService) UserInfo(ctx context.Context, userID uint64) (*entities.UserInfo, error) {
	info, err := s.cache.UserInfo(ctx, userID, func(ctx context.Context) (*entities.UserInfo, error) {
		return s.userRepo.FindUserInfo(ctx, userID)
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	return info, err
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint64, d dto.UpdateProfileDTO) (*entities.UserInfo, error) {
	update := dto.UpdateUserDTO{Nickname: d.Nickname, Email: d.Email, Phone: d.Phone}
	if _, err := s.userRepo.UpdateUser(ctx, userID, update); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	s.cache.InvalidateUserInfo(ctx, userID)
	s.logger.Info("Профиль обновлён", zap.Uint64("userID", userID))
	return s.UserInfo(ctx, userID)
}

func (s *ProfileService) ChangePassword(ctx context.Context, userID uint64, d dto.ChangePasswordDTO) error {
	user, err := s.userRepo.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}
	if err := utils.ComparePasswords(user.Password, d.OldPassword); err != nil {
		return apperrors.NewInvalidInputError("Текущий пароль указан неверно")
	}

	hashed, err := utils.HashPassword(d.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.UpdateUser(ctx, userID, dto.UpdateUserDTO{Password: &hashed}); err != nil {
		return err
	}
	s.logger.Info("Пароль изменён", zap.Uint64("userID", userID))
	return nil
}
