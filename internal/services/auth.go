package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/repositories"
	"admin-backoffice/pkg/config"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/service"
	"admin-backoffice/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error)
}

type AuthService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	users     UserInfoProvider
	jwt       service.JWTService
	cfg       config.AuthConfig
	logger    *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	users UserInfoProvider,
	jwt service.JWTService,
	cfg config.AuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		users:     users,
		jwt:       jwt,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	logger := s.logger.With(zap.String("username", payload.Username))

	user, err := s.userRepo.FindByUsername(ctx, payload.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("Вход: пользователь не найден")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		logger.Warn("Вход: учётная запись заблокирована", zap.Uint64("userID", user.ID))
		return nil, err
	}
	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, user.ID)
		logger.Info("Вход: неверный пароль", zap.Uint64("userID", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.Enabled {
		return nil, apperrors.ErrUserDisabled
	}
	s.resetLoginAttempts(ctx, user.ID)

	response, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn("Не удалось обновить время последнего входа", zap.Error(err))
	}
	logger.Info("Вход выполнен", zap.Uint64("userID", user.ID))
	return response, nil
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}
	return s.issueTokens(ctx, claims.UserID)
}

// issueTokens берёт роль и область из актуального профиля, а не из старого токена.
// Нулевая область пользователя наследуется от роли ещё в запросе профиля.
func (s *AuthService) issueTokens(ctx context.Context, userID uint64) (*dto.AuthResponseDTO, error) {
	info, err := s.users.UserInfo(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !info.Enabled || !info.RoleEnabled {
		return nil, apperrors.ErrUserDisabled
	}

	accessToken, refreshToken, err := s.jwt.GenerateTokens(info.ID, info.RoleID, int(info.DataScope))
	if err != nil {
		return nil, fmt.Errorf("не удалось выпустить токены: %w", err)
	}
	return &dto.AuthResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwt.GetAccessTokenTTL().Seconds()),
		User:         *info,
	}, nil
}

func (s *AuthService) checkLockout(ctx context.Context, userID uint64) error {
	lockoutKey := fmt.Sprintf("lockout:%d", userID)

	// Если ключ существует - аккаунт заблокирован
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID uint64) {
	if s.cfg.MaxLoginAttempts <= 0 {
		return
	}
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачную попытку входа", zap.Uint64("userID", userID), zap.Error(err))
		return
	}
	if attempts == 1 {
		// попытки считаются в окне длиной в блокировку, а не до следующего успешного входа
		if err := s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration); err != nil {
			s.logger.Warn("Не удалось задать окно подсчёта попыток", zap.Uint64("userID", userID), zap.Error(err))
		}
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf("lockout:%d", userID)
		if err := s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration); err != nil {
			s.logger.Warn("Не удалось заблокировать вход", zap.Uint64("userID", userID), zap.Error(err))
		}
		_ = s.cacheRepo.Del(ctx, attemptsKey)
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	lockoutKey := fmt.Sprintf("lockout:%d", userID)
	_ = s.cacheRepo.Del(ctx, attemptsKey, lockoutKey)
}
