package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
	"admin-backoffice/internal/repositories"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/types"
	"admin-backoffice/pkg/utils"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	CreateUser(ctx context.Context, dto dto.CreateUserDTO) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint64, dto dto.UpdateUserDTO) (*entities.User, error)
	UpdateStatus(ctx context.Context, id uint64, enabled bool) error
	DeleteUser(ctx context.Context, id uint64) error
}

// UserService работает в пределах области видимости из контекста запроса:
// пользователи вне области недоступны ни для чтения, ни для изменения.
type UserService struct {
	repo     repositories.UserRepositoryInterface
	roleRepo repositories.RoleRepositoryInterface
	deptRepo repositories.DepartmentRepositoryInterface
	cache    AuthCacheServiceInterface
	logger   *zap.Logger
}

func NewUserService(
	repo repositories.UserRepositoryInterface,
	roleRepo repositories.RoleRepositoryInterface,
	deptRepo repositories.DepartmentRepositoryInterface,
	cache AuthCacheServiceInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		repo:     repo,
		roleRepo: roleRepo,
		deptRepo: deptRepo,
		cache:    cache,
		logger:   logger,
	}
}

func departmentOf(u *entities.User) uint64 {
	if u.DepartmentID == nil {
		return 0
	}
	return *u.DepartmentID
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	scope := utils.GetScopeFilterFromCtx(ctx)
	return s.repo.GetUsers(ctx, filter, scope)
}

// findInScope возвращает ErrNotFound и для отсутствующих, и для невидимых пользователей.
func (s *UserService) findInScope(ctx context.Context, id uint64) (*entities.User, error) {
	user, err := s.repo.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !utils.GetScopeFilterFromCtx(ctx).Allows(departmentOf(user), user.ID) {
		s.logger.Debug("Пользователь вне области видимости", zap.Uint64("userID", id))
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	return s.findInScope(ctx, id)
}

func (s *UserService) checkReferences(ctx context.Context, roleID, departmentID *uint64) error {
	if roleID != nil {
		if _, err := s.roleRepo.FindByID(ctx, *roleID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewInvalidInputError("Роль %d не найдена", *roleID)
			}
			return err
		}
	}
	if departmentID != nil && *departmentID != 0 {
		if _, err := s.deptRepo.FindDepartment(ctx, *departmentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewInvalidInputError("Департамент %d не найден", *departmentID)
			}
			return err
		}
	}
	return nil
}

func (s *UserService) CreateUser(ctx context.Context, d dto.CreateUserDTO) (*entities.User, error) {
	if err := s.checkReferences(ctx, &d.RoleID, d.DepartmentID); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(d.Password)
	if err != nil {
		return nil, err
	}

	entity := entities.User{
		Username:     d.Username,
		Password:     hashed,
		Nickname:     d.Nickname,
		Email:        d.Email,
		Phone:        d.Phone,
		RoleID:       d.RoleID,
		DepartmentID: d.DepartmentID,
		DataScope:    d.DataScope,
		Enabled:      d.Enabled == nil || *d.Enabled,
	}
	created, err := s.repo.CreateUser(ctx, entity)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Создан пользователь", zap.Uint64("id", created.ID), zap.String("username", created.Username))
	return created, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, d dto.UpdateUserDTO) (*entities.User, error) {
	if _, err := s.findInScope(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, d.RoleID, d.DepartmentID); err != nil {
		return nil, err
	}

	if d.Password != nil {
		hashed, err := utils.HashPassword(*d.Password)
		if err != nil {
			return nil, err
		}
		d.Password = &hashed
	}

	updated, err := s.repo.UpdateUser(ctx, id, d)
	if err != nil {
		return nil, err
	}

	// роль, департамент, статус и область меняют привилегии, остальное только профиль
	if d.RoleID != nil || d.DepartmentID != nil || d.Enabled != nil || d.DataScope != nil {
		s.cache.InvalidateUser(ctx, id)
	} else {
		s.cache.InvalidateUserInfo(ctx, id)
	}
	s.logger.Info("Обновлён пользователь", zap.Uint64("id", id))
	return updated, nil
}

func (s *UserService) UpdateStatus(ctx context.Context, id uint64, enabled bool) error {
	if actorID, err := utils.GetUserIDFromCtx(ctx); err == nil && actorID == id && !enabled {
		return apperrors.NewInvalidInputError("Нельзя отключить собственную учётную запись")
	}
	if _, err := s.findInScope(ctx, id); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, enabled); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, id)
	s.logger.Info("Изменён статус пользователя", zap.Uint64("id", id), zap.Bool("enabled", enabled))
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	if actorID, err := utils.GetUserIDFromCtx(ctx); err == nil && actorID == id {
		return apperrors.NewInvalidInputError("Нельзя удалить собственную учётную запись")
	}
	if _, err := s.findInScope(ctx, id); err != nil {
		return err
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, id)
	s.logger.Info("Удалён пользователь", zap.Uint64("id", id))
	return nil
}
