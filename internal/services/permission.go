package services

import (
	"context"
	"errors"
	"slices"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
	"admin-backoffice/internal/hierarchy"
	"admin-backoffice/internal/repositories"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/types"
)

type PermissionServiceInterface interface {
	GetPermissions(ctx context.Context, filter types.Filter) ([]entities.Permission, uint64, error)
	GetPermissionTree(ctx context.Context) ([]*hierarchy.Tree[entities.Permission], error)
	FindPermission(ctx context.Context, id uint64) (*entities.Permission, error)
	CreatePermission(ctx context.Context, dto dto.CreatePermissionDTO) (*entities.Permission, error)
	UpdatePermission(ctx context.Context, id uint64, dto dto.UpdatePermissionDTO) (*entities.Permission, error)
	DeletePermission(ctx context.Context, id uint64) error

	RolePermissionIDs(ctx context.Context, roleID uint64) ([]uint64, error)
	SetRolePermissions(ctx context.Context, roleID uint64, permissionIDs []uint64) error

	UserPermissionCodes(ctx context.Context, userID uint64) ([]string, error)
	HasPermission(ctx context.Context, userID uint64, code string) (bool, error)
}

type PermissionService struct {
	repo      repositories.PermissionRepositoryInterface
	roleRepo  repositories.RoleRepositoryInterface
	txManager repositories.TxManagerInterface
	users     UserInfoProvider
	cache     AuthCacheServiceInterface
	logger    *zap.Logger
}

func NewPermissionService(
	repo repositories.PermissionRepositoryInterface,
	roleRepo repositories.RoleRepositoryInterface,
	txManager repositories.TxManagerInterface,
	users UserInfoProvider,
	cache AuthCacheServiceInterface,
	logger *zap.Logger,
) PermissionServiceInterface {
	return &PermissionService{
		repo:      repo,
		roleRepo:  roleRepo,
		txManager: txManager,
		users:     users,
		cache:     cache,
		logger:    logger,
	}
}

func (s *PermissionService) GetPermissions(ctx context.Context, filter types.Filter) ([]entities.Permission, uint64, error) {
	return s.repo.GetPermissions(ctx, filter)
}

func (s *PermissionService) GetPermissionTree(ctx context.Context) ([]*hierarchy.Tree[entities.Permission], error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	tree, err := hierarchy.Build(all, 0)
	if err != nil {
		s.logger.Error("Не удалось построить дерево привилегий", zap.Error(err))
		return nil, err
	}
	if tree == nil {
		tree = []*hierarchy.Tree[entities.Permission]{}
	}
	return tree, nil
}

func (s *PermissionService) FindPermission(ctx context.Context, id uint64) (*entities.Permission, error) {
	return s.repo.FindPermission(ctx, id)
}

func (s *PermissionService) CreatePermission(ctx context.Context, d dto.CreatePermissionDTO) (*entities.Permission, error) {
	if d.ParentID != 0 {
		if _, err := s.repo.FindPermission(ctx, d.ParentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrParentNotFound
			}
			return nil, err
		}
	}

	entity := entities.Permission{
		ParentID:  d.ParentID,
		Name:      d.Name,
		Code:      d.Code,
		Type:      d.Type,
		SortOrder: d.SortOrder,
		Enabled:   d.Enabled == nil || *d.Enabled,
	}
	created, err := s.repo.CreatePermission(ctx, entity)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidatePermissionNodes(ctx)
	s.logger.Info("Создана привилегия", zap.Uint64("id", created.ID), zap.String("code", created.Code))
	return created, nil
}

func (s *PermissionService) UpdatePermission(ctx context.Context, id uint64, d dto.UpdatePermissionDTO) (*entities.Permission, error) {
	if d.ParentID != nil {
		all, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(all, func(p entities.Permission) bool { return p.ID == id }) {
			return nil, apperrors.ErrNotFound
		}
		if err := hierarchy.ValidateParent(all, id, *d.ParentID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdatePermission(ctx, id, d)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidatePermissionNodes(ctx)
	s.logger.Info("Обновлена привилегия", zap.Uint64("id", id))
	return updated, nil
}

func (s *PermissionService) DeletePermission(ctx context.Context, id uint64) error {
	if _, err := s.repo.FindPermission(ctx, id); err != nil {
		return err
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperrors.ErrHasChildren
	}

	links, err := s.repo.CountRoleLinks(ctx, id)
	if err != nil {
		return err
	}
	if links > 0 {
		s.logger.Warn("Привилегия назначена ролям, удаление запрещено", zap.Uint64("id", id), zap.Uint64("roles", links))
		return apperrors.ErrHasDependents
	}

	if err := s.repo.DeletePermission(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePermissionNodes(ctx)
	s.logger.Info("Удалена привилегия", zap.Uint64("id", id))
	return nil
}

func (s *PermissionService) RolePermissionIDs(ctx context.Context, roleID uint64) ([]uint64, error) {
	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		return nil, err
	}
	return s.roleRepo.PermissionIDs(ctx, roleID)
}

// SetRolePermissions заменяет набор привилегий роли целиком. Кеш сбрасывается только после коммита.
func (s *PermissionService) SetRolePermissions(ctx context.Context, roleID uint64, permissionIDs []uint64) error {
	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.roleRepo.ReplacePermissionsInTx(ctx, tx, roleID, permissionIDs)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateRolePermissions(ctx, roleID)
	s.logger.Info("Привилегии роли заменены", zap.Uint64("roleID", roleID), zap.Int("count", len(permissionIDs)))
	return nil
}

// UserPermissionCodes - коды включённых привилегий пользователя.
// Суперадмин получает все включённые коды, отключённая роль не получает ничего.
func (s *PermissionService) UserPermissionCodes(ctx context.Context, userID uint64) ([]string, error) {
	return s.cache.Permissions(ctx, userID, func(ctx context.Context) ([]string, error) {
		info, err := s.users.UserInfo(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !info.Enabled || !info.RoleEnabled {
			return []string{}, nil
		}
		if info.IsSuperAdmin {
			return s.repo.ListEnabledCodes(ctx)
		}
		return s.repo.ListEnabledCodesByRoleID(ctx, info.RoleID)
	})
}

// HasPermission - точное членство кода во множестве пользователя.
func (s *PermissionService) HasPermission(ctx context.Context, userID uint64, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	codes, err := s.UserPermissionCodes(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(codes, code), nil
}
