package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
	"admin-backoffice/internal/repositories"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/types"
)

type RoleServiceInterface interface {
	GetRoles(ctx context.Context, filter types.Filter) ([]entities.Role, uint64, error)
	GetAllRoles(ctx context.Context) ([]dto.ShortRoleDTO, error)
	FindRole(ctx context.Context, id uint64) (*dto.RoleDetailDTO, error)
	CreateRole(ctx context.Context, dto dto.CreateRoleDTO) (*entities.Role, error)
	UpdateRole(ctx context.Context, id uint64, dto dto.UpdateRoleDTO) (*entities.Role, error)
	DeleteRole(ctx context.Context, id uint64) error
	SetRoleDepartments(ctx context.Context, roleID uint64, departmentIDs []uint64) error
}

type RoleService struct {
	repo      repositories.RoleRepositoryInterface
	txManager repositories.TxManagerInterface
	cache     AuthCacheServiceInterface
	logger    *zap.Logger
}

func NewRoleService(
	repo repositories.RoleRepositoryInterface,
	txManager repositories.TxManagerInterface,
	cache AuthCacheServiceInterface,
	logger *zap.Logger,
) RoleServiceInterface {
	return &RoleService{
		repo:      repo,
		txManager: txManager,
		cache:     cache,
		logger:    logger,
	}
}

func (s *RoleService) GetRoles(ctx context.Context, filter types.Filter) ([]entities.Role, uint64, error) {
	return s.repo.GetRoles(ctx, filter)
}

func (s *RoleService) GetAllRoles(ctx context.Context) ([]dto.ShortRoleDTO, error) {
	roles, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ShortRoleDTO, 0, len(roles))
	for _, r := range roles {
		result = append(result, dto.ShortRoleDTO{ID: r.ID, Name: r.Name, Code: r.Code})
	}
	return result, nil
}

func (s *RoleService) FindRole(ctx context.Context, id uint64) (*dto.RoleDetailDTO, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &dto.RoleDetailDTO{Role: *role}
	if detail.PermissionIDs, err = s.repo.PermissionIDs(ctx, id); err != nil {
		return nil, err
	}
	if detail.MenuIDs, err = s.repo.MenuIDs(ctx, id); err != nil {
		return nil, err
	}
	if detail.DepartmentIDs, err = s.repo.DepartmentIDs(ctx, id); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *RoleService) CreateRole(ctx context.Context, d dto.CreateRoleDTO) (*entities.Role, error) {
	entity := entities.Role{
		Name:      d.Name,
		Code:      d.Code,
		DataScope: d.DataScope,
		Remark:    d.Remark,
		SortOrder: d.SortOrder,
		Enabled:   d.Enabled == nil || *d.Enabled,
	}
	if entity.DataScope == 0 {
		entity.DataScope = entities.DataScopeAll
	}

	created, err := s.repo.CreateRole(ctx, entity)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Создана роль", zap.Uint64("id", created.ID), zap.String("code", created.Code))
	return created, nil
}

func (s *RoleService) UpdateRole(ctx context.Context, id uint64, d dto.UpdateRoleDTO) (*entities.Role, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsSuperAdmin && d.Enabled != nil && !*d.Enabled {
		return nil, apperrors.NewInvalidInputError("Роль суперадминистратора нельзя отключить")
	}

	updated, err := s.repo.UpdateRole(ctx, id, d)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateRole(ctx, id)
	s.logger.Info("Обновлена роль", zap.Uint64("id", id))
	return updated, nil
}

func (s *RoleService) DeleteRole(ctx context.Context, id uint64) error {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSuperAdmin {
		return apperrors.NewInvalidInputError("Роль суперадминистратора нельзя удалить")
	}

	users, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 {
		s.logger.Warn("Роль назначена пользователям, удаление запрещено", zap.Uint64("id", id), zap.Uint64("users", users))
		return apperrors.ErrHasDependents
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.DeleteRoleInTx(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateRole(ctx, id)
	s.logger.Info("Удалена роль", zap.Uint64("id", id))
	return nil
}

// SetRoleDepartments задаёт департаменты настраиваемой области видимости.
// Область вычисляется на каждый запрос, поэтому кеш не затрагивается.
func (s *RoleService) SetRoleDepartments(ctx context.Context, roleID uint64, departmentIDs []uint64) error {
	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role.DataScope != entities.DataScopeCustom && len(departmentIDs) > 0 {
		s.logger.Warn("Департаменты задаются роли без настраиваемой области",
			zap.Uint64("roleID", roleID), zap.String("dataScope", role.DataScope.String()))
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.ReplaceDepartmentsInTx(ctx, tx, roleID, departmentIDs)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Департаменты роли заменены", zap.Uint64("roleID", roleID), zap.Int("count", len(departmentIDs)))
	return nil
}
