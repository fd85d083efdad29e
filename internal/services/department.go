package services

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
	"admin-backoffice/internal/hierarchy"
	"admin-backoffice/internal/repositories"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/types"
)

type DepartmentServiceInterface interface {
	GetDepartments(ctx context.Context, filter types.Filter) ([]entities.Department, uint64, error)
	GetDepartmentTree(ctx context.Context) ([]*hierarchy.Tree[entities.Department], error)
	FindDepartment(ctx context.Context, id uint64) (*entities.Department, error)
	DepartmentPath(ctx context.Context, id uint64) ([]entities.Department, error)
	CreateDepartment(ctx context.Context, dto dto.CreateDepartmentDTO) (*entities.Department, error)
	UpdateDepartment(ctx context.Context, id uint64, dto dto.UpdateDepartmentDTO) (*entities.Department, error)
	DeleteDepartment(ctx context.Context, id uint64) error
}

type DepartmentService struct {
	repo   repositories.DepartmentRepositoryInterface
	cache  AuthCacheServiceInterface
	logger *zap.Logger
}

func NewDepartmentService(
	repo repositories.DepartmentRepositoryInterface,
	cache AuthCacheServiceInterface,
	logger *zap.Logger,
) DepartmentServiceInterface {
	return &DepartmentService{repo: repo, cache: cache, logger: logger}
}

func (s *DepartmentService) GetDepartments(ctx context.Context, filter types.Filter) ([]entities.Department, uint64, error) {
	return s.repo.GetDepartments(ctx, filter)
}

func (s *DepartmentService) GetDepartmentTree(ctx context.Context) ([]*hierarchy.Tree[entities.Department], error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	tree, err := hierarchy.Build(all, 0)
	if err != nil {
		s.logger.Error("Не удалось построить дерево департаментов", zap.Error(err))
		return nil, err
	}
	if tree == nil {
		tree = []*hierarchy.Tree[entities.Department]{}
	}
	return tree, nil
}

func (s *DepartmentService) FindDepartment(ctx context.Context, id uint64) (*entities.Department, error) {
	return s.repo.FindDepartment(ctx, id)
}

// DepartmentPath - цепочка от корня до департамента для хлебных крошек.
func (s *DepartmentService) DepartmentPath(ctx context.Context, id uint64) ([]entities.Department, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	path, err := hierarchy.AncestorPath(all, id)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return path, nil
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, d dto.CreateDepartmentDTO) (*entities.Department, error) {
	if d.ParentID != 0 {
		if _, err := s.repo.FindDepartment(ctx, d.ParentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrParentNotFound
			}
			return nil, err
		}
	}

	entity := entities.Department{
		ParentID:  d.ParentID,
		Name:      d.Name,
		Code:      d.Code,
		Leader:    d.Leader,
		Phone:     d.Phone,
		Email:     d.Email,
		SortOrder: d.SortOrder,
		Enabled:   d.Enabled == nil || *d.Enabled,
	}
	created, err := s.repo.CreateDepartment(ctx, entity)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Создан департамент", zap.Uint64("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uint64, d dto.UpdateDepartmentDTO) (*entities.Department, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(all, func(dep entities.Department) bool { return dep.ID == id })
	if idx < 0 {
		return nil, apperrors.ErrNotFound
	}
	current := all[idx]

	if d.ParentID != nil {
		if err := hierarchy.ValidateParent(all, id, *d.ParentID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateDepartment(ctx, id, d)
	if err != nil {
		return nil, err
	}

	// название департамента входит в снимок профиля сотрудников
	if updated.Name != current.Name {
		userIDs, err := s.repo.UserIDs(ctx, id)
		if err != nil {
			s.logger.Error("Не удалось получить сотрудников департамента для сброса кеша", zap.Uint64("id", id), zap.Error(err))
		} else {
			s.cache.InvalidateUserInfo(ctx, userIDs...)
		}
	}

	s.logger.Info("Обновлён департамент", zap.Uint64("id", id))
	return updated, nil
}

func (s *DepartmentService) DeleteDepartment(ctx context.Context, id uint64) error {
	if _, err := s.repo.FindDepartment(ctx, id); err != nil {
		return err
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperrors.ErrHasChildren
	}

	users, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 {
		s.logger.Warn("В департаменте есть сотрудники, удаление запрещено", zap.Uint64("id", id), zap.Uint64("users", users))
		return apperrors.ErrHasDependents
	}

	links, err := s.repo.CountRoleLinks(ctx, id)
	if err != nil {
		return err
	}
	if links > 0 {
		s.logger.Warn("Департамент входит в настраиваемую область ролей", zap.Uint64("id", id), zap.Uint64("roles", links))
		return apperrors.ErrHasDependents
	}

	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Удалён департамент", zap.Uint64("id", id))
	return nil
}
