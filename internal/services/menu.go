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

type MenuTree = []*hierarchy.Tree[entities.Menu]

type MenuServiceInterface interface {
	GetMenus(ctx context.Context, filter types.Filter) ([]entities.Menu, uint64, error)
	GetMenuTree(ctx context.Context) (MenuTree, error)
	FindMenu(ctx context.Context, id uint64) (*entities.Menu, error)
	CreateMenu(ctx context.Context, dto dto.CreateMenuDTO) (*entities.Menu, error)
	UpdateMenu(ctx context.Context, id uint64, dto dto.UpdateMenuDTO) (*entities.Menu, error)
	DeleteMenu(ctx context.Context, id uint64) error

	RoleMenuIDs(ctx context.Context, roleID uint64) ([]uint64, error)
	SetRoleMenus(ctx context.Context, roleID uint64, menuIDs []uint64) error

	UserMenus(ctx context.Context, userID uint64) (MenuTree, error)
}

type MenuService struct {
	repo      repositories.MenuRepositoryInterface
	roleRepo  repositories.RoleRepositoryInterface
	txManager repositories.TxManagerInterface
	users     UserInfoProvider
	cache     AuthCacheServiceInterface
	logger    *zap.Logger
}

func NewMenuService(
	repo repositories.MenuRepositoryInterface,
	roleRepo repositories.RoleRepositoryInterface,
	txManager repositories.TxManagerInterface,
	users UserInfoProvider,
	cache AuthCacheServiceInterface,
	logger *zap.Logger,
) MenuServiceInterface {
	return &MenuService{
		repo:      repo,
		roleRepo:  roleRepo,
		txManager: txManager,
		users:     users,
		cache:     cache,
		logger:    logger,
	}
}

func (s *MenuService) GetMenus(ctx context.Context, filter types.Filter) ([]entities.Menu, uint64, error) {
	return s.repo.GetMenus(ctx, filter)
}

func buildMenuTree(menus []entities.Menu) (MenuTree, error) {
	tree, err := hierarchy.Build(menus, 0)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		tree = MenuTree{}
	}
	return tree, nil
}

// GetMenuTree - дерево для управления, включая отключённые узлы.
func (s *MenuService) GetMenuTree(ctx context.Context) (MenuTree, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildMenuTree(all)
}

func (s *MenuService) FindMenu(ctx context.Context, id uint64) (*entities.Menu, error) {
	return s.repo.FindMenu(ctx, id)
}

func (s *MenuService) CreateMenu(ctx context.Context, d dto.CreateMenuDTO) (*entities.Menu, error) {
	if d.ParentID != 0 {
		if _, err := s.repo.FindMenu(ctx, d.ParentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrParentNotFound
			}
			return nil, err
		}
	}

	entity := entities.Menu{
		ParentID:   d.ParentID,
		Name:       d.Name,
		Path:       d.Path,
		Component:  d.Component,
		Icon:       d.Icon,
		Type:       d.Type,
		Permission: d.Permission,
		SortOrder:  d.SortOrder,
		Enabled:    d.Enabled == nil || *d.Enabled,
	}
	created, err := s.repo.CreateMenu(ctx, entity)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateMenuNodes(ctx)
	s.logger.Info("Создан пункт меню", zap.Uint64("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *MenuService) UpdateMenu(ctx context.Context, id uint64, d dto.UpdateMenuDTO) (*entities.Menu, error) {
	if d.ParentID != nil {
		all, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(all, func(m entities.Menu) bool { return m.ID == id }) {
			return nil, apperrors.ErrNotFound
		}
		if err := hierarchy.ValidateParent(all, id, *d.ParentID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateMenu(ctx, id, d)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateMenuNodes(ctx)
	s.logger.Info("Обновлён пункт меню", zap.Uint64("id", id))
	return updated, nil
}

func (s *MenuService) DeleteMenu(ctx context.Context, id uint64) error {
	if _, err := s.repo.FindMenu(ctx, id); err != nil {
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
		s.logger.Warn("Пункт меню назначен ролям, удаление запрещено", zap.Uint64("id", id), zap.Uint64("roles", links))
		return apperrors.ErrHasDependents
	}

	if err := s.repo.DeleteMenu(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateMenuNodes(ctx)
	s.logger.Info("Удалён пункт меню", zap.Uint64("id", id))
	return nil
}

func (s *MenuService) RoleMenuIDs(ctx context.Context, roleID uint64) ([]uint64, error) {
	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		return nil, err
	}
	return s.roleRepo.MenuIDs(ctx, roleID)
}

func (s *MenuService) SetRoleMenus(ctx context.Context, roleID uint64, menuIDs []uint64) error {
	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.roleRepo.ReplaceMenusInTx(ctx, tx, roleID, menuIDs)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateRoleMenus(ctx, roleID)
	s.logger.Info("Меню роли заменены", zap.Uint64("roleID", roleID), zap.Int("count", len(menuIDs)))
	return nil
}

func enabledMenus(menus []entities.Menu) []entities.Menu {
	return slices.DeleteFunc(menus, func(m entities.Menu) bool { return !m.Enabled })
}

// UserMenus - включённые меню роли пользователя в виде дерева. Суперадмин видит все включённые меню.
// Узел, чей родитель не назначен роли, в дерево не попадает.
func (s *MenuService) UserMenus(ctx context.Context, userID uint64) (MenuTree, error) {
	info, err := s.users.UserInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !info.Enabled || !info.RoleEnabled {
		return MenuTree{}, nil
	}

	var roleKey uint64
	if !info.IsSuperAdmin {
		roleKey = info.RoleID
	}

	menus, err := s.cache.RoleMenus(ctx, roleKey, func(ctx context.Context) ([]entities.Menu, error) {
		if roleKey == 0 {
			all, err := s.repo.ListAll(ctx)
			return enabledMenus(all), err
		}
		byRole, err := s.repo.ListByRoleID(ctx, roleKey)
		return enabledMenus(byRole), err
	})
	if err != nil {
		return nil, err
	}
	return buildMenuTree(menus)
}
