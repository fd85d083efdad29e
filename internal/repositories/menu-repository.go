package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/types"
)

const (
	menuTable      = "menus"
	roleMenusTable = "role_menus"
)

const menuColumns = "m.id, m.parent_id, m.name, m.path, m.component, m.icon, m.type, m.permission, m.sort_order, m.enabled, m.created_at, m.updated_at"

var menuListSpec = listSpec{
	searchColumns: []string{"m.name", "m.path", "m.permission"},
	filterFields: map[string]filterField{
		"enabled":   {column: "m.enabled", kind: filterBool},
		"type":      {column: "m.type", kind: filterInt},
		"parent_id": {column: "m.parent_id", kind: filterInt},
		"name":      {column: "m.name", kind: filterText},
	},
	sortFields:   map[string]string{"id": "m.id", "name": "m.name", "sort_order": "m.sort_order"},
	defaultOrder: []string{"m.sort_order ASC", "m.id ASC"},
}

type MenuRepositoryInterface interface {
	ListAll(ctx context.Context) ([]entities.Menu, error)
	ListByRoleID(ctx context.Context, roleID uint64) ([]entities.Menu, error)
	GetMenus(ctx context.Context, filter types.Filter) ([]entities.Menu, uint64, error)
	FindMenu(ctx context.Context, id uint64) (*entities.Menu, error)
	CreateMenu(ctx context.Context, menu entities.Menu) (*entities.Menu, error)
	UpdateMenu(ctx context.Context, id uint64, dto dto.UpdateMenuDTO) (*entities.Menu, error)
	DeleteMenu(ctx context.Context, id uint64) error
	CountChildren(ctx context.Context, id uint64) (uint64, error)
	CountRoleLinks(ctx context.Context, id uint64) (uint64, error)
}

type MenuRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewMenuRepository(storage *pgxpool.Pool, logger *zap.Logger) MenuRepositoryInterface {
	return &MenuRepository{storage: storage, logger: logger}
}

func scanMenu(row pgx.Row) (*entities.Menu, error) {
	var m entities.Menu
	err := row.Scan(&m.ID, &m.ParentID, &m.Name, &m.Path, &m.Component, &m.Icon, &m.Type,
		&m.Permission, &m.SortOrder, &m.Enabled, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &m, nil
}

func (r *MenuRepository) queryMenus(ctx context.Context, builder sq.SelectBuilder) ([]entities.Menu, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения меню: %w", err)
	}
	defer rows.Close()

	menus := make([]entities.Menu, 0)
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования меню: %w", err)
		}
		menus = append(menus, *m)
	}
	return menus, rows.Err()
}

func (r *MenuRepository) ListAll(ctx context.Context) ([]entities.Menu, error) {
	return r.queryMenus(ctx, psql.Select(menuColumns).From(menuTable+" m").OrderBy("m.sort_order", "m.id"))
}

// ListByRoleID возвращает меню, привязанные к роли, включая отключённые.
func (r *MenuRepository) ListByRoleID(ctx context.Context, roleID uint64) ([]entities.Menu, error) {
	builder := psql.Select(menuColumns).
		From(menuTable+" m").
		Join(roleMenusTable+" rm ON rm.menu_id = m.id").
		Where(sq.Eq{"rm.role_id": roleID}).
		OrderBy("m.sort_order", "m.id")
	return r.queryMenus(ctx, builder)
}

func (r *MenuRepository) GetMenus(ctx context.Context, filter types.Filter) ([]entities.Menu, uint64, error) {
	countBuilder := applyListFilter(psql.Select("COUNT(*)").From(menuTable+" m"), filter, menuListSpec)
	total, err := countRows(ctx, r.storage, countBuilder)
	if err != nil || total == 0 {
		return []entities.Menu{}, total, err
	}

	builder := applyListFilter(psql.Select(menuColumns).From(menuTable+" m"), filter, menuListSpec)
	builder = applyPagination(applyListOrder(builder, filter, menuListSpec), filter)
	menus, err := r.queryMenus(ctx, builder)
	return menus, total, err
}

func (r *MenuRepository) FindMenu(ctx context.Context, id uint64) (*entities.Menu, error) {
	query, args, err := psql.Select(menuColumns).From(menuTable + " m").Where(sq.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanMenu(r.storage.QueryRow(ctx, query, args...))
}

func (r *MenuRepository) CreateMenu(ctx context.Context, m entities.Menu) (*entities.Menu, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO menus (parent_id, name, path, component, icon, type, permission, sort_order, enabled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		m.ParentID, m.Name, m.Path, m.Component, m.Icon, m.Type, m.Permission, m.SortOrder, m.Enabled,
	).Scan(&id)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return r.FindMenu(ctx, id)
}

func (r *MenuRepository) UpdateMenu(ctx context.Context, id uint64, dto dto.UpdateMenuDTO) (*entities.Menu, error) {
	updateBuilder := psql.Update(menuTable).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	if dto.ParentID != nil {
		updateBuilder = updateBuilder.Set("parent_id", *dto.ParentID)
	}
	if dto.Name != nil {
		updateBuilder = updateBuilder.Set("name", *dto.Name)
	}
	if dto.Path != nil {
		updateBuilder = updateBuilder.Set("path", *dto.Path)
	}
	if dto.Component != nil {
		updateBuilder = updateBuilder.Set("component", *dto.Component)
	}
	if dto.Icon != nil {
		updateBuilder = updateBuilder.Set("icon", *dto.Icon)
	}
	if dto.Type != nil {
		updateBuilder = updateBuilder.Set("type", *dto.Type)
	}
	if dto.Permission != nil {
		updateBuilder = updateBuilder.Set("permission", *dto.Permission)
	}
	if dto.SortOrder != nil {
		updateBuilder = updateBuilder.Set("sort_order", *dto.SortOrder)
	}
	if dto.Enabled != nil {
		updateBuilder = updateBuilder.Set("enabled", *dto.Enabled)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return nil, err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return nil, mapWriteError(err)
	}
	if result.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.FindMenu(ctx, id)
}

func (r *MenuRepository) DeleteMenu(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MenuRepository) CountChildren(ctx context.Context, id uint64) (uint64, error) {
	return countWhere(ctx, r.storage, menuTable, sq.Eq{"parent_id": id})
}

func (r *MenuRepository) CountRoleLinks(ctx context.Context, id uint64) (uint64, error) {
	return countWhere(ctx, r.storage, roleMenusTable, sq.Eq{"menu_id": id})
}
