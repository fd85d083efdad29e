package repositories

import (
	"context"
	"errors"
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
	roleTable            = "roles"
	roleDepartmentsTable = "role_departments"
)

const roleColumns = "id, name, code, data_scope, remark, sort_order, enabled, is_super_admin, created_at, updated_at"

var roleListSpec = listSpec{
	searchColumns: []string{"name", "code"},
	filterFields: map[string]filterField{
		"enabled":    {column: "enabled", kind: filterBool},
		"data_scope": {column: "data_scope", kind: filterInt},
		"code":       {column: "code", kind: filterText},
	},
	sortFields:   map[string]string{"id": "id", "name": "name", "sort_order": "sort_order", "created_at": "created_at"},
	defaultOrder: []string{"sort_order ASC", "id ASC"},
}

type RoleRepositoryInterface interface {
	GetRoles(ctx context.Context, filter types.Filter) ([]entities.Role, uint64, error)
	ListEnabled(ctx context.Context) ([]entities.Role, error)
	FindByID(ctx context.Context, id uint64) (*entities.Role, error)
	CreateRole(ctx context.Context, role entities.Role) (*entities.Role, error)
	UpdateRole(ctx context.Context, id uint64, dto dto.UpdateRoleDTO) (*entities.Role, error)
	// DeleteRoleInTx удаляет роль вместе со всеми её связями.
	DeleteRoleInTx(ctx context.Context, tx pgx.Tx, id uint64) error

	ReplacePermissionsInTx(ctx context.Context, tx pgx.Tx, roleID uint64, permissionIDs []uint64) error
	ReplaceMenusInTx(ctx context.Context, tx pgx.Tx, roleID uint64, menuIDs []uint64) error
	ReplaceDepartmentsInTx(ctx context.Context, tx pgx.Tx, roleID uint64, departmentIDs []uint64) error

	PermissionIDs(ctx context.Context, roleID uint64) ([]uint64, error)
	MenuIDs(ctx context.Context, roleID uint64) ([]uint64, error)
	DepartmentIDs(ctx context.Context, roleID uint64) ([]uint64, error)

	CountUsers(ctx context.Context, roleID uint64) (uint64, error)
	UserIDs(ctx context.Context, roleID uint64) ([]uint64, error)
}

type RoleRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRoleRepository(storage *pgxpool.Pool, logger *zap.Logger) RoleRepositoryInterface {
	return &RoleRepository{storage: storage, logger: logger}
}

func scanRole(row pgx.Row) (*entities.Role, error) {
	var role entities.Role
	err := row.Scan(&role.ID, &role.Name, &role.Code, &role.DataScope, &role.Remark, &role.SortOrder,
		&role.Enabled, &role.IsSuperAdmin, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &role, nil
}

func (r *RoleRepository) queryRoles(ctx context.Context, builder sq.SelectBuilder) ([]entities.Role, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка ролей: %w", err)
	}
	defer rows.Close()

	roles := make([]entities.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки роли: %w", err)
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

func (r *RoleRepository) GetRoles(ctx context.Context, filter types.Filter) ([]entities.Role, uint64, error) {
	total, err := countRows(ctx, r.storage, applyListFilter(psql.Select("COUNT(*)").From(roleTable), filter, roleListSpec))
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета ролей: %w", err)
	}
	if total == 0 {
		return []entities.Role{}, 0, nil
	}

	builder := applyListFilter(psql.Select(roleColumns).From(roleTable), filter, roleListSpec)
	builder = applyPagination(applyListOrder(builder, filter, roleListSpec), filter)
	roles, err := r.queryRoles(ctx, builder)
	return roles, total, err
}

// ListEnabled - короткий список для выпадающих списков.
func (r *RoleRepository) ListEnabled(ctx context.Context) ([]entities.Role, error) {
	return r.queryRoles(ctx, psql.Select(roleColumns).From(roleTable).Where(sq.Eq{"enabled": true}).OrderBy("sort_order", "id"))
}

func (r *RoleRepository) FindByID(ctx context.Context, id uint64) (*entities.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`
	role, err := scanRole(r.storage.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("ошибка поиска роли: %w", err)
	}
	return role, err
}

func (r *RoleRepository) CreateRole(ctx context.Context, role entities.Role) (*entities.Role, error) {
	query := `INSERT INTO roles (name, code, data_scope, remark, sort_order, enabled, is_super_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING ` + roleColumns
	created, err := scanRole(r.storage.QueryRow(ctx, query,
		role.Name, role.Code, role.DataScope, role.Remark, role.SortOrder, role.Enabled, role.IsSuperAdmin))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (r *RoleRepository) UpdateRole(ctx context.Context, id uint64, dto dto.UpdateRoleDTO) (*entities.Role, error) {
	updateBuilder := psql.Update(roleTable).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	if dto.Name != nil {
		updateBuilder = updateBuilder.Set("name", *dto.Name)
	}
	if dto.Code != nil {
		updateBuilder = updateBuilder.Set("code", *dto.Code)
	}
	if dto.DataScope != nil {
		updateBuilder = updateBuilder.Set("data_scope", *dto.DataScope)
	}
	if dto.Remark != nil {
		updateBuilder = updateBuilder.Set("remark", *dto.Remark)
	}
	if dto.SortOrder != nil {
		updateBuilder = updateBuilder.Set("sort_order", *dto.SortOrder)
	}
	if dto.Enabled != nil {
		updateBuilder = updateBuilder.Set("enabled", *dto.Enabled)
	}

	query, args, err := updateBuilder.Suffix("RETURNING " + roleColumns).ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := scanRole(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (r *RoleRepository) DeleteRoleInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	for _, table := range []string{rolePermissionsTable, roleMenusTable, roleDepartmentsTable} {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE role_id = $1", table), id); err != nil {
			return fmt.Errorf("ошибка удаления связей роли из %s: %w", table, err)
		}
	}
	result, err := tx.Exec(ctx, "DELETE FROM roles WHERE id = $1", id)
	if err != nil {
		return mapWriteError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *RoleRepository) ReplacePermissionsInTx(ctx context.Context, tx pgx.Tx, roleID uint64, permissionIDs []uint64) error {
	return replaceLinks(ctx, tx, rolePermissionsTable, "role_id", "permission_id", roleID, permissionIDs)
}

func (r *RoleRepository) ReplaceMenusInTx(ctx context.Context, tx pgx.Tx, roleID uint64, menuIDs []uint64) error {
	return replaceLinks(ctx, tx, roleMenusTable, "role_id", "menu_id", roleID, menuIDs)
}

func (r *RoleRepository) ReplaceDepartmentsInTx(ctx context.Context, tx pgx.Tx, roleID uint64, departmentIDs []uint64) error {
	return replaceLinks(ctx, tx, roleDepartmentsTable, "role_id", "department_id", roleID, departmentIDs)
}

func (r *RoleRepository) PermissionIDs(ctx context.Context, roleID uint64) ([]uint64, error) {
	return collectIDs(ctx, r.storage, psql.Select("permission_id").From(rolePermissionsTable).
		Where(sq.Eq{"role_id": roleID}).OrderBy("permission_id"))
}

func (r *RoleRepository) MenuIDs(ctx context.Context, roleID uint64) ([]uint64, error) {
	return collectIDs(ctx, r.storage, psql.Select("menu_id").From(roleMenusTable).
		Where(sq.Eq{"role_id": roleID}).OrderBy("menu_id"))
}

func (r *RoleRepository) DepartmentIDs(ctx context.Context, roleID uint64) ([]uint64, error) {
	return collectIDs(ctx, r.storage, psql.Select("department_id").From(roleDepartmentsTable).
		Where(sq.Eq{"role_id": roleID}).OrderBy("department_id"))
}

func (r *RoleRepository) CountUsers(ctx context.Context, roleID uint64) (uint64, error) {
	return countWhere(ctx, r.storage, userTable, sq.Eq{"role_id": roleID})
}

func (r *RoleRepository) UserIDs(ctx context.Context, roleID uint64) ([]uint64, error) {
	return collectIDs(ctx, r.storage, psql.Select("id").From(userTable).Where(sq.Eq{"role_id": roleID}).OrderBy("id"))
}
