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
	permissionTable      = "permissions"
	rolePermissionsTable = "role_permissions"
)

const permissionColumns = "id, parent_id, name, code, type, sort_order, enabled, created_at, updated_at"

var permissionListSpec = listSpec{
	searchColumns: []string{"name", "code"},
	filterFields: map[string]filterField{
		"enabled":   {column: "enabled", kind: filterBool},
		"type":      {column: "type", kind: filterInt},
		"parent_id": {column: "parent_id", kind: filterInt},
		"code":      {column: "code", kind: filterText},
	},
	sortFields:   map[string]string{"id": "id", "name": "name", "code": "code", "sort_order": "sort_order"},
	defaultOrder: []string{"sort_order ASC", "id ASC"},
}

type PermissionRepositoryInterface interface {
	ListAll(ctx context.Context) ([]entities.Permission, error)
	GetPermissions(ctx context.Context, filter types.Filter) ([]entities.Permission, uint64, error)
	FindPermission(ctx context.Context, id uint64) (*entities.Permission, error)
	CreatePermission(ctx context.Context, permission entities.Permission) (*entities.Permission, error)
	UpdatePermission(ctx context.Context, id uint64, dto dto.UpdatePermissionDTO) (*entities.Permission, error)
	DeletePermission(ctx context.Context, id uint64) error
	CountChildren(ctx context.Context, id uint64) (uint64, error)
	CountRoleLinks(ctx context.Context, id uint64) (uint64, error)
	// ListEnabledCodes - коды всех включённых привилегий.
	ListEnabledCodes(ctx context.Context) ([]string, error)
	// ListEnabledCodesByRoleID - коды включённых привилегий, привязанных к роли.
	ListEnabledCodesByRoleID(ctx context.Context, roleID uint64) ([]string, error)
}

type PermissionRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewPermissionRepository(storage *pgxpool.Pool, logger *zap.Logger) PermissionRepositoryInterface {
	return &PermissionRepository{storage: storage, logger: logger}
}

func scanPermission(row pgx.Row) (*entities.Permission, error) {
	var p entities.Permission
	err := row.Scan(&p.ID, &p.ParentID, &p.Name, &p.Code, &p.Type, &p.SortOrder, &p.Enabled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (r *PermissionRepository) queryPermissions(ctx context.Context, builder sq.SelectBuilder) ([]entities.Permission, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения привилегий: %w", err)
	}
	defer rows.Close()

	permissions := make([]entities.Permission, 0)
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования привилегии: %w", err)
		}
		permissions = append(permissions, *p)
	}
	return permissions, rows.Err()
}

func (r *PermissionRepository) ListAll(ctx context.Context) ([]entities.Permission, error) {
	return r.queryPermissions(ctx, psql.Select(permissionColumns).From(permissionTable).OrderBy("sort_order", "id"))
}

func (r *PermissionRepository) GetPermissions(ctx context.Context, filter types.Filter) ([]entities.Permission, uint64, error) {
	countBuilder := applyListFilter(psql.Select("COUNT(*)").From(permissionTable), filter, permissionListSpec)
	total, err := countRows(ctx, r.storage, countBuilder)
	if err != nil || total == 0 {
		return []entities.Permission{}, total, err
	}

	builder := applyListFilter(psql.Select(permissionColumns).From(permissionTable), filter, permissionListSpec)
	builder = applyPagination(applyListOrder(builder, filter, permissionListSpec), filter)
	permissions, err := r.queryPermissions(ctx, builder)
	return permissions, total, err
}

func (r *PermissionRepository) FindPermission(ctx context.Context, id uint64) (*entities.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE id = $1`
	return scanPermission(r.storage.QueryRow(ctx, query, id))
}

func (r *PermissionRepository) CreatePermission(ctx context.Context, p entities.Permission) (*entities.Permission, error) {
	query := `INSERT INTO permissions (parent_id, name, code, type, sort_order, enabled)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + permissionColumns
	created, err := scanPermission(r.storage.QueryRow(ctx, query, p.ParentID, p.Name, p.Code, p.Type, p.SortOrder, p.Enabled))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (r *PermissionRepository) UpdatePermission(ctx context.Context, id uint64, dto dto.UpdatePermissionDTO) (*entities.Permission, error) {
	updateBuilder := psql.Update(permissionTable).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	if dto.ParentID != nil {
		updateBuilder = updateBuilder.Set("parent_id", *dto.ParentID)
	}
	if dto.Name != nil {
		updateBuilder = updateBuilder.Set("name", *dto.Name)
	}
	if dto.Code != nil {
		updateBuilder = updateBuilder.Set("code", *dto.Code)
	}
	if dto.Type != nil {
		updateBuilder = updateBuilder.Set("type", *dto.Type)
	}
	if dto.SortOrder != nil {
		updateBuilder = updateBuilder.Set("sort_order", *dto.SortOrder)
	}
	if dto.Enabled != nil {
		updateBuilder = updateBuilder.Set("enabled", *dto.Enabled)
	}

	query, args, err := updateBuilder.Suffix("RETURNING " + permissionColumns).ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := scanPermission(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (r *PermissionRepository) DeletePermission(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PermissionRepository) CountChildren(ctx context.Context, id uint64) (uint64, error) {
	return countWhere(ctx, r.storage, permissionTable, sq.Eq{"parent_id": id})
}

func (r *PermissionRepository) CountRoleLinks(ctx context.Context, id uint64) (uint64, error) {
	return countWhere(ctx, r.storage, rolePermissionsTable, sq.Eq{"permission_id": id})
}

func (r *PermissionRepository) ListEnabledCodes(ctx context.Context) ([]string, error) {
	builder := psql.Select("code").From(permissionTable).Where(sq.Eq{"enabled": true}).OrderBy("code")
	codes, err := collectStrings(ctx, r.storage, builder)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения кодов привилегий: %w", err)
	}
	return codes, nil
}

func (r *PermissionRepository) ListEnabledCodesByRoleID(ctx context.Context, roleID uint64) ([]string, error) {
	builder := psql.Select("DISTINCT p.code").
		From(permissionTable + " p").
		Join(rolePermissionsTable + " rp ON rp.permission_id = p.id").
		Where(sq.Eq{"rp.role_id": roleID, "p.enabled": true}).
		OrderBy("p.code")
	codes, err := collectStrings(ctx, r.storage, builder)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения кодов привилегий роли %d: %w", roleID, err)
	}
	return codes, nil
}
