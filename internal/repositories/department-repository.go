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

const departmentTable = "departments"

const departmentColumns = "id, parent_id, name, code, leader, phone, email, sort_order, enabled, created_at, updated_at"

var departmentListSpec = listSpec{
	searchColumns: []string{"name", "code"},
	filterFields: map[string]filterField{
		"enabled":   {column: "enabled", kind: filterBool},
		"parent_id": {column: "parent_id", kind: filterInt},
		"name":      {column: "name", kind: filterText},
	},
	sortFields:   map[string]string{"id": "id", "name": "name", "sort_order": "sort_order", "created_at": "created_at"},
	defaultOrder: []string{"sort_order ASC", "id ASC"},
}

type DepartmentRepositoryInterface interface {
	ListAll(ctx context.Context) ([]entities.Department, error)
	GetDepartments(ctx context.Context, filter types.Filter) ([]entities.Department, uint64, error)
	FindDepartment(ctx context.Context, id uint64) (*entities.Department, error)
	CreateDepartment(ctx context.Context, department entities.Department) (*entities.Department, error)
	UpdateDepartment(ctx context.Context, id uint64, dto dto.UpdateDepartmentDTO) (*entities.Department, error)
	DeleteDepartment(ctx context.Context, id uint64) error
	CountChildren(ctx context.Context, id uint64) (uint64, error)
	CountUsers(ctx context.Context, id uint64) (uint64, error)
	CountRoleLinks(ctx context.Context, id uint64) (uint64, error)
	UserIDs(ctx context.Context, id uint64) ([]uint64, error)
}

type DepartmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDepartmentRepository(storage *pgxpool.Pool, logger *zap.Logger) DepartmentRepositoryInterface {
	return &DepartmentRepository{storage: storage, logger: logger}
}

func scanDepartment(row pgx.Row) (*entities.Department, error) {
	var d entities.Department
	err := row.Scan(&d.ID, &d.ParentID, &d.Name, &d.Code, &d.Leader, &d.Phone, &d.Email,
		&d.SortOrder, &d.Enabled, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &d, nil
}

func (r *DepartmentRepository) queryDepartments(ctx context.Context, builder sq.SelectBuilder) ([]entities.Department, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения департаментов: %w", err)
	}
	defer rows.Close()

	departments := make([]entities.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования департамента: %w", err)
		}
		departments = append(departments, *d)
	}
	return departments, rows.Err()
}

// ListAll возвращает все департаменты для построения дерева.
func (r *DepartmentRepository) ListAll(ctx context.Context) ([]entities.Department, error) {
	return r.queryDepartments(ctx, psql.Select(departmentColumns).From(departmentTable).OrderBy("sort_order", "id"))
}

func (r *DepartmentRepository) GetDepartments(ctx context.Context, filter types.Filter) ([]entities.Department, uint64, error) {
	countBuilder := applyListFilter(psql.Select("COUNT(*)").From(departmentTable), filter, departmentListSpec)
	total, err := countRows(ctx, r.storage, countBuilder)
	if err != nil || total == 0 {
		return []entities.Department{}, total, err
	}

	builder := applyListFilter(psql.Select(departmentColumns).From(departmentTable), filter, departmentListSpec)
	builder = applyPagination(applyListOrder(builder, filter, departmentListSpec), filter)
	departments, err := r.queryDepartments(ctx, builder)
	return departments, total, err
}

func (r *DepartmentRepository) FindDepartment(ctx context.Context, id uint64) (*entities.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE id = $1`
	return scanDepartment(r.storage.QueryRow(ctx, query, id))
}

func (r *DepartmentRepository) CreateDepartment(ctx context.Context, d entities.Department) (*entities.Department, error) {
	query, args, err := psql.Insert(departmentTable).
		Columns("parent_id", "name", "code", "leader", "phone", "email", "sort_order", "enabled").
		Values(d.ParentID, d.Name, d.Code, d.Leader, d.Phone, d.Email, d.SortOrder, d.Enabled).
		Suffix("RETURNING " + departmentColumns).
		ToSql()
	if err != nil {
		return nil, err
	}
	created, err := scanDepartment(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (r *DepartmentRepository) UpdateDepartment(ctx context.Context, id uint64, dto dto.UpdateDepartmentDTO) (*entities.Department, error) {
	updateBuilder := psql.Update(departmentTable).
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
	if dto.Leader.Valid {
		updateBuilder = updateBuilder.Set("leader", dto.Leader)
	}
	if dto.Phone.Valid {
		updateBuilder = updateBuilder.Set("phone", dto.Phone)
	}
	if dto.Email.Valid {
		updateBuilder = updateBuilder.Set("email", dto.Email)
	}
	if dto.SortOrder != nil {
		updateBuilder = updateBuilder.Set("sort_order", *dto.SortOrder)
	}
	if dto.Enabled != nil {
		updateBuilder = updateBuilder.Set("enabled", *dto.Enabled)
	}

	query, args, err := updateBuilder.Suffix("RETURNING " + departmentColumns).ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := scanDepartment(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (r *DepartmentRepository) DeleteDepartment(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DepartmentRepository) CountChildren(ctx context.Context, id uint64) (uint64, error) {
	return countWhere(ctx, r.storage, departmentTable, sq.Eq{"parent_id": id})
}

func (r *DepartmentRepository) CountUsers(ctx context.Context, id uint64) (uint64, error) {
	return countWhere(ctx, r.storage, userTable, sq.Eq{"department_id": id})
}

func (r *DepartmentRepository) CountRoleLinks(ctx context.Context, id uint64) (uint64, error) {
	return countWhere(ctx, r.storage, roleDepartmentsTable, sq.Eq{"department_id": id})
}

func (r *DepartmentRepository) UserIDs(ctx context.Context, id uint64) ([]uint64, error) {
	return collectIDs(ctx, r.storage, psql.Select("id").From(userTable).Where(sq.Eq{"department_id": id}).OrderBy("id"))
}
