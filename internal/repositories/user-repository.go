package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"admin-backoffice/internal/authz"
	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/types"
)

const userTable = "users"

const userColumns = "u.id, u.username, u.password, u.nickname, u.email, u.phone, u.role_id, u.department_id, u.data_scope, u.enabled, u.last_login_at, u.created_at, u.updated_at"

var userListSpec = listSpec{
	searchColumns: []string{"u.username", "u.nickname", "u.email", "u.phone"},
	filterFields: map[string]filterField{
		"enabled":       {column: "u.enabled", kind: filterBool},
		"role_id":       {column: "u.role_id", kind: filterInt},
		"department_id": {column: "u.department_id", kind: filterInt},
		"username":      {column: "u.username", kind: filterText},
	},
	sortFields:   map[string]string{"id": "u.id", "username": "u.username", "created_at": "u.created_at", "last_login_at": "u.last_login_at"},
	defaultOrder: []string{"u.id DESC"},
}

type UserRepositoryInterface interface {
	// GetUsers применяет фильтр видимости поверх фильтров запроса.
	GetUsers(ctx context.Context, filter types.Filter, scope authz.ScopeFilter) ([]entities.User, uint64, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindUserInfo(ctx context.Context, id uint64) (*entities.UserInfo, error)
	CreateUser(ctx context.Context, user entities.User) (*entities.User, error)
	// UpdateUser ожидает уже захешированный пароль в dto.Password.
	UpdateUser(ctx context.Context, id uint64, dto dto.UpdateUserDTO) (*entities.User, error)
	UpdateStatus(ctx context.Context, id uint64, enabled bool) error
	UpdateLastLogin(ctx context.Context, id uint64) error
	DeleteUser(ctx context.Context, id uint64) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Password, &user.Nickname, &user.Email, &user.Phone,
		&user.RoleID, &user.DepartmentID, &user.DataScope, &user.Enabled, &user.LastLoginAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (r *UserRepository) findOne(ctx context.Context, cond sq.Eq) (*entities.User, error) {
	query, args, err := psql.Select(userColumns).From(userTable + " u").Where(cond).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter, scope authz.ScopeFilter) ([]entities.User, uint64, error) {
	countBuilder := applyListFilter(psql.Select("COUNT(*)").From(userTable+" u"), filter, userListSpec)
	countBuilder = scope.Apply(countBuilder, "u.department_id", "u.id")
	total, err := countRows(ctx, r.storage, countBuilder)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета пользователей: %w", err)
	}
	if total == 0 {
		return []entities.User{}, 0, nil
	}

	builder := applyListFilter(psql.Select(userColumns).From(userTable+" u"), filter, userListSpec)
	builder = scope.Apply(builder, "u.department_id", "u.id")
	builder = applyPagination(applyListOrder(builder, filter, userListSpec), filter)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.logger.Debug("UserRepository: выборка пользователей", zap.String("scope", scope.Kind.String()), zap.String("query", query))

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"u.id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"u.username": username})
}

// FindUserInfo собирает снимок профиля вместе с ролью и департаментом.
func (r *UserRepository) FindUserInfo(ctx context.Context, id uint64) (*entities.UserInfo, error) {
	query := `
		SELECT u.id, u.username, u.nickname, u.email, u.phone,
		       u.role_id, r.name, r.enabled, r.is_super_admin,
		       COALESCE(u.department_id, 0), COALESCE(d.name, ''),
		       CASE WHEN u.data_scope = 0 THEN r.data_scope ELSE u.data_scope END,
		       u.enabled
		FROM users u
		JOIN roles r ON r.id = u.role_id
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE u.id = $1`

	var info entities.UserInfo
	err := r.storage.QueryRow(ctx, query, id).Scan(
		&info.ID, &info.Username, &info.Nickname, &info.Email, &info.Phone,
		&info.RoleID, &info.RoleName, &info.RoleEnabled, &info.IsSuperAdmin,
		&info.DepartmentID, &info.DepartmentName, &info.DataScope, &info.Enabled,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &info, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user entities.User) (*entities.User, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO users (username, password, nickname, email, phone, role_id, department_id, data_scope, enabled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		user.Username, user.Password, user.Nickname, user.Email, user.Phone,
		user.RoleID, user.DepartmentID, user.DataScope, user.Enabled,
	).Scan(&id)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return r.FindUser(ctx, id)
}

func (r *UserRepository) UpdateUser(ctx context.Context, id uint64, dto dto.UpdateUserDTO) (*entities.User, error) {
	updateBuilder := psql.Update(userTable).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	if dto.Password != nil {
		updateBuilder = updateBuilder.Set("password", *dto.Password)
	}
	if dto.Nickname != nil {
		updateBuilder = updateBuilder.Set("nickname", *dto.Nickname)
	}
	if dto.Email != nil {
		updateBuilder = updateBuilder.Set("email", *dto.Email)
	}
	if dto.Phone != nil {
		updateBuilder = updateBuilder.Set("phone", *dto.Phone)
	}
	if dto.RoleID != nil {
		updateBuilder = updateBuilder.Set("role_id", *dto.RoleID)
	}
	if dto.DepartmentID != nil {
		// 0 отвязывает пользователя от департамента
		if *dto.DepartmentID == 0 {
			updateBuilder = updateBuilder.Set("department_id", nil)
		} else {
			updateBuilder = updateBuilder.Set("department_id", *dto.DepartmentID)
		}
	}
	if dto.DataScope != nil {
		updateBuilder = updateBuilder.Set("data_scope", *dto.DataScope)
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
	return r.FindUser(ctx, id)
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uint64, enabled bool) error {
	result, err := r.storage.Exec(ctx, `UPDATE users SET enabled = $1, updated_at = NOW() WHERE id = $2`, enabled, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uint64) error {
	_, err := r.storage.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *UserRepository) DeleteUser(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
