package seeders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"admin-backoffice/pkg/utils"
)

func seedSuperAdmin(ctx context.Context, db *pgxpool.Pool, admin AdminAccount, logger *zap.Logger) error {
	logger.Info("  - Создание суперадминистратора", zap.String("username", admin.Username))

	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", admin.Username).Scan(&exists); err != nil {
		return err
	}
	if exists {
		logger.Info("    - Пользователь уже существует, пропускаем")
		return nil
	}
	if admin.Password == "" {
		return fmt.Errorf("не задан пароль администратора")
	}

	var roleID uint64
	if err := db.QueryRow(ctx, "SELECT id FROM roles WHERE is_super_admin LIMIT 1").Scan(&roleID); err != nil {
		return fmt.Errorf("не найдена роль суперадминистратора: %w", err)
	}

	var departmentID uint64
	err := db.QueryRow(ctx, "SELECT id FROM departments WHERE parent_id = 0 ORDER BY id LIMIT 1").Scan(&departmentID)
	if err != nil {
		if err := db.QueryRow(ctx, "INSERT INTO departments (name, code) VALUES ('Головной офис', 'HQ') RETURNING id").Scan(&departmentID); err != nil {
			return err
		}
	}

	hashedPassword, err := utils.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO users (username, password, nickname, role_id, department_id)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = db.Exec(ctx, query, admin.Username, hashedPassword, "Суперадминистратор", roleID, departmentID)
	return err
}
