package seeders

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func seedRoles(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("  - Наполнение таблицы 'roles'")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const roleQuery = `
		INSERT INTO roles (name, code, data_scope, is_super_admin, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET is_super_admin = EXCLUDED.is_super_admin
		RETURNING id`

	for i, r := range rolesData {
		var roleID uint64
		if err := tx.QueryRow(ctx, roleQuery, r.Name, r.Code, r.DataScope, r.IsSuperAdmin, i).Scan(&roleID); err != nil {
			return err
		}
		if len(r.Permissions) == 0 {
			continue
		}

		// только добавление: связи, выданные вручную, не удаляются
		if _, err := tx.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_id)
			SELECT $1, id FROM permissions WHERE code = ANY($2)
			ON CONFLICT DO NOTHING`, roleID, r.Permissions); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO role_menus (role_id, menu_id)
			SELECT $1, id FROM menus WHERE permission = ANY($2) OR (type = 1 AND parent_id = 0)
			ON CONFLICT DO NOTHING`, roleID, r.Permissions); err != nil {
			return err
		}
		logger.Info("    - Привязки роли обновлены", zap.String("role", r.Code))
	}
	return tx.Commit(ctx)
}
