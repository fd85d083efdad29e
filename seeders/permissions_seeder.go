package seeders

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func seedPermissions(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("  - Наполнение таблицы 'permissions'")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	count := 0
	var insert func(parentID uint64, nodes []permissionSeed) error
	insert = func(parentID uint64, nodes []permissionSeed) error {
		for i, p := range nodes {
			id, err := upsertPermission(ctx, tx, parentID, i, p)
			if err != nil {
				return err
			}
			count++
			if err := insert(id, p.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(0, permissionsData); err != nil {
		return err
	}

	logger.Info("    - Привилегии синхронизированы", zap.Int("count", count))
	return tx.Commit(ctx)
}

// upsertPermission не трогает enabled: отключённые вручную привилегии остаются отключёнными.
func upsertPermission(ctx context.Context, tx pgx.Tx, parentID uint64, sortOrder int, p permissionSeed) (uint64, error) {
	const query = `
		INSERT INTO permissions (parent_id, name, code, type, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, parent_id = EXCLUDED.parent_id
		RETURNING id`
	var id uint64
	err := tx.QueryRow(ctx, query, parentID, p.Name, p.Code, p.Type, sortOrder).Scan(&id)
	return id, err
}
