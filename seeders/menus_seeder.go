package seeders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func seedMenus(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("  - Наполнение таблицы 'menus'")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created := 0
	var insert func(parentID uint64, nodes []menuSeed) error
	insert = func(parentID uint64, nodes []menuSeed) error {
		for i, m := range nodes {
			id, isNew, err := ensureMenu(ctx, tx, parentID, i, m)
			if err != nil {
				return err
			}
			if isNew {
				created++
			}
			if err := insert(id, m.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(0, menusData); err != nil {
		return err
	}

	logger.Info("    - Меню синхронизированы", zap.Int("created", created))
	return tx.Commit(ctx)
}

// ensureMenu ищет пункт по родителю и пути. У меню нет уникального ключа, поэтому без upsert.
func ensureMenu(ctx context.Context, tx pgx.Tx, parentID uint64, sortOrder int, m menuSeed) (uint64, bool, error) {
	var id uint64
	err := tx.QueryRow(ctx, "SELECT id FROM menus WHERE parent_id = $1 AND path = $2 LIMIT 1", parentID, m.Path).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, err
	}

	const query = `
		INSERT INTO menus (parent_id, name, path, component, icon, type, permission, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err = tx.QueryRow(ctx, query, parentID, m.Name, m.Path, m.Component, m.Icon, m.Type, m.Permission, sortOrder).Scan(&id)
	return id, true, err
}
