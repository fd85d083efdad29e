package seeders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AdminAccount - учётные данные первого суперадминистратора.
type AdminAccount struct {
	Username string
	Password string
}

// SeedCatalog наполняет дерево привилегий и меню. Повторный запуск ничего не дублирует.
func SeedCatalog(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("▶️  Наполнение привилегий и меню")
	if err := seedPermissions(ctx, db, logger); err != nil {
		return fmt.Errorf("привилегии: %w", err)
	}
	if err := seedMenus(ctx, db, logger); err != nil {
		return fmt.Errorf("меню: %w", err)
	}
	logger.Info("✅ Привилегии и меню готовы")
	return nil
}

// SeedRolesAndAdmin создаёт роли, их привязки и суперадминистратора.
func SeedRolesAndAdmin(ctx context.Context, db *pgxpool.Pool, admin AdminAccount, logger *zap.Logger) error {
	logger.Info("▶️  Настройка ролей и администратора")
	if err := seedRoles(ctx, db, logger); err != nil {
		return fmt.Errorf("роли: %w", err)
	}
	if err := seedSuperAdmin(ctx, db, admin, logger); err != nil {
		return fmt.Errorf("суперадминистратор: %w", err)
	}
	logger.Info("✅ Роли и администратор готовы")
	return nil
}
