package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"admin-backoffice/pkg/config"
	"admin-backoffice/pkg/database/postgresql"
	applogger "admin-backoffice/pkg/logger"
	"admin-backoffice/seeders"
)

func main() {
	runCatalog := flag.Bool("catalog", false, "Наполнить привилегии и меню")
	runRoles := flag.Bool("roles", false, "Создать роли и суперадминистратора")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -catalog -roles)")
	flag.Parse()

	if !*runCatalog && !*runRoles && !*runAll {
		flag.PrintDefaults()
		return
	}

	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, "")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	db, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	if err := postgresql.Migrate(ctx, db, logger); err != nil {
		logger.Fatal("не удалось применить миграции", zap.Error(err))
	}

	// роли ссылаются на привилегии и меню, поэтому каталог идёт первым
	if *runAll || *runCatalog {
		if err := seeders.SeedCatalog(ctx, db, logger); err != nil {
			logger.Fatal("❌ Ошибка наполнения каталога", zap.Error(err))
		}
	}
	if *runAll || *runRoles {
		admin := seeders.AdminAccount{
			Username: envOr("SEED_ADMIN_USERNAME", "admin"),
			Password: os.Getenv("SEED_ADMIN_PASSWORD"),
		}
		if err := seeders.SeedRolesAndAdmin(ctx, db, admin, logger); err != nil {
			logger.Fatal("❌ Ошибка настройки ролей", zap.Error(err))
		}
	}
	logger.Info("✅ Все указанные операции сидирования завершены")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
