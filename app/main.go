// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"admin-backoffice/internal/authz"
	"admin-backoffice/internal/repositories"
	"admin-backoffice/internal/routes"
	"admin-backoffice/internal/services"
	"admin-backoffice/pkg/config"
	"admin-backoffice/pkg/database/postgresql"
	apperrors "admin-backoffice/pkg/errors"
	applogger "admin-backoffice/pkg/logger"
	"admin-backoffice/pkg/metrics"
	"admin-backoffice/pkg/middleware"
	"admin-backoffice/pkg/service"
	"admin-backoffice/pkg/utils"
	"admin-backoffice/pkg/validation"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. База и миграции
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.Postgres.AutoMigrate {
		if err := postgresql.Migrate(ctx, dbConn, logger); err != nil {
			logger.Fatal("не удалось применить миграции", zap.Error(err))
		}
	}

	// 2. Кеш авторизации
	cacheRepo := newCacheRepository(ctx, cfg, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	// 3. Репозитории и сервисы
	txManager := repositories.NewTxManager(dbConn, logger)
	userRepo := repositories.NewUserRepository(dbConn, logger)
	roleRepo := repositories.NewRoleRepository(dbConn, logger)
	permissionRepo := repositories.NewPermissionRepository(dbConn, logger)
	menuRepo := repositories.NewMenuRepository(dbConn, logger)
	departmentRepo := repositories.NewDepartmentRepository(dbConn, logger)

	authCache := services.NewAuthCacheService(cacheRepo, roleRepo, cfg.Cache, appMetrics, logger)
	defer func() {
		if err := authCache.Close(); err != nil {
			logger.Warn("Ошибка закрытия кеша", zap.Error(err))
		}
	}()

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	profileService := services.NewProfileService(userRepo, authCache, logger)
	permissionService := services.NewPermissionService(permissionRepo, roleRepo, txManager, profileService, authCache, logger)
	svc := &routes.Services{
		Auth:       services.NewAuthService(userRepo, cacheRepo, profileService, jwtSvc, cfg.Auth, logger.Named("auth")),
		User:       services.NewUserService(userRepo, roleRepo, departmentRepo, authCache, logger),
		Role:       services.NewRoleService(roleRepo, txManager, authCache, logger),
		Permission: permissionService,
		Menu:       services.NewMenuService(menuRepo, roleRepo, txManager, profileService, authCache, logger),
		Department: services.NewDepartmentService(departmentRepo, authCache, logger),
		Profile:    profileService,
		Cache:      authCache,
	}

	routeMatcher, err := authz.LoadRouteRules(cfg.Authz.RouteRulesFile)
	if err != nil {
		logger.Fatal("не удалось загрузить таблицу маршрутов", zap.Error(err))
	}
	warnUnknownRouteCodes(ctx, routeMatcher, permissionRepo, logger)
	gatekeeper := authz.NewGatekeeper(routeMatcher, permissionService)
	dataScope := services.NewDataScopeService(departmentRepo, roleRepo, logger)
	authMW := middleware.NewAuthMiddleware(jwtSvc, profileService, gatekeeper, dataScope, appMetrics, logger.Named("auth"))

	// 4. HTTP
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(middleware.RequestID())
	e.Use(middleware.InjectLogger(logger))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(appMetrics.Middleware())

	e.GET("/metrics", metrics.Handler(registry))
	routes.InitRouter(e, svc, authMW, logger)

	// 5. Плановый сброс кеша
	scheduler := cron.New()
	if cfg.Cache.RefreshSchedule != "" {
		_, err := scheduler.AddFunc(cfg.Cache.RefreshSchedule, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := authCache.RefreshAll(jobCtx); err != nil {
				logger.Error("Плановый сброс кеша завершился с ошибкой", zap.Error(err))
				return
			}
			logger.Info("Плановый сброс кеша выполнен")
		})
		if err != nil {
			logger.Fatal("неверное расписание сброса кеша", zap.String("spec", cfg.Cache.RefreshSchedule), zap.Error(err))
		}
		scheduler.Start()
	}

	// 6. Запуск и плавная остановка
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки")

	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
}

func newCacheRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) repositories.CacheRepositoryInterface {
	switch cfg.Cache.Driver {
	case "memory":
		logger.Info("Кеш авторизации в памяти процесса", zap.Int("capacity", cfg.Cache.MemoryCapacity))
		return repositories.NewMemoryCacheRepository(cfg.Cache.MemoryCapacity, cfg.Cache.MenuTreeTTL)
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
		}
		return repositories.NewRedisCacheRepository(redisClient)
	}
	logger.Fatal("неизвестный драйвер кеша", zap.String("driver", cfg.Cache.Driver))
	return nil
}

// warnUnknownRouteCodes пишет в лог коды из таблицы маршрутов, которых нет среди включённых привилегий:
// такие маршруты доступны только суперадмину.
func warnUnknownRouteCodes(ctx context.Context, matcher *authz.RouteMatcher, repo repositories.PermissionRepositoryInterface, logger *zap.Logger) {
	known, err := repo.ListEnabledCodes(ctx)
	if err != nil {
		logger.Warn("не удалось сверить таблицу маршрутов с привилегиями", zap.Error(err))
		return
	}
	for _, code := range matcher.Codes() {
		if !slices.Contains(known, code) {
			logger.Warn("код из таблицы маршрутов не найден среди включённых привилегий", zap.String("code", code))
		}
	}
}
