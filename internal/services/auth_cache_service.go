package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"admin-backoffice/internal/entities"
	"admin-backoffice/internal/repositories"
	"admin-backoffice/pkg/config"
	"admin-backoffice/pkg/metrics"
)

const (
	familyPerm     = "perm"
	familyMenuTree = "menuTree"
	familyUserInfo = "userInfo"

	verPerm   = "ver:perm"
	verMenu   = "ver:menu"
	verGlobal = "ver:global"

	// allRolesKey - полный список меню, не привязанный к роли.
	allRolesKey = "*"
)

// AuthCacheServiceInterface - кеш производных данных авторизации.
// Каждое значение хранится вместе со штампом версий, прочитанных до обращения к БД.
// Штамп, не совпадающий с текущими версиями, считается промахом.
type AuthCacheServiceInterface interface {
	Permissions(ctx context.Context, userID uint64, load func(context.Context) ([]string, error)) ([]string, error)
	UserInfo(ctx context.Context, userID uint64, load func(context.Context) (*entities.UserInfo, error)) (*entities.UserInfo, error)
	// RoleMenus кеширует плоский список меню роли; roleID == 0 означает все меню.
	RoleMenus(ctx context.Context, roleID uint64, load func(context.Context) ([]entities.Menu, error)) ([]entities.Menu, error)

	InvalidateRolePermissions(ctx context.Context, roleID uint64)
	InvalidateRoleMenus(ctx context.Context, roleID uint64)
	InvalidateRole(ctx context.Context, roleID uint64)
	InvalidateUser(ctx context.Context, userID uint64)
	InvalidateUserInfo(ctx context.Context, userIDs ...uint64)
	InvalidatePermissionNodes(ctx context.Context)
	InvalidateMenuNodes(ctx context.Context)
	RefreshAll(ctx context.Context) error

	Close() error
}

type roleUserLister interface {
	UserIDs(ctx context.Context, roleID uint64) ([]uint64, error)
}

type cacheEnvelope struct {
	Stamp string          `json:"v"`
	Data  json.RawMessage `json:"d"`
}

type AuthCacheService struct {
	cache   repositories.CacheRepositoryInterface
	roles   roleUserLister
	cfg     config.CacheConfig
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewAuthCacheService(
	cache repositories.CacheRepositoryInterface,
	roles roleUserLister,
	cfg config.CacheConfig,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *AuthCacheService {
	return &AuthCacheService{
		cache:   cache,
		roles:   roles,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.Named("auth_cache"),
	}
}

func (s *AuthCacheService) key(parts ...string) string {
	return s.cfg.Prefix + strings.Join(parts, ":")
}

func userVersionKey(userID uint64) string { return "ver:user:" + strconv.FormatUint(userID, 10) }
func roleVersionKey(roleID uint64) string { return "ver:role:" + strconv.FormatUint(roleID, 10) }

func roleMenusID(roleID uint64) string {
	if roleID == 0 {
		return allRolesKey
	}
	return strconv.FormatUint(roleID, 10)
}

// stamp читает текущие значения счётчиков. Отсутствующий счётчик равен нулю.
func (s *AuthCacheService) stamp(ctx context.Context, versionKeys ...string) (string, error) {
	parts := make([]string, len(versionKeys))
	for i, vk := range versionKeys {
		raw, err := s.cache.Get(ctx, s.key(vk))
		switch {
		case errors.Is(err, repositories.ErrCacheMiss):
			parts[i] = "0"
		case err != nil:
			return "", err
		default:
			parts[i] = raw
		}
	}
	return strings.Join(parts, "."), nil
}

func (s *AuthCacheService) cacheError(op string, key string, err error) {
	s.metrics.CacheErrorsTotal.WithLabelValues(op).Inc()
	s.logger.Warn("AuthCacheService: ошибка кеша", zap.String("op", op), zap.String("key", key), zap.Error(err))
}

// sharedLoadTimeout ограничивает загрузку из БД, которую ждут несколько запросов.
const sharedLoadTimeout = 10 * time.Second

// readThrough отдаёт значение из кеша, если штамп актуален, иначе загружает его.
// Параллельные загрузки одного ключа с одним штампом схлопываются.
func readThrough[T any](
	ctx context.Context,
	s *AuthCacheService,
	family, id string,
	ttl time.Duration,
	versionKeys []string,
	load func(context.Context) (T, error),
) (T, error) {
	key := s.key(family, id)

	current, err := s.stamp(ctx, versionKeys...)
	if err != nil {
		// без версий закешированному значению верить нельзя
		s.cacheError("stamp", key, err)
		s.metrics.CacheMissesTotal.WithLabelValues(family, "unavailable").Inc()
		return load(ctx)
	}

	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var env cacheEnvelope
		var value T
		if jsonErr := json.Unmarshal([]byte(raw), &env); jsonErr != nil {
			s.cacheError("decode", key, jsonErr)
			s.metrics.CacheMissesTotal.WithLabelValues(family, "corrupt").Inc()
		} else if env.Stamp != current {
			s.logger.Debug("AuthCacheService: устаревшая версия", zap.String("key", key),
				zap.String("cached", env.Stamp), zap.String("current", current))
			s.metrics.CacheMissesTotal.WithLabelValues(family, "stale").Inc()
		} else if jsonErr := json.Unmarshal(env.Data, &value); jsonErr != nil {
			s.cacheError("decode", key, jsonErr)
			s.metrics.CacheMissesTotal.WithLabelValues(family, "corrupt").Inc()
		} else {
			s.metrics.CacheHitsTotal.WithLabelValues(family).Inc()
			return value, nil
		}
	case errors.Is(err, repositories.ErrCacheMiss):
		s.metrics.CacheMissesTotal.WithLabelValues(family, "absent").Inc()
	default:
		s.cacheError("get", key, err)
		s.metrics.CacheMissesTotal.WithLabelValues(family, "error").Inc()
	}

	// Общая загрузка не зависит от отмены запроса, который её начал: её ждут и другие запросы.
	ch := s.group.DoChan(key+"@"+current, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		s.store(loadCtx, key, current, value, ttl)
		return value, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (s *AuthCacheService) store(ctx context.Context, key, stamp string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.cacheError("encode", key, err)
		return
	}
	payload, err := json.Marshal(cacheEnvelope{Stamp: stamp, Data: data})
	if err != nil {
		s.cacheError("encode", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), ttl); err != nil {
		s.cacheError("set", key, err)
	}
}

func (s *AuthCacheService) Permissions(ctx context.Context, userID uint64, load func(context.Context) ([]string, error)) ([]string, error) {
	return readThrough(ctx, s, familyPerm, strconv.FormatUint(userID, 10), s.cfg.PermissionTTL,
		[]string{userVersionKey(userID), verPerm, verGlobal}, load)
}

func (s *AuthCacheService) UserInfo(ctx context.Context, userID uint64, load func(context.Context) (*entities.UserInfo, error)) (*entities.UserInfo, error) {
	return readThrough(ctx, s, familyUserInfo, strconv.FormatUint(userID, 10), s.cfg.UserInfoTTL,
		[]string{userVersionKey(userID), verGlobal}, load)
}

func (s *AuthCacheService) RoleMenus(ctx context.Context, roleID uint64, load func(context.Context) ([]entities.Menu, error)) ([]entities.Menu, error) {
	versions := []string{verMenu, verGlobal}
	if roleID != 0 {
		versions = append(versions, roleVersionKey(roleID))
	}
	return readThrough(ctx, s, familyMenuTree, roleMenusID(roleID), s.cfg.MenuTreeTTL, versions, load)
}

// bump увеличивает счётчики. Ошибка оставляет старое значение в кеше до истечения TTL,
// поэтому ключи всё равно удаляются.
func (s *AuthCacheService) bump(ctx context.Context, versionKeys ...string) {
	for _, vk := range versionKeys {
		if _, err := s.cache.Incr(ctx, s.key(vk)); err != nil {
			s.cacheError("incr", s.key(vk), err)
		}
	}
}

func (s *AuthCacheService) drop(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.cacheError("del", strings.Join(keys, ","), err)
	}
}

func (s *AuthCacheService) roleUsers(ctx context.Context, roleID uint64) []uint64 {
	userIDs, err := s.roles.UserIDs(ctx, roleID)
	if err != nil {
		// пользователей роли не найти, поэтому устаревают все записи
		s.logger.Error("AuthCacheService: не удалось получить пользователей роли", zap.Uint64("roleID", roleID), zap.Error(err))
		s.bump(ctx, verGlobal)
		return nil
	}
	return userIDs
}

func (s *AuthCacheService) InvalidateRolePermissions(ctx context.Context, roleID uint64) {
	s.metrics.CacheInvalidationsTotal.WithLabelValues("role_permissions").Inc()
	s.bump(ctx, roleVersionKey(roleID))

	userIDs := s.roleUsers(ctx, roleID)
	keys := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		s.bump(ctx, userVersionKey(userID))
		keys = append(keys, s.key(familyPerm, strconv.FormatUint(userID, 10)))
	}
	s.drop(ctx, keys...)
	s.logger.Info("AuthCacheService: кеш привилегий роли инвалидирован",
		zap.Uint64("roleID", roleID), zap.Int("users", len(userIDs)))
}

func (s *AuthCacheService) InvalidateRoleMenus(ctx context.Context, roleID uint64) {
	s.metrics.CacheInvalidationsTotal.WithLabelValues("role_menus").Inc()
	s.bump(ctx, roleVersionKey(roleID))
	s.drop(ctx, s.key(familyMenuTree, roleMenusID(roleID)), s.key(familyMenuTree, allRolesKey))
	s.logger.Info("AuthCacheService: кеш меню роли инвалидирован", zap.Uint64("roleID", roleID))
}

// InvalidateRole - изменились атрибуты роли (включённость, флаг суперадмина, название).
// Затрагивает привилегии, профили и меню всех пользователей роли.
func (s *AuthCacheService) InvalidateRole(ctx context.Context, roleID uint64) {
	s.metrics.CacheInvalidationsTotal.WithLabelValues("role").Inc()
	s.bump(ctx, roleVersionKey(roleID))

	userIDs := s.roleUsers(ctx, roleID)
	keys := make([]string, 0, 2*len(userIDs)+2)
	for _, userID := range userIDs {
		s.bump(ctx, userVersionKey(userID))
		id := strconv.FormatUint(userID, 10)
		keys = append(keys, s.key(familyPerm, id), s.key(familyUserInfo, id))
	}
	keys = append(keys, s.key(familyMenuTree, roleMenusID(roleID)), s.key(familyMenuTree, allRolesKey))
	s.drop(ctx, keys...)
	s.logger.Info("AuthCacheService: кеш роли инвалидирован", zap.Uint64("roleID", roleID), zap.Int("users", len(userIDs)))
}

// InvalidateUser - смена роли, департамента, статуса или удаление пользователя.
func (s *AuthCacheService) InvalidateUser(ctx context.Context, userID uint64) {
	s.metrics.CacheInvalidationsTotal.WithLabelValues("user").Inc()
	s.bump(ctx, userVersionKey(userID))
	id := strconv.FormatUint(userID, 10)
	s.drop(ctx, s.key(familyPerm, id), s.key(familyUserInfo, id))
}

// InvalidateUserInfo - изменились только поля профиля.
func (s *AuthCacheService) InvalidateUserInfo(ctx context.Context, userIDs ...uint64) {
	if len(userIDs) == 0 {
		return
	}
	s.metrics.CacheInvalidationsTotal.WithLabelValues("user_info").Inc()
	keys := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		s.bump(ctx, userVersionKey(userID))
		keys = append(keys, s.key(familyUserInfo, strconv.FormatUint(userID, 10)))
	}
	s.drop(ctx, keys...)
}

func (s *AuthCacheService) InvalidatePermissionNodes(ctx context.Context) {
	s.metrics.CacheInvalidationsTotal.WithLabelValues("permission_nodes").Inc()
	s.bump(ctx, verPerm)
	if _, err := s.cache.DelByPrefix(ctx, s.key(familyPerm)+":"); err != nil {
		s.cacheError("del_prefix", s.key(familyPerm), err)
	}
}

func (s *AuthCacheService) InvalidateMenuNodes(ctx context.Context) {
	s.metrics.CacheInvalidationsTotal.WithLabelValues("menu_nodes").Inc()
	s.bump(ctx, verMenu)
	if _, err := s.cache.DelByPrefix(ctx, s.key(familyMenuTree)+":"); err != nil {
		s.cacheError("del_prefix", s.key(familyMenuTree), err)
	}
}

// RefreshAll сбрасывает все семейства. Счётчики версий не удаляются: глобальная версия
// только растёт, иначе старые записи снова стали бы актуальными.
func (s *AuthCacheService) RefreshAll(ctx context.Context) error {
	s.metrics.CacheInvalidationsTotal.WithLabelValues("refresh_all").Inc()

	if _, err := s.cache.Incr(ctx, s.key(verGlobal)); err != nil {
		s.cacheError("incr", s.key(verGlobal), err)
		return fmt.Errorf("не удалось поднять глобальную версию кеша: %w", err)
	}

	var total int64
	var errs []error
	for _, family := range []string{familyPerm, familyMenuTree, familyUserInfo} {
		n, err := s.cache.DelByPrefix(ctx, s.key(family)+":")
		if err != nil {
			s.cacheError("del_prefix", s.key(family), err)
			errs = append(errs, err)
			continue
		}
		total += n
	}
	s.logger.Info("AuthCacheService: кеш авторизации полностью сброшен", zap.Int64("deleted", total))
	return errors.Join(errs...)
}

func (s *AuthCacheService) Close() error {
	s.logger.Info("AuthCacheService: закрытие кеша")
	return s.cache.Close()
}
