package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"admin-backoffice/internal/authz"
	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
	"admin-backoffice/internal/services"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/metrics"
	"admin-backoffice/pkg/middleware"
	"admin-backoffice/pkg/service"
	"admin-backoffice/pkg/types"
	"admin-backoffice/pkg/utils"
	"admin-backoffice/pkg/validation"
)

// Фейки встраивают интерфейс: вызов нереализованного метода паникует и валит тест.

type fakeAuth struct {
	services.AuthServiceInterface
	logins []dto.LoginDTO
}

func (f *fakeAuth) Login(_ context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	f.logins = append(f.logins, payload)
	if payload.Password != "secret123" {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &dto.AuthResponseDTO{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}, nil
}

type fakeProfile struct {
	services.ProfileServiceInterface
	users map[uint64]entities.UserInfo
}

func (f *fakeProfile) UserInfo(_ context.Context, userID uint64) (*entities.UserInfo, error) {
	info, ok := f.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &info, nil
}

type fakePermissions struct {
	services.PermissionServiceInterface
	codes map[uint64][]string
}

func (f *fakePermissions) HasPermission(_ context.Context, userID uint64, code string) (bool, error) {
	for _, c := range f.codes[userID] {
		if c == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePermissions) UserPermissionCodes(_ context.Context, userID uint64) ([]string, error) {
	return f.codes[userID], nil
}

type fakeUsers struct {
	services.UserServiceInterface
	created []dto.CreateUserDTO
}

func (f *fakeUsers) GetUsers(ctx context.Context, _ types.Filter) ([]entities.User, uint64, error) {
	scope := utils.GetScopeFilterFromCtx(ctx)
	all := []entities.User{{ID: 2, Username: "alice"}, {ID: 3, Username: "bob"}}
	if scope.Kind == authz.ScopeUnrestricted {
		return all, 2, nil
	}
	return all[:1], 1, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, d dto.CreateUserDTO) (*entities.User, error) {
	f.created = append(f.created, d)
	return &entities.User{ID: 10, Username: d.Username}, nil
}

type fakeRoles struct {
	services.RoleServiceInterface
	deleted []uint64
}

func (f *fakeRoles) DeleteRole(_ context.Context, id uint64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCache struct {
	services.AuthCacheServiceInterface
	refreshed int
}

func (f *fakeCache) RefreshAll(context.Context) error {
	f.refreshed++
	return nil
}

type fakeScopes struct{}

func (fakeScopes) Resolve(_ context.Context, p authz.Principal) (authz.ScopeFilter, error) {
	if p.IsSuperAdmin {
		return authz.Unrestricted(), nil
	}
	return authz.DepartmentIn(p.DepartmentID), nil
}

type routerFixture struct {
	echo  *echo.Echo
	jwt   service.JWTService
	auth  *fakeAuth
	users *fakeUsers
	roles *fakeRoles
	cache *fakeCache
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	logger := zap.NewNop()

	profile := &fakeProfile{users: map[uint64]entities.UserInfo{
		1: {ID: 1, Username: "admin", RoleID: 1, RoleEnabled: true, IsSuperAdmin: true, Enabled: true, DataScope: entities.DataScopeAll},
		2: {ID: 2, Username: "alice", RoleID: 2, RoleEnabled: true, Enabled: true, DepartmentID: 3, DataScope: entities.DataScopeDept},
	}}
	permissions := &fakePermissions{codes: map[uint64][]string{2: {authz.UserList}}}
	f := &routerFixture{
		jwt:   service.NewJWTService("test-secret", time.Hour, 2*time.Hour),
		auth:  &fakeAuth{},
		users: &fakeUsers{},
		roles: &fakeRoles{},
		cache: &fakeCache{},
	}

	matcher, err := authz.LoadRouteRules("")
	require.NoError(t, err)
	authMW := middleware.NewAuthMiddleware(f.jwt, profile, authz.NewGatekeeper(matcher, permissions), fakeScopes{},
		metrics.NewMetrics(prometheus.NewRegistry()), logger)

	f.echo = echo.New()
	f.echo.Validator = validation.New()
	InitRouter(f.echo, &Services{
		Auth:       f.auth,
		User:       f.users,
		Role:       f.roles,
		Permission: permissions,
		Profile:    profile,
		Cache:      f.cache,
	}, authMW, logger)
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, body string, userID uint64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != 0 {
		access, _, err := f.jwt.GenerateTokens(userID, 0, 0)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func TestRouter_LoginIsPublic(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/login", `{"username":"alice","password":"secret123"}`, 0)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"a"`)

	rec = f.do(t, http.MethodPost, "/admin/login", `{"username":"alice","password":"wrong-pass"}`, 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// пароль короче минимума не доходит до сервиса
	rec = f.do(t, http.MethodPost, "/admin/login", `{"username":"alice","password":"x"}`, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, f.auth.logins, 2)
}

func TestRouter_SecureRoutesNeedToken(t *testing.T) {
	f := newRouterFixture(t)

	for _, path := range []string{"/admin/users", "/admin/roles", "/admin/profile", "/admin/menus/user"} {
		rec := f.do(t, http.MethodGet, path, "", 0)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_UserListIsScoped(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/admin/users", "", 2)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_count":1`)
	assert.NotContains(t, rec.Body.String(), "bob")

	rec = f.do(t, http.MethodGet, "/admin/users", "", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_count":2`)
}

func TestRouter_CreateUserValidatesPayload(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/users", `{"username":"zed","password":"password1"}`, 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/admin/users", `{"username":"zed","password":"password1","role_id":2,"data_scope":9}`, 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/admin/users", `{"username":"zed","password":"password1","role_id":2}`, 1)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.users.created, 1)
	assert.Equal(t, "zed", f.users.created[0].Username)
}

func TestRouter_PermissionTableGuardsRoutes(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodDelete, "/admin/roles/5", "", 2)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.roles.deleted)

	rec = f.do(t, http.MethodDelete, "/admin/roles/5", "", 1)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{5}, f.roles.deleted)

	rec = f.do(t, http.MethodDelete, "/admin/roles/abc", "", 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CacheRefresh(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/cache/refresh", "", 2)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/admin/cache/refresh", "", 1)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.cache.refreshed)
}

func TestRouter_OwnPermissionsNeedOnlyLogin(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/admin/permissions/user", "", 2)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), authz.UserList)

	rec = f.do(t, http.MethodGet, "/admin/profile", "", 2)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}
