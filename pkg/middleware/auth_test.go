package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"admin-backoffice/internal/authz"
	"admin-backoffice/internal/entities"
	apperrors "admin-backoffice/pkg/errors"
	"admin-backoffice/pkg/metrics"
	"admin-backoffice/pkg/service"
	"admin-backoffice/pkg/utils"
)

type fakeUsers map[uint64]entities.UserInfo

func (f fakeUsers) UserInfo(_ context.Context, userID uint64) (*entities.UserInfo, error) {
	info, ok := f[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &info, nil
}

type fakeChecker map[uint64][]string

func (f fakeChecker) HasPermission(_ context.Context, userID uint64, code string) (bool, error) {
	for _, c := range f[userID] {
		if c == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeScopes struct{}

func (fakeScopes) Resolve(_ context.Context, p authz.Principal) (authz.ScopeFilter, error) {
	if p.IsSuperAdmin {
		return authz.Unrestricted(), nil
	}
	return authz.DepartmentIn(p.DepartmentID), nil
}

type authFixture struct {
	echo    *echo.Echo
	jwt     service.JWTService
	metrics *metrics.Metrics
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	matcher, err := authz.LoadRouteRules("")
	require.NoError(t, err)

	users := fakeUsers{
		1: {ID: 1, RoleID: 1, RoleEnabled: true, IsSuperAdmin: true, Enabled: true, DataScope: entities.DataScopeAll},
		2: {ID: 2, RoleID: 2, RoleEnabled: true, Enabled: true, DepartmentID: 10, DataScope: entities.DataScopeDept},
		3: {ID: 3, RoleID: 2, RoleEnabled: true, Enabled: false, DepartmentID: 10},
		4: {ID: 4, RoleID: 3, RoleEnabled: false, Enabled: true, DepartmentID: 10},
	}
	checker := fakeChecker{2: {authz.UserList}}

	jwtSvc := service.NewJWTService("test-secret", time.Hour, 2*time.Hour)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	mw := NewAuthMiddleware(jwtSvc, users, authz.NewGatekeeper(matcher, checker), fakeScopes{}, m, zap.NewNop())

	e := echo.New()
	g := e.Group("/admin", mw.Auth, mw.Authorize, mw.DataScope)
	handler := func(c echo.Context) error {
		p, err := utils.GetPrincipalFromCtx(c.Request().Context())
		if err != nil {
			return err
		}
		scope := utils.GetScopeFilterFromCtx(c.Request().Context())
		return c.JSON(http.StatusOK, map[string]any{"user_id": p.UserID, "scope": scope.Kind.String()})
	}
	g.GET("/users", handler)
	g.POST("/users", handler)
	g.POST("/users/:id/status", handler)
	g.GET("/users/:id/status", handler)

	return &authFixture{echo: e, jwt: jwtSvc, metrics: m}
}

func (f *authFixture) do(t *testing.T, method, path string, userID uint64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != 0 {
		access, _, err := f.jwt.GenerateTokens(userID, 0, 0)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func TestAuth_MissingOrMalformedHeader(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodGet, "/admin/users", 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")
	rec = httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RefreshTokenRejected(t *testing.T) {
	f := newAuthFixture(t)

	_, refresh, err := f.jwt.GenerateTokens(2, 2, 2)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+refresh)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_DisabledUserOrRole(t *testing.T) {
	f := newAuthFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/admin/users", 3).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/admin/users", 4).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/admin/users", 99).Code)
}

func TestAuthorize_Decisions(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodGet, "/admin/users", 2)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scope":"department_in"`)

	rec = f.do(t, http.MethodPost, "/admin/users", 2)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/admin/users/5/status", 2)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthzDecisionsTotal.WithLabelValues("allow")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.AuthzDecisionsTotal.WithLabelValues("deny")))
}

func TestAuthorize_UndeclaredRouteIsOpen(t *testing.T) {
	f := newAuthFixture(t)

	// GET на статус не описан в таблице, нужен только вход
	rec := f.do(t, http.MethodGet, "/admin/users/5/status", 2)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthorize_SuperAdmin(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/users", 1)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scope":"unrestricted"`)
}
