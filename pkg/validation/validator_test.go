package validation

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-backoffice/internal/dto"
	"admin-backoffice/internal/entities"
)

func TestPermCode(t *testing.T) {
	v := New()

	ok := dto.CreatePermissionDTO{Name: "Список", Code: "system:user:list", Type: entities.PermissionTypeButton}
	assert.NoError(t, v.Validate(ok))

	for _, code := range []string{"system", "System:User", "system::list", "system:user list"} {
		bad := ok
		bad.Code = code
		assert.Error(t, v.Validate(bad), code)
	}
}

func TestDataScope(t *testing.T) {
	v := New()

	role := dto.CreateRoleDTO{Name: "Оператор", Code: "operator", DataScope: entities.DataScopeCustom}
	assert.NoError(t, v.Validate(role))

	role.DataScope = 0
	assert.NoError(t, v.Validate(role))

	role.DataScope = 9
	assert.Error(t, v.Validate(role))
}

func TestNullStringEmail(t *testing.T) {
	v := New()

	dept := dto.CreateDepartmentDTO{Name: "HQ"}
	assert.NoError(t, v.Validate(dept))

	dept.Email = null.StringFrom("hq@example.com")
	assert.NoError(t, v.Validate(dept))

	dept.Email = null.StringFrom("not-an-email")
	assert.Error(t, v.Validate(dept))
}

func TestErrorsUseJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(dto.CreateUserDTO{Username: "zed", Password: "password1"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "role_id", verrs[0].Field())
	assert.Equal(t, "required", verrs[0].Tag())
}
