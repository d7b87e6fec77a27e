package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aarav-mehta-dev/wellness-backend-go/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAdminOnly_RejectsNonAdmin(t *testing.T) {
	next := func(c echo.Context) error {
		t.Fatal("next handler should not run")
		return nil
	}

	for _, role := range []models.Role{models.RoleCustomer, models.RoleDoctor, models.RoleInfluencer} {
		c, rec := newContext(t)
		c.Set("user", models.User{ID: primitive.NewObjectID(), Role: role})

		err := AdminOnly(next)(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, rec.Code, "role %q", role)
	}
}

func TestAdminOnly_AllowsAdmins(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleSuperAdmin} {
		called := false
		next := func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		}

		c, rec := newContext(t)
		c.Set("user", models.User{ID: primitive.NewObjectID(), Role: role})

		err := AdminOnly(next)(c)
		require.NoError(t, err)
		assert.True(t, called, "role %q", role)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAdminOnly_MissingUser(t *testing.T) {
	next := func(c echo.Context) error {
		t.Fatal("next handler should not run")
		return nil
	}

	c, rec := newContext(t)
	err := AdminOnly(next)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
