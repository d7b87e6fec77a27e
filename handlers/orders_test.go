package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aarav-mehta-dev/wellness-backend-go/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Input validation runs before any storage access, so these paths are
// testable without a database behind the handlers.

func jsonRequest(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func failureMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp.Message
}

func TestCreateOrder_RequiresAuth(t *testing.T) {
	c, rec := jsonRequest(t, http.MethodPost, "/orders", `{}`)

	require.NoError(t, CreateOrder(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrder_RejectsEmptyItems(t *testing.T) {
	c, rec := jsonRequest(t, http.MethodPost, "/orders", `{"items": [], "shippingAddress": {"street": "1 Main St", "city": "Pune"}}`)
	c.Set("userID", primitive.NewObjectID())

	require.NoError(t, CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Order must have at least one item", failureMessage(t, rec))
}

func TestCreateOrder_RejectsMissingShippingAddress(t *testing.T) {
	body := `{"items": [{"product": "` + primitive.NewObjectID().Hex() + `", "quantity": 1, "price": 9.99}]}`
	c, rec := jsonRequest(t, http.MethodPost, "/orders", body)
	c.Set("userID", primitive.NewObjectID())

	require.NoError(t, CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Shipping address is required", failureMessage(t, rec))
}

func TestCreateOrder_RejectsInvalidQuantity(t *testing.T) {
	body := `{
		"items": [{"product": "` + primitive.NewObjectID().Hex() + `", "quantity": 0, "price": 9.99}],
		"shippingAddress": {"street": "1 Main St", "city": "Pune"}
	}`
	c, rec := jsonRequest(t, http.MethodPost, "/orders", body)
	c.Set("userID", primitive.NewObjectID())

	require.NoError(t, CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderByID_InvalidID(t *testing.T) {
	c, rec := jsonRequest(t, http.MethodGet, "/orders/not-an-id", "")
	c.Set("user", models.User{ID: primitive.NewObjectID(), Role: models.RoleCustomer})
	c.SetParamNames("id")
	c.SetParamValues("not-an-id")

	require.NoError(t, GetOrderByID(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid order ID", failureMessage(t, rec))
}

func TestUpdateOrder_InvalidStatus(t *testing.T) {
	c, rec := jsonRequest(t, http.MethodPut, "/orders/x", `{"status": "Teleported"}`)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())

	require.NoError(t, UpdateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid order status", failureMessage(t, rec))
}

func TestGetUsersWithOrders_InvalidDate(t *testing.T) {
	c, rec := jsonRequest(t, http.MethodGet, "/orders/admin/users-with-orders?from=garbage", "")

	require.NoError(t, GetUsersWithOrders(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUsersWithOrders_InvalidStatus(t *testing.T) {
	c, rec := jsonRequest(t, http.MethodGet, "/orders/admin/users-with-orders?status=Nope", "")

	require.NoError(t, GetUsersWithOrders(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid order status filter", failureMessage(t, rec))
}

func TestNewOrderNumber(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := newOrderNumber()
		assert.True(t, strings.HasPrefix(n, "ORD-"))
		assert.Len(t, n, 12)
		assert.False(t, seen[n], "order numbers must not repeat")
		seen[n] = true
	}
}
