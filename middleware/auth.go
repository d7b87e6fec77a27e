package middleware

import (
	"net/http"
	"strings"

	"github.com/aarav-mehta-dev/wellness-backend-go/database"
	"github.com/aarav-mehta-dev/wellness-backend-go/models"
	"github.com/aarav-mehta-dev/wellness-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthMiddleware validates the bearer token and loads the account it
// belongs to. Handlers downstream read the full user from the context,
// so role checks always see the current role, not a stale claim.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return utils.Fail(c, http.StatusUnauthorized, "Could not find authentication token. Please log in again.", nil)
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return utils.Fail(c, http.StatusUnauthorized, "Invalid authorization header format", nil)
			}

			claims, err := utils.ValidateJWT(parts[1])
			if err != nil {
				return utils.Fail(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				return utils.Fail(c, http.StatusUnauthorized, "Invalid user ID", nil)
			}

			var user models.User
			err = database.DB.Collection("users").FindOne(
				c.Request().Context(),
				bson.M{"_id": userID},
			).Decode(&user)
			if err != nil {
				return utils.Fail(c, http.StatusUnauthorized, "User not found", nil)
			}

			c.Set("userID", user.ID)
			c.Set("user", user)
			return next(c)
		}
	}
}

// AdminOnly rejects callers whose role does not carry admin
// privileges. Must run after AuthMiddleware.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get("user").(models.User)
		if !ok {
			return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
		}
		if !user.Role.IsAdmin() {
			return utils.Fail(c, http.StatusForbidden, "Admin access required", nil)
		}
		return next(c)
	}
}
