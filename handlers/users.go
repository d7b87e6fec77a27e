package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aarav-mehta-dev/wellness-backend-go/database"
	"github.com/aarav-mehta-dev/wellness-backend-go/models"
	"github.com/aarav-mehta-dev/wellness-backend-go/stats"
	"github.com/aarav-mehta-dev/wellness-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetUserProfile returns the caller's profile.
func GetUserProfile(c echo.Context) error {
	user, ok := c.Get("user").(models.User)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    user,
	})
}

// UpdateUserProfile updates the caller's own profile fields.
func UpdateUserProfile(c echo.Context) error {
	user, ok := c.Get("user").(models.User)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	var req struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone"`
		Bio       *string `json:"bio"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format", nil)
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.FirstName != nil {
		set["firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		set["lastName"] = *req.LastName
	}
	if req.Email != nil {
		if !isValidEmail(*req.Email) {
			return utils.Fail(c, http.StatusBadRequest, "Invalid email format", nil)
		}
		set["email"] = *req.Email
	}
	if req.Phone != nil {
		if phoneDigits(*req.Phone) < 10 {
			return utils.Fail(c, http.StatusBadRequest, "Phone number must contain at least 10 digits", nil)
		}
		set["phone"] = *req.Phone
	} else if user.Phone == "" {
		return utils.Fail(c, http.StatusBadRequest, "Phone number required", nil)
	}
	if req.Bio != nil {
		set["bio"] = *req.Bio
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.User
	err := database.DB.Collection("users").FindOneAndUpdate(
		ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.Fail(c, http.StatusBadRequest, "Email already in use by another account.", nil)
		}
		return utils.Fail(c, http.StatusInternalServerError, "Failed to update profile", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Profile updated successfully",
		"data":    updated,
	})
}

// GetUserAddresses lists the caller's address book.
func GetUserAddresses(c echo.Context) error {
	user, ok := c.Get("user").(models.User)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}
	addresses := user.Addresses
	if addresses == nil {
		addresses = []models.Address{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    addresses,
	})
}

// AddUserAddress appends an address to the caller's address book. A
// new default unsets the previous one.
func AddUserAddress(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	var address models.Address
	if err := c.Bind(&address); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid address data", nil)
	}
	if address.Street == "" || address.City == "" {
		return utils.Fail(c, http.StatusBadRequest, "Street and city are required", nil)
	}
	address.ID = primitive.NewObjectID()
	if address.Type == "" {
		address.Type = "shipping"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	users := database.DB.Collection("users")

	if address.IsDefault {
		_, err := users.UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": bson.M{"addresses.$[].isDefault": false}},
		)
		if err != nil {
			return utils.Fail(c, http.StatusInternalServerError, "Failed to update default status", err)
		}
	}

	result, err := users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"addresses": address},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil || result.MatchedCount == 0 {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to add address", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    address,
	})
}

// UpdateUserAddress replaces one address in the caller's address book.
func UpdateUserAddress(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}
	addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid address ID", nil)
	}

	var address models.Address
	if err := c.Bind(&address); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid address data", nil)
	}
	address.ID = addressID

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	users := database.DB.Collection("users")

	if address.IsDefault {
		_, err := users.UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": bson.M{"addresses.$[].isDefault": false}},
		)
		if err != nil {
			return utils.Fail(c, http.StatusInternalServerError, "Failed to update default status", err)
		}
	}

	arrayFilters := options.ArrayFilters{
		Filters: []interface{}{bson.M{"elem._id": addressID}},
	}
	result, err := users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"addresses.$[elem]": address,
			"updatedAt":         time.Now(),
		}},
		options.Update().SetArrayFilters(arrayFilters),
	)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to update address", err)
	}
	if result.MatchedCount == 0 {
		return utils.Fail(c, http.StatusNotFound, "Address not found", nil)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    address,
	})
}

// DeleteUserAddress removes one address from the caller's address
// book.
func DeleteUserAddress(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}
	addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid address ID", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to delete address", err)
	}
	if result.ModifiedCount == 0 {
		return utils.Fail(c, http.StatusNotFound, "Address not found or already deleted", nil)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Address deleted successfully",
	})
}

// GetUsers is the admin user directory with role filter, search and
// pagination.
func GetUsers(c echo.Context) error {
	page, limit := parsePagination(c)

	filter := bson.M{}
	if role := c.QueryParam("role"); role != "" {
		if !models.Role(role).Valid() {
			return utils.Fail(c, http.StatusBadRequest, "Invalid role filter", nil)
		}
		filter["role"] = role
	}
	if search := c.QueryParam("search"); search != "" {
		rx := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"firstName": rx},
			bson.M{"lastName": rx},
			bson.M{"email": rx},
			bson.M{"phone": rx},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	users := database.DB.Collection("users")

	total, err := users.CountDocuments(ctx, filter)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch users", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"password": 0})

	cursor, err := users.Find(ctx, filter, opts)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch users", err)
	}

	list := make([]models.User, 0, limit)
	if err := cursor.All(ctx, &list); err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch users", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       list,
		"pagination": stats.NewPagination(page, limit, int(total)),
	})
}

// GetTotalUsersCount returns the user count. Admin only.
func GetTotalUsersCount(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := database.DB.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to count users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"total":   total,
	})
}

// GetUserByID returns one user. Admin only.
func GetUserByID(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid user ID", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "User not found", nil)
		}
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch user", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    user,
	})
}

// UpdateUser updates a user by id. Admin only.
func UpdateUser(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid user ID", nil)
	}

	updateData := map[string]interface{}{}
	if err := c.Bind(&updateData); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format", nil)
	}
	delete(updateData, "_id")
	delete(updateData, "password")
	if role, ok := updateData["role"].(string); ok && !models.Role(role).Valid() {
		return utils.Fail(c, http.StatusBadRequest, "Invalid role", nil)
	}
	updateData["updatedAt"] = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.User
	err = database.DB.Collection("users").FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": updateData},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "User not found", nil)
		}
		return utils.Fail(c, http.StatusInternalServerError, "Failed to update user", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User updated successfully",
		"user":    updated,
	})
}

// DeleteUser removes a user by id. Admin only.
func DeleteUser(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid user ID", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.DB.Collection("users").DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to delete user", err)
	}
	if result.DeletedCount == 0 {
		return utils.Fail(c, http.StatusNotFound, "User not found", nil)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User deleted successfully",
	})
}
