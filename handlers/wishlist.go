package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aarav-mehta-dev/wellness-backend-go/database"
	"github.com/aarav-mehta-dev/wellness-backend-go/models"
	"github.com/aarav-mehta-dev/wellness-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AddToWishlist saves a product on the caller's wishlist. Duplicates
// are rejected.
func AddToWishlist(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return utils.Fail(c, http.StatusBadRequest, "Product ID is required", nil)
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid product ID", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	wishlists := database.DB.Collection("wishlists")

	var wishlist models.Wishlist
	err = wishlists.FindOne(ctx, bson.M{"user": userID}).Decode(&wishlist)
	if err == mongo.ErrNoDocuments {
		now := time.Now()
		wishlist = models.Wishlist{
			ID:        primitive.NewObjectID(),
			User:      userID,
			Products:  []primitive.ObjectID{productID},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := wishlists.InsertOne(ctx, wishlist); err != nil {
			return utils.Fail(c, http.StatusInternalServerError, "Failed to add to wishlist", err)
		}
	} else if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to add to wishlist", err)
	} else {
		for _, id := range wishlist.Products {
			if id == productID {
				return utils.Fail(c, http.StatusBadRequest, "Product already in wishlist", nil)
			}
		}
		_, err = wishlists.UpdateOne(ctx,
			bson.M{"user": userID},
			bson.M{
				"$addToSet": bson.M{"products": productID},
				"$set":      bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			return utils.Fail(c, http.StatusInternalServerError, "Failed to add to wishlist", err)
		}
		wishlist.Products = append(wishlist.Products, productID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Product added to wishlist successfully",
		"data":    wishlist,
	})
}

// RemoveFromWishlist drops a product from the caller's wishlist.
func RemoveFromWishlist(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}
	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid product ID", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	wishlists := database.DB.Collection("wishlists")

	result, err := wishlists.UpdateOne(ctx,
		bson.M{"user": userID},
		bson.M{
			"$pull": bson.M{"products": productID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to remove from wishlist", err)
	}
	if result.MatchedCount == 0 {
		return utils.Fail(c, http.StatusNotFound, "Wishlist not found", nil)
	}
	if result.ModifiedCount == 0 {
		return utils.Fail(c, http.StatusNotFound, "Product not found in wishlist", nil)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Product removed from wishlist",
	})
}

// GetMyWishlist returns the caller's wishlist with product details. An
// absent wishlist is an empty one, not an error.
func GetMyWishlist(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wishlist models.Wishlist
	err := database.DB.Collection("wishlists").FindOne(ctx, bson.M{"user": userID}).Decode(&wishlist)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "Wishlist is empty",
			"data":    echo.Map{"products": []models.Product{}},
		})
	}
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch wishlist", err)
	}

	products := make([]models.Product, 0, len(wishlist.Products))
	if len(wishlist.Products) > 0 {
		cursor, err := database.DB.Collection("products").Find(ctx, bson.M{
			"_id": bson.M{"$in": wishlist.Products},
		})
		if err != nil {
			return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch wishlist", err)
		}
		if err := cursor.All(ctx, &products); err != nil {
			return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch wishlist", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Wishlist fetched successfully",
		"data": echo.Map{
			"id":       wishlist.ID,
			"user":     wishlist.User,
			"products": products,
		},
	})
}
