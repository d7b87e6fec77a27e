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

// GetProducts lists products, optionally filtered by category.
func GetProducts(c echo.Context) error {
	page, limit := parsePagination(c)

	filter := bson.M{}
	if category := c.QueryParam("category"); category != "" {
		filter["category"] = category
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	collection := database.DB.Collection("products")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch products", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch products", err)
	}

	products := make([]models.Product, 0, limit)
	if err := cursor.All(ctx, &products); err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch products", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       products,
		"pagination": stats.NewPagination(page, limit, int(total)),
	})
}

// GetProduct returns one product by id.
func GetProduct(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid product ID", nil)
	}

	var product models.Product
	err = database.DB.Collection("products").FindOne(c.Request().Context(), bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Product not found", nil)
		}
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch product", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    product,
	})
}

// CreateProduct adds a product to the catalog. Admin only.
func CreateProduct(c echo.Context) error {
	var product models.Product
	if err := c.Bind(&product); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format", nil)
	}
	if product.Name == "" {
		return utils.Fail(c, http.StatusBadRequest, "Product name is required", nil)
	}
	if product.Price < 0 {
		return utils.Fail(c, http.StatusBadRequest, "Product price cannot be negative", nil)
	}

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.DB.Collection("products").InsertOne(ctx, product)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to create product", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    product,
	})
}

// UpdateProduct updates catalog fields by id. Admin only.
func UpdateProduct(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid product ID", nil)
	}

	updateData := map[string]interface{}{}
	if err := c.Bind(&updateData); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format", nil)
	}
	delete(updateData, "_id")
	updateData["updatedAt"] = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Product
	err = database.DB.Collection("products").FindOneAndUpdate(
		ctx,
		bson.M{"_id": productID},
		bson.M{"$set": updateData},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Product not found", nil)
		}
		return utils.Fail(c, http.StatusInternalServerError, "Failed to update product", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    updated,
	})
}
