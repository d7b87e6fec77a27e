package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aarav-mehta-dev/wellness-backend-go/database"
	"github.com/aarav-mehta-dev/wellness-backend-go/models"
	"github.com/aarav-mehta-dev/wellness-backend-go/stats"
	"github.com/aarav-mehta-dev/wellness-backend-go/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CreateOrderRequest struct {
	Items           []models.OrderItem     `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

// newOrderNumber generates a human-readable unique order number.
func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}

// CreateOrder places an order for the caller. The owner and the
// financial fields are fixed here and never change afterwards.
func CreateOrder(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format", nil)
	}

	if len(req.Items) == 0 {
		return utils.Fail(c, http.StatusBadRequest, "Order must have at least one item", nil)
	}
	if req.ShippingAddress.Street == "" || req.ShippingAddress.City == "" {
		return utils.Fail(c, http.StatusBadRequest, "Shipping address is required", nil)
	}

	var subtotal float64
	for i, item := range req.Items {
		if item.Product.IsZero() {
			return utils.Fail(c, http.StatusBadRequest, "Order item missing product reference", nil)
		}
		if item.Quantity <= 0 {
			return utils.Fail(c, http.StatusBadRequest, "Order item quantity must be positive", nil)
		}
		if item.Price < 0 {
			return utils.Fail(c, http.StatusBadRequest, "Order item price cannot be negative", nil)
		}
		subtotal += float64(req.Items[i].Quantity) * item.Price
	}

	now := time.Now()
	order := models.Order{
		ID:              primitive.NewObjectID(),
		OrderNumber:     newOrderNumber(),
		User:            userID,
		Items:           req.Items,
		Subtotal:        subtotal,
		TotalAmount:     subtotal,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.DB.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.Fail(c, http.StatusConflict, "Order number already exists", nil)
		}
		return utils.Fail(c, http.StatusInternalServerError, "Failed to create order", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetUserOrders lists the caller's own orders, paginated.
func GetUserOrders(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	filter := bson.M{"user": userID, "isDeleted": bson.M{"$ne": true}}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if ps := c.QueryParam("paymentStatus"); ps != "" {
		filter["paymentStatus"] = ps
	}

	return listWithPagination(c, filter)
}

// GetUserOrdersCount returns how many orders the caller has placed.
func GetUserOrdersCount(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.DB.Collection("orders").CountDocuments(ctx, bson.M{
		"user":      userID,
		"isDeleted": bson.M{"$ne": true},
	})
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to count orders", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"totalOrders": count,
	})
}

// ListOrders lists orders: admins see everything with optional
// filters, everyone else sees only their own.
func ListOrders(c echo.Context) error {
	user, ok := c.Get("user").(models.User)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	filter := bson.M{"isDeleted": bson.M{"$ne": true}}

	if !user.Role.CanManageOrders() {
		filter["user"] = user.ID
	} else if u := c.QueryParam("user"); u != "" {
		ownerID, err := primitive.ObjectIDFromHex(u)
		if err != nil {
			return utils.Fail(c, http.StatusBadRequest, "Invalid user ID", nil)
		}
		filter["user"] = ownerID
	}

	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if ps := c.QueryParam("paymentStatus"); ps != "" {
		filter["paymentStatus"] = ps
	}
	if q := c.QueryParam("q"); q != "" {
		rx := primitive.Regex{Pattern: q, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"orderNumber": rx},
			bson.M{"trackingNumber": rx},
		}
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, err.Error(), nil)
	}
	createdAt := bson.M{}
	if !from.IsZero() {
		createdAt["$gte"] = from
	}
	if !to.IsZero() {
		createdAt["$lte"] = to
	}
	if len(createdAt) > 0 {
		filter["createdAt"] = createdAt
	}

	return listWithPagination(c, filter)
}

// listWithPagination runs a filtered, sorted, paginated find over the
// orders collection and writes the standard list envelope.
func listWithPagination(c echo.Context, filter bson.M) error {
	page, limit := parsePagination(c)

	sortParam := c.QueryParam("sort")
	if sortParam == "" {
		sortParam = "-createdAt"
	}
	key, desc := stats.SplitSort(sortParam)
	dir := 1
	if desc {
		dir = -1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := database.DB.Collection("orders")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch orders", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: key, Value: dir}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch orders", err)
	}

	orders := make([]models.Order, 0, limit)
	if err := cursor.All(ctx, &orders); err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch orders", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       orders,
		"pagination": stats.NewPagination(page, limit, int(total)),
	})
}

// CountOrders returns the total number of orders. Admin only; soft
// deleted orders never count toward any figure.
func CountOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.DB.Collection("orders").CountDocuments(ctx, bson.M{
		"isDeleted": bson.M{"$ne": true},
	})
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to count orders", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   count,
	})
}

// GetOrderByID returns one order to its owner or an admin.
func GetOrderByID(c echo.Context) error {
	user, ok := c.Get("user").(models.User)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid order ID", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	err = database.DB.Collection("orders").FindOne(ctx, bson.M{
		"_id":       orderID,
		"isDeleted": bson.M{"$ne": true},
	}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Order not found", nil)
		}
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch order", err)
	}

	if !user.Role.CanManageOrders() && order.User != user.ID {
		return utils.Fail(c, http.StatusForbidden, "You do not have permission to view this order", nil)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    order,
	})
}

// restricted fields an update may never touch
var restrictedOrderFields = []string{"_id", "user", "totalAmount", "subtotal", "items", "orderNumber", "createdAt", "isDeleted", "deletedAt", "deletedBy"}

// UpdateOrder lets an admin change status/tracking fields. The owner
// and the financial fields are immutable by policy.
func UpdateOrder(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid order ID", nil)
	}

	updateData := map[string]interface{}{}
	if err := c.Bind(&updateData); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format", nil)
	}
	for _, field := range restrictedOrderFields {
		delete(updateData, field)
	}

	if status, ok := updateData["status"].(string); ok {
		if !models.OrderStatus(status).Valid() {
			return utils.Fail(c, http.StatusBadRequest, "Invalid order status", nil)
		}
	}
	updateData["updatedAt"] = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Order
	err = database.DB.Collection("orders").FindOneAndUpdate(
		ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": updateData},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Order not found", nil)
		}
		return utils.Fail(c, http.StatusInternalServerError, "Failed to update order", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Order updated successfully",
		"data":    updated,
	})
}

// DeleteOrder soft-deletes an order: the record stays in place with
// the deletion markers set, it is never physically removed.
func DeleteOrder(c echo.Context) error {
	admin, ok := c.Get("user").(models.User)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid order ID", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	result, err := database.DB.Collection("orders").UpdateOne(
		ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{
			"isDeleted": true,
			"deletedAt": now,
			"deletedBy": admin.ID,
			"updatedAt": now,
		}},
	)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to delete order", err)
	}
	if result.MatchedCount == 0 {
		return utils.Fail(c, http.StatusNotFound, "Order not found", nil)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Order deleted successfully",
		"id":      orderID.Hex(),
	})
}
