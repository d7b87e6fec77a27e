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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetTotalSpent returns the sum the caller has actually paid: Paid,
// non-cancelled, non-deleted orders only.
func GetTotalSpent(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("orders").Aggregate(ctx, stats.TotalSpentPipeline(userID))
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to calculate total spent amount", err)
	}

	var results []struct {
		TotalSpent float64 `bson:"totalSpent"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to calculate total spent amount", err)
	}

	// no qualifying orders is a valid outcome, not an error
	totalSpent := 0.0
	if len(results) > 0 {
		totalSpent = results[0].TotalSpent
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"totalSpent": totalSpent,
	})
}

// GetAvgOrderValue returns the caller's order count, total spent and
// average order value over non-deleted orders, excluding Cancelled,
// Returned and Failed statuses.
func GetAvgOrderValue(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("orders").Aggregate(ctx, stats.AvgOrderValuePipeline(userID))
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to calculate average order value.", err)
	}

	var results []stats.OrderStats
	if err := cursor.All(ctx, &results); err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to calculate average order value.", err)
	}

	var s stats.OrderStats
	if len(results) > 0 {
		s = results[0]
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"orderCount":    s.OrderCount,
		"totalSpent":    stats.Round2(s.TotalSpent),
		"avgOrderValue": stats.Round2(s.AvgOrderValue),
	})
}

// GetUsersWithOrders is the admin rollup: one row per user with order
// totals, per-status counters and display fields, paginated.
func GetUsersWithOrders(c echo.Context) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	page, limit := parsePagination(c)
	opts := stats.RollupOptions{
		Status: models.OrderStatus(c.QueryParam("status")),
		From:   from,
		To:     to,
		Search: c.QueryParam("q"),
		Page:   page,
		Limit:  limit,
		Sort:   c.QueryParam("sort"),
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return utils.Fail(c, http.StatusBadRequest, "Invalid order status filter", nil)
	}
	opts = opts.Normalize()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orders := database.DB.Collection("orders")
	base := stats.UsersWithOrdersPipeline(opts)

	// total is counted before sorting and pagination so it stays
	// stable across pages
	countPipeline := append(mongo.Pipeline{}, base...)
	countPipeline = append(countPipeline, stats.CountStage())

	cursor, err := orders.Aggregate(ctx, countPipeline)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch users with orders", err)
	}
	var countResult []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &countResult); err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch users with orders", err)
	}
	total := 0
	if len(countResult) > 0 {
		total = countResult[0].Total
	}

	pagePipeline := append(mongo.Pipeline{}, base...)
	pagePipeline = append(pagePipeline, stats.SortStage(opts.Sort))
	pagePipeline = append(pagePipeline, stats.PaginationStages(opts.Page, opts.Limit)...)

	cursor, err = orders.Aggregate(ctx, pagePipeline)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch users with orders", err)
	}
	rows := make([]stats.UserRollup, 0, opts.Limit)
	if err := cursor.All(ctx, &rows); err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to fetch users with orders", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       rows,
		"pagination": stats.NewPagination(opts.Page, opts.Limit, total),
	})
}
