package stats

import (
	"regexp"

	"github.com/aarav-mehta-dev/wellness-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Pipeline builders mirroring the pure functions in stats.go. Direct
// aggregation bypasses any query-middleware soft-delete filtering, so
// every match stage repeats the isDeleted exclusion explicitly.

// TotalSpentPipeline sums totalAmount over a user's paid,
// non-cancelled, non-deleted orders.
func TotalSpentPipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user":          userID,
			"paymentStatus": models.PaymentStatusPaid,
			"status":        bson.M{"$ne": models.OrderStatusCancelled},
			"isDeleted":     bson.M{"$ne": true},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalSpent": bson.M{"$sum": "$totalAmount"},
		}}},
	}
}

// AvgOrderValuePipeline computes orderCount, totalSpent and their
// ratio for one user, guarding the division against an empty group.
func AvgOrderValuePipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user":      userID,
			"isDeleted": bson.M{"$ne": true},
			"status": bson.M{"$nin": bson.A{
				models.OrderStatusCancelled,
				models.OrderStatusReturned,
				models.OrderStatusFailed,
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalSpent": bson.M{"$sum": "$totalAmount"},
			"orderCount": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":        0,
			"totalSpent": 1,
			"orderCount": 1,
			"avgOrderValue": bson.M{"$cond": bson.M{
				"if":   bson.M{"$eq": bson.A{"$orderCount", 0}},
				"then": 0,
				"else": bson.M{"$divide": bson.A{"$totalSpent", "$orderCount"}},
			}},
		}}},
	}
}

func statusCounter(status models.OrderStatus) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$status", status}}, 1, 0,
	}}}
}

// UsersWithOrdersPipeline builds the unpaginated rollup pipeline:
// match by date range, group per user, keep users with at least one
// order matching the status filter, join user display fields and apply
// the search filter. The caller appends $count for the total, or the
// sort and pagination stages for the page itself.
func UsersWithOrdersPipeline(opts RollupOptions) mongo.Pipeline {
	opts = opts.Normalize()

	match := bson.M{"isDeleted": bson.M{"$ne": true}}
	createdAt := bson.M{}
	if !opts.From.IsZero() {
		createdAt["$gte"] = opts.From
	}
	if !opts.To.IsZero() {
		createdAt["$lte"] = opts.To
	}
	if len(createdAt) > 0 {
		match["createdAt"] = createdAt
	}

	group := bson.M{
		"_id":               "$user",
		"totalOrders":       bson.M{"$sum": 1},
		"totalSpent":        bson.M{"$sum": "$totalAmount"},
		"averageOrderValue": bson.M{"$avg": "$totalAmount"},
		"lastOrderDate":     bson.M{"$max": "$createdAt"},
		"firstOrderDate":    bson.M{"$min": "$createdAt"},
		"pendingOrders":     statusCounter(models.OrderStatusPending),
		"processingOrders":  statusCounter(models.OrderStatusProcessing),
		"shippedOrders":     statusCounter(models.OrderStatusShipped),
		"deliveredOrders":   statusCounter(models.OrderStatusDelivered),
		"cancelledOrders":   statusCounter(models.OrderStatusCancelled),
		"returnedOrders":    statusCounter(models.OrderStatusReturned),
	}
	// The status filter narrows which users qualify, not which orders
	// feed the counters, so it is applied after grouping.
	if opts.Status != "" {
		group["statusMatches"] = statusCounter(opts.Status)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: group}},
	}

	if opts.Status != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"statusMatches": bson.M{"$gt": 0},
		}}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$unwind", Value: "$user"}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":               1,
			"firstName":         "$user.firstName",
			"lastName":          "$user.lastName",
			"email":             "$user.email",
			"phone":             "$user.phone",
			"role":              "$user.role",
			"imageUrl":          "$user.imageUrl",
			"totalOrders":       1,
			"totalSpent":        1,
			"averageOrderValue": 1,
			"lastOrderDate":     1,
			"firstOrderDate":    1,
			"pendingOrders":     1,
			"processingOrders":  1,
			"shippedOrders":     1,
			"deliveredOrders":   1,
			"cancelledOrders":   1,
			"returnedOrders":    1,
		}}},
	)

	if opts.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(opts.Search), Options: "i"}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"$or": bson.A{
				bson.M{"firstName": rx},
				bson.M{"lastName": rx},
				bson.M{"email": rx},
				bson.M{"phone": rx},
			},
		}}})
	}

	return pipeline
}

// CountStage counts the rows produced so far into a {total: n} doc.
func CountStage() bson.D {
	return bson.D{{Key: "$count", Value: "total"}}
}

// SortStage translates a '-'-prefixed sort parameter into a $sort.
func SortStage(sortParam string) bson.D {
	key, desc := SplitSort(sortParam)
	dir := 1
	if desc {
		dir = -1
	}
	return bson.D{{Key: "$sort", Value: bson.D{{Key: key, Value: dir}}}}
}

// PaginationStages produces the $skip/$limit pair for a page.
func PaginationStages(page, limit int) []bson.D {
	return []bson.D{
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
	}
}
