// Package stats computes derived order statistics: total spent and
// average order value for a single user, and the per-user rollup used
// by the admin dashboard.
//
// The functions in this file are the reference semantics. They operate
// on plain order slices so they can be exercised without a database;
// pipeline.go builds the equivalent MongoDB aggregation stages that
// the handlers push down to the server. Soft-deleted orders are
// excluded inside every computation here, never left to the caller.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aarav-mehta-dev/wellness-backend-go/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "-totalOrders"
)

// OrderStats is the per-user spending summary returned by
// AvgOrderValue. All figures are rounded to 2 decimal places.
type OrderStats struct {
	OrderCount    int     `bson:"orderCount" json:"orderCount"`
	TotalSpent    float64 `bson:"totalSpent" json:"totalSpent"`
	AvgOrderValue float64 `bson:"avgOrderValue" json:"avgOrderValue"`
}

// UserRollup is one row of the admin users-with-orders report.
type UserRollup struct {
	UserID            primitive.ObjectID `bson:"_id" json:"userId"`
	FirstName         string             `bson:"firstName" json:"firstName"`
	LastName          string             `bson:"lastName" json:"lastName"`
	Email             string             `bson:"email" json:"email"`
	Phone             string             `bson:"phone" json:"phone"`
	Role              models.Role        `bson:"role" json:"role"`
	ImageUrl          string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	TotalOrders       int                `bson:"totalOrders" json:"totalOrders"`
	TotalSpent        float64            `bson:"totalSpent" json:"totalSpent"`
	AverageOrderValue float64            `bson:"averageOrderValue" json:"averageOrderValue"`
	LastOrderDate     time.Time          `bson:"lastOrderDate" json:"lastOrderDate"`
	FirstOrderDate    time.Time          `bson:"firstOrderDate" json:"firstOrderDate"`
	PendingOrders     int                `bson:"pendingOrders" json:"pendingOrders"`
	ProcessingOrders  int                `bson:"processingOrders" json:"processingOrders"`
	ShippedOrders     int                `bson:"shippedOrders" json:"shippedOrders"`
	DeliveredOrders   int                `bson:"deliveredOrders" json:"deliveredOrders"`
	CancelledOrders   int                `bson:"cancelledOrders" json:"cancelledOrders"`
	ReturnedOrders    int                `bson:"returnedOrders" json:"returnedOrders"`
}

// Pagination is the envelope attached to every paginated response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination clamps page/limit and derives the page count.
func NewPagination(page, limit, total int) Pagination {
	if limit < 1 {
		limit = DefaultLimit
	}
	pages := (total + limit - 1) / limit
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// RollupOptions are the filters for the users-with-orders report.
// The status filter decides which users qualify for the report (at
// least one order with that status in range); the per-status counters
// on each row always cover all of the user's in-range orders.
type RollupOptions struct {
	Status models.OrderStatus
	From   time.Time
	To     time.Time
	Search string
	Page   int
	Limit  int
	Sort   string
}

var rollupSortKeys = map[string]bool{
	"totalOrders":       true,
	"totalSpent":        true,
	"averageOrderValue": true,
	"lastOrderDate":     true,
	"firstOrderDate":    true,
	"pendingOrders":     true,
	"processingOrders":  true,
	"shippedOrders":     true,
	"deliveredOrders":   true,
	"cancelledOrders":   true,
	"returnedOrders":    true,
	"firstName":         true,
	"lastName":          true,
	"email":             true,
}

// Normalize clamps pagination to page >= 1 and 1 <= limit <= 100 and
// falls back to the default sort for unknown keys.
func (o RollupOptions) Normalize() RollupOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if key, _ := SplitSort(o.Sort); !rollupSortKeys[key] {
		o.Sort = DefaultSort
	}
	return o
}

// SplitSort separates a sort parameter into field and direction. A
// leading '-' means descending.
func SplitSort(s string) (key string, desc bool) {
	if strings.HasPrefix(s, "-") {
		return s[1:], true
	}
	return s, false
}

// Round2 rounds a monetary figure to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// inRange checks the inclusive [from, to] window; zero bounds are open.
func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

// TotalSpent sums totalAmount over the user's paid, non-cancelled,
// non-deleted orders. A user with no qualifying orders yields 0.
func TotalSpent(orders []models.Order, userID primitive.ObjectID) float64 {
	var total float64
	for _, o := range orders {
		if o.User != userID || o.IsDeleted {
			continue
		}
		if o.PaymentStatus != models.PaymentStatusPaid || o.Status == models.OrderStatusCancelled {
			continue
		}
		total += o.TotalAmount
	}
	return total
}

// AvgOrderValue computes order count, total spent and their ratio over
// the user's non-deleted orders, excluding Cancelled, Returned and
// Failed statuses. The average is exactly 0 when there are no orders.
func AvgOrderValue(orders []models.Order, userID primitive.ObjectID) OrderStats {
	var s OrderStats
	for _, o := range orders {
		if o.User != userID || o.IsDeleted {
			continue
		}
		switch o.Status {
		case models.OrderStatusCancelled, models.OrderStatusReturned, models.OrderStatusFailed:
			continue
		}
		s.OrderCount++
		s.TotalSpent += o.TotalAmount
	}
	if s.OrderCount > 0 {
		s.AvgOrderValue = s.TotalSpent / float64(s.OrderCount)
	}
	s.TotalSpent = Round2(s.TotalSpent)
	s.AvgOrderValue = Round2(s.AvgOrderValue)
	return s
}

// UsersWithOrders groups orders by owner and produces the admin report
// rows plus the pagination envelope. Orders outside the date range and
// soft-deleted orders never contribute. When a status filter is set it
// only narrows which users appear; each surviving row still counts all
// of that user's in-range orders.
func UsersWithOrders(orders []models.Order, users map[primitive.ObjectID]models.User, opts RollupOptions) ([]UserRollup, Pagination) {
	opts = opts.Normalize()

	groups := make(map[primitive.ObjectID]*UserRollup)
	qualified := make(map[primitive.ObjectID]bool)

	for _, o := range orders {
		if o.IsDeleted || !inRange(o.CreatedAt, opts.From, opts.To) {
			continue
		}
		g, ok := groups[o.User]
		if !ok {
			g = &UserRollup{UserID: o.User, FirstOrderDate: o.CreatedAt, LastOrderDate: o.CreatedAt}
			groups[o.User] = g
		}
		g.TotalOrders++
		g.TotalSpent += o.TotalAmount
		if o.CreatedAt.Before(g.FirstOrderDate) {
			g.FirstOrderDate = o.CreatedAt
		}
		if o.CreatedAt.After(g.LastOrderDate) {
			g.LastOrderDate = o.CreatedAt
		}
		switch o.Status {
		case models.OrderStatusPending:
			g.PendingOrders++
		case models.OrderStatusProcessing:
			g.ProcessingOrders++
		case models.OrderStatusShipped:
			g.ShippedOrders++
		case models.OrderStatusDelivered:
			g.DeliveredOrders++
		case models.OrderStatusCancelled:
			g.CancelledOrders++
		case models.OrderStatusReturned:
			g.ReturnedOrders++
		}
		if opts.Status != "" && o.Status == opts.Status {
			qualified[o.User] = true
		}
	}

	rows := make([]UserRollup, 0, len(groups))
	for id, g := range groups {
		if opts.Status != "" && !qualified[id] {
			continue
		}
		u, ok := users[id]
		if !ok {
			// orphaned owner reference, dropped like an empty $lookup
			continue
		}
		g.AverageOrderValue = g.TotalSpent / float64(g.TotalOrders)
		g.FirstName = u.FirstName
		g.LastName = u.LastName
		g.Email = u.Email
		g.Phone = u.Phone
		g.Role = u.Role
		g.ImageUrl = u.ImageUrl
		if opts.Search != "" && !matchesSearch(g, opts.Search) {
			continue
		}
		rows = append(rows, *g)
	}

	total := len(rows)
	sortRollups(rows, opts.Sort)

	skip := (opts.Page - 1) * opts.Limit
	if skip > total {
		skip = total
	}
	end := skip + opts.Limit
	if end > total {
		end = total
	}

	return rows[skip:end], NewPagination(opts.Page, opts.Limit, total)
}

// matchesSearch is a case-insensitive substring match over the joined
// display fields, mirroring the regex stage of the pipeline.
func matchesSearch(g *UserRollup, q string) bool {
	q = strings.ToLower(q)
	for _, field := range []string{g.FirstName, g.LastName, g.Email, g.Phone} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// sortRollups orders rows by the requested key. No secondary key is
// applied, so ties keep no particular order.
func sortRollups(rows []UserRollup, sortParam string) {
	key, desc := SplitSort(sortParam)

	less := func(a, b UserRollup) bool {
		switch key {
		case "totalSpent":
			return a.TotalSpent < b.TotalSpent
		case "averageOrderValue":
			return a.AverageOrderValue < b.AverageOrderValue
		case "lastOrderDate":
			return a.LastOrderDate.Before(b.LastOrderDate)
		case "firstOrderDate":
			return a.FirstOrderDate.Before(b.FirstOrderDate)
		case "pendingOrders":
			return a.PendingOrders < b.PendingOrders
		case "processingOrders":
			return a.ProcessingOrders < b.ProcessingOrders
		case "shippedOrders":
			return a.ShippedOrders < b.ShippedOrders
		case "deliveredOrders":
			return a.DeliveredOrders < b.DeliveredOrders
		case "cancelledOrders":
			return a.CancelledOrders < b.CancelledOrders
		case "returnedOrders":
			return a.ReturnedOrders < b.ReturnedOrders
		case "firstName":
			return a.FirstName < b.FirstName
		case "lastName":
			return a.LastName < b.LastName
		case "email":
			return a.Email < b.Email
		default:
			return a.TotalOrders < b.TotalOrders
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}
