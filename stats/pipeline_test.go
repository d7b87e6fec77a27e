package stats

import (
	"testing"
	"time"

	"github.com/aarav-mehta-dev/wellness-backend-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func stageValue(t *testing.T, stage bson.D, name string) interface{} {
	t.Helper()
	require.Len(t, stage, 1)
	require.Equal(t, name, stage[0].Key)
	return stage[0].Value
}

func TestTotalSpentPipeline_MatchStage(t *testing.T) {
	userID := primitive.NewObjectID()
	pipeline := TotalSpentPipeline(userID)
	require.Len(t, pipeline, 2)

	match := stageValue(t, pipeline[0], "$match").(bson.M)
	assert.Equal(t, userID, match["user"])
	assert.Equal(t, models.PaymentStatusPaid, match["paymentStatus"])
	assert.Equal(t, bson.M{"$ne": models.OrderStatusCancelled}, match["status"])
	// aggregation bypasses any automatic soft-delete filtering, the
	// exclusion must be spelled out in the stage itself
	assert.Equal(t, bson.M{"$ne": true}, match["isDeleted"])
}

func TestAvgOrderValuePipeline_Stages(t *testing.T) {
	userID := primitive.NewObjectID()
	pipeline := AvgOrderValuePipeline(userID)
	require.Len(t, pipeline, 3)

	match := stageValue(t, pipeline[0], "$match").(bson.M)
	assert.Equal(t, bson.M{"$ne": true}, match["isDeleted"])
	assert.Equal(t, bson.M{"$nin": bson.A{
		models.OrderStatusCancelled,
		models.OrderStatusReturned,
		models.OrderStatusFailed,
	}}, match["status"])

	project := stageValue(t, pipeline[2], "$project").(bson.M)
	require.Contains(t, project, "avgOrderValue")
	cond := project["avgOrderValue"].(bson.M)["$cond"].(bson.M)
	assert.Equal(t, 0, cond["then"])
}

func TestUsersWithOrdersPipeline_NoStatusFilter(t *testing.T) {
	pipeline := UsersWithOrdersPipeline(RollupOptions{})

	match := stageValue(t, pipeline[0], "$match").(bson.M)
	assert.Equal(t, bson.M{"$ne": true}, match["isDeleted"])
	assert.NotContains(t, match, "status")
	assert.NotContains(t, match, "createdAt")

	group := stageValue(t, pipeline[1], "$group").(bson.M)
	assert.Equal(t, "$user", group["_id"])
	assert.NotContains(t, group, "statusMatches")
	for _, counter := range []string{"pendingOrders", "processingOrders", "shippedOrders", "deliveredOrders", "cancelledOrders", "returnedOrders"} {
		assert.Contains(t, group, counter)
	}
}

func TestUsersWithOrdersPipeline_StatusFilterAfterGroup(t *testing.T) {
	pipeline := UsersWithOrdersPipeline(RollupOptions{Status: models.OrderStatusDelivered})

	// the status filter must not narrow the initial match stage
	match := stageValue(t, pipeline[0], "$match").(bson.M)
	assert.NotContains(t, match, "status")

	group := stageValue(t, pipeline[1], "$group").(bson.M)
	assert.Contains(t, group, "statusMatches")

	qualify := stageValue(t, pipeline[2], "$match").(bson.M)
	assert.Equal(t, bson.M{"$gt": 0}, qualify["statusMatches"])
}

func TestUsersWithOrdersPipeline_DateRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	pipeline := UsersWithOrdersPipeline(RollupOptions{From: from, To: to})
	match := stageValue(t, pipeline[0], "$match").(bson.M)
	assert.Equal(t, bson.M{"$gte": from, "$lte": to}, match["createdAt"])
}

func TestUsersWithOrdersPipeline_SearchIsLiteral(t *testing.T) {
	pipeline := UsersWithOrdersPipeline(RollupOptions{Search: "a.b@example.com"})
	last := pipeline[len(pipeline)-1]
	match := stageValue(t, last, "$match").(bson.M)

	or := match["$or"].(bson.A)
	require.NotEmpty(t, or)
	rx := or[0].(bson.M)["firstName"].(primitive.Regex)
	// metacharacters in the query are quoted, search is substring only
	assert.Equal(t, `a\.b@example\.com`, rx.Pattern)
	assert.Equal(t, "i", rx.Options)
}

func TestSortStage(t *testing.T) {
	stage := SortStage("-totalOrders")
	sort := stageValue(t, stage, "$sort").(bson.D)
	require.Len(t, sort, 1)
	assert.Equal(t, "totalOrders", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value)

	stage = SortStage("email")
	sort = stageValue(t, stage, "$sort").(bson.D)
	assert.Equal(t, 1, sort[0].Value)
}

func TestPaginationStages(t *testing.T) {
	stages := PaginationStages(3, 10)
	require.Len(t, stages, 2)
	assert.Equal(t, 20, stageValue(t, stages[0], "$skip"))
	assert.Equal(t, 10, stageValue(t, stages[1], "$limit"))
}
