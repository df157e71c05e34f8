package requestRepo

import (
	"context"
	"fmt"
	"time"

	"smartfix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// groupByStatus counts requests per status and sums the upper budget bound.
func groupByStatus(match bson.M) mongo.Pipeline {
	hasBudget := bson.M{"$cond": bson.A{bson.M{"$ifNull": bson.A{"$budget", false}}, 1, 0}}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$status",
			"count":    bson.M{"$sum": 1},
			"budget":   bson.M{"$sum": bson.M{"$ifNull": bson.A{"$budget.max", 0}}},
			"budgeted": bson.M{"$sum": hasBudget},
		}}},
	}
}

func (r *MongoRequestRepo) statusCounts(ctx context.Context, match bson.M) ([]models.StatusCount, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, groupByStatus(match))
	if err != nil {
		return nil, fmt.Errorf("status aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []models.StatusCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}
	return counts, nil
}

func (r *MongoRequestRepo) StatusCountsByUser(ctx context.Context, userID string) ([]models.StatusCount, error) {
	return r.statusCounts(ctx, bson.M{"userId": userID})
}

func (r *MongoRequestRepo) StatusCountsByProvider(ctx context.Context, providerID string) ([]models.StatusCount, error) {
	return r.statusCounts(ctx, bson.M{"$or": bson.A{
		bson.M{"assignedProvider": providerID},
		bson.M{"cancelledProvider": providerID},
	}})
}

func (r *MongoRequestRepo) CompletionTimesByProvider(ctx context.Context, providerID string) (models.CompletionTimes, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"assignedProvider": providerID,
			"startedAt":        bson.M{"$ne": nil},
			"completedAt":      bson.M{"$ne": nil},
		}}},
		{{Key: "$project", Value: bson.M{
			"hours": bson.M{"$divide": bson.A{
				bson.M{"$subtract": bson.A{"$completedAt", "$startedAt"}},
				float64(time.Hour / time.Millisecond),
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"count":    bson.M{"$sum": 1},
			"avgHours": bson.M{"$avg": "$hours"},
			"minHours": bson.M{"$min": "$hours"},
			"maxHours": bson.M{"$max": "$hours"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.CompletionTimes{}, fmt.Errorf("completion time aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.CompletionTimes
	if err := cursor.All(ctx, &rows); err != nil {
		return models.CompletionTimes{}, fmt.Errorf("failed to decode completion times: %w", err)
	}
	if len(rows) == 0 {
		return models.CompletionTimes{}, nil
	}
	return rows[0], nil
}
