package providerRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"smartfix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Candidates runs the matching pre-filter:
// $geoNear (within MaxDistanceKm, eligible providers offering the category)
// → $lookup of counting reviews → $addFields distance/rating/count.
// Ranking is left to the caller.
func (r *MongoProviderRepo) Candidates(ctx context.Context, q CandidateQuery) ([]models.ProviderCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	eligible := bson.M{
		"state":    bson.M{"$ne": models.StateDeleted},
		"active":   true,
		"verified": true,
		"services": bson.M{"$regex": "^" + regexp.QuoteMeta(q.Category) + "$", "$options": "i"},
	}

	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: q.Near.Coordinates},
			}},
			{Key: "key", Value: "serviceArea.geo"},
			{Key: "distanceField", Value: "distanceMeters"},
			{Key: "spherical", Value: true},
			{Key: "maxDistance", Value: q.MaxDistanceKm * 1000},
			{Key: "query", Value: eligible},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: r.reviewsColl},
			{Key: "let", Value: bson.M{"pid": "$id"}},
			{Key: "pipeline", Value: mongo.Pipeline{
				{{Key: "$match", Value: bson.M{
					"$expr":  bson.M{"$eq": bson.A{"$providerId", "$$pid"}},
					"status": models.ReviewActive,
					"state":  bson.M{"$ne": models.StateDeleted},
				}}},
				{{Key: "$group", Value: bson.M{
					"_id":   nil,
					"avg":   bson.M{"$avg": "$rating"},
					"count": bson.M{"$sum": 1},
				}}},
			}},
			{Key: "as", Value: "reviewStats"},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"distanceKm":  bson.M{"$divide": bson.A{"$distanceMeters", 1000}},
			"avgRating":   bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$reviewStats.avg", 0}}, 0}},
			"reviewCount": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$reviewStats.count", 0}}, 0}},
		}}},
		{{Key: "$project", Value: bson.M{"reviewStats": 0, "distanceMeters": 0}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("candidate aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	candidates := []models.ProviderCandidate{}
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}
	return candidates, nil
}
