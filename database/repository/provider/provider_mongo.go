package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartfix/apperrors"
	"smartfix/database"
	"smartfix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll        *mongo.Collection
	reviewsColl string
}

// NewMongoProviderRepo creates a provider repository and its indexes.
func NewMongoProviderRepo(db *mongo.Database) (*MongoProviderRepo, error) {
	repo := &MongoProviderRepo{
		coll:        db.Collection(database.ProvidersCollection),
		reviewsColl: database.ReviewsCollection,
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

var notDeleted = bson.M{"$ne": models.StateDeleted}

func (r *MongoProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, provider); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("provider for user %s: %w", provider.UserID, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

func (r *MongoProviderRepo) findOne(ctx context.Context, filter bson.M, key string) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter["state"] = notDeleted
	var provider models.Provider
	if err := r.coll.FindOne(ctx, filter).Decode(&provider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("provider", key)
		}
		return nil, fmt.Errorf("failed to fetch provider %s: %w", key, err)
	}
	return &provider, nil
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	return r.findOne(ctx, bson.M{"id": id}, id)
}

func (r *MongoProviderRepo) GetByUserID(ctx context.Context, userID string) (*models.Provider, error) {
	return r.findOne(ctx, bson.M{"userId": userID}, userID)
}

func (r *MongoProviderRepo) RatingVersion(ctx context.Context, id string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc struct {
		RatingVersion int64 `bson:"ratingVersion"`
	}
	opts := options.FindOne().SetProjection(bson.M{"ratingVersion": 1})
	if err := r.coll.FindOne(ctx, bson.M{"id": id}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperrors.NotFound("provider", id)
		}
		return 0, fmt.Errorf("failed to read rating version for provider %s: %w", id, err)
	}
	return doc.RatingVersion, nil
}

func (r *MongoProviderRepo) SetRatingSummary(ctx context.Context, id string, version int64, summary models.RatingSummary) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// A provider written before ratingVersion existed has no field at all.
	filter := bson.M{"id": id, "ratingVersion": version}
	if version == 0 {
		filter["ratingVersion"] = bson.M{"$in": bson.A{nil, int64(0)}}
	}

	update := bson.M{
		"$set": bson.M{
			"rating":       summary.Rating,
			"totalReviews": summary.TotalReviews,
			"updatedAt":    time.Now().UTC(),
		},
		"$inc": bson.M{"ratingVersion": 1},
	}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update rating for provider %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ConcurrencyConflict("provider", id, "rating summary changed concurrently")
	}
	return nil
}

func (r *MongoProviderRepo) IncrementCompletedJobs(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"completedJobs": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to increment completed jobs for provider %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("provider", id)
	}
	return nil
}
