package requestRepo

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

// MongoRequestRepo implements RequestRepository using MongoDB.
type MongoRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoRequestRepo returns a repository over the service_requests
// collection and makes sure its indexes exist.
func NewMongoRequestRepo(db *mongo.Database) (*MongoRequestRepo, error) {
	repo := &MongoRequestRepo{coll: db.Collection(database.RequestsCollection)}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func newContext(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}

// unassigned matches a missing, null or empty assignedProvider.
var unassigned = bson.M{"$in": bson.A{nil, ""}}

func (r *MongoRequestRepo) Create(ctx context.Context, req *models.ServiceRequest) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("request %s: %w", req.ID, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (r *MongoRequestRepo) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var req models.ServiceRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("request", id)
		}
		return nil, fmt.Errorf("failed to fetch request with id %s: %w", id, err)
	}
	return &req, nil
}

func (r *MongoRequestRepo) List(ctx context.Context, filter ListFilter) ([]models.ServiceRequest, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.ProviderID != "" {
		query["assignedProvider"] = filter.ProviderID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.ServiceRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %w", err)
	}
	return requests, nil
}

func (r *MongoRequestRepo) ApplyTransition(ctx context.Context, id string, from models.RequestStatus, expectedProvider string, set bson.M, unset []string) (*models.ServiceRequest, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	if expectedProvider == "" {
		filter["assignedProvider"] = unassigned
	} else {
		filter["assignedProvider"] = expectedProvider
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.ServiceRequest
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ConcurrencyConflict("request", id, fmt.Sprintf("request is no longer %s", from))
		}
		return nil, fmt.Errorf("failed to update request with id %s: %w", id, err)
	}
	return &updated, nil
}

func (r *MongoRequestRepo) AppendRejection(ctx context.Context, id string, rec models.RejectionRecord) (*models.ServiceRequest, bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":                    id,
		"status":                models.StatusPending,
		"rejections.providerId": bson.M{"$ne": rec.ProviderID},
	}
	update := bson.M{
		"$push": bson.M{"rejections": rec},
		"$set":  bson.M{"updatedAt": rec.RejectedAt},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.ServiceRequest
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("failed to record rejection for request %s: %w", id, err)
	}

	// Nothing matched: tell apart a repeat rejection from a request that
	// moved on or never existed.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, false, getErr
	}
	if current.Status != models.StatusPending {
		return nil, false, apperrors.ConcurrencyConflict("request", id, "request is no longer pending")
	}
	return current, false, nil
}

func (r *MongoRequestRepo) AddImages(ctx context.Context, id string, urls []string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"images": bson.M{"$each": urls}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to add images to request %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("request", id)
	}
	return nil
}

func (r *MongoRequestRepo) DeleteIfPending(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "status": models.StatusPending})
	if err != nil {
		return fmt.Errorf("failed to delete request with id %s: %w", id, err)
	}
	if result.DeletedCount == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperrors.InvalidOperation("only pending requests can be deleted")
}
