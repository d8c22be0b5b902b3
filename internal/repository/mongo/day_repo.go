package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dayCollectionName = "days"

// mongoDayRepository implements repository.DayRepository
type mongoDayRepository struct {
	collection *mongo.Collection
}

// NewMongoDayRepository creates a new Day repository backed by MongoDB.
func NewMongoDayRepository(db *mongo.Database) repository.DayRepository {
	return &mongoDayRepository{
		collection: db.Collection(dayCollectionName),
	}
}

// Create inserts a new day and assigns its rotation position as one past the
// user's current highest. The position is persisted explicitly instead of
// being derived from insertion timestamps, which can collide at
// sub-millisecond granularity.
func (r *mongoDayRepository) Create(ctx context.Context, day *domain.Day) (primitive.ObjectID, error) {
	if day.DayName == "" || day.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("day name and user ID are required")
	}

	position, err := r.nextPosition(ctx, day.UserID)
	if err != nil {
		return primitive.NilObjectID, err
	}

	day.ID = primitive.NewObjectID()
	day.Position = position
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, day)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// nextPosition returns one past the user's highest assigned position, or 1
// for the user's first day.
func (r *mongoDayRepository) nextPosition(ctx context.Context, userID primitive.ObjectID) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "position", Value: -1}})

	var last domain.Day
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&last)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 1, nil
		}
		return 0, err
	}
	return last.Position + 1, nil
}

// GetByID retrieves a day by id, scoped to its owner.
func (r *mongoDayRepository) GetByID(ctx context.Context, userID, dayID primitive.ObjectID) (*domain.Day, error) {
	var day domain.Day
	filter := bson.M{"_id": dayID, "userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

// GetByName retrieves a day by its per-user unique name.
func (r *mongoDayRepository) GetByName(ctx context.Context, userID primitive.ObjectID, dayName string) (*domain.Day, error) {
	var day domain.Day
	filter := bson.M{"userId": userID, "dayName": dayName}

	err := r.collection.FindOne(ctx, filter).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

// ListByUser retrieves all days of a user in rotation order.
func (r *mongoDayRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Day, error) {
	var days []domain.Day
	filter := bson.M{"userId": userID}

	// createdAt breaks ties for documents created before positions existed.
	findOptions := options.Find().SetSort(bson.D{
		{Key: "position", Value: 1},
		{Key: "createdAt", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}

	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return days, nil
}

// Rename changes a day's name in place. The rotation position is untouched.
func (r *mongoDayRepository) Rename(ctx context.Context, userID, dayID primitive.ObjectID, dayName string) (*domain.Day, error) {
	filter := bson.M{"_id": dayID, "userId": userID}
	update := bson.M{
		"$set": bson.M{
			"dayName":   dayName,
			"updatedAt": time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var day domain.Day
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return &day, nil
}

// Delete removes a day, ensuring it belongs to the given user.
func (r *mongoDayRepository) Delete(ctx context.Context, userID, dayID primitive.ObjectID) error {
	filter := bson.M{"_id": dayID, "userId": userID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByUser removes all days of a user and reports how many were deleted.
func (r *mongoDayRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureDayIndexes creates necessary indexes for the days collection.
func EnsureDayIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Day names are unique per user.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "dayName", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Rotation-order listing.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal, see EnsureUserIndexes.
	}
}
