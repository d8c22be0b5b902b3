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

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise document.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.UserID == primitive.NilObjectID || exercise.DayID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("user ID and day ID are required")
	}
	if exercise.Details.ID == "" {
		return primitive.NilObjectID, errors.New("exercise catalog id is required")
	}
	if exercise.VideoRecommendations == nil {
		exercise.VideoRecommendations = []domain.VideoRecommendation{}
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
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

// GetByID retrieves an exercise scoped to its owning user and day.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	filter := bson.M{"_id": exerciseID, "userId": userID, "dayId": dayID}

	err := r.collection.FindOne(ctx, filter).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByDetailsID retrieves an exercise by its external catalog id within one
// (userId, dayId) pair.
func (r *mongoExerciseRepository) GetByDetailsID(ctx context.Context, userID, dayID primitive.ObjectID, detailsID string) (*domain.Exercise, error) {
	var exercise domain.Exercise
	filter := bson.M{
		"userId":             userID,
		"dayId":              dayID,
		"exerciseDetails.id": detailsID,
	}

	err := r.collection.FindOne(ctx, filter).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// ListByDay retrieves a page of a day's exercises in creation order.
func (r *mongoExerciseRepository) ListByDay(ctx context.Context, userID, dayID primitive.ObjectID, offset, limit int64) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	filter := bson.M{"userId": userID, "dayId": dayID}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if offset > 0 {
		findOptions.SetSkip(offset)
	}
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}

	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return exercises, nil
}

// Update replaces the mutable parts of an exercise: details and the video
// list. Ownership fields are never touched.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}

	filter := bson.M{
		"_id":    exercise.ID,
		"userId": exercise.UserID,
		"dayId":  exercise.DayID,
	}
	update := bson.M{
		"$set": bson.M{
			"exerciseDetails":      exercise.Details,
			"videoRecommendations": exercise.VideoRecommendations,
			"updatedAt":            time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetMediaObjectKey records the object-storage key of an uploaded demo clip.
func (r *mongoExerciseRepository) SetMediaObjectKey(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID, objectKey string) error {
	filter := bson.M{"_id": exerciseID, "userId": userID, "dayId": dayID}
	update := bson.M{
		"$set": bson.M{
			"mediaObjectKey": objectKey,
			"updatedAt":      time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes one exercise, scoped to its owning user and day.
func (r *mongoExerciseRepository) Delete(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID) error {
	filter := bson.M{"_id": exerciseID, "userId": userID, "dayId": dayID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByDayIDs removes every exercise referencing one of the given days.
// Used by the cascading delete paths, always inside a transaction.
func (r *mongoExerciseRepository) DeleteByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) (int64, error) {
	if len(dayIDs) == 0 {
		return 0, nil
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"dayId": bson.M{"$in": dayIDs}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One catalog exercise per (user, day). Backs the duplicate guard
			// against racing batch inserts.
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "dayId", Value: 1},
				{Key: "exerciseDetails.id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			// Cascade deletes filter on dayId alone.
			Keys:    bson.D{{Key: "dayId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Day listing in creation order.
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "dayId", Value: 1},
				{Key: "createdAt", Value: 1},
			},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal, see EnsureUserIndexes.
	}
}
