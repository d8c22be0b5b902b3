package repository

import (
	"context"
	"time"

	"alcyxob/fitness-planner/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate entry")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SetPlannerStartDate(ctx context.Context, id primitive.ObjectID, start time.Time) (*domain.User, error)
	// Delete returns ErrNotFound when no user document was removed.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DayRepository defines the interface for interacting with plan days.
// Every method is scoped by userId: a caller can never see or touch another
// user's days.
type DayRepository interface {
	// Create assigns the day's rotation position (one past the user's
	// current highest) along with its id and timestamps.
	Create(ctx context.Context, day *domain.Day) (primitive.ObjectID, error)
	GetByID(ctx context.Context, userID, dayID primitive.ObjectID) (*domain.Day, error)
	GetByName(ctx context.Context, userID primitive.ObjectID, dayName string) (*domain.Day, error)
	// ListByUser returns the user's days sorted by rotation position
	// ascending, the order the rotation resolver indexes into.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Day, error)
	Rename(ctx context.Context, userID, dayID primitive.ObjectID, dayName string) (*domain.Day, error)
	Delete(ctx context.Context, userID, dayID primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// ExerciseRepository defines the interface for interacting with exercises.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	// GetByDetailsID looks an exercise up by its external catalog id within
	// one (userId, dayId) pair. Used for the duplicate-entry guard.
	GetByDetailsID(ctx context.Context, userID, dayID primitive.ObjectID, detailsID string) (*domain.Exercise, error)
	// ListByDay returns exercises sorted by creation time ascending.
	// A limit of 0 means no limit.
	ListByDay(ctx context.Context, userID, dayID primitive.ObjectID, offset, limit int64) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	SetMediaObjectKey(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID, objectKey string) error
	Delete(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID) error
	DeleteByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) (int64, error)
}

// TransactionManager runs a function inside a single storage transaction.
// Repository calls made with the context passed to fn join the transaction;
// an error return aborts it, leaving no partial writes visible. Callers may
// treat an error from WithTransaction as a confirmed abort.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
