package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("another account already uses this email")
	ErrNothingToUpdate   = errors.New("nothing to update")
	ErrTransactionFailed = errors.New("operation aborted, no changes were applied")
)

// UserService handles profile management and account deletion.
type UserService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, email string) (*domain.User, error)
	SetPlannerStartDate(ctx context.Context, userID primitive.ObjectID, start time.Time) (*domain.User, error)
	DeleteAccount(ctx context.Context, userID primitive.ObjectID) error
}

// userService implements the UserService interface.
type userService struct {
	userRepo     repository.UserRepository
	dayRepo      repository.DayRepository
	exerciseRepo repository.ExerciseRepository
	txn          repository.TransactionManager
}

// NewUserService creates a new instance of userService.
func NewUserService(
	userRepo repository.UserRepository,
	dayRepo repository.DayRepository,
	exerciseRepo repository.ExerciseRepository,
	txn repository.TransactionManager,
) UserService {
	return &userService{
		userRepo:     userRepo,
		dayRepo:      dayRepo,
		exerciseRepo: exerciseRepo,
		txn:          txn,
	}
}

// GetProfile returns the caller's own user record.
func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile changes the caller's name and/or email. Empty fields keep
// their current value.
func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, email string) (*domain.User, error) {
	if name == "" && email == "" {
		return nil, ErrNothingToUpdate
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if email != "" && email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err == nil && existing.ID != userID {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Email = email
	}
	if name != "" {
		user.Name = name
	}

	updated, err := s.userRepo.UpdateProfile(ctx, userID, user.Name, user.Email)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Racing update beat the GetByEmail check; the unique index wins.
			return nil, ErrEmailTaken
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	updated.PasswordHash = ""
	return updated, nil
}

// SetPlannerStartDate anchors (or re-anchors) the caller's rotation.
// Re-anchoring silently re-maps which day is "today"; that matches the
// rotation's documented behavior when the day list itself changes.
func (s *userService) SetPlannerStartDate(ctx context.Context, userID primitive.ObjectID, start time.Time) (*domain.User, error) {
	user, err := s.userRepo.SetPlannerStartDate(ctx, userID, start)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// DeleteAccount removes the user and everything they own in one transaction:
// the exercises of all owned days, the days, then the user record itself.
// Either all of it disappears or none of it does; exercises reference their
// day by id with no storage-level cascade, so this is the sole guarantor of
// referential integrity on the user path.
func (s *userService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		dayList, err := s.dayRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		if len(dayList) > 0 {
			dayIDs := make([]primitive.ObjectID, len(dayList))
			for i, day := range dayList {
				dayIDs[i] = day.ID
			}
			if _, err := s.exerciseRepo.DeleteByDayIDs(ctx, dayIDs); err != nil {
				return err
			}
			if _, err := s.dayRepo.DeleteByUser(ctx, userID); err != nil {
				return err
			}
		}

		// Delete reports ErrNotFound when zero documents were removed;
		// that is the only case surfaced as "user not found".
		return s.userRepo.Delete(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		// WithTransaction only errors after the abort is confirmed.
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return nil
}
