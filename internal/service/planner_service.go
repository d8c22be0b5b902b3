package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/planner"
	"alcyxob/fitness-planner/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrDayNotFound       = errors.New("day not found")
	ErrDayAlreadyExists  = errors.New("a day with this name already exists")
	ErrNoDaysConfigured  = errors.New("no days configured, add a day first")
	ErrPlannerNotStarted = errors.New("planner start date is missing or in the future")
)

// PlannerService manages the user's plan days and resolves which day is
// "today" from the elapsed-time rotation.
type PlannerService interface {
	AddDay(ctx context.Context, userID primitive.ObjectID, dayName string) (*domain.Day, error)
	GetDays(ctx context.Context, userID primitive.ObjectID) ([]domain.Day, error)
	RenameDay(ctx context.Context, userID, dayID primitive.ObjectID, dayName string) (*domain.Day, error)
	DeleteDay(ctx context.Context, userID, dayID primitive.ObjectID) (*domain.Day, error)
	ResolveToday(ctx context.Context, userID primitive.ObjectID) (*domain.Day, error)
	TodayExercises(ctx context.Context, userID primitive.ObjectID) (*domain.Day, []domain.Exercise, error)
}

// plannerService implements the PlannerService interface.
type plannerService struct {
	userRepo     repository.UserRepository
	dayRepo      repository.DayRepository
	exerciseRepo repository.ExerciseRepository
	txn          repository.TransactionManager
	now          func() time.Time // Injected for tests
}

// NewPlannerService creates a new instance of plannerService.
func NewPlannerService(
	userRepo repository.UserRepository,
	dayRepo repository.DayRepository,
	exerciseRepo repository.ExerciseRepository,
	txn repository.TransactionManager,
) PlannerService {
	return &plannerService{
		userRepo:     userRepo,
		dayRepo:      dayRepo,
		exerciseRepo: exerciseRepo,
		txn:          txn,
		now:          time.Now,
	}
}

// AddDay appends a new named day to the end of the user's rotation.
func (s *plannerService) AddDay(ctx context.Context, userID primitive.ObjectID, dayName string) (*domain.Day, error) {
	if dayName == "" {
		return nil, errors.New("day name cannot be empty")
	}

	_, err := s.dayRepo.GetByName(ctx, userID, dayName)
	if err == nil {
		return nil, ErrDayAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	day := &domain.Day{
		UserID:  userID,
		DayName: dayName,
		// ID, Position and timestamps are assigned by the repository.
	}

	if _, err := s.dayRepo.Create(ctx, day); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDayAlreadyExists
		}
		return nil, err
	}
	return day, nil
}

// GetDays returns the user's days in rotation order. An empty plan yields an
// empty slice, not an error.
func (s *plannerService) GetDays(ctx context.Context, userID primitive.ObjectID) ([]domain.Day, error) {
	return s.dayRepo.ListByUser(ctx, userID)
}

// RenameDay changes a day's name, keeping its rotation position.
func (s *plannerService) RenameDay(ctx context.Context, userID, dayID primitive.ObjectID, dayName string) (*domain.Day, error) {
	if dayName == "" {
		return nil, errors.New("day name cannot be empty")
	}

	day, err := s.dayRepo.Rename(ctx, userID, dayID, dayName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDayAlreadyExists
		}
		return nil, err
	}
	return day, nil
}

// DeleteDay removes a day and every exercise scheduled on it in one
// transaction; a failure anywhere leaves both collections untouched.
// Returns the deleted day.
func (s *plannerService) DeleteDay(ctx context.Context, userID, dayID primitive.ObjectID) (*domain.Day, error) {
	// Ownership is checked before the transaction starts so an unknown or
	// foreign day is a plain not-found, not an aborted transaction.
	day, err := s.dayRepo.GetByID(ctx, userID, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.exerciseRepo.DeleteByDayIDs(ctx, []primitive.ObjectID{day.ID}); err != nil {
			return err
		}
		return s.dayRepo.Delete(ctx, userID, dayID)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return day, nil
}

// ResolveToday maps the elapsed days since the user's planner start onto the
// rotation and returns the day that is "today".
func (s *plannerService) ResolveToday(ctx context.Context, userID primitive.ObjectID) (*domain.Day, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	dayList, err := s.dayRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(dayList) == 0 {
		return nil, ErrNoDaysConfigured
	}
	if !user.PlannerStarted() {
		return nil, ErrPlannerNotStarted
	}

	day, err := planner.ResolveToday(dayList, *user.PlannerStartDate, s.now())
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrNotStarted):
			return nil, ErrPlannerNotStarted
		case errors.Is(err, planner.ErrNoDaysConfigured):
			return nil, ErrNoDaysConfigured
		}
		return nil, err
	}
	return &day, nil
}

// TodayExercises resolves today's day and returns its exercises in creation
// order. A day without exercises yields an empty list.
func (s *plannerService) TodayExercises(ctx context.Context, userID primitive.ObjectID) (*domain.Day, []domain.Exercise, error) {
	day, err := s.ResolveToday(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	exercises, err := s.exerciseRepo.ListByDay(ctx, userID, day.ID, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	return day, exercises, nil
}
