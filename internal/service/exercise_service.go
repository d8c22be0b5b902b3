package service

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"alcyxob/fitness-planner/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrValidationFailed      = errors.New("missing exercise data")
	ErrInvalidDaySelect      = errors.New("invalid day selected")
	ErrExerciseAlreadyExists = errors.New("exercise already exists for day")
	ErrExerciseNotFound      = errors.New("exercise not found")
	ErrNoMediaAttached       = errors.New("exercise has no media attached")
)

// Default page size for day listings when the caller does not pass a limit.
const defaultExercisePageSize = 10

// ExerciseService manages the exercises attached to plan days.
type ExerciseService interface {
	AddExercise(ctx context.Context, userID primitive.ObjectID, dayIDs []primitive.ObjectID, details domain.ExerciseDetails, videos []domain.VideoRecommendation) ([]domain.Exercise, error)
	GetExercisesByDay(ctx context.Context, userID, dayID primitive.ObjectID, offset, limit int64) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID, patch domain.ExerciseDetailsPatch, removedVideoIDs []string, addedVideos []domain.VideoRecommendation) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID) error
	MediaUploadURL(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID, contentType string) (url string, objectKey string, err error)
	MediaDownloadURL(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID) (string, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	dayRepo      repository.DayRepository
	exerciseRepo repository.ExerciseRepository
	txn          repository.TransactionManager
	media        storage.FileStorage
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(
	dayRepo repository.DayRepository,
	exerciseRepo repository.ExerciseRepository,
	txn repository.TransactionManager,
	media storage.FileStorage,
) ExerciseService {
	return &exerciseService{
		dayRepo:      dayRepo,
		exerciseRepo: exerciseRepo,
		txn:          txn,
		media:        media,
	}
}

// AddExercise schedules one catalog exercise on each of the given days,
// creating one document per day. The batch is all-or-nothing: every target
// day is validated (ownership and duplicate catalog id) before anything is
// written, and the inserts themselves run in a single transaction, so a
// failure on any day creates no documents at all.
func (s *exerciseService) AddExercise(ctx context.Context, userID primitive.ObjectID, dayIDs []primitive.ObjectID, details domain.ExerciseDetails, videos []domain.VideoRecommendation) ([]domain.Exercise, error) {
	if len(dayIDs) == 0 || details.ID == "" {
		return nil, ErrValidationFailed
	}
	if details.Reps < 1 {
		details.Reps = 1
	}
	if details.Sets < 1 {
		details.Sets = 1
	}
	if videos == nil {
		videos = []domain.VideoRecommendation{}
	}

	// Phase one: validate every day before touching anything.
	targetDays := make([]*domain.Day, 0, len(dayIDs))
	for _, dayID := range dayIDs {
		day, err := s.dayRepo.GetByID(ctx, userID, dayID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidDaySelect, dayID.Hex())
			}
			return nil, err
		}

		_, err = s.exerciseRepo.GetByDetailsID(ctx, userID, dayID, details.ID)
		if err == nil {
			// Name the offending day so the caller can self-correct.
			return nil, fmt.Errorf("%w: %s", ErrExerciseAlreadyExists, day.DayName)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		targetDays = append(targetDays, day)
	}

	// Phase two: insert all documents in one transaction.
	created := make([]domain.Exercise, 0, len(targetDays))
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		created = created[:0]
		for _, day := range targetDays {
			exercise := &domain.Exercise{
				UserID:               userID,
				DayID:                day.ID,
				Details:              details,
				VideoRecommendations: append([]domain.VideoRecommendation(nil), videos...),
			}
			if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					// Racing insert slipped past the phase-one check.
					return fmt.Errorf("%w: %s", ErrExerciseAlreadyExists, day.DayName)
				}
				return err
			}
			created = append(created, *exercise)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrExerciseAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	return created, nil
}

// GetExercisesByDay returns a page of a day's exercises in creation order.
func (s *exerciseService) GetExercisesByDay(ctx context.Context, userID, dayID primitive.ObjectID, offset, limit int64) ([]domain.Exercise, error) {
	if _, err := s.dayRepo.GetByID(ctx, userID, dayID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultExercisePageSize
	}

	exercises, err := s.exerciseRepo.ListByDay(ctx, userID, dayID, offset, limit)
	if err != nil {
		return nil, err
	}
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	return exercises, nil
}

// UpdateExercise merges a partial details patch into the stored record and
// edits the video list. Removals are applied before additions, so re-adding
// a removed videoId in the same request leaves exactly the new entry.
func (s *exerciseService) UpdateExercise(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID, patch domain.ExerciseDetailsPatch, removedVideoIDs []string, addedVideos []domain.VideoRecommendation) (*domain.Exercise, error) {
	if _, err := s.dayRepo.GetByID(ctx, userID, dayID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, userID, dayID, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	patch.Apply(&exercise.Details)
	exercise.RemoveVideos(removedVideoIDs)
	exercise.AddVideos(addedVideos)

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// DeleteExercise removes one exercise from one day.
func (s *exerciseService) DeleteExercise(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID) error {
	if _, err := s.dayRepo.GetByID(ctx, userID, dayID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDayNotFound
		}
		return err
	}

	err := s.exerciseRepo.Delete(ctx, userID, dayID, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

// MediaUploadURL issues a presigned upload URL for an exercise demo clip and
// records the object key on the exercise. The client PUTs the file straight
// to object storage; it never passes through this server.
func (s *exerciseService) MediaUploadURL(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID, contentType string) (string, string, error) {
	if _, err := s.exerciseRepo.GetByID(ctx, userID, dayID, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", ErrExerciseNotFound
		}
		return "", "", err
	}

	objectKey := fmt.Sprintf("exercise-media/%s/%s", userID.Hex(), uuid.NewString())

	url, err := s.media.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", "", err
	}

	if err := s.exerciseRepo.SetMediaObjectKey(ctx, userID, dayID, exerciseID, objectKey); err != nil {
		return "", "", err
	}
	return url, objectKey, nil
}

// MediaDownloadURL issues a presigned download URL for a previously uploaded
// demo clip.
func (s *exerciseService) MediaDownloadURL(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID) (string, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, userID, dayID, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrExerciseNotFound
		}
		return "", err
	}
	if exercise.MediaObjectKey == "" {
		return "", ErrNoMediaAttached
	}

	return s.media.GeneratePresignedDownloadURL(ctx, exercise.MediaObjectKey, storage.DefaultPresignedURLExpiry)
}
