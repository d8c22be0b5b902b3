package service

import (
	"context"
	"errors"
	"testing"

	"alcyxob/fitness-planner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newExerciseServiceForTest(env *testEnv) ExerciseService {
	return NewExerciseService(env.dayRepo, env.exerciseRepo, env.txn, env.media)
}

func squatDetails() domain.ExerciseDetails {
	return domain.ExerciseDetails{
		ID:        "0043",
		Name:      "barbell squat",
		BodyPart:  "upper legs",
		Target:    "quads",
		Equipment: "barbell",
		Reps:      8,
		Sets:      4,
	}
}

func TestAddExerciseSchedulesOnEveryDay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	dayA := env.seedDay(user.ID, "A", 1)
	dayB := env.seedDay(user.ID, "B", 2)

	videos := []domain.VideoRecommendation{{VideoID: "v1", Title: "how to squat"}}

	created, err := svc.AddExercise(ctx, user.ID, []primitive.ObjectID{dayA.ID, dayB.ID}, squatDetails(), videos)
	require.NoError(t, err)
	require.Len(t, created, 2)

	// One independent document per day, each with its own id.
	assert.Equal(t, dayA.ID, created[0].DayID)
	assert.Equal(t, dayB.ID, created[1].DayID)
	assert.NotEqual(t, created[0].ID, created[1].ID)
	assert.Equal(t, videos, created[0].VideoRecommendations)
	assert.Equal(t, videos, created[1].VideoRecommendations)
	assert.Len(t, env.store.exercises, 2)
}

func TestAddExerciseDefaultsRepsAndSets(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)

	details := squatDetails()
	details.Reps = 0
	details.Sets = 0

	created, err := svc.AddExercise(ctx, user.ID, []primitive.ObjectID{day.ID}, details, nil)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, 1, created[0].Details.Reps)
	assert.Equal(t, 1, created[0].Details.Sets)
	assert.NotNil(t, created[0].VideoRecommendations)
}

func TestAddExerciseValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)

	_, err := svc.AddExercise(ctx, user.ID, nil, squatDetails(), nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	noID := squatDetails()
	noID.ID = ""
	_, err = svc.AddExercise(ctx, user.ID, []primitive.ObjectID{day.ID}, noID, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	assert.Empty(t, env.store.exercises)
}

func TestAddExerciseInvalidDay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)
	unknown := primitive.NewObjectID()

	_, err := svc.AddExercise(ctx, user.ID, []primitive.ObjectID{day.ID, unknown}, squatDetails(), nil)
	require.ErrorIs(t, err, ErrInvalidDaySelect)
	assert.Contains(t, err.Error(), unknown.Hex())

	// Validation runs before any insert, so the valid day got nothing either.
	assert.Empty(t, env.store.exercises)
	assert.Zero(t, env.txn.calls)
}

func TestAddExerciseDuplicateNamesOffendingDay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	dayA := env.seedDay(user.ID, "Leg day", 1)
	dayB := env.seedDay(user.ID, "Push day", 2)
	env.seedExercise(user.ID, dayB.ID, "0043")

	_, err := svc.AddExercise(ctx, user.ID, []primitive.ObjectID{dayA.ID, dayB.ID}, squatDetails(), nil)
	require.ErrorIs(t, err, ErrExerciseAlreadyExists)
	assert.Contains(t, err.Error(), "Push day")

	// The batch is all-or-nothing: the clean day stays untouched.
	assert.Len(t, env.store.exercises, 1)
}

func TestAddExerciseAtomicOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	dayA := env.seedDay(user.ID, "A", 1)
	dayB := env.seedDay(user.ID, "B", 2)

	// First insert succeeds, second fails mid-transaction.
	env.exerciseRepo.createErrAfter = 1
	env.exerciseRepo.createErr = errors.New("write conflict")

	_, err := svc.AddExercise(ctx, user.ID, []primitive.ObjectID{dayA.ID, dayB.ID}, squatDetails(), nil)
	require.ErrorIs(t, err, ErrTransactionFailed)

	assert.Empty(t, env.store.exercises)
}

func TestGetExercisesByDayPagination(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)

	var seeded []domain.Exercise
	for i := 0; i < 12; i++ {
		seeded = append(seeded, env.seedExercise(user.ID, day.ID, primitive.NewObjectID().Hex()))
	}

	// No limit given falls back to the default page size.
	page, err := svc.GetExercisesByDay(ctx, user.ID, day.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page, 10)
	assert.Equal(t, seeded[0].ID, page[0].ID)

	rest, err := svc.GetExercisesByDay(ctx, user.ID, day.ID, 10, 10)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, seeded[10].ID, rest[0].ID)

	_, err = svc.GetExercisesByDay(ctx, user.ID, primitive.NewObjectID(), 0, 0)
	assert.ErrorIs(t, err, ErrDayNotFound)
}

func TestGetExercisesByDayEmpty(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)

	exercises, err := svc.GetExercisesByDay(ctx, user.ID, day.ID, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, exercises)
	assert.Empty(t, exercises)
}

func TestUpdateExerciseMergesPatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)
	exercise := env.seedExercise(user.ID, day.ID, "0043")

	reps := 12
	patch := domain.ExerciseDetailsPatch{Reps: &reps}

	updated, err := svc.UpdateExercise(ctx, user.ID, day.ID, exercise.ID, patch, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 12, updated.Details.Reps)
	// Unpatched fields keep their stored values.
	assert.Equal(t, exercise.Details.Name, updated.Details.Name)
	assert.Equal(t, exercise.Details.Sets, updated.Details.Sets)
	assert.Equal(t, "0043", updated.Details.ID)

	stored := env.store.exercises[exercise.ID]
	assert.Equal(t, 12, stored.Details.Reps)
}

func TestUpdateExerciseVideoEdits(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)
	exercise := env.seedExercise(user.ID, day.ID, "0043")

	_, err := svc.UpdateExercise(ctx, user.ID, day.ID, exercise.ID, domain.ExerciseDetailsPatch{}, nil,
		[]domain.VideoRecommendation{
			{VideoID: "v1", Title: "old"},
			{VideoID: "v2", Title: "keep"},
		})
	require.NoError(t, err)

	// Removing and re-adding the same videoId in one request ends up with
	// exactly the new entry, appended at the end.
	updated, err := svc.UpdateExercise(ctx, user.ID, day.ID, exercise.ID, domain.ExerciseDetailsPatch{},
		[]string{"v1"},
		[]domain.VideoRecommendation{{VideoID: "v1", Title: "new"}})
	require.NoError(t, err)

	assert.Equal(t, []domain.VideoRecommendation{
		{VideoID: "v2", Title: "keep"},
		{VideoID: "v1", Title: "new"},
	}, updated.VideoRecommendations)
}

func TestUpdateExerciseNotFound(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)
	exercise := env.seedExercise(user.ID, day.ID, "0043")

	_, err := svc.UpdateExercise(ctx, user.ID, primitive.NewObjectID(), exercise.ID, domain.ExerciseDetailsPatch{}, nil, nil)
	assert.ErrorIs(t, err, ErrDayNotFound)

	_, err = svc.UpdateExercise(ctx, user.ID, day.ID, primitive.NewObjectID(), domain.ExerciseDetailsPatch{}, nil, nil)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestDeleteExercise(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)
	exercise := env.seedExercise(user.ID, day.ID, "0043")

	require.NoError(t, svc.DeleteExercise(ctx, user.ID, day.ID, exercise.ID))
	assert.Empty(t, env.store.exercises)

	err := svc.DeleteExercise(ctx, user.ID, day.ID, exercise.ID)
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	err = svc.DeleteExercise(ctx, user.ID, primitive.NewObjectID(), exercise.ID)
	assert.ErrorIs(t, err, ErrDayNotFound)
}

func TestMediaUploadURL(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)
	exercise := env.seedExercise(user.ID, day.ID, "0043")

	url, objectKey, err := svc.MediaUploadURL(ctx, user.ID, day.ID, exercise.ID, "video/mp4")
	require.NoError(t, err)
	assert.Contains(t, url, objectKey)
	assert.Contains(t, objectKey, user.ID.Hex())

	// The object key is recorded so the download endpoint can find it.
	stored := env.store.exercises[exercise.ID]
	assert.Equal(t, objectKey, stored.MediaObjectKey)

	_, _, err = svc.MediaUploadURL(ctx, user.ID, day.ID, primitive.NewObjectID(), "video/mp4")
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestMediaDownloadURL(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newExerciseServiceForTest(env)
	user := env.seedUser("mira", "mira@example.com", nil)
	day := env.seedDay(user.ID, "A", 1)
	exercise := env.seedExercise(user.ID, day.ID, "0043")

	_, err := svc.MediaDownloadURL(ctx, user.ID, day.ID, exercise.ID)
	assert.ErrorIs(t, err, ErrNoMediaAttached)

	_, objectKey, err := svc.MediaUploadURL(ctx, user.ID, day.ID, exercise.ID, "video/mp4")
	require.NoError(t, err)

	url, err := svc.MediaDownloadURL(ctx, user.ID, day.ID, exercise.ID)
	require.NoError(t, err)
	assert.Contains(t, url, objectKey)
}
