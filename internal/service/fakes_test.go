package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is a single in-memory backing store shared by the fake
// repositories, so the fake transaction manager can snapshot and restore all
// collections at once and tests can assert all-or-nothing behavior.
type fakeStore struct {
	users     map[primitive.ObjectID]domain.User
	days      map[primitive.ObjectID]domain.Day
	exercises map[primitive.ObjectID]domain.Exercise

	// clock produces strictly increasing creation timestamps so that
	// createdAt ordering is deterministic within a test.
	clock time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[primitive.ObjectID]domain.User),
		days:      make(map[primitive.ObjectID]domain.Day),
		exercises: make(map[primitive.ObjectID]domain.Exercise),
		clock:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func cloneExercise(ex domain.Exercise) domain.Exercise {
	ex.VideoRecommendations = append([]domain.VideoRecommendation(nil), ex.VideoRecommendations...)
	ex.Details.Instructions = append([]string(nil), ex.Details.Instructions...)
	return ex
}

func (s *fakeStore) snapshot() *fakeStore {
	snap := newFakeStore()
	snap.clock = s.clock
	for id, u := range s.users {
		snap.users[id] = u
	}
	for id, d := range s.days {
		snap.days[id] = d
	}
	for id, ex := range s.exercises {
		snap.exercises[id] = cloneExercise(ex)
	}
	return snap
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.users = snap.users
	s.days = snap.days
	s.exercises = snap.exercises
	s.clock = snap.clock
}

// --- Transaction Manager ---

// fakeTxnManager mimics WithTransaction semantics against the shared store:
// an error from fn rolls every collection back to the pre-transaction state.
type fakeTxnManager struct {
	store *fakeStore
	calls int
}

func (m *fakeTxnManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// --- User Repository ---

type fakeUserRepo struct {
	store *fakeStore

	deleteErr error // injected failure for rollback tests
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := r.store.tick()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := u
	return &found, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*domain.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for otherID, other := range r.store.users {
		if otherID != id && other.Email == email {
			return nil, repository.ErrDuplicate
		}
	}
	u.Name = name
	u.Email = email
	u.UpdatedAt = r.store.tick()
	r.store.users[id] = u
	updated := u
	return &updated, nil
}

func (r *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	u, ok := r.store.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = r.store.tick()
	r.store.users[id] = u
	return nil
}

func (r *fakeUserRepo) SetPlannerStartDate(ctx context.Context, id primitive.ObjectID, start time.Time) (*domain.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.PlannerStartDate = &start
	u.UpdatedAt = r.store.tick()
	r.store.users[id] = u
	updated := u
	return &updated, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.store.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.users, id)
	return nil
}

// --- Day Repository ---

type fakeDayRepo struct {
	store *fakeStore

	deleteErr error // injected failure for rollback tests
}

func (r *fakeDayRepo) Create(ctx context.Context, day *domain.Day) (primitive.ObjectID, error) {
	maxPosition := 0
	for _, d := range r.store.days {
		if d.UserID != day.UserID {
			continue
		}
		if d.DayName == day.DayName {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		if d.Position > maxPosition {
			maxPosition = d.Position
		}
	}
	day.ID = primitive.NewObjectID()
	day.Position = maxPosition + 1
	now := r.store.tick()
	day.CreatedAt = now
	day.UpdatedAt = now
	r.store.days[day.ID] = *day
	return day.ID, nil
}

func (r *fakeDayRepo) GetByID(ctx context.Context, userID, dayID primitive.ObjectID) (*domain.Day, error) {
	d, ok := r.store.days[dayID]
	if !ok || d.UserID != userID {
		return nil, repository.ErrNotFound
	}
	found := d
	return &found, nil
}

func (r *fakeDayRepo) GetByName(ctx context.Context, userID primitive.ObjectID, dayName string) (*domain.Day, error) {
	for _, d := range r.store.days {
		if d.UserID == userID && d.DayName == dayName {
			found := d
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDayRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Day, error) {
	var days []domain.Day
	for _, d := range r.store.days {
		if d.UserID == userID {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Position < days[j].Position
	})
	return days, nil
}

func (r *fakeDayRepo) Rename(ctx context.Context, userID, dayID primitive.ObjectID, dayName string) (*domain.Day, error) {
	d, ok := r.store.days[dayID]
	if !ok || d.UserID != userID {
		return nil, repository.ErrNotFound
	}
	for otherID, other := range r.store.days {
		if otherID != dayID && other.UserID == userID && other.DayName == dayName {
			return nil, repository.ErrDuplicate
		}
	}
	d.DayName = dayName
	d.UpdatedAt = r.store.tick()
	r.store.days[dayID] = d
	renamed := d
	return &renamed, nil
}

func (r *fakeDayRepo) Delete(ctx context.Context, userID, dayID primitive.ObjectID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	d, ok := r.store.days[dayID]
	if !ok || d.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.store.days, dayID)
	return nil
}

func (r *fakeDayRepo) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var deleted int64
	for id, d := range r.store.days {
		if d.UserID == userID {
			delete(r.store.days, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- Exercise Repository ---

type fakeExerciseRepo struct {
	store *fakeStore

	createErrAfter int   // fail Create once this many inserts succeeded; 0 disables
	createCalls    int
	createErr      error
}

func (r *fakeExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.createCalls++
	if r.createErr != nil && r.createCalls > r.createErrAfter {
		return primitive.NilObjectID, r.createErr
	}
	for _, ex := range r.store.exercises {
		if ex.UserID == exercise.UserID && ex.DayID == exercise.DayID && ex.Details.ID == exercise.Details.ID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	if exercise.VideoRecommendations == nil {
		exercise.VideoRecommendations = []domain.VideoRecommendation{}
	}
	exercise.ID = primitive.NewObjectID()
	now := r.store.tick()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.store.exercises[exercise.ID] = cloneExercise(*exercise)
	return exercise.ID, nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	ex, ok := r.store.exercises[exerciseID]
	if !ok || ex.UserID != userID || ex.DayID != dayID {
		return nil, repository.ErrNotFound
	}
	found := cloneExercise(ex)
	return &found, nil
}

func (r *fakeExerciseRepo) GetByDetailsID(ctx context.Context, userID, dayID primitive.ObjectID, detailsID string) (*domain.Exercise, error) {
	for _, ex := range r.store.exercises {
		if ex.UserID == userID && ex.DayID == dayID && ex.Details.ID == detailsID {
			found := cloneExercise(ex)
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeExerciseRepo) ListByDay(ctx context.Context, userID, dayID primitive.ObjectID, offset, limit int64) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	for _, ex := range r.store.exercises {
		if ex.UserID == userID && ex.DayID == dayID {
			exercises = append(exercises, cloneExercise(ex))
		}
	}
	sort.Slice(exercises, func(i, j int) bool {
		return exercises[i].CreatedAt.Before(exercises[j].CreatedAt)
	})
	if offset >= int64(len(exercises)) {
		return nil, nil
	}
	exercises = exercises[offset:]
	if limit > 0 && limit < int64(len(exercises)) {
		exercises = exercises[:limit]
	}
	return exercises, nil
}

func (r *fakeExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	ex, ok := r.store.exercises[exercise.ID]
	if !ok || ex.UserID != exercise.UserID || ex.DayID != exercise.DayID {
		return repository.ErrNotFound
	}
	ex.Details = exercise.Details
	ex.VideoRecommendations = exercise.VideoRecommendations
	ex.UpdatedAt = r.store.tick()
	r.store.exercises[exercise.ID] = cloneExercise(ex)
	return nil
}

func (r *fakeExerciseRepo) SetMediaObjectKey(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID, objectKey string) error {
	ex, ok := r.store.exercises[exerciseID]
	if !ok || ex.UserID != userID || ex.DayID != dayID {
		return repository.ErrNotFound
	}
	ex.MediaObjectKey = objectKey
	ex.UpdatedAt = r.store.tick()
	r.store.exercises[exerciseID] = ex
	return nil
}

func (r *fakeExerciseRepo) Delete(ctx context.Context, userID, dayID, exerciseID primitive.ObjectID) error {
	ex, ok := r.store.exercises[exerciseID]
	if !ok || ex.UserID != userID || ex.DayID != dayID {
		return repository.ErrNotFound
	}
	delete(r.store.exercises, exerciseID)
	return nil
}

func (r *fakeExerciseRepo) DeleteByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) (int64, error) {
	targets := make(map[primitive.ObjectID]struct{}, len(dayIDs))
	for _, id := range dayIDs {
		targets[id] = struct{}{}
	}
	var deleted int64
	for id, ex := range r.store.exercises {
		if _, ok := targets[ex.DayID]; ok {
			delete(r.store.exercises, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- File Storage ---

type fakeFileStorage struct {
	uploads   []string
	downloads []string
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	s.uploads = append(s.uploads, objectKey)
	return fmt.Sprintf("https://storage.test/upload/%s", objectKey), nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	s.downloads = append(s.downloads, objectKey)
	return fmt.Sprintf("https://storage.test/download/%s", objectKey), nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	return nil
}

// --- Test Environment ---

// testEnv bundles the fake store, repos and services most service tests need.
type testEnv struct {
	store        *fakeStore
	userRepo     *fakeUserRepo
	dayRepo      *fakeDayRepo
	exerciseRepo *fakeExerciseRepo
	txn          *fakeTxnManager
	media        *fakeFileStorage
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	return &testEnv{
		store:        store,
		userRepo:     &fakeUserRepo{store: store},
		dayRepo:      &fakeDayRepo{store: store},
		exerciseRepo: &fakeExerciseRepo{store: store},
		txn:          &fakeTxnManager{store: store},
		media:        &fakeFileStorage{},
	}
}

// seedUser inserts a user directly into the store.
func (e *testEnv) seedUser(name, email string, plannerStart *time.Time) domain.User {
	user := domain.User{
		ID:               primitive.NewObjectID(),
		Name:             name,
		Email:            email,
		PasswordHash:     "$2a$10$fakefakefakefakefakefake",
		PlannerStartDate: plannerStart,
		CreatedAt:        e.store.tick(),
	}
	user.UpdatedAt = user.CreatedAt
	e.store.users[user.ID] = user
	return user
}

// seedDay inserts a day directly into the store with an explicit position.
func (e *testEnv) seedDay(userID primitive.ObjectID, dayName string, position int) domain.Day {
	day := domain.Day{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		DayName:   dayName,
		Position:  position,
		CreatedAt: e.store.tick(),
	}
	day.UpdatedAt = day.CreatedAt
	e.store.days[day.ID] = day
	return day
}

// seedExercise inserts an exercise directly into the store.
func (e *testEnv) seedExercise(userID, dayID primitive.ObjectID, detailsID string) domain.Exercise {
	exercise := domain.Exercise{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		DayID:  dayID,
		Details: domain.ExerciseDetails{
			ID:   detailsID,
			Name: "exercise " + detailsID,
			Reps: 10,
			Sets: 3,
		},
		VideoRecommendations: []domain.VideoRecommendation{},
		CreatedAt:            e.store.tick(),
	}
	exercise.UpdatedAt = exercise.CreatedAt
	e.store.exercises[exercise.ID] = exercise
	return exercise
}
