package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	userserrors "reserva/internal/users/errors"
	"reserva/pkg/cache"
	"reserva/pkg/config"
	apperrors "reserva/pkg/errors"
	"reserva/pkg/idempotency"
	"reserva/pkg/logger"
	"reserva/pkg/model"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (s *memStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.data[key]; held {
		return false, nil
	}
	s.data[key] = value
	return true, nil
}

func (s *memStore) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type mockUserRepository struct {
	createCalls int

	createFunc          func(ctx context.Context, user *model.User) error
	findByIDFunc        func(ctx context.Context, id string) (*model.User, error)
	findBySubjectIDFunc func(ctx context.Context, subjectID string) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "507f1f77bcf86cd799439077"
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) FindBySubjectID(ctx context.Context, subjectID string) (*model.User, error) {
	if m.findBySubjectIDFunc != nil {
		return m.findBySubjectIDFunc(ctx, subjectID)
	}
	return nil, userserrors.ErrNotFound
}

type countingPublisher struct {
	userCreated int
}

func (p *countingPublisher) BookingCreated(ctx context.Context, booking model.Booking) error {
	return nil
}
func (p *countingPublisher) BookingUpdated(ctx context.Context, booking model.Booking) error {
	return nil
}
func (p *countingPublisher) BookingDeleted(ctx context.Context, booking model.Booking) error {
	return nil
}
func (p *countingPublisher) AvailabilityCreated(ctx context.Context, availability model.Availability) error {
	return nil
}
func (p *countingPublisher) AvailabilityUpdated(ctx context.Context, availability model.Availability) error {
	return nil
}
func (p *countingPublisher) AvailabilityDeleted(ctx context.Context, availability model.Availability) error {
	return nil
}

func (p *countingPublisher) UserCreated(ctx context.Context, user model.User) error {
	p.userCreated++
	return nil
}

func (p *countingPublisher) Close() error { return nil }

func newUserService(repo *mockUserRepository, publisher *countingPublisher) *userService {
	log := logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "test",
	})
	guard := idempotency.NewGuard(newMemStore(), log, idempotency.Config{TTL: 24 * time.Hour})
	return &userService{
		repo:      repo,
		guard:     guard,
		publisher: publisher,
		cfg: &config.Config{
			Log:                 log,
			ReadTimeout:         5 * time.Second,
			WriteTimeout:        5 * time.Second,
			IdempotencyGuardTTL: 10 * time.Minute,
		},
	}
}

func providerClaims(subject string) map[string]any {
	return map[string]any{
		"sub":   subject,
		"email": "ana@example.com",
		"name":  "Ana Torres",
		"realm_access": map[string]any{
			"roles": []any{"provider"},
		},
	}
}

func userErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

func TestGetOrCreate_CreatesOnFirstSight(t *testing.T) {
	repo := &mockUserRepository{}
	publisher := &countingPublisher{}
	svc := newUserService(repo, publisher)

	user, created, err := svc.GetOrCreate(context.Background(), providerClaims("subject-1"), "sync-key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true for a new subject")
	}
	if user.SubjectID != "subject-1" {
		t.Errorf("expected subject-1, got %s", user.SubjectID)
	}
	if user.Role != model.RoleProvider {
		t.Errorf("expected provider role, got %s", user.Role)
	}
	if publisher.userCreated != 1 {
		t.Errorf("expected 1 user created event, got %d", publisher.userCreated)
	}
}

func TestGetOrCreate_ExistingUserNotRecreated(t *testing.T) {
	existing := &model.User{
		ID:        "507f1f77bcf86cd799439077",
		SubjectID: "subject-1",
		Role:      model.RoleClient,
	}
	repo := &mockUserRepository{
		findBySubjectIDFunc: func(ctx context.Context, subjectID string) (*model.User, error) {
			return existing, nil
		},
	}
	publisher := &countingPublisher{}
	svc := newUserService(repo, publisher)

	user, created, err := svc.GetOrCreate(context.Background(), providerClaims("subject-1"), "sync-key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false for a known subject")
	}
	if user.ID != existing.ID {
		t.Errorf("expected existing user returned, got %s", user.ID)
	}
	if repo.createCalls != 0 {
		t.Errorf("expected no create, got %d", repo.createCalls)
	}
	if publisher.userCreated != 0 {
		t.Errorf("expected no event, got %d", publisher.userCreated)
	}
}

func TestGetOrCreate_ReusedKeyRejected(t *testing.T) {
	repo := &mockUserRepository{}
	svc := newUserService(repo, &countingPublisher{})

	if _, _, err := svc.GetOrCreate(context.Background(), providerClaims("subject-1"), "sync-key-1"); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	_, _, err := svc.GetOrCreate(context.Background(), providerClaims("subject-1"), "sync-key-1")
	if err == nil {
		t.Fatal("expected conflict for reused key")
	}
	if code := userErrCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, code)
	}
	if repo.createCalls != 1 {
		t.Errorf("expected store writes to stay at 1, got %d", repo.createCalls)
	}
}

func TestGetOrCreate_MissingKey(t *testing.T) {
	svc := newUserService(&mockUserRepository{}, &countingPublisher{})

	_, _, err := svc.GetOrCreate(context.Background(), providerClaims("subject-1"), "")
	if err == nil {
		t.Fatal("expected error for missing idempotency key")
	}
	if code := userErrCode(t, err); code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, code)
	}
}

func TestGetOrCreate_BadClaims(t *testing.T) {
	svc := newUserService(&mockUserRepository{}, &countingPublisher{})

	claims := map[string]any{"sub": "subject-1"} // no realm_access
	_, _, err := svc.GetOrCreate(context.Background(), claims, "sync-key-1")
	if err == nil {
		t.Fatal("expected error for claims without roles")
	}
	if code := userErrCode(t, err); code != apperrors.CodeForbidden {
		t.Errorf("expected code %s, got %s", apperrors.CodeForbidden, code)
	}
}
