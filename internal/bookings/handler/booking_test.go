package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"reserva/internal/bookings/service"
	"reserva/internal/bookings/validator"
	"reserva/pkg/cache"
	"reserva/pkg/config"
	mongotx "reserva/pkg/db/mongo"
	"reserva/pkg/idempotency"
	"reserva/pkg/lock"
	"reserva/pkg/logger"
	"reserva/pkg/model"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
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
	val, ok := s.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return val, nil
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
	if _, ok := s.data[key]; ok {
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

type stubRepository struct {
	createCalls int
}

func (r *stubRepository) Create(ctx context.Context, booking *model.Booking) error {
	r.createCalls++
	booking.ID = fmt.Sprintf("507f1f77bcf86cd7994390%02d", r.createCalls)
	return nil
}

func (r *stubRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, nil
}

func (r *stubRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (r *stubRepository) Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error) {
	return nil, nil
}

func (r *stubRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (r *stubRepository) FindOverlap(ctx context.Context, providerID string, start, end time.Time, excludeID string) (*model.Booking, error) {
	return nil, nil
}

func (r *stubRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *stubRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type stubResolver struct{}

func (stubResolver) FindByID(ctx context.Context, id string) (*model.User, error) {
	return &model.User{ID: id}, nil
}

type stubPublisher struct{}

func (stubPublisher) BookingCreated(ctx context.Context, booking model.Booking) error  { return nil }
func (stubPublisher) BookingUpdated(ctx context.Context, booking model.Booking) error  { return nil }
func (stubPublisher) BookingDeleted(ctx context.Context, booking model.Booking) error  { return nil }
func (stubPublisher) AvailabilityCreated(ctx context.Context, availability model.Availability) error {
	return nil
}
func (stubPublisher) AvailabilityUpdated(ctx context.Context, availability model.Availability) error {
	return nil
}
func (stubPublisher) AvailabilityDeleted(ctx context.Context, availability model.Availability) error {
	return nil
}
func (stubPublisher) UserCreated(ctx context.Context, user model.User) error { return nil }
func (stubPublisher) Close() error                                           { return nil }

func newRouter(t *testing.T, repo *stubRepository) *httprouter.Router {
	t.Helper()

	log := logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	store := newMemStore()
	guard := idempotency.NewGuard(store, log, idempotency.Config{TTL: 24 * time.Hour})
	locks := lock.NewManager(store, log, 10*time.Second, lock.GranularityProvider)

	svc := service.NewBookingService(
		repo,
		stubResolver{},
		guard,
		locks,
		stubPublisher{},
		validator.NewBookingValidator(log),
		cfg,
	)

	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func createRequest(t *testing.T, key string) *http.Request {
	t.Helper()

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	body, err := json.Marshal(map[string]any{
		"provider_id":   "507f1f77bcf86cd799439011",
		"customer_id":   "507f1f77bcf86cd799439012",
		"service_label": "Haircut",
		"start_time":    start,
		"end_time":      start.Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
	return req
}

// A retried create with the same idempotency key must get back the exact
// bytes of the first response, envelope included.
func TestCreate_ReplayBodyByteIdentical(t *testing.T) {
	repo := &stubRepository{}
	router := newRouter(t, repo)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, createRequest(t, "k1"))
	if first.Code != http.StatusCreated {
		t.Fatalf("first create: expected %d, got %d (%s)", http.StatusCreated, first.Code, first.Body.String())
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, createRequest(t, "k1"))
	if second.Code != http.StatusCreated {
		t.Fatalf("retry: expected %d, got %d (%s)", http.StatusCreated, second.Code, second.Body.String())
	}

	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Errorf("replay body differs from first response:\nfirst %s\nretry %s",
			first.Body.String(), second.Body.String())
	}
	if repo.createCalls != 1 {
		t.Errorf("expected a single store write, got %d", repo.createCalls)
	}
}

func TestCreate_MissingKeyRejected(t *testing.T) {
	repo := &stubRepository{}
	router := newRouter(t, repo)

	req := createRequest(t, "k2")
	req.Header.Del("Idempotency-Key")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d (%s)", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	if repo.createCalls != 0 {
		t.Errorf("expected no store write, got %d", repo.createCalls)
	}
}
