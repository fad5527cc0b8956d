package service

import (
	"context"
	"errors"
	"testing"
	"time"

	availabilityerrors "reserva/internal/availability/errors"
	"reserva/internal/availability/validator"
	userserrors "reserva/internal/users/errors"
	"reserva/pkg/config"
	apperrors "reserva/pkg/errors"
	"reserva/pkg/logger"
	"reserva/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockAvailabilityRepository struct {
	createFunc         func(ctx context.Context, availability *model.Availability) error
	findByIDFunc       func(ctx context.Context, id string) (*model.Availability, error)
	findByProviderFunc func(ctx context.Context, providerID string) ([]*model.Availability, error)
	updateFunc         func(ctx context.Context, id string, availability *model.Availability) (*mongo.UpdateResult, error)
	deleteFunc         func(ctx context.Context, id string) error
}

func (m *mockAvailabilityRepository) Create(ctx context.Context, availability *model.Availability) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, availability)
	}
	availability.ID = "507f1f77bcf86cd799439055"
	return nil
}

func (m *mockAvailabilityRepository) FindByID(ctx context.Context, id string) (*model.Availability, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, availabilityerrors.ErrNotFound
}

func (m *mockAvailabilityRepository) FindByProvider(ctx context.Context, providerID string) ([]*model.Availability, error) {
	if m.findByProviderFunc != nil {
		return m.findByProviderFunc(ctx, providerID)
	}
	return []*model.Availability{}, nil
}

func (m *mockAvailabilityRepository) Update(ctx context.Context, id string, availability *model.Availability) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, availability)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockAvailabilityRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type recordingPublisher struct {
	created int
	updated int
	deleted int
	last    model.Availability
	err     error
}

func (p *recordingPublisher) BookingCreated(ctx context.Context, booking model.Booking) error {
	return nil
}
func (p *recordingPublisher) BookingUpdated(ctx context.Context, booking model.Booking) error {
	return nil
}
func (p *recordingPublisher) BookingDeleted(ctx context.Context, booking model.Booking) error {
	return nil
}

func (p *recordingPublisher) AvailabilityCreated(ctx context.Context, availability model.Availability) error {
	p.created++
	p.last = availability
	return p.err
}

func (p *recordingPublisher) AvailabilityUpdated(ctx context.Context, availability model.Availability) error {
	p.updated++
	p.last = availability
	return p.err
}

func (p *recordingPublisher) AvailabilityDeleted(ctx context.Context, availability model.Availability) error {
	p.deleted++
	p.last = availability
	return p.err
}

func (p *recordingPublisher) UserCreated(ctx context.Context, user model.User) error { return nil }
func (p *recordingPublisher) Close() error                                           { return nil }

// stubResolver resolves every provider id unless err is set.
type stubResolver struct {
	err error
}

func (r *stubResolver) FindByID(ctx context.Context, id string) (*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &model.User{ID: id}, nil
}

func newService(repo *mockAvailabilityRepository, publisher *recordingPublisher) *availabilityService {
	log := logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "test",
	})
	return &availabilityService{
		repo:      repo,
		providers: &stubResolver{},
		publisher: publisher,
		validator: validator.NewAvailabilityValidator(log),
		cfg: &config.Config{
			Log:          log,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
	}
}

func sampleAvailability() *model.Availability {
	return &model.Availability{
		ProviderID:      "507f1f77bcf86cd799439011",
		DayOfWeek:       "Tuesday",
		StartOfDay:      "09:00",
		EndOfDay:        "17:00",
		SlotDurationMin: 30,
	}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

func TestCreate_PublishesEvent(t *testing.T) {
	repo := &mockAvailabilityRepository{}
	publisher := &recordingPublisher{}
	svc := newService(repo, publisher)

	availability := sampleAvailability()
	if err := svc.Create(context.Background(), availability); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if availability.ID == "" {
		t.Error("expected assigned ID")
	}
	if publisher.created != 1 {
		t.Errorf("expected 1 created event, got %d", publisher.created)
	}
}

func TestCreate_InvalidWindowRejected(t *testing.T) {
	repo := &mockAvailabilityRepository{
		createFunc: func(ctx context.Context, availability *model.Availability) error {
			t.Error("repository must not be called for invalid input")
			return nil
		},
	}
	svc := newService(repo, &recordingPublisher{})

	availability := sampleAvailability()
	availability.EndOfDay = "08:00"

	err := svc.Create(context.Background(), availability)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if code := errCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, code)
	}
}

func TestCreate_UnknownProviderRejected(t *testing.T) {
	repo := &mockAvailabilityRepository{
		createFunc: func(ctx context.Context, availability *model.Availability) error {
			t.Error("repository must not be called for an unknown provider")
			return nil
		},
	}
	svc := newService(repo, &recordingPublisher{})
	svc.providers = &stubResolver{err: userserrors.ErrNotFound}

	err := svc.Create(context.Background(), sampleAvailability())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if code := errCode(t, err); code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, code)
	}
}

func TestCreate_PublishFailureNotFatal(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker unreachable")}
	svc := newService(&mockAvailabilityRepository{}, publisher)

	if err := svc.Create(context.Background(), sampleAvailability()); err != nil {
		t.Fatalf("create must succeed despite publish failure: %v", err)
	}
}

func TestUpdate_MergesAndRevalidates(t *testing.T) {
	existing := sampleAvailability()
	existing.ID = "507f1f77bcf86cd799439055"

	repo := &mockAvailabilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Availability, error) {
			return existing, nil
		},
	}
	publisher := &recordingPublisher{}
	svc := newService(repo, publisher)

	updated, err := svc.Update(context.Background(), existing.ID, &model.AvailabilityUpdate{
		EndOfDay: "18:30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.EndOfDay != "18:30" {
		t.Errorf("expected merged end_of_day 18:30, got %s", updated.EndOfDay)
	}
	if updated.StartOfDay != existing.StartOfDay {
		t.Errorf("expected untouched start_of_day, got %s", updated.StartOfDay)
	}
	if publisher.updated != 1 {
		t.Errorf("expected 1 updated event, got %d", publisher.updated)
	}

	// A merge that inverts the window must fail the re-validation.
	_, err = svc.Update(context.Background(), existing.ID, &model.AvailabilityUpdate{
		EndOfDay: "08:00",
	})
	if err == nil {
		t.Fatal("expected validation error for inverted window")
	}
	if code := errCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, code)
	}
}

func TestDelete_PublishesSnapshot(t *testing.T) {
	existing := sampleAvailability()
	existing.ID = "507f1f77bcf86cd799439055"

	repo := &mockAvailabilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Availability, error) {
			return existing, nil
		},
	}
	publisher := &recordingPublisher{}
	svc := newService(repo, publisher)

	snapshot, err := svc.Delete(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.ID != existing.ID {
		t.Errorf("expected snapshot %s, got %s", existing.ID, snapshot.ID)
	}
	if publisher.deleted != 1 {
		t.Errorf("expected 1 deleted event, got %d", publisher.deleted)
	}
	if publisher.last.DayOfWeek != existing.DayOfWeek {
		t.Error("expected pre-delete field values in the published event")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newService(&mockAvailabilityRepository{}, &recordingPublisher{})

	_, err := svc.GetByID(context.Background(), "507f1f77bcf86cd799439055")
	if err == nil {
		t.Fatal("expected not found error")
	}
	if code := errCode(t, err); code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, code)
	}
}
