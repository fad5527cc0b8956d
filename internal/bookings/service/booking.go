package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "reserva/internal/bookings/errors"
	"reserva/internal/bookings/repository"
	"reserva/internal/bookings/validator"
	userserrors "reserva/internal/users/errors"
	"reserva/pkg/config"
	apperrors "reserva/pkg/errors"
	"reserva/pkg/events"
	httputil "reserva/pkg/http"
	"reserva/pkg/idempotency"
	"reserva/pkg/lock"
	"reserva/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	// Create admits a booking. When idempotencyKey was already recorded, the
	// stored response is returned verbatim in replay and no side effects run.
	Create(ctx context.Context, booking *model.Booking, idempotencyKey string) (replay string, err error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) (*model.Booking, error)
}

// UserResolver checks that provider and customer references point at
// existing users. Satisfied by the users repository.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	users     UserResolver
	guard     *idempotency.Guard
	locks     *lock.Manager
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	users UserResolver,
	guard *idempotency.Guard,
	locks *lock.Manager,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		users:     users,
		guard:     guard,
		locks:     locks,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

// Create runs the admission pipeline: replay check, slot lock, overlap check
// inside a transaction, insert, idempotency record, event publish, release.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking, idempotencyKey string) (string, error) {
	if idempotencyKey == "" {
		return "", apperrors.MissingIdempotencyKey()
	}

	cached, found, err := s.guard.Lookup(ctx, idempotencyKey)
	if err != nil {
		return "", err
	}
	if found {
		s.cfg.Log.Info("Replaying previously processed booking request",
			"idempotency_key", idempotencyKey,
		)
		return cached, nil
	}

	s.applyDefaults(booking)
	if err := s.validate(booking); err != nil {
		return "", err
	}
	if err := s.resolveReferences(ctx, booking.ProviderID, booking.CustomerID); err != nil {
		return "", err
	}

	lockKey := s.locks.ResourceKey(booking.ProviderID, booking.StartTime, booking.EndTime)
	slot, err := s.locks.Acquire(ctx, lockKey)
	if err != nil {
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}
	if slot == nil {
		return "", apperrors.Locked("This time slot is currently being booked by another request. Please try again.")
	}
	defer s.locks.Release(ctx, slot.Key)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifySlotFree(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return "", err
	}

	s.recordResult(ctx, idempotencyKey, booking)

	if err := s.publisher.BookingCreated(ctx, *booking); err != nil {
		// The write is already committed; delivery falls back to the DLQ.
		s.cfg.Log.Error("Failed to publish booking created event",
			"id", booking.ID,
			"error", err,
		)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"provider_id", booking.ProviderID,
		"start_time", booking.StartTime,
	)
	return "", nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to check booking existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeBookingUpdates(existing, updates)
	if err := s.validator.ValidateInterval(merged.StartTime, merged.EndTime); err != nil {
		s.cfg.Log.Warn("Booking update produced an invalid interval", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}
	if err := s.resolveReferences(ctx, merged.ProviderID, merged.CustomerID); err != nil {
		return nil, err
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	if err := s.publisher.BookingUpdated(ctx, *merged); err != nil {
		s.cfg.Log.Error("Failed to publish booking updated event",
			"id", id,
			"error", err,
		)
	}

	s.cfg.Log.Info("Booking updated successfully", "id", id)
	return merged, nil
}

// Delete removes the booking and publishes the pre-delete snapshot, so
// subscribers see the fields the booking had when it still existed.
func (s *bookingService) Delete(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	snapshot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to delete booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.BookingDeleted(ctx, *snapshot); err != nil {
		s.cfg.Log.Error("Failed to publish booking deleted event",
			"id", id,
			"error", err,
		)
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	return snapshot, nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.BookingStatusPending
	}
}

// resolveReferences verifies the provider and customer exist before the
// booking is written against them.
func (s *bookingService) resolveReferences(ctx context.Context, providerID, customerID string) error {
	if _, err := s.users.FindByID(ctx, providerID); err != nil {
		return mapUserLookupError(err, "Provider", providerID)
	}
	if _, err := s.users.FindByID(ctx, customerID); err != nil {
		return mapUserLookupError(err, "Customer", customerID)
	}
	return nil
}

func mapUserLookupError(err error, role, id string) error {
	if errors.Is(err, userserrors.ErrNotFound) {
		return apperrors.NotFoundWithID(role, id)
	}
	if errors.Is(err, userserrors.ErrInvalidID) {
		return apperrors.InvalidInput(fmt.Sprintf("Invalid %s ID format", role))
	}
	return apperrors.Internal(fmt.Sprintf("Failed to resolve %s", role), err)
}

func (s *bookingService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.ServiceLabel != "" {
		merged.ServiceLabel = updates.ServiceLabel
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Notes != nil {
		merged.Notes = *updates.Notes
	}

	return &merged
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// verifySlotFree is the conflict check. It runs inside the transaction that
// also inserts, under the slot lock, so a concurrent admission for the same
// provider cannot slip between check and write.
func (s *bookingService) verifySlotFree(ctx context.Context, booking *model.Booking) error {
	conflict, err := s.repo.FindOverlap(ctx, booking.ProviderID, booking.StartTime, booking.EndTime, booking.ID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}
	if conflict != nil {
		return apperrors.Conflict(fmt.Sprintf(
			"Booking time overlaps with existing booking (%s - %s)",
			conflict.StartTime.Format(time.RFC3339),
			conflict.EndTime.Format(time.RFC3339),
		))
	}
	return nil
}

// recordResult caches the serialized response body under the idempotency
// key. The stored bytes carry the same envelope the handler writes, so a
// replay is byte-identical to the first response. A failed write here is
// logged inside the guard and never undoes the booking.
func (s *bookingService) recordResult(ctx context.Context, key string, booking *model.Booking) {
	body, err := json.Marshal(httputil.SuccessResponse{Data: booking})
	if err != nil {
		s.cfg.Log.Warn("Failed to serialize booking for idempotency record",
			"id", booking.ID,
			"error", err,
		)
		return
	}
	_ = s.guard.Record(ctx, key, string(body))
}
