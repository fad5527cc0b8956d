package service

import (
	"context"
	"errors"

	availabilityerrors "reserva/internal/availability/errors"
	"reserva/internal/availability/repository"
	"reserva/internal/availability/validator"
	userserrors "reserva/internal/users/errors"
	"reserva/pkg/config"
	apperrors "reserva/pkg/errors"
	"reserva/pkg/events"
	"reserva/pkg/model"
)

type AvailabilityService interface {
	Create(ctx context.Context, availability *model.Availability) error
	GetByID(ctx context.Context, id string) (*model.Availability, error)
	GetByProvider(ctx context.Context, providerID string) ([]*model.Availability, error)
	Update(ctx context.Context, id string, updates *model.AvailabilityUpdate) (*model.Availability, error)
	Delete(ctx context.Context, id string) (*model.Availability, error)
}

// ProviderResolver checks that an availability window belongs to an
// existing user. Satisfied by the users repository.
type ProviderResolver interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type availabilityService struct {
	repo      repository.AvailabilityRepository
	providers ProviderResolver
	publisher events.Publisher
	validator *validator.AvailabilityValidator
	cfg       *config.Config
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	providers ProviderResolver,
	publisher events.Publisher,
	validator *validator.AvailabilityValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		providers: providers,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *availabilityService) Create(ctx context.Context, availability *model.Availability) error {
	if err := s.validator.Validate(availability); err != nil {
		s.cfg.Log.Warn("Availability validation failed", "error", err)
		return apperrors.Validation("Availability validation failed", map[string]any{"error": err.Error()})
	}
	if err := s.resolveProvider(ctx, availability.ProviderID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, availability); err != nil {
		s.cfg.Log.Error("Failed to create availability", "error", err)
		return apperrors.Internal("Failed to create availability", err)
	}

	if err := s.publisher.AvailabilityCreated(ctx, *availability); err != nil {
		s.cfg.Log.Error("Failed to publish availability created event",
			"id", availability.ID,
			"error", err,
		)
	}

	s.cfg.Log.Info("Availability created successfully",
		"id", availability.ID,
		"provider_id", availability.ProviderID,
		"day_of_week", availability.DayOfWeek,
	)
	return nil
}

func (s *availabilityService) GetByID(ctx context.Context, id string) (*model.Availability, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Availability ID cannot be empty")
	}

	availability, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Availability", id)
		}
		if errors.Is(err, availabilityerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid availability ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}

	return availability, nil
}

func (s *availabilityService) GetByProvider(ctx context.Context, providerID string) ([]*model.Availability, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}

	entries, err := s.repo.FindByProvider(ctx, providerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list availability", "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}

	return entries, nil
}

func (s *availabilityService) Update(ctx context.Context, id string, updates *model.AvailabilityUpdate) (*model.Availability, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Availability ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Availability", id)
		}
		if errors.Is(err, availabilityerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid availability ID format")
		}
		return nil, apperrors.Internal("Failed to check availability existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Availability update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Merged availability validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Availability validation failed", map[string]any{"error": err.Error()})
	}
	if err := s.resolveProvider(ctx, merged.ProviderID); err != nil {
		return nil, err
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Availability", id)
		}
		s.cfg.Log.Error("Failed to update availability", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update availability", err)
	}

	if err := s.publisher.AvailabilityUpdated(ctx, *merged); err != nil {
		s.cfg.Log.Error("Failed to publish availability updated event",
			"id", id,
			"error", err,
		)
	}

	s.cfg.Log.Info("Availability updated successfully", "id", id)
	return merged, nil
}

func (s *availabilityService) Delete(ctx context.Context, id string) (*model.Availability, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Availability ID cannot be empty")
	}

	snapshot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Availability", id)
		}
		if errors.Is(err, availabilityerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid availability ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Availability", id)
		}
		s.cfg.Log.Error("Failed to delete availability", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to delete availability", err)
	}

	if err := s.publisher.AvailabilityDeleted(ctx, *snapshot); err != nil {
		s.cfg.Log.Error("Failed to publish availability deleted event",
			"id", id,
			"error", err,
		)
	}

	s.cfg.Log.Info("Availability deleted successfully", "id", id)
	return snapshot, nil
}

func (s *availabilityService) resolveProvider(ctx context.Context, providerID string) error {
	if _, err := s.providers.FindByID(ctx, providerID); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Provider", providerID)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid provider ID format")
		}
		return apperrors.Internal("Failed to resolve provider", err)
	}
	return nil
}

func (s *availabilityService) mergeUpdates(existing *model.Availability, updates *model.AvailabilityUpdate) *model.Availability {
	merged := *existing

	if updates.DayOfWeek != "" {
		merged.DayOfWeek = updates.DayOfWeek
	}
	if updates.StartOfDay != "" {
		merged.StartOfDay = updates.StartOfDay
	}
	if updates.EndOfDay != "" {
		merged.EndOfDay = updates.EndOfDay
	}
	if updates.SlotDurationMin != nil {
		merged.SlotDurationMin = *updates.SlotDurationMin
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}

	return &merged
}
