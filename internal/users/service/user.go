package service

import (
	"context"
	"errors"

	userserrors "reserva/internal/users/errors"
	"reserva/internal/users/repository"
	"reserva/pkg/auth"
	"reserva/pkg/config"
	apperrors "reserva/pkg/errors"
	"reserva/pkg/events"
	"reserva/pkg/idempotency"
	"reserva/pkg/model"
)

type UserService interface {
	// GetOrCreate resolves the token's subject to a stored user, creating
	// one on first sight. The idempotency key is a one-shot claim: a second
	// request reusing it inside the guard window is rejected outright.
	GetOrCreate(ctx context.Context, claims map[string]any, idempotencyKey string) (*model.User, bool, error)
}

type userService struct {
	repo      repository.UserRepository
	guard     *idempotency.Guard
	publisher events.Publisher
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	guard *idempotency.Guard,
	publisher events.Publisher,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		guard:     guard,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *userService) GetOrCreate(ctx context.Context, claims map[string]any, idempotencyKey string) (*model.User, bool, error) {
	if idempotencyKey == "" {
		return nil, false, apperrors.MissingIdempotencyKey()
	}

	identity, err := auth.ExtractIdentity(claims)
	if err != nil {
		return nil, false, err
	}

	first, err := s.guard.Once(ctx, idempotencyKey, s.cfg.IdempotencyGuardTTL)
	if err != nil {
		return nil, false, err
	}
	if !first {
		return nil, false, apperrors.Conflict("Request already processed")
	}

	existing, err := s.repo.FindBySubjectID(ctx, identity.SubjectID)
	if err == nil {
		s.cfg.Log.Debug("User already registered", "subject_id", identity.SubjectID)
		return existing, false, nil
	}
	if !errors.Is(err, userserrors.ErrNotFound) {
		return nil, false, apperrors.Internal("Failed to look up user", err)
	}

	user := &model.User{
		SubjectID: identity.SubjectID,
		Email:     identity.Email,
		FullName:  identity.FullName,
		Role:      identity.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		s.cfg.Log.Error("Failed to create user", "subject_id", identity.SubjectID, "error", err)
		return nil, false, apperrors.Internal("Failed to create user", err)
	}

	if err := s.publisher.UserCreated(ctx, *user); err != nil {
		s.cfg.Log.Error("Failed to publish user created event",
			"subject_id", identity.SubjectID,
			"error", err,
		)
	}

	s.cfg.Log.Info("User created successfully",
		"id", user.ID,
		"subject_id", user.SubjectID,
		"role", user.Role,
	)
	return user, true, nil
}
