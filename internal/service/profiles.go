package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"demo/interview/internal/metrics"
	"demo/interview/internal/model"
)

// CreateUser creates a regular active profile. Without a password the
// profile gets an unusable one.
func (s *Service) CreateUser(ctx context.Context, in model.CreateProfileInput) (model.UserProfile, error) {
	return s.createProfile(ctx, in, false)
}

// CreateSuperuser creates a staff superuser. A password is required.
func (s *Service) CreateSuperuser(ctx context.Context, in model.CreateProfileInput) (model.UserProfile, error) {
	return s.createProfile(ctx, in, true)
}

func (s *Service) createProfile(ctx context.Context, in model.CreateProfileInput, superuser bool) (model.UserProfile, error) {
	in.Email = model.NormalizeEmail(in.Email)

	fields := map[string]string{}
	if err := s.validator.Struct(in); err != nil {
		var ve *model.ValidationError
		if !errors.As(err, &ve) {
			return model.UserProfile{}, err
		}
		fields = ve.Fields
	}
	if superuser && in.Password == "" {
		fields["password"] = "this field is required"
	}
	if len(fields) > 0 {
		return model.UserProfile{}, &model.ValidationError{Fields: fields}
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return model.UserProfile{}, err
	}

	now := s.now().UTC()
	p := model.UserProfile{
		ID:           s.newID(),
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
		IsAdmin:      in.IsAdmin,
		DateJoined:   now,
		Avatar:       in.Avatar,
	}
	if err := s.profiles.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, model.ErrProfileExists) {
			return model.UserProfile{}, model.NewValidationError("email", "user profile with this email or username already exists")
		}
		return model.UserProfile{}, fmt.Errorf("create profile: %w", err)
	}
	if err := s.metrics.Incr(ctx, metrics.ProfilesCreated); err != nil {
		log.Printf("metric %s: %v", metrics.ProfilesCreated, err)
	}
	return p, nil
}

func (s *Service) ListProfiles(ctx context.Context, f model.ProfileFilter) ([]model.UserProfile, error) {
	return s.profiles.ListProfiles(ctx, f)
}
