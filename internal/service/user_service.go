package service

import (
	"context"
	"strings"
	"time"

	"merocare/internal/models"
	"merocare/internal/repository"
	"merocare/internal/validation"
)

// UserService handles profile reads and updates
type UserService struct {
	userRepo *repository.UserRepository
	now      func() time.Time
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, now: time.Now}
}

// GetUser returns a user or ErrUserNotFound
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns a page of users. limit is clamped to 1..100.
func (s *UserService) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.userRepo.ListUsers(ctx, skip, limit)
}

// ProfileInput carries optional profile changes
type ProfileInput struct {
	FullName   *string
	Gender     *string
	DOB        *string
	BloodGroup *string
}

// UpdateProfile validates and applies a partial profile update
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*models.User, error) {
	var update repository.ProfileUpdate

	if in.FullName != nil {
		if err := validation.ValidateName(*in.FullName); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(*in.FullName)
		update.FullName = &name
	}
	if in.Gender != nil {
		if err := validation.ValidateGender(*in.Gender); err != nil {
			return nil, err
		}
		gender := models.NormalizeGender(*in.Gender)
		update.Gender = &gender
	}
	if in.DOB != nil {
		dob, err := validation.ParseDate("dob", *in.DOB)
		if err != nil {
			return nil, err
		}
		if dob != nil && dob.After(s.now()) {
			return nil, validation.ValidationError{Field: "dob", Message: "date of birth is in the future"}
		}
		update.DOB = dob
	}
	if in.BloodGroup != nil {
		bg := strings.ToUpper(strings.TrimSpace(*in.BloodGroup))
		update.BloodGroup = &bg
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, update); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, userID)
}

// Age returns the user's age today
func (s *UserService) Age(u *models.User) *int {
	return u.Age(s.now())
}
