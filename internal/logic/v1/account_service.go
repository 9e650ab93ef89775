package v1

import (
	"context"
	"fmt"

	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles registration and the signed-in user's profile
type AccountService struct {
	accounts  domain.AccountRepository
	guard     *OwnershipGuard
	validator *RecordValidator
}

// NewAccountService creates a new account service
func NewAccountService(accounts domain.AccountRepository, guard *OwnershipGuard, validator *RecordValidator) *AccountService {
	return &AccountService{accounts: accounts, guard: guard, validator: validator}
}

// Register creates a user together with its account-owner passenger.
func (s *AccountService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "account.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	req, err := s.validator.Register(req)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity := domain.NullIfEmpty(req.IdentityNumber)
	user := &domain.User{
		Email:          req.Email,
		PasswordHash:   string(hash),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		CountryCode:    req.CountryCode,
		Phone:          req.Phone,
		BirthDay:       req.BirthDay,
		BirthMonth:     req.BirthMonth,
		BirthYear:      req.BirthYear,
		Gender:         req.Gender,
		IdentityNumber: identity,
		IsForeigner:    req.IsForeigner,
		Status:         domain.StatusActive,
	}
	owner := &domain.Passenger{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		IdentityNumber: identity,
		IsForeigner:    req.IsForeigner,
		BirthDay:       req.BirthDay,
		BirthMonth:     req.BirthMonth,
		BirthYear:      req.BirthYear,
		Gender:         req.Gender,
		CountryCode:    req.CountryCode,
		Phone:          req.Phone,
		IsAccountOwner: true,
		Status:         domain.StatusActive,
	}

	if err := s.accounts.Create(ctx, user, owner); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("register account: %w", err)
	}

	middleware.ObserveRecordWrite("user", "create")
	span.SetAttributes(attribute.String("account.id", user.ID))
	return user, nil
}

// Profile returns the signed-in user's account.
func (s *AccountService) Profile(ctx context.Context, id *domain.Identity) (*domain.User, error) {
	return s.guard.Authorize(ctx, id)
}

// UpdateProfile applies a partial profile edit to the user and its
// account-owner passenger atomically.
func (s *AccountService) UpdateProfile(ctx context.Context, id *domain.Identity, req domain.ProfileRequest) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "account.update_profile", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}

	upd, err := s.validator.Profile(req, user.IsForeigner, user.IdentityNumber)
	if err != nil {
		return nil, err
	}

	updated, err := s.accounts.UpdateProfile(ctx, user.ID, upd)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update profile of %q: %w", user.ID, err)
	}

	middleware.ObserveRecordWrite("user", "update")
	span.SetAttributes(attribute.Bool("profile.updated", true))
	return updated, nil
}
