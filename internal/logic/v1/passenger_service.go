package v1

import (
	"context"
	"fmt"

	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PassengerService manages the signed-in user's travel companions
type PassengerService struct {
	passengers domain.PassengerRepository
	guard      *OwnershipGuard
	validator  *RecordValidator
}

// NewPassengerService creates a new passenger service
func NewPassengerService(passengers domain.PassengerRepository, guard *OwnershipGuard, validator *RecordValidator) *PassengerService {
	return &PassengerService{passengers: passengers, guard: guard, validator: validator}
}

func startPassengerSpan(ctx context.Context, name, passengerID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("layer", "logic")}
	if passengerID != "" {
		attrs = append(attrs, attribute.String("passenger.id", passengerID))
	}
	return middleware.StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

// List returns the active passengers, newest first.
func (s *PassengerService) List(ctx context.Context, id *domain.Identity) ([]domain.Passenger, error) {
	ctx, span := startPassengerSpan(ctx, "passenger.list", "")
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}

	passengers, err := s.passengers.ListActive(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list passengers of %q: %w", user.ID, err)
	}

	span.SetAttributes(attribute.Int("passenger.count", len(passengers)))
	return passengers, nil
}

// Get returns one active passenger of the caller.
func (s *PassengerService) Get(ctx context.Context, id *domain.Identity, passengerID string) (*domain.Passenger, error) {
	ctx, span := startPassengerSpan(ctx, "passenger.get", passengerID)
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.passengers.Get(ctx, passengerID, user.ID)
}

// Create adds a companion passenger. Military card and passport flags start
// unset.
func (s *PassengerService) Create(ctx context.Context, id *domain.Identity, req domain.PassengerRequest) (*domain.Passenger, error) {
	ctx, span := startPassengerSpan(ctx, "passenger.create", "")
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.validator.Passenger(req)
	if err != nil {
		return nil, err
	}
	p.UserID = user.ID
	p.Status = domain.StatusActive

	if err := s.passengers.Create(ctx, p); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create passenger for %q: %w", user.ID, err)
	}

	middleware.ObserveRecordWrite(KindPassenger, "create")
	span.SetAttributes(attribute.String("passenger.id", p.ID))
	return p, nil
}

// Update replaces the editable fields of a companion passenger. The record
// is resolved before the payload is validated, so another account's
// passenger is not found whatever the body. The account-owner passenger is
// edited through the profile only.
func (s *PassengerService) Update(ctx context.Context, id *domain.Identity, passengerID string, req domain.PassengerRequest) (*domain.Passenger, error) {
	ctx, span := startPassengerSpan(ctx, "passenger.update", passengerID)
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.passengers.Get(ctx, passengerID, user.ID)
	if err != nil {
		return nil, err
	}
	if existing.IsAccountOwner {
		return nil, domain.ErrOwnerPassengerLocked
	}

	p, err := s.validator.Passenger(req)
	if err != nil {
		return nil, err
	}

	p.ID = existing.ID
	p.UserID = user.ID
	if err := s.passengers.Update(ctx, p); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update passenger %q: %w", passengerID, err)
	}

	middleware.ObserveRecordWrite(KindPassenger, "update")
	return p, nil
}

// Delete deactivates a companion passenger; the row is kept.
func (s *PassengerService) Delete(ctx context.Context, id *domain.Identity, passengerID string) error {
	ctx, span := startPassengerSpan(ctx, "passenger.delete", passengerID)
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return err
	}

	existing, err := s.passengers.Get(ctx, passengerID, user.ID)
	if err != nil {
		return err
	}
	if existing.IsAccountOwner {
		return domain.ErrOwnerPassengerLocked
	}

	if err := s.passengers.Deactivate(ctx, passengerID, user.ID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("deactivate passenger %q: %w", passengerID, err)
	}

	middleware.ObserveRecordWrite(KindPassenger, "delete")
	return nil
}
