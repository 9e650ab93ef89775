package v1

import (
	"context"
	"fmt"

	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AddressService manages the signed-in user's billing addresses
type AddressService struct {
	addresses domain.AddressRepository
	guard     *OwnershipGuard
	validator *RecordValidator
}

// NewAddressService creates a new address service
func NewAddressService(addresses domain.AddressRepository, guard *OwnershipGuard, validator *RecordValidator) *AddressService {
	return &AddressService{addresses: addresses, guard: guard, validator: validator}
}

func startAddressSpan(ctx context.Context, name, addressID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("layer", "logic")}
	if addressID != "" {
		attrs = append(attrs, attribute.String("address.id", addressID))
	}
	return middleware.StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

// List returns every address of the caller, newest first.
func (s *AddressService) List(ctx context.Context, id *domain.Identity) ([]domain.Address, error) {
	ctx, span := startAddressSpan(ctx, "address.list", "")
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}

	addresses, err := s.addresses.List(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list addresses of %q: %w", user.ID, err)
	}

	span.SetAttributes(attribute.Int("address.count", len(addresses)))
	return addresses, nil
}

// Get returns one address of the caller.
func (s *AddressService) Get(ctx context.Context, id *domain.Identity, addressID string) (*domain.Address, error) {
	ctx, span := startAddressSpan(ctx, "address.get", addressID)
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.addresses.Get(ctx, addressID, user.ID)
}

// Create stores a new billing address.
func (s *AddressService) Create(ctx context.Context, id *domain.Identity, req domain.AddressRequest) (*domain.Address, error) {
	ctx, span := startAddressSpan(ctx, "address.create", "")
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}

	in, err := s.validator.Address(req)
	if err != nil {
		return nil, err
	}

	a := &domain.Address{UserID: user.ID}
	in.Apply(a)
	if err := s.addresses.Create(ctx, a); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create address for %q: %w", user.ID, err)
	}

	middleware.ObserveRecordWrite(KindAddress, "create")
	span.SetAttributes(
		attribute.String("address.id", a.ID),
		attribute.String("address.type", string(a.Type)),
	)
	return a, nil
}

// Update overwrites an address of the caller, switching variant if the type
// changed.
func (s *AddressService) Update(ctx context.Context, id *domain.Identity, addressID string, req domain.AddressRequest) (*domain.Address, error) {
	ctx, span := startAddressSpan(ctx, "address.update", addressID)
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}

	a, err := s.addresses.Get(ctx, addressID, user.ID)
	if err != nil {
		return nil, err
	}

	in, err := s.validator.Address(req)
	if err != nil {
		return nil, err
	}
	in.Apply(a)

	if err := s.addresses.Update(ctx, a); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update address %q: %w", addressID, err)
	}

	middleware.ObserveRecordWrite(KindAddress, "update")
	return a, nil
}

// Delete removes an address of the caller.
func (s *AddressService) Delete(ctx context.Context, id *domain.Identity, addressID string) error {
	ctx, span := startAddressSpan(ctx, "address.delete", addressID)
	defer span.End()

	user, err := s.guard.Authorize(ctx, id)
	if err != nil {
		return err
	}

	if err := s.addresses.Delete(ctx, addressID, user.ID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete address %q: %w", addressID, err)
	}

	middleware.ObserveRecordWrite(KindAddress, "delete")
	return nil
}
