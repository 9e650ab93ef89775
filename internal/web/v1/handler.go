package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AccountService is the account logic used by the handlers
type AccountService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Profile(ctx context.Context, id *domain.Identity) (*domain.User, error)
	UpdateProfile(ctx context.Context, id *domain.Identity, req domain.ProfileRequest) (*domain.User, error)
}

// PassengerService is the passenger logic used by the handlers
type PassengerService interface {
	List(ctx context.Context, id *domain.Identity) ([]domain.Passenger, error)
	Get(ctx context.Context, id *domain.Identity, passengerID string) (*domain.Passenger, error)
	Create(ctx context.Context, id *domain.Identity, req domain.PassengerRequest) (*domain.Passenger, error)
	Update(ctx context.Context, id *domain.Identity, passengerID string, req domain.PassengerRequest) (*domain.Passenger, error)
	Delete(ctx context.Context, id *domain.Identity, passengerID string) error
}

// AddressService is the billing address logic used by the handlers
type AddressService interface {
	List(ctx context.Context, id *domain.Identity) ([]domain.Address, error)
	Get(ctx context.Context, id *domain.Identity, addressID string) (*domain.Address, error)
	Create(ctx context.Context, id *domain.Identity, req domain.AddressRequest) (*domain.Address, error)
	Update(ctx context.Context, id *domain.Identity, addressID string, req domain.AddressRequest) (*domain.Address, error)
	Delete(ctx context.Context, id *domain.Identity, addressID string) error
}

// Handler serves the account API
type Handler struct {
	accounts   AccountService
	passengers PassengerService
	addresses  AddressService
}

// NewHandler creates a new handler
func NewHandler(accounts AccountService, passengers PassengerService, addresses AddressService) *Handler {
	return &Handler{
		accounts:   accounts,
		passengers: passengers,
		addresses:  addresses,
	}
}

func startRequestSpan(c *gin.Context) (context.Context, trace.Span) {
	//nolint:spancheck // ended by the calling handler
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.FullPath()),
	))
}
