package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// OwnershipGuard resolves the caller identity to its account. Record-level
// ownership is enforced by the owner-scoped repository queries, which report
// another account's record as not found.
type OwnershipGuard struct {
	accounts domain.AccountRepository
	logger   *zap.Logger
}

// NewOwnershipGuard creates a guard over the account repository
func NewOwnershipGuard(accounts domain.AccountRepository, logger *zap.Logger) *OwnershipGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OwnershipGuard{accounts: accounts, logger: logger}
}

// Authorize returns the account for the identity. A nil identity yields
// ErrNotAuthenticated; an identity without an account yields
// ErrAccountNotFound.
func (g *OwnershipGuard) Authorize(ctx context.Context, id *domain.Identity) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "account.authorize", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if id == nil || id.Email == "" {
		span.SetAttributes(attribute.Bool("auth.authenticated", false))
		return nil, domain.ErrNotAuthenticated
	}

	user, err := g.accounts.FindByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// The session was issued for an account this service does not know.
			g.logger.Error("Authenticated identity has no account",
				zap.String("subject", id.Subject),
				zap.String("email", id.Email),
			)
			return nil, err
		}
		span.RecordError(err)
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	span.SetAttributes(attribute.String("account.id", user.ID))
	return user, nil
}
