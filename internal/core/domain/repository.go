package domain

import "context"

// AccountRepository persists users.
type AccountRepository interface {
	// FindByEmail returns ErrAccountNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Create inserts the user and its account-owner passenger atomically.
	// Returns ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *User, owner *Passenger) error
	// UpdateProfile applies the update to the user and to its account-owner
	// passenger in one transaction and returns the updated user.
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error)
}

// PassengerRepository persists passengers. Every lookup and mutation is scoped
// by owner; a record of another owner behaves as missing.
type PassengerRepository interface {
	// ListActive returns the owner's active passengers, newest first.
	ListActive(ctx context.Context, ownerID string) ([]Passenger, error)
	// Get returns an active passenger or ErrPassengerNotFound.
	Get(ctx context.Context, id, ownerID string) (*Passenger, error)
	Create(ctx context.Context, p *Passenger) error
	// Update overwrites the editable fields of p (matched on p.ID and p.UserID).
	Update(ctx context.Context, p *Passenger) error
	// Deactivate flips the status to inactive instead of deleting the row.
	Deactivate(ctx context.Context, id, ownerID string) error
}

// AddressRepository persists billing addresses, scoped by owner.
type AddressRepository interface {
	// List returns all of the owner's addresses, newest first.
	List(ctx context.Context, ownerID string) ([]Address, error)
	Get(ctx context.Context, id, ownerID string) (*Address, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	// Delete physically removes the row.
	Delete(ctx context.Context, id, ownerID string) error
}
