// Package memory provides in-memory implementations of the domain
// repositories. It backs local development without a database and the
// service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gurbetbiz/account-service/internal/core/domain"
)

type passengerRow struct {
	domain.Passenger
	seq uint64
}

type addressRow struct {
	domain.Address
	seq uint64
}

// Store holds users, passengers and addresses behind one lock.
type Store struct {
	mu         sync.RWMutex
	seq        uint64
	now        func() time.Time
	users      map[string]domain.User
	emails     map[string]string
	passengers map[string]passengerRow
	addresses  map[string]addressRow
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:        func() time.Time { return time.Now().UTC() },
		users:      map[string]domain.User{},
		emails:     map[string]string{},
		passengers: map[string]passengerRow{},
		addresses:  map[string]addressRow{},
	}
}

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

// Passengers returns the passenger repository view of the store.
func (s *Store) Passengers() *PassengerRepository { return &PassengerRepository{s: s} }

// Addresses returns the address repository view of the store.
func (s *Store) Addresses() *AddressRepository { return &AddressRepository{s: s} }

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// AccountRepository implements domain.AccountRepository.
type AccountRepository struct{ s *Store }

var _ domain.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	u := r.s.users[id]
	return &u, nil
}

func (r *AccountRepository) Create(_ context.Context, user *domain.User, owner *domain.Passenger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, taken := r.s.emails[key]; taken {
		return fmt.Errorf("create user %q: %w", user.Email, domain.ErrEmailTaken)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	r.s.emails[key] = user.ID

	owner.UserID = user.ID
	owner.IsAccountOwner = true
	r.s.insertPassenger(owner)
	return nil
}

func (r *AccountRepository) UpdateProfile(_ context.Context, userID string, upd domain.ProfileUpdate) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	now := r.s.now()

	applyProfile(&u.FirstName, &u.LastName, &u.CountryCode, &u.Phone, &u.BirthDay, &u.BirthMonth,
		&u.BirthYear, &u.Gender, &u.IdentityNumber, &u.IsForeigner, upd)
	u.UpdatedAt = now
	r.s.users[userID] = u

	for id, row := range r.s.passengers {
		if row.UserID != userID || !row.IsAccountOwner {
			continue
		}
		p := row.Passenger
		applyProfile(&p.FirstName, &p.LastName, &p.CountryCode, &p.Phone, &p.BirthDay, &p.BirthMonth,
			&p.BirthYear, &p.Gender, &p.IdentityNumber, &p.IsForeigner, upd)
		p.UpdatedAt = now
		r.s.passengers[id] = passengerRow{Passenger: p, seq: row.seq}
	}

	return &u, nil
}

func applyProfile(firstName, lastName, countryCode, phone, birthDay, birthMonth, birthYear, gender *string,
	identity **string, isForeigner *bool, upd domain.ProfileUpdate) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(firstName, upd.FirstName)
	set(lastName, upd.LastName)
	set(countryCode, upd.CountryCode)
	set(phone, upd.Phone)
	set(birthDay, upd.BirthDay)
	set(birthMonth, upd.BirthMonth)
	set(birthYear, upd.BirthYear)
	set(gender, upd.Gender)

	switch {
	case upd.ClearIdentity:
		*identity = nil
	case upd.IdentityNumber != nil:
		v := *upd.IdentityNumber
		*identity = &v
	}
	if upd.IsForeigner != nil {
		*isForeigner = *upd.IsForeigner
	}
}

// PassengerRepository implements domain.PassengerRepository.
type PassengerRepository struct{ s *Store }

var _ domain.PassengerRepository = (*PassengerRepository)(nil)

func (s *Store) insertPassenger(p *domain.Passenger) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = domain.StatusActive
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.passengers[p.ID] = passengerRow{Passenger: *p, seq: s.nextSeq()}
}

func (r *PassengerRepository) ListActive(_ context.Context, ownerID string) ([]domain.Passenger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]passengerRow, 0)
	for _, row := range r.s.passengers {
		if row.UserID == ownerID && row.Status == domain.StatusActive {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]domain.Passenger, len(rows))
	for i, row := range rows {
		out[i] = row.Passenger
	}
	return out, nil
}

func (r *PassengerRepository) Get(_ context.Context, id, ownerID string) (*domain.Passenger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.passengers[id]
	if !ok || row.UserID != ownerID || row.Status != domain.StatusActive {
		return nil, domain.ErrPassengerNotFound
	}
	p := row.Passenger
	return &p, nil
}

func (r *PassengerRepository) Create(_ context.Context, p *domain.Passenger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.insertPassenger(p)
	return nil
}

func (r *PassengerRepository) Update(_ context.Context, p *domain.Passenger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.passengers[p.ID]
	if !ok || row.UserID != p.UserID || row.Status != domain.StatusActive {
		return domain.ErrPassengerNotFound
	}

	cur := row.Passenger
	cur.FirstName, cur.LastName = p.FirstName, p.LastName
	cur.IdentityNumber, cur.IsForeigner = p.IdentityNumber, p.IsForeigner
	cur.BirthDay, cur.BirthMonth, cur.BirthYear = p.BirthDay, p.BirthMonth, p.BirthYear
	cur.Gender, cur.CountryCode, cur.Phone = p.Gender, p.CountryCode, p.Phone
	cur.UpdatedAt = r.s.now()

	r.s.passengers[p.ID] = passengerRow{Passenger: cur, seq: row.seq}
	*p = cur
	return nil
}

func (r *PassengerRepository) Deactivate(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.passengers[id]
	if !ok || row.UserID != ownerID || row.Status != domain.StatusActive {
		return domain.ErrPassengerNotFound
	}
	row.Status = domain.StatusInactive
	row.UpdatedAt = r.s.now()
	r.s.passengers[id] = row
	return nil
}

// AddressRepository implements domain.AddressRepository.
type AddressRepository struct{ s *Store }

var _ domain.AddressRepository = (*AddressRepository)(nil)

func (r *AddressRepository) List(_ context.Context, ownerID string) ([]domain.Address, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]addressRow, 0)
	for _, row := range r.s.addresses {
		if row.UserID == ownerID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]domain.Address, len(rows))
	for i, row := range rows {
		out[i] = row.Address
	}
	return out, nil
}

func (r *AddressRepository) Get(_ context.Context, id, ownerID string) (*domain.Address, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.addresses[id]
	if !ok || row.UserID != ownerID {
		return nil, domain.ErrAddressNotFound
	}
	a := row.Address
	return &a, nil
}

func (r *AddressRepository) Create(_ context.Context, a *domain.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := r.s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.addresses[a.ID] = addressRow{Address: *a, seq: r.s.nextSeq()}
	return nil
}

func (r *AddressRepository) Update(_ context.Context, a *domain.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.addresses[a.ID]
	if !ok || row.UserID != a.UserID {
		return domain.ErrAddressNotFound
	}
	a.CreatedAt = row.CreatedAt
	a.UpdatedAt = r.s.now()
	r.s.addresses[a.ID] = addressRow{Address: *a, seq: row.seq}
	return nil
}

func (r *AddressRepository) Delete(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.addresses[id]
	if !ok || row.UserID != ownerID {
		return domain.ErrAddressNotFound
	}
	delete(r.s.addresses, id)
	return nil
}
