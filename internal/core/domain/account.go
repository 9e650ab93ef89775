package domain

import "time"

// Account status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Identity is the caller as resolved by the auth layer. A nil *Identity means
// the request carried no valid session.
type Identity struct {
	Subject string
	Email   string
}

// User is the account anchor. Email is unique.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	CountryCode    string    `json:"countryCode"`
	Phone          string    `json:"phone"`
	BirthDay       string    `json:"birthDay"`
	BirthMonth     string    `json:"birthMonth"`
	BirthYear      string    `json:"birthYear"`
	Gender         string    `json:"gender"`
	IdentityNumber *string   `json:"identityNumber"`
	IsForeigner    bool      `json:"isForeigner"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	FirstName      string `json:"firstName" validate:"required,min=2"`
	LastName       string `json:"lastName" validate:"required,min=2"`
	CountryCode    string `json:"countryCode"`
	Phone          string `json:"phone"`
	BirthDay       string `json:"birthDay"`
	BirthMonth     string `json:"birthMonth"`
	BirthYear      string `json:"birthYear"`
	Gender         string `json:"gender"`
	IdentityNumber string `json:"identityNumber"`
	IsForeigner    bool   `json:"isForeigner"`
}

// ProfileRequest is the partial profile edit payload. Nil or empty fields are
// left unchanged.
type ProfileRequest struct {
	FirstName      *string `json:"firstName" validate:"omitempty,min=2"`
	LastName       *string `json:"lastName" validate:"omitempty,min=2"`
	CountryCode    *string `json:"countryCode"`
	Phone          *string `json:"phone"`
	BirthDay       *string `json:"birthDay"`
	BirthMonth     *string `json:"birthMonth"`
	BirthYear      *string `json:"birthYear"`
	Gender         *string `json:"gender"`
	IdentityNumber *string `json:"identityNumber"`
	IsForeigner    *bool   `json:"isForeigner"`
}

// ProfileUpdate is a validated ProfileRequest, applied to the User and mirrored
// onto the account-owner Passenger in one transaction.
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	CountryCode    *string
	Phone          *string
	BirthDay       *string
	BirthMonth     *string
	BirthYear      *string
	Gender         *string
	IdentityNumber *string
	IsForeigner    *bool
	// ClearIdentity nulls the identity number (foreign nationals).
	ClearIdentity bool
}
