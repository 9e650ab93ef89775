package domain

import "time"

// Passenger is a travel profile owned by a User. Exactly one per user carries
// IsAccountOwner and mirrors the User's own profile. Deletion is a status flip.
type Passenger struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	IdentityNumber *string   `json:"identityNumber"`
	IsForeigner    bool      `json:"isForeigner"`
	BirthDay       string    `json:"birthDay"`
	BirthMonth     string    `json:"birthMonth"`
	BirthYear      string    `json:"birthYear"`
	Gender         string    `json:"gender"`
	CountryCode    string    `json:"countryCode"`
	Phone          string    `json:"phone"`
	HasMilCard     bool      `json:"hasMilCard"`
	HasPassport    bool      `json:"hasPassport"`
	IsAccountOwner bool      `json:"isAccountOwner"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PassengerRequest is the create/update payload for a companion passenger.
type PassengerRequest struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	BirthDay       string `json:"birthDay" validate:"required"`
	BirthMonth     string `json:"birthMonth" validate:"required"`
	BirthYear      string `json:"birthYear" validate:"required"`
	Gender         string `json:"gender" validate:"required"`
	IdentityNumber string `json:"identityNumber"`
	IsForeigner    bool   `json:"isForeigner"`
	CountryCode    string `json:"countryCode"`
	Phone          string `json:"phone"`
}
