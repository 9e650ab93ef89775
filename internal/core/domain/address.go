package domain

import "time"

// AddressType discriminates billing profiles.
type AddressType string

const (
	AddressPersonal  AddressType = "personal"
	AddressCorporate AddressType = "corporate"
)

// Address is a persisted billing profile. Personal rows carry Name/TcNo,
// corporate rows carry CompanyName/TaxOffice/TaxNo; the other side is null.
type Address struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Type        AddressType `json:"type"`
	Title       string      `json:"title"`
	Name        *string     `json:"name"`
	TcNo        *string     `json:"tcNo"`
	CompanyName *string     `json:"companyName"`
	TaxOffice   *string     `json:"taxOffice"`
	TaxNo       *string     `json:"taxNo"`
	Address     string      `json:"address"`
	City        string      `json:"city"`
	District    string      `json:"district"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// AddressRequest is the raw create/update payload as the client sends it.
// FirstName/LastName are accepted for personal addresses whose name is split
// in the form.
type AddressRequest struct {
	Type        string `json:"type" validate:"required,oneof=personal corporate"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	TcNo        string `json:"tcNo"`
	CompanyName string `json:"companyName"`
	TaxOffice   string `json:"taxOffice"`
	TaxNo       string `json:"taxNo"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city" validate:"required"`
	District    string `json:"district" validate:"required"`
}

// AddressDetails is the variant part of an address: PersonalDetails or
// CorporateDetails.
type AddressDetails interface {
	addressType() AddressType
}

// PersonalDetails identifies an individual invoice holder.
type PersonalDetails struct {
	Name       string
	NationalID string // optional
}

func (PersonalDetails) addressType() AddressType { return AddressPersonal }

// CorporateDetails identifies a company invoice holder.
type CorporateDetails struct {
	CompanyName string
	TaxOffice   string
	TaxNo       string
}

func (CorporateDetails) addressType() AddressType { return AddressCorporate }

// AddressInput is a validated address, ready to persist.
type AddressInput struct {
	Title    string
	Address  string
	City     string
	District string
	Details  AddressDetails
}

// Type reports the variant of the input.
func (in AddressInput) Type() AddressType {
	if in.Details == nil {
		return ""
	}
	return in.Details.addressType()
}

// Apply writes the input onto a record, nulling the fields of the other variant.
func (in AddressInput) Apply(a *Address) {
	a.Type = in.Type()
	a.Title = in.Title
	a.Address = in.Address
	a.City = in.City
	a.District = in.District
	a.Name, a.TcNo, a.CompanyName, a.TaxOffice, a.TaxNo = nil, nil, nil, nil, nil

	switch d := in.Details.(type) {
	case PersonalDetails:
		a.Name = StringPtr(d.Name)
		a.TcNo = NullIfEmpty(d.NationalID)
	case CorporateDetails:
		a.CompanyName = StringPtr(d.CompanyName)
		a.TaxOffice = StringPtr(d.TaxOffice)
		a.TaxNo = StringPtr(d.TaxNo)
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// NullIfEmpty returns nil for the empty string.
func NullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
