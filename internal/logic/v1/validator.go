package v1

import (
	"errors"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/middleware"
)

// Validation kinds, used as the metric label and to pick messages.
const (
	KindPassenger = "passenger"
	KindAddress   = "address"
	KindProfile   = "profile"
	KindRegister  = "register"
)

const identityNumberLength = 11

// Default titles for addresses submitted without one.
const (
	DefaultPersonalTitle  = "Bireysel Adres"
	DefaultCorporateTitle = "Kurumsal Adres"
)

const (
	msgRequiredFields   = "Gerekli alanları doldurunuz"
	msgIdentityNumber   = "TC Kimlik numarası 11 haneli olmalıdır"
	msgPersonalName     = "Bireysel adres için ad soyad gereklidir"
	msgCorporateFields  = "Kurumsal adres için şirket adı, vergi dairesi ve vergi no gereklidir"
	msgInvalidField     = "Geçersiz değer"
	tagCitizenID        = "citizenid"
	tagPersonalName     = "personalname"
	tagCorporateDetails = "corporatedetails"
)

// messages resolves "kind.field.tag", then "kind.tag", then "tag".
var messages = map[string]string{
	"passenger.required":          msgRequiredFields,
	"citizenid":                   msgIdentityNumber,
	"address.type.required":       "Geçersiz adres tipi",
	"address.type.oneof":          "Geçersiz adres tipi",
	"address.address.required":    "Adres gereklidir",
	"address.city.required":       "Şehir gereklidir",
	"address.district.required":   "İlçe gereklidir",
	"personalname":                msgPersonalName,
	"corporatedetails":            msgCorporateFields,
	"profile.firstName.min":       "Ad en az 2 karakter olmalıdır.",
	"profile.lastName.min":        "Soyad en az 2 karakter olmalıdır.",
	"register.email.required":     "E-posta adresi gereklidir",
	"register.email.email":        "Geçerli bir e-posta adresi giriniz",
	"register.password.required":  "Şifre gereklidir",
	"register.password.min":       "Şifre en az 6 karakter olmalıdır",
	"register.firstName.required": "Ad gereklidir",
	"register.firstName.min":      "Ad en az 2 karakter olmalıdır.",
	"register.lastName.required":  "Soyad gereklidir",
	"register.lastName.min":       "Soyad en az 2 karakter olmalıdır.",
}

func messageFor(kind string, fe validator.FieldError) string {
	for _, key := range []string{kind + "." + fe.Field() + "." + fe.Tag(), kind + "." + fe.Tag(), fe.Tag()} {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	return msgInvalidField
}

// RecordValidator checks passenger, address, profile and registration
// payloads. Inputs are trimmed before any rule runs.
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator builds a validator reporting JSON field names.
func NewRecordValidator() *RecordValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(passengerStructLevel, domain.PassengerRequest{})
	v.RegisterStructValidation(addressStructLevel, domain.AddressRequest{})
	return &RecordValidator{validate: v}
}

// Struct-level rules run after every field rule, so a missing required field
// is always reported before the identity or variant rules.
func passengerStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(domain.PassengerRequest)
	if !req.IsForeigner && utf8.RuneCountInString(req.IdentityNumber) != identityNumberLength {
		sl.ReportError(req.IdentityNumber, "identityNumber", "IdentityNumber", tagCitizenID, "")
	}
}

func addressStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(domain.AddressRequest)
	switch domain.AddressType(req.Type) {
	case domain.AddressPersonal:
		if personalName(req) == "" {
			sl.ReportError(req.Name, "name", "Name", tagPersonalName, "")
		}
	case domain.AddressCorporate:
		if req.CompanyName == "" || req.TaxOffice == "" || req.TaxNo == "" {
			sl.ReportError(req.CompanyName, "companyName", "CompanyName", tagCorporateDetails, "")
		}
	}
}

// personalName is the explicit name, or first and last name joined by a space.
func personalName(req domain.AddressRequest) string {
	if req.Name != "" {
		return req.Name
	}
	return strings.TrimSpace(req.FirstName + " " + req.LastName)
}

// check runs the struct rules. With all=false only the first failure is
// returned; otherwise Details lists every failing field.
func (rv *RecordValidator) check(kind string, s any, all bool) error {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	middleware.ObserveValidationFailure(kind)

	first := fieldErrs[0]
	verr := domain.NewValidationError(first.Field(), messageFor(kind, first))
	if all {
		verr.Details = make(map[string][]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			verr.Details[fe.Field()] = append(verr.Details[fe.Field()], messageFor(kind, fe))
		}
	}
	return verr
}

// Passenger validates a companion passenger. A foreign national's identity
// number is dropped whatever the input.
func (rv *RecordValidator) Passenger(req domain.PassengerRequest) (*domain.Passenger, error) {
	trimStrings(&req)
	if err := rv.check(KindPassenger, req, false); err != nil {
		return nil, err
	}

	p := &domain.Passenger{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IsForeigner: req.IsForeigner,
		BirthDay:    req.BirthDay,
		BirthMonth:  req.BirthMonth,
		BirthYear:   req.BirthYear,
		Gender:      req.Gender,
		CountryCode: req.CountryCode,
		Phone:       req.Phone,
	}
	if !req.IsForeigner {
		p.IdentityNumber = domain.StringPtr(req.IdentityNumber)
	}
	return p, nil
}

// Address validates a billing address and resolves it to its variant. A
// missing title is derived from the holder name, then the default title.
func (rv *RecordValidator) Address(req domain.AddressRequest) (domain.AddressInput, error) {
	trimStrings(&req)
	if err := rv.check(KindAddress, req, false); err != nil {
		return domain.AddressInput{}, err
	}

	in := domain.AddressInput{
		Title:    req.Title,
		Address:  req.Address,
		City:     req.City,
		District: req.District,
	}

	var holder, fallback string
	switch domain.AddressType(req.Type) {
	case domain.AddressPersonal:
		name := personalName(req)
		in.Details = domain.PersonalDetails{Name: name, NationalID: req.TcNo}
		holder, fallback = name, DefaultPersonalTitle
	case domain.AddressCorporate:
		in.Details = domain.CorporateDetails{
			CompanyName: req.CompanyName,
			TaxOffice:   req.TaxOffice,
			TaxNo:       req.TaxNo,
		}
		holder, fallback = req.CompanyName, DefaultCorporateTitle
	}

	if in.Title == "" {
		in.Title = holder
	}
	if in.Title == "" {
		in.Title = fallback
	}
	return in, nil
}

// Profile validates a partial profile edit against the account's current
// foreign-national flag and identity number. Empty strings leave a field
// unchanged. A citizen must end up with an 11-character identity number,
// either sent or already stored. Every field error is reported in Details.
func (rv *RecordValidator) Profile(req domain.ProfileRequest, currentlyForeigner bool, currentIdentity *string) (domain.ProfileUpdate, error) {
	for _, f := range []**string{
		&req.FirstName, &req.LastName, &req.CountryCode, &req.Phone,
		&req.BirthDay, &req.BirthMonth, &req.BirthYear, &req.Gender, &req.IdentityNumber,
	} {
		*f = emptyToNil(*f)
	}

	err := rv.check(KindProfile, req, true)
	var verr *domain.ValidationError
	if err != nil && !errors.As(err, &verr) {
		return domain.ProfileUpdate{}, err
	}

	foreigner := currentlyForeigner
	if req.IsForeigner != nil {
		foreigner = *req.IsForeigner
	}
	identity := req.IdentityNumber
	if identity == nil {
		identity = currentIdentity
	}
	if !foreigner && !validIdentityNumber(identity) {
		verr = addIdentityError(verr, KindProfile)
	}
	if verr != nil {
		return domain.ProfileUpdate{}, verr
	}

	upd := domain.ProfileUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		CountryCode:    req.CountryCode,
		Phone:          req.Phone,
		BirthDay:       req.BirthDay,
		BirthMonth:     req.BirthMonth,
		BirthYear:      req.BirthYear,
		Gender:         req.Gender,
		IdentityNumber: req.IdentityNumber,
		IsForeigner:    req.IsForeigner,
	}
	if foreigner {
		upd.IdentityNumber = nil
		upd.ClearIdentity = true
	}
	return upd, nil
}

// Register validates a signup payload and normalizes the email. A citizen
// must supply an 11-character identity number; a foreign national's is
// dropped.
func (rv *RecordValidator) Register(req domain.RegisterRequest) (domain.RegisterRequest, error) {
	password := req.Password
	trimStrings(&req)
	req.Password = password
	req.Email = strings.ToLower(req.Email)

	err := rv.check(KindRegister, req, true)
	var verr *domain.ValidationError
	if err != nil && !errors.As(err, &verr) {
		return req, err
	}

	if req.IsForeigner {
		req.IdentityNumber = ""
	} else if !validIdentityNumber(&req.IdentityNumber) {
		verr = addIdentityError(verr, KindRegister)
	}
	if verr != nil {
		return req, verr
	}
	return req, nil
}

func validIdentityNumber(s *string) bool {
	return s != nil && utf8.RuneCountInString(*s) == identityNumberLength
}

// addIdentityError appends the citizen identity error to verr, creating it
// when no field rule failed.
func addIdentityError(verr *domain.ValidationError, kind string) *domain.ValidationError {
	if verr == nil {
		middleware.ObserveValidationFailure(kind)
		verr = domain.NewValidationError("identityNumber", msgIdentityNumber)
	}
	if verr.Details == nil {
		verr.Details = map[string][]string{}
	}
	verr.Details["identityNumber"] = append(verr.Details["identityNumber"], msgIdentityNumber)
	return verr
}

// trimStrings trims every string field of the struct pointed to by ptr.
func trimStrings(ptr any) {
	v := reflect.ValueOf(ptr).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
