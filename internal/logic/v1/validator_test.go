package v1

import (
	"errors"
	"testing"

	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPassengerRequest() domain.PassengerRequest {
	return domain.PassengerRequest{
		FirstName:      "Ayşe",
		LastName:       "Yılmaz",
		BirthDay:       "12",
		BirthMonth:     "4",
		BirthYear:      "1991",
		Gender:         "female",
		IdentityNumber: "12345678901",
	}
}

func requireValidationError(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected *domain.ValidationError, got %v", err)
	return verr
}

func TestRecordValidator_PassengerCitizenIdentity(t *testing.T) {
	rv := NewRecordValidator()

	tests := []struct {
		name     string
		identity string
		wantErr  bool
	}{
		{"missing", "", true},
		{"ten characters", "1234567890", true},
		{"eleven characters", "12345678901", false},
		{"twelve characters", "123456789012", true},
		{"surrounding spaces are trimmed", "  12345678901  ", false},
		{"eleven multibyte characters", "çççççççççüü", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validPassengerRequest()
			req.IdentityNumber = tt.identity

			p, err := rv.Passenger(req)
			if !tt.wantErr {
				require.NoError(t, err)
				require.NotNil(t, p.IdentityNumber)
				assert.Len(t, []rune(*p.IdentityNumber), 11)
				return
			}

			verr := requireValidationError(t, err)
			assert.Equal(t, "identityNumber", verr.Field)
			assert.Equal(t, "TC Kimlik numarası 11 haneli olmalıdır", verr.Message)
		})
	}
}

func TestRecordValidator_PassengerForeignerDropsIdentity(t *testing.T) {
	rv := NewRecordValidator()

	for _, identity := range []string{"", "123", "12345678901", "X-99"} {
		req := validPassengerRequest()
		req.IsForeigner = true
		req.IdentityNumber = identity

		p, err := rv.Passenger(req)
		require.NoError(t, err, identity)
		assert.Nil(t, p.IdentityNumber, identity)
		assert.True(t, p.IsForeigner)
	}
}

func TestRecordValidator_PassengerRequiredFields(t *testing.T) {
	rv := NewRecordValidator()

	blank := map[string]func(*domain.PassengerRequest){
		"firstName":  func(r *domain.PassengerRequest) { r.FirstName = "  " },
		"lastName":   func(r *domain.PassengerRequest) { r.LastName = "" },
		"birthDay":   func(r *domain.PassengerRequest) { r.BirthDay = "" },
		"birthMonth": func(r *domain.PassengerRequest) { r.BirthMonth = "" },
		"birthYear":  func(r *domain.PassengerRequest) { r.BirthYear = "" },
		"gender":     func(r *domain.PassengerRequest) { r.Gender = "" },
	}

	for field, mutate := range blank {
		t.Run(field, func(t *testing.T) {
			req := validPassengerRequest()
			mutate(&req)
			// A missing field is reported before the identity rule.
			req.IdentityNumber = ""

			_, err := rv.Passenger(req)
			verr := requireValidationError(t, err)
			assert.Equal(t, field, verr.Field)
			assert.Equal(t, "Gerekli alanları doldurunuz", verr.Message)
			assert.Empty(t, verr.Details)
		})
	}
}

func TestRecordValidator_PassengerTrimsInput(t *testing.T) {
	rv := NewRecordValidator()

	req := validPassengerRequest()
	req.FirstName = "  Ayşe "
	req.Phone = " 5551234567 "

	p, err := rv.Passenger(req)
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", p.FirstName)
	assert.Equal(t, "5551234567", p.Phone)
	assert.False(t, p.HasMilCard)
	assert.False(t, p.HasPassport)
}

func TestRecordValidator_Address(t *testing.T) {
	rv := NewRecordValidator()

	base := func(typ string) domain.AddressRequest {
		return domain.AddressRequest{Type: typ, Address: "Atatürk Cad. No:1", City: "İzmir", District: "Konak"}
	}

	t.Run("personal without title takes the name", func(t *testing.T) {
		req := base("personal")
		req.Name = "Ayşe Yılmaz"

		in, err := rv.Address(req)
		require.NoError(t, err)
		assert.Equal(t, "Ayşe Yılmaz", in.Title)
		assert.Equal(t, domain.AddressPersonal, in.Type())
		assert.Equal(t, domain.PersonalDetails{Name: "Ayşe Yılmaz"}, in.Details)
	})

	t.Run("personal name derived from first and last name", func(t *testing.T) {
		req := base("personal")
		req.FirstName = " Ayşe "
		req.LastName = " Yılmaz"
		req.TcNo = "12345678901"

		in, err := rv.Address(req)
		require.NoError(t, err)
		assert.Equal(t, domain.PersonalDetails{Name: "Ayşe Yılmaz", NationalID: "12345678901"}, in.Details)
	})

	t.Run("personal with only a first name", func(t *testing.T) {
		req := base("personal")
		req.FirstName = "Ayşe"

		in, err := rv.Address(req)
		require.NoError(t, err)
		assert.Equal(t, "Ayşe", in.Details.(domain.PersonalDetails).Name)
	})

	t.Run("personal without any name", func(t *testing.T) {
		req := base("personal")
		req.FirstName = "  "

		_, err := rv.Address(req)
		verr := requireValidationError(t, err)
		assert.Equal(t, "Bireysel adres için ad soyad gereklidir", verr.Message)
	})

	t.Run("explicit title is kept", func(t *testing.T) {
		req := base("personal")
		req.Name = "Ayşe Yılmaz"
		req.Title = "Ev"

		in, err := rv.Address(req)
		require.NoError(t, err)
		assert.Equal(t, "Ev", in.Title)
	})

	t.Run("corporate missing tax number", func(t *testing.T) {
		req := base("corporate")
		req.CompanyName = "Acme"
		req.TaxOffice = "Konak"

		_, err := rv.Address(req)
		verr := requireValidationError(t, err)
		assert.Equal(t, "Kurumsal adres için şirket adı, vergi dairesi ve vergi no gereklidir", verr.Message)
	})

	t.Run("corporate without title takes the company name", func(t *testing.T) {
		req := base("corporate")
		req.CompanyName = "Acme"
		req.TaxOffice = "Konak"
		req.TaxNo = "1234567890"
		req.Name = "ignored"

		in, err := rv.Address(req)
		require.NoError(t, err)
		assert.Equal(t, "Acme", in.Title)
		assert.Equal(t, domain.CorporateDetails{CompanyName: "Acme", TaxOffice: "Konak", TaxNo: "1234567890"}, in.Details)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := rv.Address(base("business"))
		verr := requireValidationError(t, err)
		assert.Equal(t, "type", verr.Field)
	})

	t.Run("common fields are checked first", func(t *testing.T) {
		for field, want := range map[string]string{
			"address":  "Adres gereklidir",
			"city":     "Şehir gereklidir",
			"district": "İlçe gereklidir",
		} {
			req := base("corporate")
			switch field {
			case "address":
				req.Address = ""
			case "city":
				req.City = ""
			case "district":
				req.District = " "
			}

			_, err := rv.Address(req)
			verr := requireValidationError(t, err)
			assert.Equal(t, field, verr.Field)
			assert.Equal(t, want, verr.Message)
		}
	})
}

func TestRecordValidator_AddressVariantRule(t *testing.T) {
	rv := NewRecordValidator()

	names := []string{"", "Ayşe"}
	companies := []string{"", "Acme"}

	for _, typ := range []string{"personal", "corporate"} {
		for _, name := range names {
			for _, company := range companies {
				for _, taxNo := range []string{"", "123"} {
					req := domain.AddressRequest{
						Type: typ, Name: name, CompanyName: company, TaxOffice: "Konak", TaxNo: taxNo,
						Address: "x", City: "y", District: "z",
					}
					_, err := rv.Address(req)

					var wantFail bool
					if typ == "personal" {
						wantFail = name == ""
					} else {
						wantFail = company == "" || taxNo == ""
					}
					assert.Equal(t, wantFail, err != nil, "type=%s name=%q company=%q taxNo=%q", typ, name, company, taxNo)
				}
			}
		}
	}
}

func TestRecordValidator_Profile(t *testing.T) {
	rv := NewRecordValidator()
	s := domain.StringPtr
	stored := s("12345678901")

	t.Run("empty strings leave fields unchanged", func(t *testing.T) {
		upd, err := rv.Profile(domain.ProfileRequest{FirstName: s(""), Phone: s("  "), LastName: s("Kaya")}, false, stored)
		require.NoError(t, err)
		assert.Nil(t, upd.FirstName)
		assert.Nil(t, upd.Phone)
		require.NotNil(t, upd.LastName)
		assert.Equal(t, "Kaya", *upd.LastName)
	})

	t.Run("short names report every field", func(t *testing.T) {
		_, err := rv.Profile(domain.ProfileRequest{FirstName: s("A"), LastName: s("B")}, false, stored)
		verr := requireValidationError(t, err)
		assert.Equal(t, "Ad en az 2 karakter olmalıdır.", verr.Message)
		assert.Equal(t, map[string][]string{
			"firstName": {"Ad en az 2 karakter olmalıdır."},
			"lastName":  {"Soyad en az 2 karakter olmalıdır."},
		}, verr.Details)
	})

	t.Run("citizen identity must be eleven characters", func(t *testing.T) {
		_, err := rv.Profile(domain.ProfileRequest{IdentityNumber: s("123")}, false, stored)
		verr := requireValidationError(t, err)
		assert.Equal(t, "identityNumber", verr.Field)
		assert.Contains(t, verr.Details, "identityNumber")
	})

	t.Run("becoming a foreigner clears the identity", func(t *testing.T) {
		upd, err := rv.Profile(domain.ProfileRequest{IsForeigner: boolPtr(true), IdentityNumber: s("123")}, false, stored)
		require.NoError(t, err)
		assert.True(t, upd.ClearIdentity)
		assert.Nil(t, upd.IdentityNumber)
	})

	t.Run("existing foreigner keeps identity cleared", func(t *testing.T) {
		upd, err := rv.Profile(domain.ProfileRequest{IdentityNumber: s("12345678901")}, true, nil)
		require.NoError(t, err)
		assert.True(t, upd.ClearIdentity)
	})

	t.Run("citizen keeps the stored identity", func(t *testing.T) {
		upd, err := rv.Profile(domain.ProfileRequest{Phone: s("5550001122")}, false, stored)
		require.NoError(t, err)
		assert.Nil(t, upd.IdentityNumber)
		assert.False(t, upd.ClearIdentity)
	})

	t.Run("foreigner becoming a citizen needs an identity", func(t *testing.T) {
		for name, req := range map[string]domain.ProfileRequest{
			"missing": {IsForeigner: boolPtr(false)},
			"empty":   {IsForeigner: boolPtr(false), IdentityNumber: s("  ")},
			"short":   {IsForeigner: boolPtr(false), IdentityNumber: s("1234")},
		} {
			_, err := rv.Profile(req, true, nil)
			verr := requireValidationError(t, err)
			assert.Equal(t, "identityNumber", verr.Field, name)
			assert.Equal(t, []string{"TC Kimlik numarası 11 haneli olmalıdır"}, verr.Details["identityNumber"], name)
		}

		upd, err := rv.Profile(domain.ProfileRequest{IsForeigner: boolPtr(false), IdentityNumber: s("12345678901")}, true, nil)
		require.NoError(t, err)
		require.NotNil(t, upd.IdentityNumber)
		assert.Equal(t, "12345678901", *upd.IdentityNumber)
		assert.False(t, upd.ClearIdentity)
	})

	t.Run("citizen without any identity", func(t *testing.T) {
		_, err := rv.Profile(domain.ProfileRequest{FirstName: s("Ayşe")}, false, nil)
		verr := requireValidationError(t, err)
		assert.Equal(t, "identityNumber", verr.Field)
	})
}

func TestRecordValidator_Register(t *testing.T) {
	rv := NewRecordValidator()

	req, err := rv.Register(domain.RegisterRequest{
		Email:     " Ayse@Example.COM ",
		Password:  " secret ",
		FirstName:      "Ayşe",
		LastName:       "Yılmaz",
		IdentityNumber: " 12345678901 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "ayse@example.com", req.Email)
	assert.Equal(t, " secret ", req.Password)
	assert.Equal(t, "12345678901", req.IdentityNumber)

	_, err = rv.Register(domain.RegisterRequest{Email: "nope", Password: "123", FirstName: "A", LastName: "Yılmaz"})
	verr := requireValidationError(t, err)
	assert.Equal(t, "Geçerli bir e-posta adresi giriniz", verr.Message)
	assert.Len(t, verr.Details, 4)
	assert.Contains(t, verr.Details, "identityNumber")
}

func TestRecordValidator_RegisterIdentity(t *testing.T) {
	rv := NewRecordValidator()
	base := domain.RegisterRequest{Email: "ayse@example.com", Password: "secret1", FirstName: "Ayşe", LastName: "Yılmaz"}

	for _, identity := range []string{"", "   ", "1234567890", "123456789012"} {
		req := base
		req.IdentityNumber = identity
		_, err := rv.Register(req)
		verr := requireValidationError(t, err)
		assert.Equal(t, "identityNumber", verr.Field, identity)
		assert.Equal(t, "TC Kimlik numarası 11 haneli olmalıdır", verr.Message, identity)
	}

	req := base
	req.IsForeigner = true
	req.IdentityNumber = "X-99"
	got, err := rv.Register(req)
	require.NoError(t, err)
	assert.Empty(t, got.IdentityNumber)
}

func boolPtr(b bool) *bool { return &b }
