package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/internal/core/repository/memory"
	logicv1 "github.com/gurbetbiz/account-service/internal/logic/v1"
	"github.com/gurbetbiz/account-service/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	resolver *middleware.JWTResolver
}

func newRouter(h *Handler, logger *zap.Logger, resolver middleware.IdentityResolver) *gin.Engine {
	r := gin.New()
	r.Use(middleware.LoggingMiddleware(logger))
	RegisterRoutes(r, h, middleware.AuthMiddleware(resolver, logger))
	return r
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	validator := logicv1.NewRecordValidator()
	guard := logicv1.NewOwnershipGuard(store.Accounts(), zap.NewNop())
	h := NewHandler(
		logicv1.NewAccountService(store.Accounts(), guard, validator),
		logicv1.NewPassengerService(store.Passengers(), guard, validator),
		logicv1.NewAddressService(store.Addresses(), guard, validator),
	)
	resolver := middleware.NewJWTResolver(testSecret)
	return &testServer{router: newRouter(h, zap.NewNop(), resolver), resolver: resolver}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signUp registers an account over HTTP and returns a session token for it.
func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/users", "", `{
		"email": "`+email+`", "password": "test123", "firstName": "Ayşe", "lastName": "Yılmaz",
		"birthDay": "12", "birthMonth": "4", "birthYear": "1991", "gender": "female",
		"identityNumber": "12345678901"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	token, err := s.resolver.Sign(domain.Identity{Subject: user.ID, Email: user.Email}, time.Hour)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

const passengerBody = `{
	"firstName": "Ali", "lastName": "Kaya", "birthDay": "1", "birthMonth": "2", "birthYear": "2010",
	"gender": "male", "identityNumber": "10987654321"
}`

func TestHandler_Unauthenticated(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method, path, body, want string
	}{
		{http.MethodGet, "/api/v1/passengers", "", "Oturum açmanız gerekiyor"},
		{http.MethodPost, "/api/v1/passengers", passengerBody, "Oturum açmanız gerekiyor"},
		{http.MethodDelete, "/api/v1/passengers/p1", "", "Oturum açmanız gerekiyor"},
		{http.MethodGet, "/api/v1/addresses", "", "Oturum gerekli"},
		{http.MethodGet, "/api/v1/user/profile", "", "Yetkisiz erişim."},
		{http.MethodPut, "/api/v1/user/profile", `{"firstName":"Ayşe"}`, "Yetkisiz erişim."},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, "", tt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.want, decode(t, w)["error"])
		})
	}
}

func TestHandler_InvalidTokensAreAnonymous(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "ayse@example.com")

	wrongKey, err := middleware.NewJWTResolver("other-secret").Sign(
		domain.Identity{Subject: "u1", Email: "ayse@example.com"}, time.Hour)
	require.NoError(t, err)
	expired, err := s.resolver.Sign(domain.Identity{Subject: "u1", Email: "ayse@example.com"}, -time.Minute)
	require.NoError(t, err)

	for name, token := range map[string]string{"wrong key": wrongKey, "expired": expired, "garbage": "not-a-jwt"} {
		t.Run(name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/passengers", token, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestHandler_SessionCookie(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "ayse@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ayse@example.com", body["email"])
	assert.NotContains(t, body, "passwordHash")
}

func TestHandler_UnknownAccount(t *testing.T) {
	s := newTestServer(t)
	token, err := s.resolver.Sign(domain.Identity{Subject: "u1", Email: "ghost@example.com"}, time.Hour)
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/v1/passengers", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Kullanıcı bulunamadı", decode(t, w)["error"])
}

func TestHandler_Register(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "ayse@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/users", "", `{"email":"AYSE@example.com","password":"secret1","firstName":"Ayşe","lastName":"Kaya","identityNumber":"10987654321"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Bu e-posta adresi zaten kayıtlı", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/v1/users", "", `{"email":"bad","password":"1","firstName":"Ayşe","lastName":"Kaya"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["details"], "email")
	assert.Contains(t, body["details"], "password")

	w = s.do(t, http.MethodPost, "/api/v1/users", "", `{"email":"can@example.com","password":"secret1","firstName":"Can","lastName":"Kaya"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["details"], "identityNumber")
}

func TestHandler_PassengerLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "ayse@example.com")
	other := s.signUp(t, "can@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/passengers", token, passengerBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode(t, w)
	id := created["id"].(string)
	assert.Equal(t, false, created["hasMilCard"])
	assert.Equal(t, false, created["isAccountOwner"])

	w = s.do(t, http.MethodGet, "/api/v1/passengers/"+id, other, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Yolcu bulunamadı", decode(t, w)["error"])

	w = s.do(t, http.MethodPut, "/api/v1/passengers/"+id, token,
		strings.Replace(passengerBody, `"10987654321"`, `"123"`, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "TC Kimlik numarası 11 haneli olmalıdır", decode(t, w)["error"])

	w = s.do(t, http.MethodDelete, "/api/v1/passengers/"+id, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Yolcu silindi", decode(t, w)["message"])

	w = s.do(t, http.MethodGet, "/api/v1/passengers", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.Passenger
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].IsAccountOwner)

	w = s.do(t, http.MethodDelete, "/api/v1/passengers/"+list[0].ID, token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Hesap sahibi yolcu profil üzerinden güncellenir", decode(t, w)["error"])
}

func TestHandler_PassengerRequiredFields(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "ayse@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/passengers", token, `{"firstName":"Ali","isForeigner":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Gerekli alanları doldurunuz", decode(t, w)["error"])
}

func TestHandler_MalformedBody(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "ayse@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/addresses", token, `{"type":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Geçersiz istek", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/v1/passengers", token, `{"isForeigner":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["details"], "isForeigner")
	assert.NotContains(t, w.Body.String(), "bool")
}

func TestHandler_AddressLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "ayse@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/addresses", token, `{
		"type": "personal", "firstName": "Ayşe", "lastName": "Yılmaz",
		"address": "Atatürk Cad. No:1", "city": "İzmir", "district": "Konak"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "Ayşe Yılmaz", created["title"])
	assert.Equal(t, "Ayşe Yılmaz", created["name"])
	assert.Nil(t, created["taxNo"])
	id := created["id"].(string)

	w = s.do(t, http.MethodPut, "/api/v1/addresses/"+id, token, `{
		"type": "corporate", "companyName": "Acme", "taxOffice": "Konak",
		"address": "Atatürk Cad. No:1", "city": "İzmir", "district": "Konak"
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Kurumsal adres için şirket adı, vergi dairesi ve vergi no gereklidir", decode(t, w)["error"])

	w = s.do(t, http.MethodDelete, "/api/v1/addresses/"+id, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Adres silindi", decode(t, w)["message"])

	w = s.do(t, http.MethodGet, "/api/v1/addresses/"+id, token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Adres bulunamadı", decode(t, w)["error"])
}

func TestHandler_ProfileUpdate(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "ayse@example.com")

	w := s.do(t, http.MethodPut, "/api/v1/user/profile", token, `{"firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details, ok := decode(t, w)["details"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, details, 2)

	w = s.do(t, http.MethodPut, "/api/v1/user/profile", token, `{"firstName":"Ayşegül","phone":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ayşegül", decode(t, w)["firstName"])

	w = s.do(t, http.MethodGet, "/api/v1/passengers", token, "")
	var list []domain.Passenger
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Ayşegül", list[0].FirstName)
}

type failingAddresses struct {
	AddressService
	err error
}

func (f failingAddresses) List(context.Context, *domain.Identity) ([]domain.Address, error) {
	return nil, f.err
}

func TestHandler_InternalErrorsAreNotExposed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	secret := errors.New("pq: password authentication failed for user \"admin\"")
	h := NewHandler(nil, nil, failingAddresses{err: secret})
	resolver := middleware.NewJWTResolver(testSecret)
	router := newRouter(h, logger, resolver)

	token, err := resolver.Sign(domain.Identity{Subject: "u1", Email: "ayse@example.com"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/addresses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Sunucu hatası"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "admin")

	failures := logs.FilterMessage("Request failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, secret.Error(), failures[0].ContextMap()["error"])
}
