package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authgate/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(auth.TokenConfig{
		Key:      []byte("0123456789abcdef0123456789abcdef"),
		Issuer:   "authgate",
		Audience: "authgate-clients",
		Duration: 60 * time.Minute,
	})
	require.NoError(t, err)
	return ts
}

type fakeUsers struct {
	registerErr error
	loginOut    *services.Token
	loginErr    error

	gotUser, gotPass string
}

func (f *fakeUsers) Register(ctx context.Context, username, password string) (*models.User, error) {
	f.gotUser, f.gotPass = username, password
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "u-1", UserName: username}, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*services.Token, error) {
	f.gotUser, f.gotPass = username, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginOut, nil
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRegister_Responses(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"ok", `{"username":"alice","password":"S3cret!"}`, nil, http.StatusOK, msgRegistered},
		{"duplicate", `{"username":"alice","password":"S3cret!"}`, common.ErrDuplicateUser, http.StatusBadRequest, msgUserExists},
		{"invalid input", `{"username":"","password":"x"}`, common.ErrInvalidRequest, http.StatusBadRequest, msgInvalidRequest},
		{"store down", `{"username":"alice","password":"x"}`, common.ErrorInternal, http.StatusInternalServerError, msgInternal},
		{"malformed json", `{"username":`, nil, http.StatusBadRequest, msgInvalidRequest},
		{"wrong type", `{"username":42,"password":"x"}`, nil, http.StatusBadRequest, msgInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewHTTPServer(":0", logging.NopLogger{}, &fakeUsers{registerErr: tt.err}, newTokens(t))

			w := do(t, s.Handler(), http.MethodPost, "/auth/register", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRegister_PassesFieldsThrough(t *testing.T) {
	fu := &fakeUsers{}
	s := NewHTTPServer(":0", logging.NopLogger{}, fu, newTokens(t))

	w := do(t, s.Handler(), http.MethodPost, "/api/v1/auth/register", `{"username":"alice","password":"S3cret!"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", fu.gotUser)
	assert.Equal(t, "S3cret!", fu.gotPass)
}

func TestLogin_Success(t *testing.T) {
	exp := time.Date(2025, 6, 1, 11, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	fu := &fakeUsers{loginOut: &services.Token{AccessToken: "a.b.c", ExpiresAt: exp}}
	s := NewHTTPServer(":0", logging.NopLogger{}, fu, newTokens(t))

	w := do(t, s.Handler(), http.MethodPost, "/auth/login", `{"username":"alice","password":"S3cret!"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "a.b.c", resp.Token)
	assert.Equal(t, "2025-06-01T09:00:00Z", resp.Expires)
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"bad credentials", `{"username":"alice","password":"nope"}`, common.ErrInvalidCredentials, http.StatusUnauthorized, msgInvalidCredentials},
		{"empty field", `{"username":"alice"}`, common.ErrInvalidRequest, http.StatusBadRequest, msgInvalidRequest},
		{"internal", `{"username":"alice","password":"x"}`, errors.New("boom"), http.StatusInternalServerError, msgInternal},
		{"empty body", ``, nil, http.StatusBadRequest, msgInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewHTTPServer(":0", logging.NopLogger{}, &fakeUsers{loginErr: tt.err}, newTokens(t))

			w := do(t, s.Handler(), http.MethodPost, "/auth/login", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestHealth_IsPublic(t *testing.T) {
	s := NewHTTPServer(":0", logging.NopLogger{}, &fakeUsers{}, newTokens(t))

	w := do(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestWeather_ReturnsFiveDays(t *testing.T) {
	ts := newTokens(t)
	s := NewHTTPServer(":0", logging.NopLogger{}, &fakeUsers{}, ts)
	s.now = func() time.Time { return t0 }

	token, _, err := ts.Issue("alice", t0)
	require.NoError(t, err)

	w := do(t, s.Handler(), http.MethodGet, "/api/v2/weather", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	var got []forecast
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, forecastDays)
	assert.Equal(t, "2025-06-02", got[0].Date)
	assert.Equal(t, "2025-06-06", got[4].Date)
	for _, f := range got {
		assert.GreaterOrEqual(t, f.TemperatureC, -20)
		assert.Less(t, f.TemperatureC, 55)
		assert.Equal(t, fahrenheit(f.TemperatureC), f.TemperatureF)
		assert.Contains(t, summaries, f.Summary)
	}
}

func TestFahrenheit(t *testing.T) {
	assert.Equal(t, 32, fahrenheit(0))
	assert.Equal(t, 211, fahrenheit(100))
	assert.Equal(t, -3, fahrenheit(-20))
}

// TestAliceScenario drives the real service over the memory store.
func TestAliceScenario(t *testing.T) {
	ts := newTokens(t)
	now := t0
	clock := func() time.Time { return now }

	us := services.NewUserService(nil, repomanager.NewMemoryRepositoryManager(),
		auth.NewBcryptHasher(bcrypt.MinCost), ts, logging.NopLogger{}).WithClock(clock)
	s := NewHTTPServer(":0", logging.NopLogger{}, us, ts)
	s.now = clock
	h := s.Handler()

	creds := `{"username":"alice","password":"S3cret!"}`

	w := do(t, h, http.MethodPost, "/auth/register", creds)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/auth/register", creds)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists.", w.Body.String())

	w = do(t, h, http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", w.Body.String())
	wrongBody := w.Body.String()

	w = do(t, h, http.MethodPost, "/auth/login", `{"username":"mallory","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, wrongBody, w.Body.String())

	w = do(t, h, http.MethodPost, "/auth/login", creds)
	require.Equal(t, http.StatusOK, w.Code)
	var lr loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lr))
	assert.Equal(t, "2025-06-01T11:00:00Z", lr.Expires)

	w = do(t, h, http.MethodGet, "/api/me", "", "Authorization", "Bearer "+lr.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"alice","expires":"2025-06-01T11:00:00Z"}`, w.Body.String())

	now = t0.Add(59*time.Minute + 59*time.Second)
	w = do(t, h, http.MethodGet, "/api/me", "", "Authorization", "Bearer "+lr.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	now = t0.Add(60 * time.Minute)
	w = do(t, h, http.MethodGet, "/api/me", "", "Authorization", "Bearer "+lr.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
}

func TestFormatExpiry(t *testing.T) {
	assert.Equal(t, "2025-06-01T11:00:00Z", formatExpiry(time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-06-01T11:00:00.9Z", formatExpiry(time.Date(2025, 6, 1, 13, 0, 0, 900000000, time.FixedZone("CEST", 2*3600))))
}
