package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	httpapi "github.com/akorchemkin/sitebase/api/http"
	"github.com/akorchemkin/sitebase/api/http/handlers"
	"github.com/akorchemkin/sitebase/pkg/auth"
	"github.com/akorchemkin/sitebase/pkg/health"
	"github.com/akorchemkin/sitebase/pkg/security/jwt"
)

type fakeUseCase struct {
	registerRes auth.Result
	registerErr error
	loginRes    auth.Result
	loginErr    error
	getUser     auth.User
	getFound    bool
	getErr      error
	gotGetID    string
	updateRes   auth.User
	updateErr   error
	gotUpdateID string
	gotUpdate   auth.ProfileUpdate
}

func (f *fakeUseCase) Register(ctx context.Context, email, pw, fullName string) (auth.Result, error) {
	return f.registerRes, f.registerErr
}

func (f *fakeUseCase) Login(ctx context.Context, email, pw string) (auth.Result, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeUseCase) GetByID(ctx context.Context, id string) (auth.User, bool, error) {
	f.gotGetID = id
	return f.getUser, f.getFound, f.getErr
}

func (f *fakeUseCase) UpdateProfile(ctx context.Context, id string, upd auth.ProfileUpdate) (auth.User, error) {
	f.gotUpdateID = id
	f.gotUpdate = upd
	return f.updateRes, f.updateErr
}

func newTestApp(t *testing.T, uc auth.UseCase) (*fiber.App, *jwt.Issuer) {
	t.Helper()
	app := fiber.New()
	issuer := jwt.NewIssuer("test-secret", "sitebase-auth", time.Hour)
	authHandler := handlers.NewAuthHandler(uc, 7*24*time.Hour, false)
	healthHandler := handlers.NewHealthHandler(health.NewService())
	httpapi.Register(app, authHandler, healthHandler, jwt.NewAuthMiddleware(issuer))
	return app, issuer
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == jwt.CookieName {
			return c
		}
	}
	return nil
}

func sampleUser() auth.User {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return auth.User{
		ID:        "user-1",
		Email:     "a@x.com",
		FullName:  "Ada",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	uc := &fakeUseCase{registerRes: auth.Result{User: sampleUser(), Token: "signed-token"}}
	app, _ := newTestApp(t, uc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register",
		`{"email":"a@x.com","password":"pw123","fullName":"Ada"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := sessionCookie(t, resp)
	require.NotNil(t, cookie)
	require.Equal(t, "signed-token", cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), `"a@x.com"`)
	require.NotContains(t, string(body), "password")
	require.NotContains(t, string(body), "hash")
}

func TestRegisterConflictAndValidation(t *testing.T) {
	uc := &fakeUseCase{registerErr: auth.ErrAlreadyExists}
	app, _ := newTestApp(t, uc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register",
		`{"email":"a@x.com","password":"pw456"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register",
		`{"email":"","password":""}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginInvalidCredentials(t *testing.T) {
	uc := &fakeUseCase{loginErr: auth.ErrInvalidCredentials}
	app, _ := newTestApp(t, uc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"a@x.com","password":"wrong"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "invalid credentials", body["message"])
	require.Nil(t, sessionCookie(t, resp))
}

func TestLoginStoreDown(t *testing.T) {
	uc := &fakeUseCase{loginErr: auth.ErrStoreUnavailable}
	app, _ := newTestApp(t, uc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"a@x.com","password":"pw123"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMeRequiresAuth(t *testing.T) {
	uc := &fakeUseCase{}
	app, _ := newTestApp(t, uc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeWithSessionCookie(t *testing.T) {
	uc := &fakeUseCase{getUser: sampleUser(), getFound: true}
	app, issuer := newTestApp(t, uc)

	token, err := issuer.Mint("user-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: jwt.CookieName, Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "user-1", uc.gotGetID)
}

func TestMeAccountGone(t *testing.T) {
	uc := &fakeUseCase{getFound: false}
	app, issuer := newTestApp(t, uc)

	token, err := issuer.Mint("user-gone")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: jwt.CookieName, Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cookie := sessionCookie(t, resp)
	require.NotNil(t, cookie)
	require.Empty(t, cookie.Value)
}

func TestUpdateProfile(t *testing.T) {
	updated := sampleUser()
	updated.FullName = "Ada Lovelace"
	uc := &fakeUseCase{updateRes: updated}
	app, issuer := newTestApp(t, uc)

	token, err := issuer.Mint("user-1")
	require.NoError(t, err)

	req := jsonRequest(http.MethodPatch, "/api/v1/users/me", `{"fullName":"Ada Lovelace"}`)
	req.AddCookie(&http.Cookie{Name: jwt.CookieName, Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "user-1", uc.gotUpdateID)
	require.NotNil(t, uc.gotUpdate.FullName)
	require.Equal(t, "Ada Lovelace", *uc.gotUpdate.FullName)
	require.Nil(t, uc.gotUpdate.AvatarURL)
}

func TestLogoutClearsCookie(t *testing.T) {
	uc := &fakeUseCase{}
	app, _ := newTestApp(t, uc)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	cookie := sessionCookie(t, resp)
	require.NotNil(t, cookie)
	require.Empty(t, cookie.Value)
	require.True(t, cookie.MaxAge < 0 || cookie.Expires.Before(time.Now()))
}
