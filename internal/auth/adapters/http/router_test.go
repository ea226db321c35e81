package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authhttp "credkeeper/internal/auth/adapters/http"
	"credkeeper/internal/auth/adapters/memory"
	adapters "credkeeper/internal/auth/adapters/services"
	"credkeeper/internal/auth/app"
	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/i18n"
	"credkeeper/internal/auth/ports/repositories"
)

const (
	testSecret = "router-test-secret"
	testOrigin = "http://localhost:3000"
	testEmail  = "dana@example.com"
	testPass   = "s3cret-pass"
)

var ErrMailbox = errors.New("mailbox unavailable")

// capturingSender запоминает отправленные письма.
type capturingSender struct {
	mu    sync.Mutex
	mails []*services.ResetMail
	err   error
}

func (s *capturingSender) Send(_ context.Context, mail *services.ResetMail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.mails = append(s.mails, mail)
	return nil
}

func (s *capturingSender) last(t *testing.T) *services.ResetMail {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.mails)
	return s.mails[len(s.mails)-1]
}

// brokenStore - хранилище, которое не отвечает на ping.
type brokenStore struct {
	repositories.UserRepository
}

func (brokenStore) Ping(context.Context) error {
	return errors.New("connection refused")
}

type testServer struct {
	app    *fiber.App
	sender *capturingSender
	repo   repositories.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := memory.NewUserRepository()
	sender := &capturingSender{}
	factory := adapters.NewServiceFactory(testSecret, time.Hour, bcrypt.MinCost, 0)

	fiberApp := fiber.New()
	authhttp.SetupRouter(fiberApp, authhttp.Dependencies{
		Auth: app.NewAuthUseCase(repo, factory.PasswordService(), factory.TokenService()),
		Reset: app.NewResetUseCase(repo, factory.PasswordService(), factory.ResetTokenService(), sender,
			app.ResetSettings{TokenTTL: 10 * time.Minute, LinkBaseURL: "http://localhost:3000/reset-password"}),
		User:   app.NewUserUseCase(),
		Gate:   app.NewGate(factory.TokenService()),
		Health: repo,
	}, testOrigin)

	return &testServer{app: fiberApp, sender: sender, repo: repo}
}

type response struct {
	status  int
	header  http.Header
	payload map[string]string
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	payload := map[string]string{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return response{status: resp.StatusCode, header: resp.Header, payload: payload}
}

func (s *testServer) post(t *testing.T, path string, body any) response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return s.do(t, http.MethodPost, path, string(raw), map[string]string{fiber.HeaderAcceptLanguage: "en"})
}

func en(key i18n.Key) string {
	return i18n.T(i18n.English, key)
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestSignupEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.post(t, "/signup", map[string]string{"email": testEmail, "password": testPass})
	assert.Equal(t, http.StatusCreated, resp.status)
	assert.Equal(t, en(i18n.SignupSuccess), resp.payload["message"])

	resp = srv.post(t, "/signup", map[string]string{"email": testEmail, "password": "other"})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, en(i18n.EmailAlreadyExists), resp.payload["message"])

	resp = srv.post(t, "/signup", map[string]string{"email": "", "password": testPass})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, en(i18n.MissingFields), resp.payload["message"])

	resp = srv.post(t, "/signup", map[string]string{"email": "long@example.com", "password": strings.Repeat("x", 73)})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, en(i18n.PasswordTooLong), resp.payload["message"])

	stored, err := srv.repo.FindByEmail(context.Background(), testEmail)
	require.NoError(t, err)
	assert.NotEqual(t, testPass, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(testPass)))
}

func TestMalformedJSON(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/signup", "/login", "/forgot-password", "/reset-password"} {
		t.Run(path, func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, path, "{not json", map[string]string{fiber.HeaderAcceptLanguage: "en"})
			assert.Equal(t, http.StatusBadRequest, resp.status)
			assert.Equal(t, en(i18n.MissingFields), resp.payload["message"])
		})
	}
}

func TestLoginAndUserHome(t *testing.T) {
	srv := newTestServer(t)
	srv.post(t, "/signup", map[string]string{"email": testEmail, "password": testPass})

	tests := []struct {
		name     string
		body     map[string]string
		status   int
		expected i18n.Key
	}{
		{"Неизвестный пользователь", map[string]string{"email": "ghost@example.com", "password": testPass}, http.StatusBadRequest, i18n.UserNotFound},
		{"Неверный пароль", map[string]string{"email": testEmail, "password": "wrong"}, http.StatusBadRequest, i18n.IncorrectPassword},
		{"Пустые поля", map[string]string{"email": testEmail}, http.StatusBadRequest, i18n.MissingFields},
		{"Успешный вход", map[string]string{"email": testEmail, "password": testPass}, http.StatusOK, i18n.LoginSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.post(t, "/login", tt.body)
			assert.Equal(t, tt.status, resp.status)
			assert.Equal(t, en(tt.expected), resp.payload["message"])
		})
	}

	login := srv.post(t, "/login", map[string]string{"email": testEmail, "password": testPass})
	token := login.payload["token"]
	require.NotEmpty(t, token)

	home := srv.do(t, http.MethodGet, "/user-home", "", map[string]string{
		fiber.HeaderAuthorization:  token,
		fiber.HeaderAcceptLanguage: "en",
	})
	assert.Equal(t, http.StatusOK, home.status)
	assert.Equal(t, testEmail, home.payload["email"])
	assert.Equal(t, "Welcome, "+testEmail, home.payload["message"])

	bearer := srv.do(t, http.MethodGet, "/user-home", "", map[string]string{
		fiber.HeaderAuthorization: "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, bearer.status)
	assert.Equal(t, i18n.T(i18n.Hebrew, i18n.Welcome)+", "+testEmail, bearer.payload["message"])
}

func TestUserHomeRejected(t *testing.T) {
	srv := newTestServer(t)

	missing := srv.do(t, http.MethodGet, "/user-home", "", map[string]string{fiber.HeaderAcceptLanguage: "en"})
	assert.Equal(t, http.StatusForbidden, missing.status)
	assert.Equal(t, en(i18n.AccessDenied), missing.payload["message"])

	invalid := srv.do(t, http.MethodGet, "/user-home", "", map[string]string{
		fiber.HeaderAuthorization:  "garbage",
		fiber.HeaderAcceptLanguage: "en",
	})
	assert.Equal(t, http.StatusForbidden, invalid.status)
	assert.Equal(t, en(i18n.InvalidToken), invalid.payload["message"])

	foreign, _, err := adapters.NewJWT("another-secret", time.Hour).Issue(context.Background(), testEmail)
	require.NoError(t, err)
	forged := srv.do(t, http.MethodGet, "/user-home", "", map[string]string{fiber.HeaderAuthorization: foreign})
	assert.Equal(t, http.StatusForbidden, forged.status)
}

func TestPasswordResetFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.post(t, "/signup", map[string]string{"email": testEmail, "password": testPass})

	unknown := srv.post(t, "/forgot-password", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusBadRequest, unknown.status)
	assert.Equal(t, en(i18n.EmailNotFound), unknown.payload["message"])

	forgot := srv.post(t, "/forgot-password", map[string]string{"email": testEmail})
	require.Equal(t, http.StatusOK, forgot.status)
	assert.Equal(t, en(i18n.ResetEmailSent), forgot.payload["message"])

	mail := srv.sender.last(t)
	assert.Equal(t, testEmail, mail.To)
	assert.Equal(t, en(i18n.PasswordReset), mail.Subject)
	token := tokenFromLink(t, mail.Link)
	require.Len(t, token, 64)

	wrong := srv.post(t, "/reset-password", map[string]string{"email": testEmail, "token": strings.Repeat("0", 64), "newPassword": "new-pass"})
	assert.Equal(t, http.StatusBadRequest, wrong.status)
	assert.Equal(t, en(i18n.InvalidOrExpiredLink), wrong.payload["message"])

	reset := srv.post(t, "/reset-password", map[string]string{"email": testEmail, "token": token, "newPassword": "new-pass"})
	require.Equal(t, http.StatusOK, reset.status)
	assert.Equal(t, en(i18n.ResetSuccess), reset.payload["message"])

	reused := srv.post(t, "/reset-password", map[string]string{"email": testEmail, "token": token, "newPassword": "again"})
	assert.Equal(t, http.StatusBadRequest, reused.status)
	assert.Equal(t, en(i18n.InvalidOrExpiredLink), reused.payload["message"])

	oldLogin := srv.post(t, "/login", map[string]string{"email": testEmail, "password": testPass})
	assert.Equal(t, http.StatusBadRequest, oldLogin.status)
	newLogin := srv.post(t, "/login", map[string]string{"email": testEmail, "password": "new-pass"})
	assert.Equal(t, http.StatusOK, newLogin.status)
}

func TestForgotPasswordSupersedesPreviousToken(t *testing.T) {
	srv := newTestServer(t)
	srv.post(t, "/signup", map[string]string{"email": testEmail, "password": testPass})

	srv.post(t, "/forgot-password", map[string]string{"email": testEmail})
	first := tokenFromLink(t, srv.sender.last(t).Link)
	srv.post(t, "/forgot-password", map[string]string{"email": testEmail})
	second := tokenFromLink(t, srv.sender.last(t).Link)
	require.NotEqual(t, first, second)

	stale := srv.post(t, "/reset-password", map[string]string{"email": testEmail, "token": first, "newPassword": "new-pass"})
	assert.Equal(t, http.StatusBadRequest, stale.status)

	fresh := srv.post(t, "/reset-password", map[string]string{"email": testEmail, "token": second, "newPassword": "new-pass"})
	assert.Equal(t, http.StatusOK, fresh.status)
}

func TestForgotPasswordMailFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.post(t, "/signup", map[string]string{"email": testEmail, "password": testPass})
	srv.sender.err = ErrMailbox

	resp := srv.post(t, "/forgot-password", map[string]string{"email": testEmail})
	assert.Equal(t, http.StatusInternalServerError, resp.status)
	assert.Equal(t, en(i18n.ErrorSending), resp.payload["message"])
}

func TestLocalization(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"Без заголовка - иврит", "", i18n.T(i18n.Hebrew, i18n.MissingFields)},
		{"Английский", "en-US,en;q=0.9", i18n.T(i18n.English, i18n.MissingFields)},
		{"Иврит", "he", i18n.T(i18n.Hebrew, i18n.MissingFields)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers[fiber.HeaderAcceptLanguage] = tt.header
			}
			resp := srv.do(t, http.MethodPost, "/signup", `{"email":""}`, headers)
			assert.Equal(t, http.StatusBadRequest, resp.status)
			assert.Equal(t, tt.expected, resp.payload["message"])
		})
	}
}

func TestHealthAndNotFound(t *testing.T) {
	srv := newTestServer(t)

	health := srv.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, health.status)
	assert.Equal(t, "ok", health.payload["message"])

	missing := srv.do(t, http.MethodGet, "/nope", "", map[string]string{fiber.HeaderAcceptLanguage: "en"})
	assert.Equal(t, http.StatusNotFound, missing.status)
	assert.Equal(t, en(i18n.RouteNotFound), missing.payload["message"])
}

func TestHealthStoreDown(t *testing.T) {
	repo := memory.NewUserRepository()
	factory := adapters.NewServiceFactory(testSecret, time.Hour, bcrypt.MinCost, 0)

	fiberApp := fiber.New()
	authhttp.SetupRouter(fiberApp, authhttp.Dependencies{
		Auth:   app.NewAuthUseCase(repo, factory.PasswordService(), factory.TokenService()),
		Reset:  app.NewResetUseCase(repo, factory.PasswordService(), factory.ResetTokenService(), &capturingSender{}, app.ResetSettings{}),
		User:   app.NewUserUseCase(),
		Gate:   app.NewGate(factory.TokenService()),
		Health: brokenStore{UserRepository: repo},
	}, testOrigin)

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRequestIDAndCORS(t *testing.T) {
	srv := newTestServer(t)

	echoed := srv.do(t, http.MethodGet, "/healthz", "", map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, "req-42", echoed.header.Get("X-Request-ID"))

	generated := srv.do(t, http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, generated.header.Get("X-Request-ID"))

	cors := srv.do(t, http.MethodGet, "/healthz", "", map[string]string{fiber.HeaderOrigin: testOrigin})
	assert.Equal(t, testOrigin, cors.header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", cors.header.Get(fiber.HeaderAccessControlAllowCredentials))
}
