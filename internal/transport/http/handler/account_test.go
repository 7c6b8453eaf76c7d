package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/transport/http/handler"
	"github.com/ErlanBelekov/account-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAccountUsecase implements the unexported accountUsecaser interface via method matching.
type fakeAccountUsecase struct {
	register func(ctx context.Context, email, password string) (*usecase.RegisterResult, error)
	activate func(ctx context.Context, rawToken string) error
	login    func(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	account  func(ctx context.Context, id string) (*domain.Account, error)
}

func (f *fakeAccountUsecase) Register(ctx context.Context, email, password string) (*usecase.RegisterResult, error) {
	return f.register(ctx, email, password)
}

func (f *fakeAccountUsecase) Activate(ctx context.Context, rawToken string) error {
	return f.activate(ctx, rawToken)
}

func (f *fakeAccountUsecase) Login(ctx context.Context, email, password string) (*usecase.LoginResult, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAccountUsecase) Account(ctx context.Context, id string) (*domain.Account, error) {
	return f.account(ctx, id)
}

func (f *fakeAccountUsecase) TokenTTL() time.Duration { return 5 * time.Minute }

func newTestEngine(uc *fakeAccountUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewAccountHandler(uc, logger)

	r := gin.New()
	r.POST("/api/v1/user/register", h.Register)
	r.GET("/api/v1/user/activate", h.Activate)
	r.POST("/api/v1/user/login", h.Login)
	r.GET("/api/v1/user/me", func(c *gin.Context) {
		c.Set("accountID", "acc-1")
		c.Next()
	}, h.Me)
	return r
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Result  json.RawMessage `json:"result"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return env
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ---- Register ----

func TestRegister_InvalidJSON_Returns400(t *testing.T) {
	w := do(newTestEngine(&fakeAccountUsecase{}), http.MethodPost, "/api/v1/user/register", `{bad json}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if env := decode(t, w); env.Success || env.Error == "" {
		t.Errorf("unexpected body %+v", env)
	}
}

func TestRegister_MissingPassword_Returns400(t *testing.T) {
	w := do(newTestEngine(&fakeAccountUsecase{}), http.MethodPost, "/api/v1/user/register", `{"email":"a@x.com"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_Success_SetsCookieAndReturnsVerificationToken(t *testing.T) {
	uc := &fakeAccountUsecase{
		register: func(_ context.Context, email, password string) (*usecase.RegisterResult, error) {
			if email != "a@x.com" || password != "p1" {
				t.Errorf("unexpected input %q/%q", email, password)
			}
			return &usecase.RegisterResult{
				AccountID:         "acc-1",
				AccessToken:       "access.jwt.value",
				VerificationToken: "verify.jwt.value",
			}, nil
		},
	}
	w := do(newTestEngine(uc), http.MethodPost, "/api/v1/user/register", `{"email":"a@x.com","password":"p1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	env := decode(t, w)
	if !env.Success {
		t.Error("success = false")
	}
	var res struct {
		Message           string `json:"message"`
		VerificationToken string `json:"verification_token"`
	}
	if err := json.Unmarshal(env.Result, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.VerificationToken != "verify.jwt.value" {
		t.Errorf("verification_token = %q", res.VerificationToken)
	}
	if res.Message == "" {
		t.Error("empty message")
	}

	c := findCookie(w, handler.AccessTokenCookie)
	if c == nil {
		t.Fatal("token cookie not set")
	}
	if c.Value != "access.jwt.value" {
		t.Errorf("cookie value = %q", c.Value)
	}
	if !c.HttpOnly || c.Secure || c.Path != "/" || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie attributes = %+v", c)
	}
	if c.MaxAge != 300 {
		t.Errorf("cookie max-age = %d, want 300", c.MaxAge)
	}
}

func TestRegister_Exists_Returns409(t *testing.T) {
	uc := &fakeAccountUsecase{
		register: func(_ context.Context, _, _ string) (*usecase.RegisterResult, error) {
			return nil, domain.ErrAccountExists
		},
	}
	w := do(newTestEngine(uc), http.MethodPost, "/api/v1/user/register", `{"email":"a@x.com","password":"p1"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if env := decode(t, w); env.Error != "User already exists." {
		t.Errorf("error = %q", env.Error)
	}
	if findCookie(w, handler.AccessTokenCookie) != nil {
		t.Error("cookie must not be set on failure")
	}
}

func TestRegister_InternalError_Returns500WithoutDetails(t *testing.T) {
	uc := &fakeAccountUsecase{
		register: func(_ context.Context, _, _ string) (*usecase.RegisterResult, error) {
			return nil, errors.Join(domain.ErrStoreUnavailable, errors.New("pq: secret connection detail"))
		},
	}
	w := do(newTestEngine(uc), http.MethodPost, "/api/v1/user/register", `{"email":"a@x.com","password":"p1"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret connection detail") {
		t.Error("internal error text leaked to the client")
	}
}

// ---- Activate ----

func TestActivate_MissingToken_Returns400(t *testing.T) {
	w := do(newTestEngine(&fakeAccountUsecase{}), http.MethodGet, "/api/v1/user/activate", "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestActivate_InvalidToken_Returns400(t *testing.T) {
	uc := &fakeAccountUsecase{
		activate: func(_ context.Context, _ string) error { return domain.ErrTokenInvalid },
	}
	w := do(newTestEngine(uc), http.MethodGet, "/api/v1/user/activate?token=not-a-token", "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if env := decode(t, w); env.Error != "Invalid verification token." {
		t.Errorf("error = %q", env.Error)
	}
}

func TestActivate_InternalError_Returns500(t *testing.T) {
	uc := &fakeAccountUsecase{
		activate: func(_ context.Context, _ string) error { return errors.New("db down") },
	}
	w := do(newTestEngine(uc), http.MethodGet, "/api/v1/user/activate?token=sometoken", "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestActivate_Success_Returns200(t *testing.T) {
	var got string
	uc := &fakeAccountUsecase{
		activate: func(_ context.Context, raw string) error {
			got = raw
			return nil
		},
	}
	w := do(newTestEngine(uc), http.MethodGet, "/api/v1/user/activate?token=valid.jwt.token", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got != "valid.jwt.token" {
		t.Errorf("usecase got token %q", got)
	}
	if !strings.Contains(w.Body.String(), "User activated.") {
		t.Errorf("body = %q", w.Body.String())
	}
}

// ---- Login ----

func TestLogin_InvalidCredentials_Returns401(t *testing.T) {
	uc := &fakeAccountUsecase{
		login: func(_ context.Context, _, _ string) (*usecase.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	w := do(newTestEngine(uc), http.MethodPost, "/api/v1/user/login", `{"email":"a@x.com","password":"nope"}`)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_Success_SetsCookie(t *testing.T) {
	uc := &fakeAccountUsecase{
		login: func(_ context.Context, _, _ string) (*usecase.LoginResult, error) {
			return &usecase.LoginResult{AccountID: "acc-1", AccessToken: "access.jwt.value"}, nil
		},
	}
	w := do(newTestEngine(uc), http.MethodPost, "/api/v1/user/login", `{"email":"a@x.com","password":"p1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if c := findCookie(w, handler.AccessTokenCookie); c == nil || c.Value != "access.jwt.value" {
		t.Errorf("cookie = %+v", c)
	}
}

// ---- Me ----

func TestMe_ReturnsAccount(t *testing.T) {
	uc := &fakeAccountUsecase{
		account: func(_ context.Context, id string) (*domain.Account, error) {
			return &domain.Account{ID: id, Email: "a@x.com", Verified: true, PasswordHash: "$2a$secret"}, nil
		},
	}
	w := do(newTestEngine(uc), http.MethodGet, "/api/v1/user/me", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"verified":true`) {
		t.Errorf("body = %q", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "$2a$secret") {
		t.Error("password hash leaked")
	}
}

func TestMe_NotFound_Returns404(t *testing.T) {
	uc := &fakeAccountUsecase{
		account: func(_ context.Context, _ string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}
	w := do(newTestEngine(uc), http.MethodGet, "/api/v1/user/me", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
