package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

// AccessTokenCookie carries the access token issued by register and login.
const AccessTokenCookie = "token"

// accountUsecaser is the subset of AccountUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type accountUsecaser interface {
	Register(ctx context.Context, email, password string) (*usecase.RegisterResult, error)
	Activate(ctx context.Context, rawToken string) error
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	Account(ctx context.Context, id string) (*domain.Account, error)
	TokenTTL() time.Duration
}

type AccountHandler struct {
	uc     accountUsecaser
	logger *slog.Logger
}

func NewAccountHandler(uc accountUsecaser, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: logger.With("component", "account_handler"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"    binding:"required,email,max=320"`
	Password string `json:"password" binding:"required"`
}

type registerResult struct {
	Message           string `json:"message"`
	VerificationToken string `json:"verification_token"`
}

type messageResult struct {
	Message string `json:"message"`
}

type accountResult struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// POST /api/v1/user/register
// The verification token is returned in the body for development; the
// access token goes into an HttpOnly cookie.
func (h *AccountHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.DebugContext(c.Request.Context(), "bind register request", "error", err)
		fail(c, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	res, err := h.uc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			fail(c, http.StatusConflict, errUserExists)
			return
		}
		fail(c, http.StatusInternalServerError, errInternalRegister)
		return
	}

	h.setAccessCookie(c, res.AccessToken)
	ok(c, http.StatusOK, registerResult{
		Message:           msgRegistered,
		VerificationToken: res.VerificationToken,
	})
}

// GET /api/v1/user/activate?token=<verification token>
// Every token problem maps to the same 400 so callers cannot tell which
// accounts exist.
func (h *AccountHandler) Activate(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		fail(c, http.StatusBadRequest, errInvalidVerificationToken)
		return
	}

	if err := h.uc.Activate(c.Request.Context(), rawToken); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			fail(c, http.StatusBadRequest, errInvalidVerificationToken)
			return
		}
		fail(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	ok(c, http.StatusOK, messageResult{Message: msgActivated})
}

// POST /api/v1/user/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	res, err := h.uc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, errInvalidCredentials)
			return
		}
		fail(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	h.setAccessCookie(c, res.AccessToken)
	ok(c, http.StatusOK, messageResult{Message: msgLoggedIn})
}

// GET /api/v1/user/me (behind middleware.Auth)
func (h *AccountHandler) Me(c *gin.Context) {
	accountID := c.GetString("accountID")

	a, err := h.uc.Account(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			fail(c, http.StatusNotFound, errAccountNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "load account", "account_id", accountID, "error", err)
		fail(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	ok(c, http.StatusOK, accountResult{
		ID:        a.ID,
		Email:     a.Email,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt,
	})
}

// setAccessCookie writes the access token as an HttpOnly, Lax, path-wide
// cookie whose Max-Age equals the token lifetime. Secure is off so the
// cookie also works over plain HTTP in development.
func (h *AccountHandler) setAccessCookie(c *gin.Context, accessToken string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, accessToken, int(h.uc.TokenTTL().Seconds()), "/", "", false, true)
}
