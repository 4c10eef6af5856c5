package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inventorypro/inventorypro/internal/core/service"
	"github.com/inventorypro/inventorypro/pkg/httpx"
	"github.com/inventorypro/inventorypro/pkg/idx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

// AuthHandler owns login, second-factor verification, registration and
// logout. Successful authentication sets the HTTP-only session cookie; the
// response body never carries the token.
type AuthHandler struct {
	AuthService *service.AuthService
	Cookies     CookieConfig
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse reports either a completed login or an interrupted one. When
// OTPRequired is set, the client must call the verify endpoint with the code
// delivered out of band before a session exists.
type loginResponse struct {
	OTPRequired bool                  `json:"otp_required"`
	UserID      string                `json:"user_id,omitempty"`
	User        *service.UserSnapshot `json:"user,omitempty"`
}

// HandleLogin handles POST /api/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	result, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized,
				"invalid_credentials", "Email or password is incorrect")
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	if result.RequiresOTP {
		httpx.WriteJSON(w, http.StatusOK, loginResponse{
			OTPRequired: true,
			UserID:      result.User.ID.String(),
		})
		return
	}

	user := service.NewUserSnapshot(result.User)
	http.SetCookie(w, h.Cookies.Session(result.Token))
	httpx.WriteJSON(w, http.StatusOK, loginResponse{User: &user})
}

// HandleVerifyOTP handles POST /api/auth/verify-otp. The user id and code
// arrive as query parameters so the second step works without a session.
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, err := idx.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Missing or malformed user_id")
		return
	}
	code := r.URL.Query().Get("otp_code")
	if code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Missing otp_code")
		return
	}

	result, err := h.AuthService.VerifyOTP(ctx, userID, code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPExpired):
			httpx.WriteError(w, http.StatusUnauthorized, "otp_expired", "The code has expired, log in again")
		case errors.Is(err, service.ErrOTPAttemptsExceeded):
			httpx.WriteError(w, http.StatusUnauthorized, "otp_attempts_exceeded", "Too many wrong codes, log in again")
		case errors.Is(err, service.ErrOTPInvalid):
			httpx.WriteError(w, http.StatusUnauthorized, "otp_invalid", "The code is not valid")
		default:
			log.Error("otp verification failed", "user_id", userID.String(), "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		}
		return
	}

	user := service.NewUserSnapshot(result.User)
	http.SetCookie(w, h.Cookies.Session(result.Token))
	httpx.WriteJSON(w, http.StatusOK, loginResponse{User: &user})
}

type registerRequest struct {
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Password   string  `json:"password"`
	Phone      *string `json:"phone,omitempty"`
	OTPEnabled bool    `json:"otp_enabled"`
}

// HandleRegister handles POST /api/auth/register. New accounts always start
// with the least-privileged role.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email, name and password are required")
		return
	}

	user, err := h.AuthService.Register(ctx, service.RegisterParams{
		Email:      req.Email,
		Name:       req.Name,
		Password:   req.Password,
		Phone:      req.Phone,
		OTPEnabled: req.OTPEnabled,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			httpx.WriteError(w, http.StatusBadRequest, "duplicate_email", "An account with this email already exists")
			return
		}
		log.Error("registration failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, service.NewUserSnapshot(user))
}

// HandleLogout handles POST /api/auth/logout. Revokes the session behind the
// cookie and clears the cookie. Idempotent.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.AuthService.Logout(ctx, sessionToken(r, h.Cookies.Name)); err != nil {
		log.Error("logout failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	http.SetCookie(w, h.Cookies.Deletion())
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe handles GET /api/auth/me for any authenticated user.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "A valid session is required")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, service.NewUserSnapshot(user))
}
