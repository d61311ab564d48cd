package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/foodlist/internal/apperror"
	"github.com/sakif/foodlist/internal/auth"
	"github.com/sakif/foodlist/internal/service"
)

// AuthHandler manages registration, login and the session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create an account
//   - HandleLogin    → check the password, issue the JWT cookie
//   - HandleLogout   → clear the JWT cookie
//   - HandleMe       → return the currently logged-in user
type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
	logger *slog.Logger
}

// CookieConfig controls the session cookie. MaxAge should match the token
// lifetime so the browser drops the cookie when the JWT expires.
type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

func NewAuthHandler(svc *service.AuthService, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   svc,
		cookie: cookie,
		logger: logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

type registerResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// HandleRegister creates an account.
//
// HTTP: POST /auth/register
// Body: {"username": "alice", "password": "pw1234", "confirm": "pw1234"}
//
// Registering does not log the user in; the client calls /auth/login next.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Password != req.Confirm {
		writeError(w, apperror.ValidationFailed("confirm", "passwords do not match"))
		return
	}

	id, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if isInternal(err) {
			h.logger.Error("register failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), id)
	if err != nil {
		h.logger.Error("register: reading new user back failed",
			slog.Int64("userID", id),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{ID: user.ID, Username: user.Username})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies the credentials and sets the session cookie.
//
// HTTP: POST /auth/login
// Body: {"username": "alice", "password": "pw1234"}
//
// Unknown user and wrong password both answer the same 401 body.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if isInternal(err) {
			h.logger.Error("login failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	// HttpOnly keeps the token away from page scripts. SameSite=Lax stops
	// it riding along on cross-site POSTs.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, res.User)
}

// HandleLogout clears the JWT cookie.
//
// HTTP: POST /auth/logout
//
// The token itself stays valid until it expires; without the cookie the
// browser simply stops sending it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the authenticated user's account.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("HandleMe: user lookup failed",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
