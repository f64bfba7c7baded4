// Package handler is the HTTP layer: it decodes request bodies into the
// explicit schemas below, calls the service layer, and encodes responses.
// Each endpoint's request/response shape is a named struct — nothing is
// decoded into loose maps.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/codespace/internal/apperror"
	"github.com/sakif/codespace/internal/auth"
	"github.com/sakif/codespace/internal/service"
)

// AuthHandler serves login, logout, and the small session-introspection
// endpoints the frontend polls.
type AuthHandler struct {
	auth       *service.AuthService
	production bool // controls the Secure flag on the session cookie
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler. production should come from the
// deployment-mode config flag.
func NewAuthHandler(authService *service.AuthService, production bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:       authService,
		production: production,
		logger:     logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	IsAdmin  bool   `json:"isAdmin"`
	Username string `json:"username"`
}

// messageResponse is the login-failure body: {"message":"Invalid credentials"}.
// The shape differs from ErrorResponse for historical reasons — the
// frontend reads .message on this endpoint.
type messageResponse struct {
	Message string `json:"message"`
}

// HandleLogin authenticates and sets the session cookie.
//
// HTTP: POST /login
// BODY: {"username":"alice","password":"..."}
//
// Wrong password and unknown username both produce the identical
// 401 {"message":"Invalid credentials"} — see AuthService.Login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthenticated) {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid credentials"})
			return
		}
		writeError(w, err)
		return
	}

	// HttpOnly keeps the token away from page scripts; Secure (production
	// only) keeps it off plaintext HTTP. MaxAge matches the server-side
	// session TTL so the browser and the session table expire together.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Success:  true,
		IsAdmin:  result.IsAdmin,
		Username: result.Username,
	})
}

type successResponse struct {
	Success bool `json:"success"`
}

// HandleLogout destroys the session and clears the cookie.
//
// HTTP: GET /logout
//
// Unauthenticated on purpose: logging out with an expired or missing
// session still answers {"success":true}.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		h.auth.Logout(cookie.Value)
	}

	// MaxAge < 0 tells the browser to drop the cookie immediately.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type checkAdminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

// HandleCheckAdmin reports the session's cached admin flag.
//
// HTTP: GET /check-admin (authenticated)
func (h *AuthHandler) HandleCheckAdmin(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, checkAdminResponse{IsAdmin: identity.IsAdmin})
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

// HandleRedirectAfterLogin tells the frontend which page to load for the
// current role.
//
// HTTP: GET /redirect-after-login (authenticated)
func (h *AuthHandler) HandleRedirectAfterLogin(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	page := "codespace.html"
	if identity.IsAdmin {
		page = "teacher-dashboard.html"
	}
	writeJSON(w, http.StatusOK, redirectResponse{Redirect: page})
}
