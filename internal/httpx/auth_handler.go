package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-parfum-store.git/internal/auth"
)

type AuthHandler struct {
	Sessions *auth.Manager
	Log      *zap.Logger
	// Secure cookie dimatikan di dev lokal (http polos).
	SecureCookie bool
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register: login di luar session middleware, logout di dalamnya.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/login", h.login)
}

func (h *AuthHandler) RegisterAdmin(r chi.Router) {
	r.Post("/logout", h.logout)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "email and password are required", nil)
		return
	}

	token, err := h.Sessions.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
		return
	}
	if err != nil {
		if h.Log != nil {
			h.Log.Error("login failed", zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, "internal", "internal error", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.Sessions.TTL.Seconds()),
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil && h.Log != nil {
		h.Log.Warn("logout failed", zap.Error(err))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}
