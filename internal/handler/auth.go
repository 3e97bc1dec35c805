package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/taskflow/taskflow-go/internal/middleware"
	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/service"
)

const (
	refreshCookieName = "refreshToken"
	refreshCookiePath = "/auth"
)

// CookiePolicy controls how the refresh-token cookie is written.
type CookiePolicy struct {
	Secure bool
	MaxAge time.Duration
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
	cookie  CookiePolicy
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, cookie CookiePolicy) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie}
}

// HandleRegister handles POST /auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) error {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		return err
	}

	h.respond(w, http.StatusCreated, res)
	return nil
}

// HandleLogin handles POST /auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		return err
	}

	h.respond(w, http.StatusOK, res)
	return nil
}

// HandleRefresh handles POST /auth/refresh requests. The refresh token is
// read from the cookie only.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) error {
	var presented string
	cookie, err := r.Cookie(refreshCookieName)
	if err == nil {
		presented = cookie.Value
	} else if !errors.Is(err, http.ErrNoCookie) {
		return err
	}

	res, err := h.service.Refresh(r.Context(), presented)
	if err != nil {
		return err
	}

	h.respond(w, http.StatusOK, res)
	return nil
}

// HandleLogout handles POST /auth/logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUser(r)
	if err != nil {
		return err
	}

	if err := h.service.Logout(r.Context(), userID); err != nil {
		return err
	}

	h.clearCookie(w)
	writeMessage(w, http.StatusOK, "logged out successfully")
	return nil
}

func (h *AuthHandler) respond(w http.ResponseWriter, status int, res model.AuthResult) {
	h.setCookie(w, res.RefreshToken)
	writeData(w, status, model.AuthResponse{User: res.User, AccessToken: res.AccessToken})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// requireUser returns the authenticated user ID set by middleware.JWTAuth.
func requireUser(r *http.Request) (string, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return "", errUnauthorized
	}
	return userID, nil
}
