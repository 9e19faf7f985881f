package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fieldops/salesreport/internal/report/service"
	"github.com/fieldops/salesreport/pkg/httpx"
)

// AuthHandler serves login, refresh and logout.
type AuthHandler struct {
	AuthService *service.AuthService
	AuthCookie  string
	Production  bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type changePasswordResponse struct {
	PasswordStrength int `json:"password_strength"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteValidationError(w, "malformed request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteValidationError(w, "email and password are required", nil)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeAuthInvalid, "invalid email or password")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternalError, "internal error")
		return
	}

	h.setAuthCookie(w, pair.AccessToken, int(pair.ExpiresIn))
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteValidationError(w, "refresh_token is required", nil)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeAuthInvalid, "invalid refresh token")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternalError, "internal error")
		return
	}

	h.setAuthCookie(w, pair.AccessToken, int(pair.ExpiresIn))
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.RefreshToken != "" {
		if err := h.AuthService.Logout(r.Context(), req.RefreshToken); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternalError, "internal error")
			return
		}
	}

	h.clearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the caller's verified identity. Runs inside RequireAuth.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeAuthRequired, "authentication required")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, id)
}

// HandleChangePassword updates the caller's password. Runs inside
// RequireAuth; the pipeline's anti-forgery stage already gates the write.
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	who, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeAuthRequired, "authentication required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteValidationError(w, "malformed request body", nil)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteValidationError(w, "current_password and new_password are required", nil)
		return
	}

	score, err := h.AuthService.ChangePassword(r.Context(), who.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			httpx.WriteValidationError(w, "invalid input", verr.Fields)
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusForbidden, httpx.CodeForbidden, "current password is incorrect")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternalError, "internal error")
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, changePasswordResponse{PasswordStrength: score})
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.AuthCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.AuthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteStrictMode,
	})
}
