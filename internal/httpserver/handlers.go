package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"authgate/internal/authn"
	"authgate/internal/identity"
)

// Handlers carries the dependencies shared by the HTTP endpoints.
type Handlers struct {
	Auth     *authn.Service
	Logger   zerolog.Logger
	validate *validator.Validate
}

func NewHandlers(auth *authn.Service, logger zerolog.Logger) *Handlers {
	return &Handlers{
		Auth:     auth,
		Logger:   logger,
		validate: validator.New(),
	}
}

type loginRequest struct {
	Handle   string `json:"handle" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges a handle/password pair for a bearer token. Unknown handles
// and wrong passwords produce byte-identical replies.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	signed, claims, err := h.Auth.Login(r.Context(), req.Handle, req.Password)
	if err != nil {
		if errors.Is(err, authn.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.Logger.Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// Logout revokes the presented token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := authn.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.Auth.Logout(r.Context(), p); err != nil {
		h.Logger.Error().Err(err).Int64("subject", p.Subject).Msg("logout revocation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,max=1024"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=1024"`
}

// ChangePassword rotates the caller's password and revokes their
// outstanding tokens.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := authn.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req passwordChangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.Auth.ChangePassword(r.Context(), p.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, authn.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.Logger.Error().Err(err).Int64("subject", p.Subject).Msg("password change failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated principal.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := authn.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subject":    p.Subject,
		"role":       p.Role,
		"expires_at": p.ExpiresAt,
	})
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// SetRole changes a user's role (administrator only) and revokes the user's
// outstanding tokens.
func (h *Handlers) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := subjectParam(w, r)
	if !ok {
		return
	}
	var req setRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	if err := h.Auth.SetRole(r.Context(), id, role); err != nil {
		h.storeError(w, err, id, "role change failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setBanRequest struct {
	Banned *bool `json:"banned" validate:"required"`
}

// SetBan toggles a user's ban flag (administrator only). Banning revokes the
// user's outstanding tokens.
func (h *Handlers) SetBan(w http.ResponseWriter, r *http.Request) {
	id, ok := subjectParam(w, r)
	if !ok {
		return
	}
	var req setBanRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.Auth.SetBanned(r.Context(), id, *req.Banned); err != nil {
		h.storeError(w, err, id, "ban toggle failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handlers) storeError(w http.ResponseWriter, err error, subject int64, msg string) {
	if errors.Is(err, identity.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	h.Logger.Error().Err(err).Int64("subject", subject).Msg(msg)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func subjectParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
