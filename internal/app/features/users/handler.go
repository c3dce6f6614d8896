// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Store is the slice of the user store the handlers use.
type Store interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	RoleOf(ctx context.Context, email string) (models.Role, bool, error)
	Upsert(ctx context.Context, email string, p models.UserProfile) (models.User, bool, error)
	UpdateRole(ctx context.Context, email string, role models.Role) (models.User, error)
	UpdateStatus(ctx context.Context, email string, st models.Status) (models.User, error)
	Delete(ctx context.Context, email string) (models.DeleteAck, error)
}

// Handler serves the user endpoints.
type Handler struct {
	Store Store
	Log   *zap.Logger
	resp  *apierr.Responder
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
		resp:  apierr.NewResponder(logger),
	}
}

// userResponse is a user plus the existence flag GET /users/{email} reports.
type userResponse struct {
	models.User
	Exists bool `json:"exists"`
}

type missingUserResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Exists  bool   `json:"exists"`
}

// upsertRequest is the PUT /users/{email} body. Absent fields stay nil.
type upsertRequest struct {
	Name           *string `json:"name"`
	PhotoURL       *string `json:"photoURL"`
	Role           *string `json:"role"`
	IsAdminRequest bool    `json:"isAdminRequest"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// emailParam returns the {email} path segment, decoded and normalized.
func emailParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "email")
	if dec, err := url.PathUnescape(raw); err == nil {
		raw = dec
	}
	email := normalize.Email(raw)
	if email == "" {
		return "", apierr.NewValidationError("email is required")
	}
	return email, nil
}

// profileFrom validates and cleans an upsert body.
func profileFrom(req upsertRequest) (models.UserProfile, error) {
	p := models.UserProfile{AdminRequest: req.IsAdminRequest}
	if req.Name != nil {
		name := normalize.ProfileName(*req.Name)
		p.Name = &name
	}
	if req.PhotoURL != nil {
		photo := normalize.PlainText(*req.PhotoURL)
		p.PhotoURL = &photo
	}
	if req.Role != nil && *req.Role != "" {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			return models.UserProfile{}, apierr.NewValidationError(err.Error())
		}
		p.Role = &role
	}
	return p, nil
}

// ServeGet handles GET /users/{email}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.get")
	defer cancel()

	u, err := h.Store.GetByEmail(ctx, email)
	if err != nil {
		var nf *apierr.NotFoundError
		if errors.As(err, &nf) {
			h.resp.JSON(w, r, http.StatusNotFound, missingUserResponse{
				Error:   "not_found",
				Message: nf.Message,
				Exists:  false,
			})
			return
		}
		h.resp.HandleError(w, r, err)
		return
	}
	h.resp.JSON(w, r, http.StatusOK, userResponse{User: u, Exists: true})
}

// ServeList handles GET /users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "users.list")
	defer cancel()

	us, err := h.Store.List(ctx)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.resp.JSON(w, r, http.StatusOK, us)
}

// ServeUpsert handles PUT /users/{email}: 201 when the user was created,
// 200 when an existing user was updated. Every body field is optional and
// the body itself may be empty.
func (h *Handler) ServeUpsert(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	var req upsertRequest
	if err := apierr.DecodeOptionalJSON(r, &req); err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	p, err := profileFrom(req)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	if p.Role != nil && !p.AdminRequest {
		h.Log.Debug("upsert role ignored for existing users without admin request",
			zap.String("email", email),
			zap.String("role", string(*p.Role)))
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.upsert")
	defer cancel()

	u, created, err := h.Store.Upsert(ctx, email, p)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	if created {
		h.Log.Info("user created", zap.String("email", u.Email), zap.String("role", string(u.Role)))
		h.resp.JSON(w, r, http.StatusCreated, u)
		return
	}
	h.resp.JSON(w, r, http.StatusOK, u)
}

// ServeUpdateRole handles PATCH /users/{email}/role.
func (h *Handler) ServeUpdateRole(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	var req roleRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		h.resp.HandleError(w, r, apierr.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.role")
	defer cancel()

	u, err := h.Store.UpdateRole(ctx, email, role)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.Log.Info("user role changed", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	h.resp.JSON(w, r, http.StatusOK, u)
}

// ServeUpdateStatus handles PATCH /users/{email}/status.
func (h *Handler) ServeUpdateStatus(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	var req statusRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	st, err := models.ParseStatus(req.Status)
	if err != nil {
		h.resp.HandleError(w, r, apierr.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.status")
	defer cancel()

	u, err := h.Store.UpdateStatus(ctx, email, st)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.Log.Info("user status changed", zap.String("email", u.Email), zap.String("status", string(u.Status)))
	h.resp.JSON(w, r, http.StatusOK, u)
}

// ServeDelete handles DELETE /users/{email}. Deleting a missing user
// succeeds with deletedCount 0.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.delete")
	defer cancel()

	ack, err := h.Store.Delete(ctx, email)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.resp.JSON(w, r, http.StatusOK, ack)
}

// roleOf loads the role for the {email} path segment. ok is false when
// the user does not exist.
func (h *Handler) roleOf(r *http.Request, op string) (models.Role, bool, error) {
	email, err := emailParam(r)
	if err != nil {
		return "", false, err
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
	defer cancel()
	return h.Store.RoleOf(ctx, email)
}

// ServeIsAdmin handles GET /users/check/admin/{email}. A missing user is
// not an admin.
func (h *Handler) ServeIsAdmin(w http.ResponseWriter, r *http.Request) {
	role, ok, err := h.roleOf(r, "users.check_admin")
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.resp.JSON(w, r, http.StatusOK, map[string]bool{"isAdmin": ok && role.IsAdmin()})
}

// ServeIsOrganizer handles GET /users/check/organizer/{email}. Admins are
// organizers too.
func (h *Handler) ServeIsOrganizer(w http.ResponseWriter, r *http.Request) {
	role, ok, err := h.roleOf(r, "users.check_organizer")
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.resp.JSON(w, r, http.StatusOK, map[string]bool{"isOrganizer": ok && role.CanOrganize()})
}
