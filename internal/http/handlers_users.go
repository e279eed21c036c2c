package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	"github.com/wavechat/wavechat-api/internal/service"
)

// UserServiceInterface defines the profile operations the handlers depend on.
type UserServiceInterface interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateOwnProfile(ctx context.Context, sess *domainauth.Session, in service.UpdateProfileInput) (*model.User, error)
	UpdateUserProfile(ctx context.Context, sess *domainauth.Session, targetID string, req model.UpdateUserRequest) (*model.User, error)
}

// UserHandlers provides HTTP handlers for profile reads and updates.
type UserHandlers struct {
	Svc UserServiceInterface
}

// Me returns the caller's full account record.
// GET /api/users/me.
func (h *UserHandlers) Me(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	user, err := h.Svc.GetByID(r.Context(), session.User.ID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// UpdateMe applies self-service profile changes, including password changes
// guarded by the current password.
// PATCH /api/users/me.
func (h *UserHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var in service.UpdateProfileInput
	if !DecodeJSON(w, r, &in) {
		return
	}

	user, err := h.Svc.UpdateOwnProfile(r.Context(), session, in)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// Update applies an admin's changes to another account. The target's live
// sessions converge through the refresh coordinator.
// PATCH /api/users/{id}.
func (h *UserHandlers) Update(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	targetID := r.PathValue("id")

	var req model.UpdateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Svc.UpdateUserProfile(r.Context(), session, targetID, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}
