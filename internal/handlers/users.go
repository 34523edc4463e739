package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/store"
)

// Users exposes the admin-only account management endpoints.
type Users struct {
	userStore *store.UserStore
}

// NewUsers creates the user management handler group.
func NewUsers(userStore *store.UserStore) *Users {
	return &Users{userStore: userStore}
}

type userItem struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	TOTPEnabled bool      `json:"totp_enabled"`
}

// List handles GET /moderation/users.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not list users")
		return
	}

	items := make([]userItem, 0, len(users))
	for _, u := range users {
		items = append(items, userItem{
			ID:          u.ID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			Role:        string(u.Role),
			TOTPEnabled: u.TOTPEnabled,
		})
	}
	respondJSON(w, http.StatusOK, items)
}

// ResetTwoFA handles POST /moderation/users/{id}/reset-2fa. The target user
// is forced back through TOTP setup on their next login.
func (h *Users) ResetTwoFA(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userStore.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load user")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.userStore.ResetTOTP(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "could not reset 2fa")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
