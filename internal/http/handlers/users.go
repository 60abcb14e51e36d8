package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pribylovaa/go-user-directory/internal/api"
	apierrors "github.com/pribylovaa/go-user-directory/internal/errors"
	"github.com/pribylovaa/go-user-directory/internal/service"
)

// ListUsers — GET /api/users: все записи, сначала новые.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	items, err := h.Users.ListUsers(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ActionList, err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, api.UsersFromModels(items))
}

// GetUser — GET /api/users/{id}.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.UserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ActionGet, err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, api.UserFromModel(*user))
}

// CreateUser — POST /api/users.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in api.CreateUserRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ActionCreate, apierrors.BadRequest(err))
		return
	}

	user, err := h.Users.CreateUser(r.Context(), service.CreateUserInput{
		Name:        in.Name,
		Gender:      in.Gender,
		Designation: in.Designation,
		Favorites:   in.Favorites,
	})
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ActionCreate, err)
		return
	}

	apierrors.WriteJSON(w, http.StatusCreated, api.UserFromModel(*user))
}

// UpdateUser — PUT /api/users/{id}: меняются только переданные поля.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in api.UpdateUserRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ActionUpdate, apierrors.BadRequest(err))
		return
	}

	user, err := h.Users.UpdateUser(r.Context(), chi.URLParam(r, "id"), in.ToModel())
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ActionUpdate, err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, api.UserFromModel(*user))
}

// DeleteUser — DELETE /api/users/{id}.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		apierrors.WriteError(w, r, apierrors.ActionDelete, err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: apierrors.MsgDeleted})
}
