package handlers

import (
	"context"
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// UserHandler serves managers for the super admin and drivers and sub-managers for managers
type UserHandler struct {
	Service *services.UserService
	Chat    *services.ChatService
}

func NewUserHandler(s *services.UserService, chat *services.ChatService) *UserHandler {
	return &UserHandler{Service: s, Chat: chat}
}

func (h *UserHandler) ListManagers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListManagers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) CreateManager(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, func(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
		return h.Service.CreateManager(ctx, req)
	})
}

func (h *UserHandler) UpdateManager(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
		return h.Service.UpdateManager(ctx, id, req)
	})
}

func (h *UserHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListDrivers(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r)
	h.create(w, r, func(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
		return h.Service.CreateDriver(ctx, actor, req)
	})
}

func (h *UserHandler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r)
	h.update(w, r, func(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
		return h.Service.UpdateDriver(ctx, actor, id, req)
	})
}

func (h *UserHandler) ListSubManagers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListSubManagers(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) CreateSubManager(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r)
	h.create(w, r, func(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
		return h.Service.CreateSubManager(ctx, actor, req)
	})
}

func (h *UserHandler) UpdateSubManager(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r)
	h.update(w, r, func(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
		return h.Service.UpdateSubManager(ctx, actor, id, req)
	})
}

// Directory lists who the current user may contact
func (h *UserHandler) Directory(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Chat.Directory(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, contacts)
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request, fn func(context.Context, *models.CreateUserRequest) (*models.User, error)) {
	var req models.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := fn(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, user)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, *models.UpdateUserRequest) (*models.User, error)) {
	var req models.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := fn(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}
