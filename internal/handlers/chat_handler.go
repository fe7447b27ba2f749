package handlers

import (
	"net/http"

	"fleet-backend/internal/chat"
	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	Service *services.ChatService
	Hub     *chat.Hub
}

func NewChatHandler(s *services.ChatService, hub *chat.Hub) *ChatHandler {
	return &ChatHandler{Service: s, Hub: hub}
}

func (h *ChatHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Service.Contacts(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, contacts)
}

// Conversation returns the messages between the current user and userId, oldest first
func (h *ChatHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.Service.Conversation(r.Context(), currentUser(r).ID, mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, msgs)
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := h.Service.Send(r.Context(), currentUser(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, msg)
}

// Connect upgrades to a WebSocket that receives every message sent to or by the user
func (h *ChatHandler) Connect(w http.ResponseWriter, r *http.Request) {
	h.Hub.ServeWS(w, r, currentUser(r).ID)
}
