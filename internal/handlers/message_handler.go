package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

type sendMessageRequest struct {
	To   string `json:"to" validate:"required,uuid"`
	Text string `json:"text" validate:"required,max=5000"`
}

type markReadResponse struct {
	Updated int64 `json:"updated"`
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	msg, err := h.chat.SendMessage(r.Context(), UserIDFrom(r.Context()), uuid.MustParse(req.To), req.Text)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) recentChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chat.RecentChats(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

func (h *Handler) conversation(w http.ResponseWriter, r *http.Request) {
	otherID, err := pathID(r, "userId")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	messages, err := h.chat.GetConversation(r.Context(), UserIDFrom(r.Context()), otherID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) markConversationRead(w http.ResponseWriter, r *http.Request) {
	otherID, err := pathID(r, "userId")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	n, err := h.chat.MarkConversationRead(r.Context(), UserIDFrom(r.Context()), otherID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, markReadResponse{Updated: n})
}
