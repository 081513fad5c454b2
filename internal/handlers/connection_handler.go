package handlers

import (
	"net/http"
)

func (h *Handler) listConnections(w http.ResponseWriter, r *http.Request) {
	connections, err := h.connections.Connections(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, connections)
}

func (h *Handler) pendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.connections.Pending(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *Handler) sentRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.connections.Sent(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *Handler) sendRequest(w http.ResponseWriter, r *http.Request) {
	recipientID, err := pathID(r, "userId")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	req, err := h.connections.SendRequest(r.Context(), UserIDFrom(r.Context()), recipientID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) cancelRequest(w http.ResponseWriter, r *http.Request) {
	recipientID, err := pathID(r, "userId")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.connections.Cancel(r.Context(), UserIDFrom(r.Context()), recipientID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) acceptRequest(w http.ResponseWriter, r *http.Request) {
	senderID, err := pathID(r, "fromId")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.connections.Accept(r.Context(), UserIDFrom(r.Context()), senderID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) rejectRequest(w http.ResponseWriter, r *http.Request) {
	senderID, err := pathID(r, "fromId")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.connections.Reject(r.Context(), UserIDFrom(r.Context()), senderID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.List(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *Handler) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(r.Context(), UserIDFrom(r.Context())); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
