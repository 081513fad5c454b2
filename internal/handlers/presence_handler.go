package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/prudhvinik1/linkup/internal/services"
	"github.com/samber/lo"
)

const maxPresenceIDs = 100

func (h *Handler) bulkPresence(w http.ResponseWriter, r *http.Request) {
	raw := lo.Compact(strings.Split(r.URL.Query().Get("ids"), ","))
	if len(raw) == 0 {
		writeJSON(w, http.StatusOK, []models.Presence{})
		return
	}
	if len(raw) > maxPresenceIDs {
		writeError(w, http.StatusBadRequest, "too many ids")
		return
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			h.writeServiceError(w, r, services.ErrInvalidIdentity)
			return
		}
		ids = append(ids, id)
	}
	ids = lo.Uniq(ids)

	presence := h.presence.BulkPresence(r.Context(), ids)
	writeJSON(w, http.StatusOK, lo.Map(ids, func(id uuid.UUID, _ int) models.Presence {
		return presence[id]
	}))
}
