package httpapi

import (
	"net/http"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	items, err := h.statsService.ListPlayers(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]playerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, playerToDTO(ctx, item))
	}
	writeSuccess(ctx, w, http.StatusOK, playerListDTO{Items: out})
}

func (h *Handler) TrackPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TrackPlayer")
	defer span.End()

	var req trackPlayerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.trackingService.TrackPlayer(ctx, req.Name)
	if err != nil {
		h.logger.InfoContext(ctx, "track player rejected", "player", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "player tracked", "player", item.Name, "uuid", item.UUID)
	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(ctx, item))
}
