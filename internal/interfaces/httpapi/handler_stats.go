package httpapi

import (
	"errors"
	"net/http"

	"github.com/blockfront-stats/tracker/internal/usecase"
)

const (
	statsUnavailableMessage = "Stats are currently unavailable."
	noCloudStatsMessage     = "No server stats have been recorded yet."
)

func (h *Handler) GetLatestCloudStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestCloudStats")
	defer span.End()

	item, err := h.statsService.LatestCloud(ctx)
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		writeSuccess(ctx, w, http.StatusOK, latestCloudDTO{Message: noCloudStatsMessage})
		return
	case err != nil:
		h.logger.WarnContext(ctx, "latest cloud stats unavailable", "error", err)
		writeSuccess(ctx, w, http.StatusOK, latestCloudDTO{Message: statsUnavailableMessage})
		return
	}

	dto := cloudSnapshotToDTO(item)
	minutes := minutesSince(item.Date, h.now())
	writeSuccess(ctx, w, http.StatusOK, latestCloudDTO{
		Snapshot:           &dto,
		MinutesSinceUpdate: &minutes,
	})
}

func (h *Handler) ListCloudStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCloudStats")
	defer span.End()

	limit, err := parseLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.statsService.CloudSeries(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "cloud stats series unavailable", "limit", limit, "error", err)
		writeSuccess(ctx, w, http.StatusOK, cloudSeriesDTO{Items: []cloudSnapshotDTO{}, Message: statsUnavailableMessage})
		return
	}

	out := make([]cloudSnapshotDTO, 0, len(items))
	for _, item := range items {
		out = append(out, cloudSnapshotToDTO(item))
	}
	resp := cloudSeriesDTO{Items: out}
	if len(out) == 0 {
		resp.Message = noCloudStatsMessage
	}
	writeSuccess(ctx, w, http.StatusOK, resp)
}

func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStats")
	defer span.End()

	limit, err := parseLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	name := r.PathValue("name")
	history, err := h.statsService.PlayerHistory(ctx, name, limit)
	switch {
	case errors.Is(err, usecase.ErrNotFound), errors.Is(err, usecase.ErrInvalidInput):
		writeError(ctx, w, err)
		return
	case err != nil:
		h.logger.WarnContext(ctx, "player stats unavailable", "player", name, "error", err)
		writeSuccess(ctx, w, http.StatusOK, playerHistoryDTO{
			Player:    playerDTO{Name: name},
			Snapshots: []statSnapshotDTO{},
			Message:   statsUnavailableMessage,
		})
		return
	}

	snapshots := make([]statSnapshotDTO, 0, len(history.Snapshots))
	for _, item := range history.Snapshots {
		snapshots = append(snapshots, statSnapshotToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, playerHistoryDTO{
		Player:    playerToDTO(ctx, history.Player),
		Snapshots: snapshots,
	})
}

func (h *Handler) GetPlayerMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerMatch")
	defer span.End()

	status, err := h.matchService.Lookup(ctx, r.PathValue("name"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, status)
}
