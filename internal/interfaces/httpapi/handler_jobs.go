package httpapi

import (
	"fmt"
	"net/http"

	"github.com/blockfront-stats/tracker/internal/usecase"
)

func (h *Handler) RunIngestJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunIngestJob")
	defer span.End()

	if h.ingestionService == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.ingestionService.RunCycle(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run ingest job failed", "error", err)
		writeError(ctx, w, fmt.Errorf("%w: ingest cycle aborted: %v", usecase.ErrDependencyUnavailable, err))
		return
	}

	h.logger.InfoContext(ctx, "ingest job completed",
		"stored", result.Stored,
		"failed_batches", result.FailedBatches,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}
