package handler

import (
	"log/slog"
	"net/http"

	"github.com/jayasurya0007/trades-backend/internal/domain"
)

// RecordsHandler serves the cached trade batch.
type RecordsHandler struct {
	source domain.SnapshotSource
	logger *slog.Logger
}

// NewRecordsHandler creates a RecordsHandler reading from the given source.
func NewRecordsHandler(source domain.SnapshotSource, logger *slog.Logger) *RecordsHandler {
	return &RecordsHandler{
		source: source,
		logger: logger.With(slog.String("handler", "records")),
	}
}

// GetRecords returns the current snapshot as a JSON array of trade records,
// refreshing the snapshot first when it is stale.
// GET /get_records
func (h *RecordsHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	snap, err := h.source.Snapshot(r.Context())
	if err != nil {
		// Only reachable when no snapshot was ever published; a stale
		// snapshot is served instead of an error.
		h.logger.ErrorContext(r.Context(), "no snapshot available",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusServiceUnavailable, "no trade records available")
		return
	}

	writeJSON(w, http.StatusOK, snap.Records)
}
