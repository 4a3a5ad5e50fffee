package teetime

import (
	"encoding/json"
	"net/http"

	"teemail/internal/api"
)

type Handlers struct {
	Backfill *Backfill
}

// RunBackfill re-derives tee times for the club's bookings that are missing
// one. Safe to call repeatedly.
func (h Handlers) RunBackfill(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	res, err := h.Backfill.Run(r.Context(), id.Club)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}
