package journey

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"teemail/internal/api"
	"teemail/internal/audit"
	"teemail/internal/booking"
	"teemail/pkg/db"
)

type Handlers struct {
	DB         *pgxpool.Pool
	Scheduler  *Scheduler
	Dispatcher *Dispatcher
}

// Due previews the bookings the scheduler would pick for an event without
// sending anything.
func (h Handlers) Due(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	event, err := booking.ParseJourneyEvent(chi.URLParam(r, "event"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid journey event")
		return
	}
	mode, err := ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid mode")
		return
	}

	due, err := h.Scheduler.SelectDue(r.Context(), id.Club, event, mode)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if due == nil {
		due = []booking.Booking{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": due})
}

type SendRequest struct {
	Mode   string `json:"mode,omitempty"`
	Resend bool   `json:"resend,omitempty"`
	DryRun bool   `json:"dryRun,omitempty"`
}

// Send selects due bookings for an event and dispatches the batch.
func (h Handlers) Send(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	event, err := booking.ParseJourneyEvent(chi.URLParam(r, "event"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid journey event")
		return
	}

	var req SendRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
			return
		}
	}
	mode, err := ParseMode(req.Mode)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid mode")
		return
	}

	var due []booking.Booking
	if req.Resend {
		due, err = h.Scheduler.SelectForResend(r.Context(), id.Club, event, mode)
	} else {
		due, err = h.Scheduler.SelectDue(r.Context(), id.Club, event, mode)
	}
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	sum := h.Dispatcher.SendBatch(r.Context(), due, event, Options{Resend: req.Resend, DryRun: req.DryRun})

	if !req.DryRun {
		_ = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
			return audit.Insert(r.Context(), tx, id.Club, nil, "JOURNEY_BATCH_SENT", id.Username, map[string]any{
				"event":  event,
				"mode":   mode,
				"resend": req.Resend,
				"sent":   sum.Sent,
				"failed": sum.Failed,
			})
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sum)
}
