package booking

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"teemail/internal/api"
	"teemail/internal/audit"
	"teemail/internal/events"
	"teemail/pkg/db"
)

type Handlers struct {
	DB       *pgxpool.Pool
	Bookings *Repository
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	items, err := h.Bookings.ListByClub(r.Context(), id.Club)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []Booking{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	b, err := h.Bookings.GetByID(r.Context(), id.Club, bookingID)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(b)
}

type CreateRequest struct {
	BookingID   string           `json:"bookingId"`
	GuestEmail  string           `json:"guestEmail"`
	GuestName   string           `json:"guestName,omitempty"`
	PlayDate    string           `json:"playDate"` // YYYY-MM-DD
	TeeTime     string           `json:"teeTime,omitempty"`
	Rounds      []Round          `json:"rounds,omitempty"`
	Note        string           `json:"note,omitempty"`
	Players     int              `json:"players,omitempty"`
	Total       *decimal.Decimal `json:"total,omitempty"`
	GolfCourses string           `json:"golfCourses,omitempty"`

	HotelRequired bool   `json:"hotelRequired,omitempty"`
	HotelCheckin  string `json:"hotelCheckin,omitempty"`
	HotelCheckout string `json:"hotelCheckout,omitempty"`
}

// Create is the booking-creation primitive. External intake paths (widget,
// waitlist conversion) all come through here.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if req.BookingID == "" || req.GuestEmail == "" || req.PlayDate == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "bookingId, guestEmail and playDate are required")
		return
	}
	playDate, err := time.Parse("2006-01-02", req.PlayDate)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid playDate")
		return
	}
	if err := ValidateRounds(req.Rounds); err != nil {
		ve, _ := err.(ValidationError)
		api.WriteError(w, http.StatusBadRequest, ve.Code, ve.Message)
		return
	}

	total := decimal.Zero
	if req.Total != nil {
		total = *req.Total
	} else if len(req.Rounds) > 0 {
		total = RoundsTotal(req.Rounds)
	}

	b := &Booking{
		BookingID:     req.BookingID,
		Club:          id.Club,
		GuestEmail:    req.GuestEmail,
		GuestName:     req.GuestName,
		PlayDate:      playDate,
		TeeTime:       req.TeeTime,
		Rounds:        req.Rounds,
		Note:          req.Note,
		Players:       NormalizePlayers(req.Players),
		Total:         NormalizeTotal(total),
		GolfCourses:   req.GolfCourses,
		HotelRequired: req.HotelRequired,
	}
	if req.HotelCheckin != "" {
		if t, err := time.Parse("2006-01-02", req.HotelCheckin); err == nil {
			b.HotelCheckin = &t
		}
	}
	if req.HotelCheckout != "" {
		if t, err := time.Parse("2006-01-02", req.HotelCheckout); err == nil {
			b.HotelCheckout = &t
		}
	}

	if err := h.Bookings.Create(r.Context(), b); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to create booking")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(b)
}

type PatchStatusRequest struct {
	Status string `json:"status"`
}

func (h Handlers) PatchStatus(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req PatchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	next, err := ParseStatus(req.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
		return
	}

	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		b, err := GetForUpdate(r.Context(), tx, id.Club, bookingID)
		if err != nil {
			return err
		}

		if ok, reason := Validate(b.Status, next); !ok {
			api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", reason)
			return pgx.ErrTxCommitRollback
		}

		if err := UpdateStatus(r.Context(), tx, id.Club, b.BookingID, next, id.Username); err != nil {
			return err
		}

		bid := b.BookingID
		_ = audit.Insert(r.Context(), tx, id.Club, &bid, "STATUS_CHANGED", id.Username, map[string]any{"from": b.Status, "to": next})
		_ = events.Insert(r.Context(), tx, b.BookingID, "STATUS_CHANGED", "Status changed", id.Username, time.Now(), map[string]any{"from": b.Status, "to": next})

		return nil
	})

	if err != nil {
		// If we used pgx.ErrTxCommitRollback to early-return after writing response, ignore.
		if err == pgx.ErrTxCommitRollback {
			return
		}
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type PatchNoteRequest struct {
	Note string `json:"note"`
}

func (h Handlers) PatchNote(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req PatchNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	if err := h.Bookings.UpdateNote(r.Context(), id.Club, bookingID, req.Note, id.Username); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type PatchTeeTimeRequest struct {
	TeeTime string `json:"teeTime"`
}

func (h Handlers) PatchTeeTime(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req PatchTeeTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeeTime == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid tee time")
		return
	}

	if err := h.Bookings.UpdateTeeTime(r.Context(), id.Club, bookingID, req.TeeTime); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete is an explicit administrative action; nothing in the journey
// pipeline ever deletes a booking.
func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		bid := bookingID
		_ = audit.Insert(r.Context(), tx, id.Club, &bid, "BOOKING_DELETED", id.Username, nil)
		const q = `DELETE FROM bookings WHERE club = $1 AND booking_id = $2`
		_, err := tx.Exec(r.Context(), q, id.Club, bookingID)
		return err
	})
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing club identity")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	// Ensure the booking belongs to the club.
	if _, err := h.Bookings.GetByID(r.Context(), id.Club, bookingID); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	evs, err := events.ListByBooking(r.Context(), h.DB, bookingID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": evs})
}
