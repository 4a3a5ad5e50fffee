package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrJourneyTrackingUnavailable is returned by MarkNotified when the tracking
// columns have not been migrated in. Callers treat this as a warning, not a
// send failure: the email already went out.
var ErrJourneyTrackingUnavailable = errors.New("journey tracking columns not present")

type Repository struct {
	db *pgxpool.Pool

	// journeyTracking is detected once at startup rather than reflected over
	// per query. The *_email_sent_at columns live in a separate migration so
	// deployments can lag behind.
	journeyTracking bool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// DetectJourneyTracking probes for the idempotency-marker columns and caches
// the result. Call once at startup.
func (r *Repository) DetectJourneyTracking(ctx context.Context) error {
	const q = `
SELECT COUNT(*)
FROM information_schema.columns
WHERE table_name = 'bookings'
  AND column_name IN ('pre_arrival_email_sent_at', 'post_play_email_sent_at')
`
	var n int
	if err := r.db.QueryRow(ctx, q).Scan(&n); err != nil {
		return err
	}
	r.journeyTracking = n == 2
	return nil
}

func (r *Repository) SupportsJourneyTracking() bool {
	return r.journeyTracking
}

// trackingCols keeps the scan shape stable whether or not the tracking
// migration has run, mirroring a NULL-projection fallback.
func (r *Repository) trackingCols() string {
	if r.journeyTracking {
		return "pre_arrival_email_sent_at, post_play_email_sent_at"
	}
	return "NULL::timestamp AS pre_arrival_email_sent_at, NULL::timestamp AS post_play_email_sent_at"
}

func (r *Repository) selectCols() string {
	return `id::text, booking_id, club, guest_email, COALESCE(guest_name,''), date,
       COALESCE(tee_time,''), COALESCE(selected_tee_times,''), COALESCE(note,''),
       players, total::text, COALESCE(golf_courses,''), COALESCE(hotel_required,false),
       hotel_checkin, hotel_checkout, status, COALESCE(updated_by,''), updated_at, created_at,
       ` + r.trackingCols()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var total string
	var status string
	if err := row.Scan(
		&b.ID, &b.BookingID, &b.Club, &b.GuestEmail, &b.GuestName, &b.PlayDate,
		&b.TeeTime, &b.SelectedTeeTimesRaw, &b.Note,
		&b.Players, &total, &b.GolfCourses, &b.HotelRequired,
		&b.HotelCheckin, &b.HotelCheckout, &status, &b.UpdatedBy, &b.UpdatedAt, &b.CreatedAt,
		&b.PreArrivalEmailSentAt, &b.PostPlayEmailSentAt,
	); err != nil {
		return nil, err
	}

	// Tolerate partial upstream data rather than rejecting the row.
	b.Players = NormalizePlayers(b.Players)
	if d, err := decimal.NewFromString(total); err == nil {
		b.Total = NormalizeTotal(d)
	} else {
		b.Total = decimal.Zero
	}
	b.Status = Status(status)
	b.Rounds = parseRounds(b.SelectedTeeTimesRaw)
	return &b, nil
}

// parseRounds decodes selected_tee_times when it holds JSON. Legacy non-JSON
// content stays in SelectedTeeTimesRaw for the resolver's string strategies.
func parseRounds(raw string) []Round {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var rounds []Round
		if err := json.Unmarshal([]byte(raw), &rounds); err == nil {
			return rounds
		}
		return nil
	}
	if strings.HasPrefix(raw, "{") {
		var r Round
		if err := json.Unmarshal([]byte(raw), &r); err == nil && r.Time != "" {
			return []Round{r}
		}
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, b *Booking) error {
	if b.Status == "" {
		b.Status = StatusPending
	}
	if _, err := ParseStatus(string(b.Status)); err != nil {
		return ValidationError{Code: "STATUS_INVALID", Message: err.Error()}
	}
	b.Players = NormalizePlayers(b.Players)
	b.Total = NormalizeTotal(b.Total)

	selected := b.SelectedTeeTimesRaw
	if selected == "" && len(b.Rounds) > 0 {
		buf, err := json.Marshal(b.Rounds)
		if err != nil {
			return err
		}
		selected = string(buf)
	}

	const q = `
INSERT INTO bookings (booking_id, club, guest_email, guest_name, date, tee_time,
                      selected_tee_times, note, players, total, golf_courses,
                      hotel_required, hotel_checkin, hotel_checkout, status)
VALUES ($1, $2, $3, NULLIF($4,''), $5, NULLIF($6,''), NULLIF($7,''), NULLIF($8,''),
        $9, $10, NULLIF($11,''), $12, $13, $14, $15)
RETURNING id::text, created_at
`
	return r.db.QueryRow(ctx, q,
		b.BookingID, b.Club, b.GuestEmail, b.GuestName, b.PlayDate, b.TeeTime,
		selected, b.Note, b.Players, b.Total, b.GolfCourses,
		b.HotelRequired, b.HotelCheckin, b.HotelCheckout, string(b.Status),
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *Repository) GetByID(ctx context.Context, club, bookingID string) (*Booking, error) {
	q := fmt.Sprintf(`SELECT %s FROM bookings WHERE club = $1 AND booking_id = $2`, r.selectCols())
	return scanBooking(r.db.QueryRow(ctx, q, club, bookingID))
}

// GetForUpdate locks the booking row for the duration of the transaction.
// The tracking columns are not selected here; status transitions predate the
// journey migration and must not depend on it.
func GetForUpdate(ctx context.Context, tx pgx.Tx, club, bookingID string) (*Booking, error) {
	const q = `
SELECT id::text, booking_id, club, guest_email, COALESCE(guest_name,''), date,
       COALESCE(tee_time,''), COALESCE(selected_tee_times,''), COALESCE(note,''),
       players, total::text, COALESCE(golf_courses,''), COALESCE(hotel_required,false),
       hotel_checkin, hotel_checkout, status, COALESCE(updated_by,''), updated_at, created_at,
       NULL::timestamp, NULL::timestamp
FROM bookings
WHERE club = $1 AND booking_id = $2
FOR UPDATE
`
	return scanBooking(tx.QueryRow(ctx, q, club, bookingID))
}

func (r *Repository) ListByClub(ctx context.Context, club string) ([]Booking, error) {
	q := fmt.Sprintf(`SELECT %s FROM bookings WHERE club = $1 ORDER BY date, tee_time`, r.selectCols())
	return r.list(ctx, q, club)
}

// ListConfirmedOn selects Confirmed bookings playing exactly on the given date.
func (r *Repository) ListConfirmedOn(ctx context.Context, club string, date time.Time) ([]Booking, error) {
	q := fmt.Sprintf(`
SELECT %s FROM bookings
WHERE club = $1 AND status = 'Confirmed' AND date = $2
ORDER BY date, tee_time`, r.selectCols())
	return r.list(ctx, q, club, date)
}

// ListConfirmedFrom selects Confirmed bookings playing on or after the given date.
func (r *Repository) ListConfirmedFrom(ctx context.Context, club string, date time.Time) ([]Booking, error) {
	q := fmt.Sprintf(`
SELECT %s FROM bookings
WHERE club = $1 AND status = 'Confirmed' AND date >= $2
ORDER BY date, tee_time`, r.selectCols())
	return r.list(ctx, q, club, date)
}

// ListConfirmedBetween selects Confirmed bookings playing within [from, to].
func (r *Repository) ListConfirmedBetween(ctx context.Context, club string, from, to time.Time) ([]Booking, error) {
	q := fmt.Sprintf(`
SELECT %s FROM bookings
WHERE club = $1 AND status = 'Confirmed' AND date >= $2 AND date <= $3
ORDER BY date DESC`, r.selectCols())
	return r.list(ctx, q, club, from, to)
}

// ListMissingTeeTime selects rows the backfill job may repair: tee_time never
// resolved, or left at one of the historical sentinels.
func (r *Repository) ListMissingTeeTime(ctx context.Context, club string) ([]Booking, error) {
	q := fmt.Sprintf(`
SELECT %s FROM bookings
WHERE club = $1
  AND (tee_time IS NULL OR tee_time = '' OR tee_time = 'Not Specified' OR tee_time = 'TBD')
ORDER BY date`, r.selectCols())
	return r.list(ctx, q, club)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]Booking, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// UpdateStatus persists a transition the caller has already validated,
// recording who moved it and when.
func UpdateStatus(ctx context.Context, tx pgx.Tx, club, bookingID string, next Status, updatedBy string) error {
	const q = `
UPDATE bookings
SET status = $1, updated_by = $2, updated_at = NOW()
WHERE club = $3 AND booking_id = $4
`
	_, err := tx.Exec(ctx, q, string(next), updatedBy, club, bookingID)
	return err
}

func (r *Repository) UpdateNote(ctx context.Context, club, bookingID, note, updatedBy string) error {
	const q = `
UPDATE bookings
SET note = NULLIF($1,''), updated_by = $2, updated_at = NOW()
WHERE club = $3 AND booking_id = $4
`
	_, err := r.db.Exec(ctx, q, note, updatedBy, club, bookingID)
	return err
}

func (r *Repository) UpdateTeeTime(ctx context.Context, club, bookingID, value string) error {
	const q = `
UPDATE bookings
SET tee_time = $1, updated_at = NOW()
WHERE club = $2 AND booking_id = $3
`
	_, err := r.db.Exec(ctx, q, value, club, bookingID)
	return err
}

func (r *Repository) Delete(ctx context.Context, club, bookingID string) error {
	const q = `DELETE FROM bookings WHERE club = $1 AND booking_id = $2`
	_, err := r.db.Exec(ctx, q, club, bookingID)
	return err
}

// MarkNotified stamps the idempotency marker for one journey event. The
// conditional WHERE clause is the serialization point between concurrent
// dispatch runs: at most one writer wins the mark. force bypasses the guard
// for explicit resends so the timestamp reflects the latest send.
//
// Returns whether a row was stamped. When the tracking columns are absent it
// returns ErrJourneyTrackingUnavailable without touching the row.
func (r *Repository) MarkNotified(ctx context.Context, bookingID string, event JourneyEvent, sentAt time.Time, force bool) (bool, error) {
	if !r.journeyTracking {
		return false, ErrJourneyTrackingUnavailable
	}

	var col string
	switch event {
	case EventPreArrival:
		col = "pre_arrival_email_sent_at"
	case EventPostPlay:
		col = "post_play_email_sent_at"
	default:
		return false, fmt.Errorf("unknown journey event: %s", event)
	}

	q := fmt.Sprintf(`UPDATE bookings SET %s = $1 WHERE booking_id = $2 AND %s IS NULL`, col, col)
	if force {
		q = fmt.Sprintf(`UPDATE bookings SET %s = $1 WHERE booking_id = $2`, col)
	}

	tag, err := r.db.Exec(ctx, q, sentAt, bookingID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
