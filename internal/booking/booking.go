package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JourneyEvent identifies one of the two lifecycle emails tracked per booking.
type JourneyEvent string

const (
	EventPreArrival JourneyEvent = "pre_arrival"
	EventPostPlay   JourneyEvent = "post_play"
)

// ParseJourneyEvent accepts both the canonical underscored names and the
// hyphenated spellings used on the CLI and in URLs.
func ParseJourneyEvent(s string) (JourneyEvent, error) {
	switch s {
	case string(EventPreArrival), "pre-arrival":
		return EventPreArrival, nil
	case string(EventPostPlay), "post-play":
		return EventPostPlay, nil
	default:
		return "", fmt.Errorf("unknown journey event: %s", s)
	}
}

// Round is one structured tee-time entry. Newer intake systems write a list
// of these; older ones wrote a single object, a stringified map, or nothing.
type Round struct {
	Date          string          `json:"date,omitempty"`
	Time          string          `json:"time"`
	Course        string          `json:"course,omitempty"`
	Players       int             `json:"players,omitempty"`
	CostPerPlayer decimal.Decimal `json:"costPerPlayer,omitempty"`
}

type Booking struct {
	ID        string `json:"id"`
	BookingID string `json:"bookingId"`
	Club      string `json:"club"`

	GuestEmail string `json:"guestEmail"`
	GuestName  string `json:"guestName,omitempty"`

	PlayDate time.Time `json:"playDate"`
	TeeTime  string    `json:"teeTime,omitempty"`

	// Rounds holds selected_tee_times when the column content parses as JSON.
	// SelectedTeeTimesRaw always carries the column text as written, because
	// legacy producers stored non-JSON formats the resolver still understands.
	Rounds              []Round `json:"rounds,omitempty"`
	SelectedTeeTimesRaw string  `json:"selectedTeeTimes,omitempty"`

	Note    string          `json:"note,omitempty"`
	Players int             `json:"players"`
	Total   decimal.Decimal `json:"total"`

	GolfCourses   string     `json:"golfCourses,omitempty"`
	HotelRequired bool       `json:"hotelRequired"`
	HotelCheckin  *time.Time `json:"hotelCheckin,omitempty"`
	HotelCheckout *time.Time `json:"hotelCheckout,omitempty"`

	Status    Status     `json:"status"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`

	// Journey idempotency markers. Nil means never sent; when the tracking
	// columns have not been migrated in yet these are always nil.
	PreArrivalEmailSentAt *time.Time `json:"preArrivalEmailSentAt,omitempty"`
	PostPlayEmailSentAt   *time.Time `json:"postPlayEmailSentAt,omitempty"`
}

// SentAt returns the idempotency marker for the given journey event.
func (b Booking) SentAt(event JourneyEvent) *time.Time {
	switch event {
	case EventPreArrival:
		return b.PreArrivalEmailSentAt
	case EventPostPlay:
		return b.PostPlayEmailSentAt
	default:
		return nil
	}
}

// NormalizePlayers coerces malformed upstream player counts to the minimum
// valid value instead of rejecting the row.
func NormalizePlayers(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// NormalizeTotal coerces malformed upstream totals to zero.
func NormalizeTotal(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
