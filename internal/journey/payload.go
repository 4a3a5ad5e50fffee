package journey

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"teemail/internal/booking"
	"teemail/internal/teetime"
)

var (
	titleCaser = cases.Title(language.English)
	currency   = message.NewPrinter(language.English)
)

// GuestName returns the recorded guest name, falling back to a title-cased
// email local part the way the original intake did.
func GuestName(b booking.Booking) string {
	if b.GuestName != "" {
		return b.GuestName
	}
	local := b.GuestEmail
	if i := strings.Index(local, "@"); i >= 0 {
		local = local[:i]
	}
	return titleCaser.String(local)
}

// BuildPayload assembles the dynamic template data for a journey email.
// Field names are part of the provider-side template contract.
func BuildPayload(b booking.Booking, resortName string, now time.Time) map[string]string {
	course := b.GolfCourses
	if course == "" {
		course = resortName
	}

	data := map[string]string{
		"guest_name":        GuestName(b),
		"booking_date":      b.PlayDate.Format("Monday, January 02, 2006"),
		"course_name":       course,
		"tee_time":          teetime.Resolve(b),
		"player_count":      strconv.Itoa(b.Players),
		"booking_reference": b.BookingID,
		"current_year":      strconv.Itoa(now.Year()),
		"total":             currency.Sprintf("$%.2f", b.Total.InexactFloat64()),
	}

	if b.HotelRequired {
		data["hotel_required"] = "true"
		if b.HotelCheckin != nil {
			data["hotel_checkin"] = b.HotelCheckin.Format("Jan 02, 2006")
		}
		if b.HotelCheckout != nil {
			data["hotel_checkout"] = b.HotelCheckout.Format("Jan 02, 2006")
		}
	}

	return data
}
