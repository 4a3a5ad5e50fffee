package journey

import (
	"context"
	"testing"
	"time"

	"teemail/internal/booking"
)

type fakeStore struct {
	rows []booking.Booking
}

func (f *fakeStore) ListConfirmedOn(ctx context.Context, club string, date time.Time) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range f.rows {
		if b.Status == booking.StatusConfirmed && b.PlayDate.Equal(date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListConfirmedFrom(ctx context.Context, club string, date time.Time) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range f.rows {
		if b.Status == booking.StatusConfirmed && !b.PlayDate.Before(date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListConfirmedBetween(ctx context.Context, club string, from, to time.Time) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range f.rows {
		if b.Status == booking.StatusConfirmed && !b.PlayDate.Before(from) && !b.PlayDate.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func day(offset int) time.Time {
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func fixedNow() time.Time {
	// Mid-day clock; selection must still land on exact dates.
	return time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)
}

func TestSelectDuePreArrivalExactDate(t *testing.T) {
	sent := day(3)
	store := &fakeStore{rows: []booking.Booking{
		{BookingID: "B1", Status: booking.StatusConfirmed, PlayDate: day(3)},
		{BookingID: "B2", Status: booking.StatusConfirmed, PlayDate: day(4)}, // one day off, not due
		{BookingID: "B3", Status: booking.StatusConfirmed, PlayDate: day(2)},
		{BookingID: "B4", Status: booking.StatusRequested, PlayDate: day(3)}, // not Confirmed
		{BookingID: "B5", Status: booking.StatusConfirmed, PlayDate: day(3), PreArrivalEmailSentAt: &sent},
	}}

	s := &Scheduler{Store: store, Now: fixedNow}
	due, err := s.SelectDue(context.Background(), "club-1", booking.EventPreArrival, ModeDue)
	if err != nil {
		t.Fatalf("SelectDue: %v", err)
	}
	if len(due) != 1 || due[0].BookingID != "B1" {
		t.Fatalf("due = %+v, want exactly B1", due)
	}
}

func TestSelectDuePostPlayExactDate(t *testing.T) {
	store := &fakeStore{rows: []booking.Booking{
		{BookingID: "B1", Status: booking.StatusConfirmed, PlayDate: day(-2)},
		{BookingID: "B2", Status: booking.StatusConfirmed, PlayDate: day(-1)},
		{BookingID: "B3", Status: booking.StatusConfirmed, PlayDate: day(-3)},
	}}

	s := &Scheduler{Store: store, Now: fixedNow}
	due, err := s.SelectDue(context.Background(), "club-1", booking.EventPostPlay, ModeDue)
	if err != nil {
		t.Fatalf("SelectDue: %v", err)
	}
	if len(due) != 1 || due[0].BookingID != "B1" {
		t.Fatalf("due = %+v, want exactly B1", due)
	}
}

func TestSelectDueCatchUpWindows(t *testing.T) {
	store := &fakeStore{rows: []booking.Booking{
		{BookingID: "FUT1", Status: booking.StatusConfirmed, PlayDate: day(1)},
		{BookingID: "FUT10", Status: booking.StatusConfirmed, PlayDate: day(10)},
		{BookingID: "PAST5", Status: booking.StatusConfirmed, PlayDate: day(-5)},
		{BookingID: "PAST40", Status: booking.StatusConfirmed, PlayDate: day(-40)}, // outside 30-day window
	}}

	s := &Scheduler{Store: store, Now: fixedNow}

	pre, err := s.SelectDue(context.Background(), "club-1", booking.EventPreArrival, ModeCatchUp)
	if err != nil {
		t.Fatalf("pre-arrival catch-up: %v", err)
	}
	if len(pre) != 2 {
		t.Fatalf("pre-arrival catch-up selected %d, want 2 (all future)", len(pre))
	}

	post, err := s.SelectDue(context.Background(), "club-1", booking.EventPostPlay, ModeCatchUp)
	if err != nil {
		t.Fatalf("post-play catch-up: %v", err)
	}
	if len(post) != 1 || post[0].BookingID != "PAST5" {
		t.Fatalf("post-play catch-up = %+v, want exactly PAST5", post)
	}
}

func TestSelectForResendIncludesSent(t *testing.T) {
	sent := day(0)
	store := &fakeStore{rows: []booking.Booking{
		{BookingID: "B1", Status: booking.StatusConfirmed, PlayDate: day(3), PreArrivalEmailSentAt: &sent},
	}}

	s := &Scheduler{Store: store, Now: fixedNow}

	due, err := s.SelectDue(context.Background(), "club-1", booking.EventPreArrival, ModeDue)
	if err != nil {
		t.Fatalf("SelectDue: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("already-sent booking must be excluded from normal selection")
	}

	resend, err := s.SelectForResend(context.Background(), "club-1", booking.EventPreArrival, ModeDue)
	if err != nil {
		t.Fatalf("SelectForResend: %v", err)
	}
	if len(resend) != 1 {
		t.Fatalf("resend selection must include already-sent bookings")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeDue {
		t.Fatalf("empty mode should default to due, got %v %v", m, err)
	}
	if m, err := ParseMode("show_all"); err != nil || m != ModeCatchUp {
		t.Fatalf("show_all should map to catch_up, got %v %v", m, err)
	}
	if _, err := ParseMode("bogus"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
