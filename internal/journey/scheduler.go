package journey

import (
	"context"
	"fmt"
	"time"

	"teemail/internal/booking"
)

// Mode controls how wide the selection window is.
type Mode string

const (
	// ModeDue selects bookings landing exactly on the configured day offset.
	ModeDue Mode = "due"
	// ModeCatchUp is the operator-triggered "show all" window for manual
	// catch-up sends: any future play date (pre-arrival) or the last 30 days
	// (post-play).
	ModeCatchUp Mode = "catch_up"
)

// catchUpWindowDays bounds how far back a post-play catch-up send reaches.
const catchUpWindowDays = 30

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeDue):
		return ModeDue, nil
	case string(ModeCatchUp), "show_all":
		return ModeCatchUp, nil
	default:
		return "", fmt.Errorf("unknown selection mode: %s", s)
	}
}

// Store is the read-only slice of the booking store the scheduler selects from.
type Store interface {
	ListConfirmedOn(ctx context.Context, club string, date time.Time) ([]booking.Booking, error)
	ListConfirmedFrom(ctx context.Context, club string, date time.Time) ([]booking.Booking, error)
	ListConfirmedBetween(ctx context.Context, club string, from, to time.Time) ([]booking.Booking, error)
}

const (
	DefaultPreArrivalDays = 3
	DefaultPostPlayDays   = 2
)

// Scheduler selects the bookings due for a journey email. It never mutates
// anything; the already-sent exclusion happens here so that repeated or
// concurrent triggers cannot double-select.
type Scheduler struct {
	Store Store

	// Day offsets from the play date. Zero values fall back to the defaults.
	PreArrivalDays int
	PostPlayDays   int

	// Now is swappable for tests. Defaults to time.Now.
	Now func() time.Time
}

// SelectDue returns the bookings due for the given event, excluding any the
// idempotency marker says were already notified.
func (s *Scheduler) SelectDue(ctx context.Context, club string, event booking.JourneyEvent, mode Mode) ([]booking.Booking, error) {
	return s.selectBookings(ctx, club, event, mode, false)
}

// SelectForResend is the explicit resend escape hatch: same windows, but
// already-notified bookings stay in the selection.
func (s *Scheduler) SelectForResend(ctx context.Context, club string, event booking.JourneyEvent, mode Mode) ([]booking.Booking, error) {
	return s.selectBookings(ctx, club, event, mode, true)
}

func (s *Scheduler) selectBookings(ctx context.Context, club string, event booking.JourneyEvent, mode Mode, includeSent bool) ([]booking.Booking, error) {
	today := s.today()

	var (
		rows []booking.Booking
		err  error
	)
	switch event {
	case booking.EventPreArrival:
		if mode == ModeCatchUp {
			rows, err = s.Store.ListConfirmedFrom(ctx, club, today)
		} else {
			rows, err = s.Store.ListConfirmedOn(ctx, club, today.AddDate(0, 0, s.preArrivalDays()))
		}
	case booking.EventPostPlay:
		if mode == ModeCatchUp {
			rows, err = s.Store.ListConfirmedBetween(ctx, club, today.AddDate(0, 0, -catchUpWindowDays), today)
		} else {
			rows, err = s.Store.ListConfirmedOn(ctx, club, today.AddDate(0, 0, -s.postPlayDays()))
		}
	default:
		return nil, fmt.Errorf("unknown journey event: %s", event)
	}
	if err != nil {
		return nil, err
	}

	if includeSent {
		return rows, nil
	}

	due := rows[:0:0]
	for _, b := range rows {
		if b.SentAt(event) != nil {
			continue
		}
		due = append(due, b)
	}
	return due, nil
}

func (s *Scheduler) preArrivalDays() int {
	if s.PreArrivalDays > 0 {
		return s.PreArrivalDays
	}
	return DefaultPreArrivalDays
}

func (s *Scheduler) postPlayDays() int {
	if s.PostPlayDays > 0 {
		return s.PostPlayDays
	}
	return DefaultPostPlayDays
}

func (s *Scheduler) today() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
