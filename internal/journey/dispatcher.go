package journey

import (
	"context"
	"fmt"
	"log"
	"time"

	"teemail/internal/booking"
	"teemail/internal/mail"
	"teemail/pkg/config"
)

// MarkStore is the mutating slice of the booking store the dispatcher needs.
type MarkStore interface {
	SupportsJourneyTracking() bool
	MarkNotified(ctx context.Context, bookingID string, event booking.JourneyEvent, sentAt time.Time, force bool) (bool, error)
}

type ItemStatus string

const (
	ItemSent      ItemStatus = "sent"
	ItemFailed    ItemStatus = "failed"
	ItemWouldSend ItemStatus = "would_send"
)

type ItemResult struct {
	BookingID string     `json:"bookingId"`
	Email     string     `json:"email"`
	Status    ItemStatus `json:"status"`
	Message   string     `json:"message,omitempty"`
}

type Summary struct {
	Sent    int          `json:"sent"`
	Failed  int          `json:"failed"`
	Results []ItemResult `json:"results"`
}

type Options struct {
	// Resend re-stamps the idempotency marker on success instead of requiring
	// it to be null. Selection-time exclusion is bypassed by the caller using
	// Scheduler.SelectForResend; the send path itself is identical.
	Resend bool
	// DryRun reports what would be sent without sending or marking anything.
	DryRun bool
}

// Dispatcher renders and sends one notification per due booking. One
// booking's failure never prevents processing of the remainder; the caller
// gets aggregate counts plus a per-item reason list to re-drive failures.
type Dispatcher struct {
	Sender mail.Sender
	Store  MarkStore

	SendGrid   config.SendGridConfig
	ResortName string

	// Now is swappable for tests. Defaults to time.Now.
	Now func() time.Time
}

func (d *Dispatcher) SendBatch(ctx context.Context, bookings []booking.Booking, event booking.JourneyEvent, opts Options) Summary {
	var sum Summary

	templateID := d.templateFor(event)
	configErr := ""
	if d.SendGrid.APIKey == "" || d.SendGrid.FromEmail == "" || templateID == "" {
		configErr = fmt.Sprintf("sendgrid not configured for %s", event)
	}

	for _, b := range bookings {
		// A caller-aborted batch stops cleanly between items: marked items
		// stay marked, unsent items stay eligible for the next run.
		if ctx.Err() != nil {
			break
		}

		res := ItemResult{BookingID: b.BookingID, Email: b.GuestEmail}

		if configErr != "" {
			res.Status = ItemFailed
			res.Message = configErr
			sum.Failed++
			sum.Results = append(sum.Results, res)
			continue
		}

		if msg := missingField(b); msg != "" {
			res.Status = ItemFailed
			res.Message = msg
			sum.Failed++
			sum.Results = append(sum.Results, res)
			continue
		}

		if opts.DryRun {
			res.Status = ItemWouldSend
			sum.Results = append(sum.Results, res)
			continue
		}

		payload := BuildPayload(b, d.ResortName, d.now())
		status, err := d.Sender.Send(ctx, mail.Message{
			TemplateID: templateID,
			To:         b.GuestEmail,
			ToName:     payload["guest_name"],
			From:       d.SendGrid.FromEmail,
			FromName:   d.SendGrid.FromName,
			Data:       payload,
		})
		if err != nil {
			res.Status = ItemFailed
			res.Message = fmt.Sprintf("send failed: %v", err)
			sum.Failed++
			sum.Results = append(sum.Results, res)
			continue
		}
		if !mail.Accepted(status) {
			res.Status = ItemFailed
			res.Message = fmt.Sprintf("provider status %d", status)
			sum.Failed++
			sum.Results = append(sum.Results, res)
			continue
		}

		// The email is out; marking only happens after a confirmed send.
		res.Status = ItemSent
		res.Message = fmt.Sprintf("%s email sent to %s", event, b.GuestEmail)
		if !d.Store.SupportsJourneyTracking() {
			res.Message += " (warning: journey tracking columns missing, send not recorded)"
			log.Printf("journey: tracking columns missing, %s send for %s not recorded", event, b.BookingID)
		} else if _, err := d.Store.MarkNotified(ctx, b.BookingID, event, d.now(), opts.Resend); err != nil {
			res.Message += fmt.Sprintf(" (warning: failed to record send: %v)", err)
			log.Printf("journey: mark notified %s for %s: %v", event, b.BookingID, err)
		}
		sum.Sent++
		sum.Results = append(sum.Results, res)
	}

	return sum
}

func missingField(b booking.Booking) string {
	switch {
	case b.BookingID == "":
		return "missing booking_id"
	case b.GuestEmail == "":
		return "missing guest_email"
	case b.PlayDate.IsZero():
		return "missing play_date"
	default:
		return ""
	}
}

func (d *Dispatcher) templateFor(event booking.JourneyEvent) string {
	switch event {
	case booking.EventPreArrival:
		return d.SendGrid.TemplatePreArrival
	case booking.EventPostPlay:
		return d.SendGrid.TemplatePostPlay
	default:
		return ""
	}
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
