package journey

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"teemail/internal/booking"
	"teemail/internal/mail"
	"teemail/pkg/config"
)

type fakeSender struct {
	sent   []mail.Message
	status int
	err    error
}

func (f *fakeSender) Send(ctx context.Context, msg mail.Message) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, msg)
	if f.status == 0 {
		return 202, nil
	}
	return f.status, nil
}

type fakeMarkStore struct {
	tracking bool
	marked   map[string]bool
	forced   map[string]bool
	err      error
}

func (f *fakeMarkStore) SupportsJourneyTracking() bool { return f.tracking }

func (f *fakeMarkStore) MarkNotified(ctx context.Context, bookingID string, event booking.JourneyEvent, sentAt time.Time, force bool) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.marked == nil {
		f.marked = map[string]bool{}
		f.forced = map[string]bool{}
	}
	f.marked[bookingID] = true
	f.forced[bookingID] = force
	return true, nil
}

func sgConfig() config.SendGridConfig {
	return config.SendGridConfig{
		APIKey:             "SG.test",
		FromEmail:          "golf@example.com",
		FromName:           "Golf Resort",
		TemplatePreArrival: "d-pre",
		TemplatePostPlay:   "d-post",
	}
}

func testBooking(id, email string) booking.Booking {
	return booking.Booking{
		BookingID:  id,
		GuestEmail: email,
		PlayDate:   time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC),
		Players:    4,
		Status:     booking.StatusConfirmed,
	}
}

func TestSendBatchIsolatesFailures(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeMarkStore{tracking: true}
	d := &Dispatcher{Sender: sender, Store: store, SendGrid: sgConfig(), ResortName: "Golf Resort"}

	batch := []booking.Booking{
		testBooking("B1", "a@example.com"),
		testBooking("B2", ""), // missing guest_email
		testBooking("B3", "c@example.com"),
	}

	sum := d.SendBatch(context.Background(), batch, booking.EventPreArrival, Options{})
	if sum.Sent != 2 || sum.Failed != 1 {
		t.Fatalf("sent=%d failed=%d, want 2/1", sum.Sent, sum.Failed)
	}
	if len(sum.Results) != 3 {
		t.Fatalf("want a result per item, got %d", len(sum.Results))
	}
	if sum.Results[1].Status != ItemFailed || !strings.Contains(sum.Results[1].Message, "guest_email") {
		t.Fatalf("item 2 should fail with a guest_email reason, got %+v", sum.Results[1])
	}
	if !store.marked["B1"] || !store.marked["B3"] || store.marked["B2"] {
		t.Fatalf("marks wrong: %+v", store.marked)
	}
}

func TestSendBatchConfigMissing(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeMarkStore{tracking: true}
	cfg := sgConfig()
	cfg.APIKey = ""
	d := &Dispatcher{Sender: sender, Store: store, SendGrid: cfg, ResortName: "Golf Resort"}

	sum := d.SendBatch(context.Background(), []booking.Booking{testBooking("B1", "a@example.com")}, booking.EventPostPlay, Options{})
	if sum.Sent != 0 || sum.Failed != 1 {
		t.Fatalf("sent=%d failed=%d, want 0/1", sum.Sent, sum.Failed)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("nothing should reach the provider when config is incomplete")
	}
	if !strings.Contains(sum.Results[0].Message, "not configured") {
		t.Fatalf("message = %q", sum.Results[0].Message)
	}
}

func TestSendBatchDryRun(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeMarkStore{tracking: true}
	d := &Dispatcher{Sender: sender, Store: store, SendGrid: sgConfig(), ResortName: "Golf Resort"}

	sum := d.SendBatch(context.Background(), []booking.Booking{testBooking("B1", "a@example.com")}, booking.EventPreArrival, Options{DryRun: true})
	if sum.Sent != 0 || sum.Failed != 0 {
		t.Fatalf("dry run must not count sends, got %d/%d", sum.Sent, sum.Failed)
	}
	if len(sum.Results) != 1 || sum.Results[0].Status != ItemWouldSend {
		t.Fatalf("results = %+v", sum.Results)
	}
	if len(sender.sent) != 0 || len(store.marked) != 0 {
		t.Fatalf("dry run must not send or mark")
	}
}

func TestSendBatchProviderRejection(t *testing.T) {
	sender := &fakeSender{status: 400}
	store := &fakeMarkStore{tracking: true}
	d := &Dispatcher{Sender: sender, Store: store, SendGrid: sgConfig(), ResortName: "Golf Resort"}

	sum := d.SendBatch(context.Background(), []booking.Booking{testBooking("B1", "a@example.com")}, booking.EventPreArrival, Options{})
	if sum.Failed != 1 {
		t.Fatalf("non-2xx provider status must fail the item")
	}
	if store.marked["B1"] {
		t.Fatalf("rejected send must not be marked")
	}
}

func TestSendBatchSenderError(t *testing.T) {
	sender := &fakeSender{err: errors.New("timeout")}
	store := &fakeMarkStore{tracking: true}
	d := &Dispatcher{Sender: sender, Store: store, SendGrid: sgConfig(), ResortName: "Golf Resort"}

	sum := d.SendBatch(context.Background(), []booking.Booking{testBooking("B1", "a@example.com")}, booking.EventPreArrival, Options{})
	if sum.Failed != 1 || !strings.Contains(sum.Results[0].Message, "timeout") {
		t.Fatalf("results = %+v", sum.Results)
	}
}

func TestSendBatchTrackingUnavailable(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeMarkStore{tracking: false}
	d := &Dispatcher{Sender: sender, Store: store, SendGrid: sgConfig(), ResortName: "Golf Resort"}

	sum := d.SendBatch(context.Background(), []booking.Booking{testBooking("B1", "a@example.com")}, booking.EventPreArrival, Options{})
	if sum.Sent != 1 {
		t.Fatalf("send must still count as success without tracking")
	}
	if !strings.Contains(sum.Results[0].Message, "warning") {
		t.Fatalf("expected a warning in the message, got %q", sum.Results[0].Message)
	}
	if len(store.marked) != 0 {
		t.Fatalf("must not attempt to mark without tracking columns")
	}
}

func TestSendBatchResendForcesMark(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeMarkStore{tracking: true}
	d := &Dispatcher{Sender: sender, Store: store, SendGrid: sgConfig(), ResortName: "Golf Resort"}

	sum := d.SendBatch(context.Background(), []booking.Booking{testBooking("B1", "a@example.com")}, booking.EventPostPlay, Options{Resend: true})
	if sum.Sent != 1 {
		t.Fatalf("resend failed: %+v", sum)
	}
	if !store.forced["B1"] {
		t.Fatalf("resend must force the mark")
	}
}

func TestSendBatchTemplateSelection(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeMarkStore{tracking: true}
	d := &Dispatcher{Sender: sender, Store: store, SendGrid: sgConfig(), ResortName: "Golf Resort"}

	d.SendBatch(context.Background(), []booking.Booking{testBooking("B1", "a@example.com")}, booking.EventPreArrival, Options{})
	d.SendBatch(context.Background(), []booking.Booking{testBooking("B2", "b@example.com")}, booking.EventPostPlay, Options{})

	if len(sender.sent) != 2 {
		t.Fatalf("want 2 sends, got %d", len(sender.sent))
	}
	if sender.sent[0].TemplateID != "d-pre" || sender.sent[1].TemplateID != "d-post" {
		t.Fatalf("template ids = %s / %s", sender.sent[0].TemplateID, sender.sent[1].TemplateID)
	}
}
