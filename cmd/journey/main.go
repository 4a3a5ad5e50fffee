package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"teemail/internal/booking"
	"teemail/internal/journey"
	"teemail/internal/mail"
	"teemail/pkg/config"
	"teemail/pkg/db"
)

// journey sends the due guest emails for one or both journey events. Meant to
// run from cron (one invocation per day) or by hand for catch-up sends.
func main() {
	var (
		club    = flag.String("club", "", "club partition to process (required)")
		dryRun  = flag.Bool("dry-run", false, "report what would be sent without sending")
		catchUp = flag.Bool("catch-up", false, "widen the selection window for manual catch-up")
		resend  = flag.Bool("resend", false, "include bookings already notified")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] pre-arrival|post-play|both\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *club == "" || flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	var events []booking.JourneyEvent
	if flag.Arg(0) == "both" {
		events = []booking.JourneyEvent{booking.EventPreArrival, booking.EventPostPlay}
	} else {
		ev, err := booking.ParseJourneyEvent(flag.Arg(0))
		if err != nil {
			flag.Usage()
			os.Exit(2)
		}
		events = []booking.JourneyEvent{ev}
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	bookings := booking.NewRepository(conn)
	if err := bookings.DetectJourneyTracking(ctx); err != nil {
		log.Fatalf("detect journey tracking: %v", err)
	}

	scheduler := &journey.Scheduler{
		Store:          bookings,
		PreArrivalDays: cfg.Journey.PreArrivalDays,
		PostPlayDays:   cfg.Journey.PostPlayDays,
	}
	dispatcher := &journey.Dispatcher{
		Sender:     mail.NewSendGrid(cfg.SendGrid.APIKey),
		Store:      bookings,
		SendGrid:   cfg.SendGrid,
		ResortName: cfg.Journey.ResortName,
	}

	mode := journey.ModeDue
	if *catchUp {
		mode = journey.ModeCatchUp
	}

	exit := 0
	for _, event := range events {
		var due []booking.Booking
		if *resend {
			due, err = scheduler.SelectForResend(ctx, *club, event, mode)
		} else {
			due, err = scheduler.SelectDue(ctx, *club, event, mode)
		}
		if err != nil {
			log.Fatalf("select %s: %v", event, err)
		}

		sum := dispatcher.SendBatch(ctx, due, event, journey.Options{
			Resend: *resend,
			DryRun: *dryRun,
		})

		fmt.Printf("%s: %d due, %d sent, %d failed\n", event, len(due), sum.Sent, sum.Failed)
		for _, res := range sum.Results {
			if res.Message != "" {
				fmt.Printf("  %-10s %s <%s> %s\n", res.Status, res.BookingID, res.Email, res.Message)
			} else {
				fmt.Printf("  %-10s %s <%s>\n", res.Status, res.BookingID, res.Email)
			}
		}
		if sum.Failed > 0 {
			exit = 1
		}
	}
	os.Exit(exit)
}
