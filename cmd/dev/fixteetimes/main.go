package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"teemail/internal/booking"
	"teemail/internal/teetime"
	"teemail/pkg/config"
	"teemail/pkg/db"
)

// fixteetimes re-derives tee times for bookings missing one, parsing the
// structured round data and free-text notes the intake left behind.
func main() {
	club := flag.String("club", "", "club partition to process (required)")
	flag.Parse()

	if *club == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	backfill := &teetime.Backfill{Store: booking.NewRepository(conn)}
	res, err := backfill.Run(ctx, *club)
	if err != nil {
		log.Fatalf("backfill: %v", err)
	}

	fmt.Printf("updated %d, no tee time found for %d\n", res.Updated, res.NotFound)
}
