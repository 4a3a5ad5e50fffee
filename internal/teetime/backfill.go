package teetime

import (
	"context"
	"log"

	"teemail/internal/booking"
)

// BackfillStore is the slice of the booking store the repair job needs.
type BackfillStore interface {
	ListMissingTeeTime(ctx context.Context, club string) ([]booking.Booking, error)
	UpdateTeeTime(ctx context.Context, club, bookingID, value string) error
}

// Backfill repairs historical rows whose tee_time was never resolved by
// re-running the note extraction against them. Rows that already carry a
// concrete tee time are never selected, which makes the job idempotent.
type Backfill struct {
	Store BackfillStore
}

type BackfillResult struct {
	Updated  int `json:"updated"`
	NotFound int `json:"notFound"`
}

func (b *Backfill) Run(ctx context.Context, club string) (BackfillResult, error) {
	var res BackfillResult

	rows, err := b.Store.ListMissingTeeTime(ctx, club)
	if err != nil {
		return res, err
	}

	for _, bk := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		extracted := FromNote(bk.Note)
		if extracted == "" {
			res.NotFound++
			continue
		}

		if err := b.Store.UpdateTeeTime(ctx, club, bk.BookingID, extracted); err != nil {
			// Keep going; the row stays eligible for the next run.
			log.Printf("backfill: update %s: %v", bk.BookingID, err)
			res.NotFound++
			continue
		}
		res.Updated++
	}

	return res, nil
}
