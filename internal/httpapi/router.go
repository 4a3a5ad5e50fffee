package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"teemail/internal/api"
	"teemail/internal/booking"
	"teemail/internal/journey"
	"teemail/internal/mail"
	"teemail/internal/teetime"
	"teemail/pkg/config"
)

type Dependencies struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Bookings *booking.Repository
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	bookingHandlers := booking.Handlers{
		DB:       deps.DB,
		Bookings: deps.Bookings,
	}

	scheduler := &journey.Scheduler{
		Store:          deps.Bookings,
		PreArrivalDays: deps.Cfg.Journey.PreArrivalDays,
		PostPlayDays:   deps.Cfg.Journey.PostPlayDays,
	}
	dispatcher := &journey.Dispatcher{
		Sender:     mail.NewSendGrid(deps.Cfg.SendGrid.APIKey),
		Store:      deps.Bookings,
		SendGrid:   deps.Cfg.SendGrid,
		ResortName: deps.Cfg.Journey.ResortName,
	}
	journeyHandlers := journey.Handlers{
		DB:         deps.DB,
		Scheduler:  scheduler,
		Dispatcher: dispatcher,
	}

	teetimeHandlers := teetime.Handlers{
		Backfill: &teetime.Backfill{Store: deps.Bookings},
	}

	// v1
	r.Route("/v1", func(r chi.Router) {
		// Dashboard APIs (club-scoped). The dashboard frontend runs on its own
		// domain, so only explicitly configured origins are allowed.
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.DashboardAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Club"},
			MaxAgeSeconds:  600,
		}))

		// Production: dashboard session token auth.
		// Dev: falls back to X-Club if Authorization is missing.
		r.Use(api.DashboardSessionAuth(deps.Cfg))

		r.Get("/bookings", bookingHandlers.List)
		r.Post("/bookings", bookingHandlers.Create)
		r.Get("/bookings/{id}", bookingHandlers.Get)
		r.Patch("/bookings/{id}/status", bookingHandlers.PatchStatus)
		r.Patch("/bookings/{id}/note", bookingHandlers.PatchNote)
		r.Patch("/bookings/{id}/tee-time", bookingHandlers.PatchTeeTime)
		r.Delete("/bookings/{id}", bookingHandlers.Delete)
		r.Get("/bookings/{id}/events", bookingHandlers.Events)

		r.Get("/journey/{event}/due", journeyHandlers.Due)
		r.Post("/journey/{event}/send", journeyHandlers.Send)

		r.Post("/teetimes/backfill", teetimeHandlers.RunBackfill)
	})

	return r
}
