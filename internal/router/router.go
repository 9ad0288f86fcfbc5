package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/FACorreiaa/tripwise/config"
	_ "github.com/FACorreiaa/tripwise/docs"
	"github.com/FACorreiaa/tripwise/internal/api/activity"
	"github.com/FACorreiaa/tripwise/internal/api/auth"
	"github.com/FACorreiaa/tripwise/internal/api/booking"
	"github.com/FACorreiaa/tripwise/internal/api/establishment"
	"github.com/FACorreiaa/tripwise/internal/api/island"
	llmInteraction "github.com/FACorreiaa/tripwise/internal/api/llm_interaction"
	"github.com/FACorreiaa/tripwise/internal/api/report"
	"github.com/FACorreiaa/tripwise/internal/api/user"
	"github.com/FACorreiaa/tripwise/internal/api/visit"
	"github.com/FACorreiaa/tripwise/internal/types"
)

// Config contains dependencies needed for the router setup
type Config struct {
	Logger               *slog.Logger
	JWT                  config.JWTConfig
	AuthHandler          *auth.AuthHandler
	UserHandler          *user.HandlerImpl
	IslandHandler        *island.HandlerImpl
	EstablishmentHandler *establishment.HandlerImpl
	ActivityHandler      *activity.HandlerImpl
	VisitHandler         *visit.HandlerImpl
	BookingHandler       *booking.HandlerImpl
	LLMHandler           *llmInteraction.LlmInteractionHandler
	ReportHandler        *report.HandlerImpl
	AllowedOrigins       []string
	// AssistantRateLimit caps /ask and /plan_trip requests per client IP
	// per minute. Zero disables the limit.
	AssistantRateLimit int
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) is applied in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Generated chat answers link to these paths.
	r.Get("/island/{islandID}", redirectTo("/api/v1/islands/", "islandID"))
	r.Get("/place/{placeID}", redirectTo("/api/v1/places/", "placeID"))

	authenticate := auth.Authenticate(cfg.Logger, cfg.JWT)
	limitAssistant := func(next http.Handler) http.Handler { return next }
	if cfg.AssistantRateLimit > 0 {
		limitAssistant = httprate.LimitByIP(cfg.AssistantRateLimit, time.Minute)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// --- Public Routes ---
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshSession)

			r.Get("/islands", cfg.IslandHandler.ListIslands)
			r.Get("/islands/popular", cfg.VisitHandler.PopularIslands)
			r.Get("/islands/{islandID}", cfg.IslandHandler.GetIsland)
			r.Get("/places", cfg.EstablishmentHandler.ListEstablishments)
			r.With(auth.OptionalAuthenticate(cfg.Logger, cfg.JWT)).
				Get("/places/{placeID}", cfg.EstablishmentHandler.GetEstablishment)

			r.With(limitAssistant).Post("/ask", cfg.LLMHandler.Ask)
		})

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.With(limitAssistant).Post("/plan_trip", cfg.LLMHandler.PlanTrip)

			r.Get("/bookings", cfg.BookingHandler.ListMyBookings)
			r.Post("/bookings", cfg.BookingHandler.CreateBooking)
			r.Delete("/bookings/{bookingID}", cfg.BookingHandler.DeleteBooking)
		})

		// --- Owner Routes ---
		r.Route("/owner", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(auth.RequireRole(cfg.Logger, types.RoleOwner, types.RoleAdmin))

			r.Get("/establishments", cfg.EstablishmentHandler.ListMine)
			r.Post("/establishments", cfg.EstablishmentHandler.CreateEstablishment)
			r.Put("/establishments/{placeID}", cfg.EstablishmentHandler.UpdateEstablishment)
			r.Delete("/establishments/{placeID}", cfg.EstablishmentHandler.DeleteEstablishment)

			r.Get("/bookings", cfg.BookingHandler.ListManagedBookings)
			r.Patch("/bookings/{bookingID}/status", cfg.BookingHandler.UpdateBookingStatus)
		})

		// --- Admin Routes ---
		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(auth.RequireRole(cfg.Logger, types.RoleAdmin))

			r.Post("/islands", cfg.IslandHandler.CreateIsland)
			r.Put("/islands/{islandID}", cfg.IslandHandler.UpdateIsland)
			r.Delete("/islands/{islandID}", cfg.IslandHandler.DeleteIsland)
			r.Get("/islands/{islandID}/visits", cfg.VisitHandler.ListIslandVisits)

			r.Post("/activities", cfg.ActivityHandler.CreateActivity)
			r.Put("/activities/{activityID}", cfg.ActivityHandler.UpdateActivity)
			r.Delete("/activities/{activityID}", cfg.ActivityHandler.DeleteActivity)

			r.Post("/visits", cfg.VisitHandler.RecordVisit)
			r.Delete("/visits/{visitID}", cfg.VisitHandler.DeleteVisit)

			r.Get("/establishments/pending", cfg.EstablishmentHandler.ListPending)
			r.Post("/establishments/{placeID}/approve", cfg.EstablishmentHandler.Approve)
			r.Post("/establishments/{placeID}/reject", cfg.EstablishmentHandler.Reject)

			r.Get("/users", cfg.UserHandler.ListUsers)
			r.Patch("/users/{userID}/role", cfg.UserHandler.UpdateUserRole)
			r.Delete("/users/{userID}", cfg.UserHandler.DeleteUser)

			r.Get("/reports", cfg.ReportHandler.GetReport)
			r.Get("/reports/export", cfg.ReportHandler.ExportReport)
		})
	})

	return r
}

func redirectTo(prefix, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, prefix+chi.URLParam(r, param), http.StatusFound)
	}
}
