package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/budget-manager-be/internal/api/handlers"
	"github.com/isdelr/budget-manager-be/internal/auth"
	"github.com/isdelr/budget-manager-be/internal/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Dependencies holds everything the router needs to build its handlers.
type Dependencies struct {
	Authenticator  *auth.Authenticator
	Users          services.UserServiceProvider
	Data           services.DataServiceProvider
	Profiles       services.ProfileServiceProvider
	Activity       services.ActivityServiceProvider
	CORSOrigins    []string
	PublicBaseURL  string
	MaxUploadBytes int64
	StartedAt      time.Time
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.StartedAt)
	authHandler := handlers.NewAuthHandler(deps.Users)
	dataHandler := handlers.NewDataHandler(deps.Data)
	activityHandler := handlers.NewActivityHandler(deps.Activity)
	profileHandler := handlers.NewProfileHandler(deps.Profiles, deps.PublicBaseURL, deps.MaxUploadBytes)
	require := deps.Authenticator.Require

	r.Get("/health", healthHandler.Get)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/change-password", require(authHandler.ChangePassword))
		})

		r.Route("/data", func(r chi.Router) {
			r.Get("/budget", require(dataHandler.GetBudget))
			r.Post("/budget", require(dataHandler.SetBudget))
			r.Get("/expenses", require(dataHandler.ListExpenses))
			r.Post("/expenses", require(dataHandler.AddExpense))
			r.Delete("/expenses/{id}", require(dataHandler.DeleteExpense))
			r.Get("/activity", require(activityHandler.GetRecent))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", require(profileHandler.Get))
			r.Put("/", require(profileHandler.Update))
			r.Post("/photo", require(profileHandler.UploadPhoto))
			r.Get("/photo/{username}/{filename}", profileHandler.GetPhoto)
			r.Get("/photo-url", require(profileHandler.PhotoURL))
		})
	})

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	var event *zerolog.Event
	switch {
	case status >= 500:
		event = hlog.FromRequest(r).Error()
	case status >= 400:
		event = hlog.FromRequest(r).Warn()
	default:
		event = hlog.FromRequest(r).Info()
	}
	event.
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request handled")
}
