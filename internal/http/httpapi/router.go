package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sorastudio/internal/http/handlers"
	"sorastudio/internal/infra"
	"sorastudio/internal/middleware"
)

// RouterOptions carries the cross-cutting pieces the middleware chain needs.
type RouterOptions struct {
	Logger         infra.Logger
	JWTSecret      string
	AllowedOrigins []string
	RateLimit      int
	DefaultLocale  string
	Country        middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = 60
	}
	defaultLocale := opts.DefaultLocale
	if defaultLocale == "" {
		defaultLocale = "en"
	}

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(defaultLocale, opts.Country),
		middleware.RateLimit(rateLimit, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))
		r.Post("/generate", app.Generate)
		r.Get("/status/{taskId}", app.Status)
		r.Get("/videos", app.Videos)
		r.Get("/me", app.Me)
		r.Get("/stats", app.Stats)
	})

	return r
}
