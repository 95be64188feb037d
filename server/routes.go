package server

import (
	"fmt"

	chilogger "github.com/766b/chi-logger"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/osintlabs/lookup-api-go/apispec"
	"github.com/osintlabs/lookup-api-go/config"
	"github.com/osintlabs/lookup-api-go/controllers"
	"github.com/osintlabs/lookup-api-go/intelbase"
	log "github.com/osintlabs/lookup-api-go/logger"
	"github.com/osintlabs/lookup-api-go/moduleinfo"
	"github.com/osintlabs/lookup-api-go/normalize"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DoRoutes sets up the routes used by the server.
// First, it sets up the chi router using our middleware.
// Then it does the actual routing config.

func DoRoutes() chi.Router {
	r := chi.NewRouter()

	sentryMiddleware := sentryhttp.New(sentryhttp.Options{
		Repanic: true,
	})

	r.Use(prometheusMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(chilogger.NewLogrusMiddleware("router", log.Log))
	r.Use(sentryMiddleware.Handle)

	configOptions := config.GetConfig().Options
	debug := configOptions.GetBool(config.Keys.Debug)

	intelBaseClient, err := intelbase.NewClient(debug)
	if err != nil {
		panic(fmt.Sprintf("Error constructing IntelBase client: [%s]", err))
	}

	normalizer := normalize.New(moduleinfo.Load())

	r.Route("/api", func(r chi.Router) {
		r.Post("/lookup", controllers.Lookup(intelBaseClient, normalizer))
		r.Route("/openapi.json", apispec.OpenAPISpec)
	})

	r.Route("/status", controllers.Status)
	r.Route("/healthz", controllers.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
