package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Healthz responds back with a simple liveness heartbeat
func Healthz(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}
