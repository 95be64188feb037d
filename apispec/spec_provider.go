package apispec

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/osintlabs/lookup-api-go/config"
	"github.com/osintlabs/lookup-api-go/logger"
	"github.com/sirupsen/logrus"
)

// OpenAPISpec loads and validates the OpenAPI document at route-setup time and
// responds back with it.
func OpenAPISpec(r chi.Router) {
	specFilePath := config.GetConfig().Options.GetString(config.Keys.OpenAPISpecPath)

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(specFilePath)

	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "path": specFilePath}).Error("could not load openapi spec")
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "openapi spec unavailable", http.StatusNotFound)
		})
		return
	}

	if err := doc.Validate(loader.Context); err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "path": specFilePath}).Warn("openapi spec failed validation")
	}

	byteVal, err := doc.MarshalJSON()
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err}).Error("could not marshal openapi spec")
		return
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(byteVal)
	})
}
