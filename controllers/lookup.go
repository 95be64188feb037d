package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/osintlabs/lookup-api-go/intelbase"
	l "github.com/osintlabs/lookup-api-go/logger"
	"github.com/osintlabs/lookup-api-go/normalize"
	"github.com/osintlabs/lookup-api-go/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var lookupHandledFailure = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lookup_api_handled_failure",
		Help: "Total number of lookup requests answered with ok:false, by failure kind",
	},
	[]string{"kind"},
)

// Lookup handles POST /api/lookup. Validation failures and upstream/normalizer
// errors are all answered with status 200 and an ok:false envelope; non-2xx is
// reserved for unexpected faults.
func Lookup(client intelbase.IntelBase, normalizer *normalize.Normalizer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body types.LookupRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeHandledFailure(w, &types.ValidationError{Message: "invalid request body"})
			return
		}

		if err := validateLookupRequest(body); err != nil {
			writeHandledFailure(w, err)
			return
		}

		includeBreaches := true
		if body.IncludeDataBreaches != nil {
			includeBreaches = *body.IncludeDataBreaches
		}

		payload, err := client.LookupEmail(req.Context(), intelbase.Params{
			Email:               body.Email,
			IncludeDataBreaches: includeBreaches,
			TimeoutMs:           body.TimeoutMs,
			ExcludeModules:      body.ExcludeModules,
		})
		if err != nil {
			handleLookupError(w, err)
			return
		}

		result, err := normalizer.Normalize(payload, includeBreaches)
		if err != nil {
			handleLookupError(w, err)
			return
		}

		writeEnvelope(w, http.StatusOK, types.ResponseEnvelope{Ok: true, Result: result})
	}
}

// validateLookupRequest checks the email before the consent flag; both are
// rejected before any network call happens.
func validateLookupRequest(body types.LookupRequest) error {
	if body.Email == "" {
		return &types.ValidationError{Message: "missing email"}
	}
	if !body.Consent {
		return &types.ValidationError{Message: "consent required"}
	}
	return nil
}

func handleLookupError(w http.ResponseWriter, err error) {
	var validationErr *types.ValidationError
	var lookupErr *intelbase.LookupError
	var malformedErr *normalize.MalformedResponseError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &lookupErr), errors.As(err, &malformedErr):
		writeHandledFailure(w, err)
	default:
		failOnUnexpectedError(w, err)
	}
}

func writeHandledFailure(w http.ResponseWriter, err error) {
	lookupHandledFailure.WithLabelValues(failureKind(err)).Inc()
	writeEnvelope(w, http.StatusOK, types.ResponseEnvelope{Ok: false, Error: errorMessage(err)})
}

// errorMessage keeps validation messages verbatim and uses the descriptive
// Message of the typed dependency errors rather than their full Error() string.
func errorMessage(err error) string {
	var lookupErr *intelbase.LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Message
	}
	return err.Error()
}

func failureKind(err error) string {
	var validationErr *types.ValidationError
	var lookupErr *intelbase.LookupError
	var malformedErr *normalize.MalformedResponseError

	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &lookupErr):
		return "upstream"
	case errors.As(err, &malformedErr):
		return "malformed_response"
	}
	return "unexpected"
}

func failOnUnexpectedError(w http.ResponseWriter, err error) {
	sentry.CaptureException(err)
	l.Log.WithFields(logrus.Fields{"error": err}).Error("unexpected error handling lookup request")
	lookupHandledFailure.WithLabelValues("unexpected").Inc()

	writeEnvelope(w, http.StatusInternalServerError, types.ResponseEnvelope{Ok: false, Error: "internal server error"})
}

func writeEnvelope(w http.ResponseWriter, status int, envelope types.ResponseEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope)
}
