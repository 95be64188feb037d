package server

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/osintlabs/lookup-api-go/config"
	"github.com/osintlabs/lookup-api-go/logger"
	"github.com/sirupsen/logrus"
)

// Launch the server.
func Launch() {
	options := config.GetConfig().Options

	if dsn := options.GetString(config.Keys.SentryDSN); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			logger.Log.WithFields(logrus.Fields{"error": err}).Warn("sentry init failed")
		}
	}

	r := DoRoutes()
	var port = options.GetString(config.Keys.Port)
	logger.Log.WithFields(logrus.Fields{"port": port}).Info("server starting")
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), r)
	logger.Log.WithFields(logrus.Fields{"error": err}).Fatal("server stopped")
}
