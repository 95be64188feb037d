package logger

import (
	"os"

	"github.com/osintlabs/lookup-api-go/config"
	"github.com/sirupsen/logrus"
)

// Log is an instance of the global logrus.Logger
var Log *logrus.Logger

// InitLogger initializes the Email Lookup API logger
func InitLogger() *logrus.Logger {
	if Log == nil {
		options := config.GetConfig().Options

		logLevel, err := logrus.ParseLevel(options.GetString(config.Keys.LogLevel))
		if err != nil {
			logLevel = logrus.InfoLevel
		}

		Log = &logrus.Logger{
			Out:          os.Stdout,
			Level:        logLevel,
			ReportCaller: true,
		}

		formatter := &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyFunc:  "caller",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "msg",
			},
		}

		Log.SetFormatter(formatter)

		key := options.GetString(config.Keys.CwKey)
		secret := options.GetString(config.Keys.CwSecret)

		if key != "" && secret != "" {
			hook, err := newCloudWatchHook(options, formatter)
			if err != nil {
				Log.WithFields(logrus.Fields{"error": err}).Warn("could not attach CloudWatch hook")
			} else {
				Log.AddHook(hook)
			}
		}
	}

	return Log
}
