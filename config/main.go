package config

import (
	"os"

	"github.com/spf13/viper"
)

var config *LookupConfig

// LookupConfig is a global configuration struct for the API
type LookupConfig struct {
	Options *viper.Viper
}

// LookupConfigKeysType is the definition of the struct that houses all the env variables key names
type LookupConfigKeysType struct {
	Port                  string
	LogLevel              string
	IntelBaseHost         string
	LookupAPIBasePath     string
	IntelBaseAPIKey       string
	DefaultTimeoutMs      string
	MaxTimeoutMs          string
	TimeoutCushionMs      string
	ModuleInfoYaml        string
	OpenAPISpecPath       string
	SentryDSN             string
	CwLogGroup            string
	CwLogStream           string
	CwRegion              string
	CwKey                 string
	CwSecret              string
	Debug                 string
	IntelBaseMockResponse string
}

// Keys is a struct that houses all the env variables key names
var Keys = LookupConfigKeysType{
	Port:                  "PORT",
	LogLevel:              "LOG_LEVEL",
	IntelBaseHost:         "INTELBASE_HOST",
	LookupAPIBasePath:     "LOOKUP_API_BASE_PATH",
	IntelBaseAPIKey:       "INTELBASE_API_KEY",
	DefaultTimeoutMs:      "DEFAULT_TIMEOUT_MS",
	MaxTimeoutMs:          "MAX_TIMEOUT_MS",
	TimeoutCushionMs:      "TIMEOUT_CUSHION_MS",
	ModuleInfoYaml:        "MODULE_INFO_YAML",
	OpenAPISpecPath:       "OPENAPI_SPEC_PATH",
	SentryDSN:             "SENTRY_DSN",
	CwLogGroup:            "CW_LOG_GROUP",
	CwLogStream:           "CW_LOG_STEAM",
	CwRegion:              "CW_REGION",
	CwKey:                 "CW_KEY",
	CwSecret:              "CW_SECRET",
	Debug:                 "DEBUG",
	IntelBaseMockResponse: "INTELBASE_MOCK_RESPONSE",
}

func initialize() {
	var options = viper.New()
	hostname, err := os.Hostname()

	if err != nil {
		hostname = "lookup-api"
	}

	options.SetDefault(Keys.Port, "3000")
	options.SetDefault(Keys.LogLevel, "info")
	options.SetDefault(Keys.IntelBaseHost, "https://api.intelbase.is")
	options.SetDefault(Keys.LookupAPIBasePath, "/lookup/email")
	options.SetDefault(Keys.DefaultTimeoutMs, 5000)
	options.SetDefault(Keys.MaxTimeoutMs, 30000)
	options.SetDefault(Keys.TimeoutCushionMs, 3000)
	options.SetDefault(Keys.ModuleInfoYaml, "./modules/modules.yml")
	options.SetDefault(Keys.OpenAPISpecPath, "./apispec/api.spec.json")
	options.SetDefault(Keys.CwLogGroup, "lookup-api-dev")
	options.SetDefault(Keys.CwLogStream, hostname)
	options.SetDefault(Keys.CwRegion, "us-east-1")
	options.SetDefault(Keys.Debug, false)
	options.SetDefault(Keys.IntelBaseMockResponse, `{"code":200, "body":"{\"identifier\":{\"email\":\"foo@bar.com\",\"accounts\":[]},\"breach_count\":0}"}`)

	options.SetEnvPrefix("LKP")
	options.AutomaticEnv()

	config = &LookupConfig{
		Options: options,
	}
}

// GetConfig provides a singleton global LookupConfig instance
func GetConfig() *LookupConfig {
	if config == nil {
		initialize()
	}

	return config
}
