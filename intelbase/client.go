package intelbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"time"

	"github.com/osintlabs/lookup-api-go/config"
	"github.com/osintlabs/lookup-api-go/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spf13/viper"
)

var lookupRequestTime = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "intelbase_service_request_time_taken",
	Help:    "IntelBase service latency distributions",
	Buckets: prometheus.LinearBuckets(0.25, 0.25, 20),
})
var lookupFailure = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "intelbase_service_failure",
		Help: "Total number of IntelBase service failures. A failure means a lookup returned a non 2xx or did not complete.",
	},
	[]string{"code"},
)

// Params are the caller-supplied knobs for one email lookup.
type Params struct {
	Email               string
	IncludeDataBreaches bool
	TimeoutMs           int
	ExcludeModules      []string
}

// LookupError is returned whenever a lookup could not produce a decoded payload:
// missing configuration, transport failure, timeout, or a non-2xx status.
type LookupError struct {
	Message    string
	StatusCode int
	Email      string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("IntelBase lookup error [%s], http status code [%d], email [%s]", e.Message, e.StatusCode, e.Email)
}

// IntelBase issues email lookups against the IntelBase API. The decoded payload
// is loosely typed; its schema varies by which modules found the email.
type IntelBase interface {
	LookupEmail(ctx context.Context, params Params) (interface{}, error)
}

type Client struct {
	apiKey     string
	url        string
	cushion    time.Duration
	httpClient http.Client
}

var _ IntelBase = &Client{}

type lookupRequest struct {
	Email               string   `json:"email"`
	TimeoutMs           int      `json:"timeout_ms"`
	IncludeDataBreaches bool     `json:"include_data_breaches"`
	ExcludeModules      []string `json:"exclude_modules,omitempty"`
}

func makeRequestBody(params Params) (*bytes.Buffer, error) {
	requestBody := lookupRequest{
		Email:               params.Email,
		TimeoutMs:           params.TimeoutMs,
		IncludeDataBreaches: params.IncludeDataBreaches,
		ExcludeModules:      params.ExcludeModules,
	}
	encoded, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}
	return bytes.NewBuffer(encoded), nil
}

func makeRequest(ctx context.Context, params Params, url string) (*http.Request, error) {
	buf, err := makeRequestBody(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// clampTimeout defaults an absent timeout and caps an excessive one.
func clampTimeout(timeoutMs int) int {
	options := config.GetConfig().Options
	if timeoutMs <= 0 {
		return options.GetInt(config.Keys.DefaultTimeoutMs)
	}
	if max := options.GetInt(config.Keys.MaxTimeoutMs); timeoutMs > max {
		return max
	}
	return timeoutMs
}

func (c *Client) LookupEmail(ctx context.Context, params Params) (interface{}, error) {
	if c.apiKey == "" {
		return nil, &LookupError{
			Message: "missing IntelBase API key, set " + config.Keys.IntelBaseAPIKey,
			Email:   params.Email,
		}
	}

	params.TimeoutMs = clampTimeout(params.TimeoutMs)

	// The upstream spends up to timeout_ms itself, so the local deadline
	// gets a cushion on top of it.
	deadline := time.Duration(params.TimeoutMs)*time.Millisecond + c.cushion
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	req, err := makeRequest(ctx, params, c.url)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	lookupRequestTime.Observe(time.Since(start).Seconds())

	if err != nil {
		incLookupFailure(0)
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return nil, &LookupError{
				Message: fmt.Sprintf("request to IntelBase timed out after %dms", params.TimeoutMs),
				Email:   params.Email,
			}
		}
		return nil, &LookupError{
			Message: fmt.Sprintf("error sending lookup request to IntelBase [%s]", err),
			Email:   params.Email,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		incLookupFailure(resp.StatusCode)
		return nil, &LookupError{
			Message:    fmt.Sprintf("IntelBase returned status [%d]", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Email:      params.Email,
		}
	}

	var decoded interface{}
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		incLookupFailure(resp.StatusCode)
		return nil, &LookupError{
			Message:    fmt.Sprintf("unable to decode IntelBase response [%s]", err),
			StatusCode: resp.StatusCode,
			Email:      params.Email,
		}
	}

	return decoded, nil
}

func incLookupFailure(statusCode int) {
	lookupFailure.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

type Mock struct {
	Code       int    `json:"code"`
	Body       string `json:"body"`
	RealClient *Client
}

func (m *Mock) LookupEmail(ctx context.Context, params Params) (interface{}, error) {
	return m.RealClient.LookupEmail(ctx, params)
}

func NewClient(debug bool) (IntelBase, error) {
	options := config.GetConfig().Options

	if debug {
		return getMockClient(options)
	}

	apiKey := options.GetString(config.Keys.IntelBaseAPIKey)
	url := options.GetString(config.Keys.IntelBaseHost) + options.GetString(config.Keys.LookupAPIBasePath)

	if err := validateIntelBaseSettings(apiKey, url); err != nil {
		return nil, err
	}

	return &Client{
		apiKey:     apiKey,
		url:        url,
		cushion:    time.Duration(options.GetInt(config.Keys.TimeoutCushionMs)) * time.Millisecond,
		httpClient: http.Client{},
	}, nil
}

func getMockClient(options *viper.Viper) (IntelBase, error) {
	mockResp := options.GetString(config.Keys.IntelBaseMockResponse)
	mock := &Mock{}
	err := json.Unmarshal([]byte(mockResp), mock)
	if err != nil {
		return nil, err
	}

	// set up a fake http server to mock IntelBase
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(mock.Code)
		w.Write([]byte(mock.Body))
	}))

	logger.Log.Debug(fmt.Sprintf("Mock IntelBase server running at %s", ts.URL))

	mock.RealClient = &Client{
		apiKey:     "mock-key",
		url:        ts.URL,
		cushion:    time.Duration(options.GetInt(config.Keys.TimeoutCushionMs)) * time.Millisecond,
		httpClient: *ts.Client(),
	}

	return mock, nil
}

func validateIntelBaseSettings(apiKey string, url string) error {
	missingConfig := make([]string, 0)

	if apiKey == "" {
		missingConfig = append(missingConfig, config.Keys.IntelBaseAPIKey)
	}

	if url == "" {
		missingConfig = append(missingConfig, config.Keys.IntelBaseHost)
	}

	if len(missingConfig) > 0 {
		return fmt.Errorf("Error configuring IntelBase client. Must provide the following env variables which are missing: %v", missingConfig)
	}

	return nil
}
