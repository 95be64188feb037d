package intelbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/osintlabs/lookup-api-go/config"
)

func newTestClient(ts *httptest.Server) *Client {
	return &Client{
		apiKey:     "test-key",
		url:        ts.URL,
		cushion:    50 * time.Millisecond,
		httpClient: *ts.Client(),
	}
}

var _ = Describe("IntelBase Client", func() {

	Context("When passed lookup params", func() {
		It("should build a valid request body", func() {
			params := Params{
				Email:               "foo@bar.com",
				IncludeDataBreaches: true,
				TimeoutMs:           5000,
			}

			outputBytes, err := makeRequestBody(params)
			Expect(err).To(BeNil())

			var actualRequest lookupRequest
			Expect(json.Unmarshal(outputBytes.Bytes(), &actualRequest)).To(BeNil())
			Expect(actualRequest.Email).To(Equal("foo@bar.com"))
			Expect(actualRequest.IncludeDataBreaches).To(BeTrue())
			Expect(actualRequest.TimeoutMs).To(Equal(5000))
		})

		It("should omit exclude_modules when empty", func() {
			outputBytes, err := makeRequestBody(Params{Email: "foo@bar.com"})
			Expect(err).To(BeNil())
			Expect(outputBytes.String()).ToNot(ContainSubstring("exclude_modules"))
		})

		It("should construct a request object", func() {
			req, err := makeRequest(context.Background(), Params{Email: "foo@bar.com"}, "http://fakeurl.com")
			Expect(err).To(BeNil())
			Expect(req.Method).To(Equal(http.MethodPost))
			Expect(req.Header.Get("Content-Type")).To(Equal("application/json"))
		})
	})

	Context("When the API key is not configured", func() {
		It("should fail without making a network call", func() {
			calls := 0
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
			}))
			defer ts.Close()

			client := newTestClient(ts)
			client.apiKey = ""

			_, err := client.LookupEmail(context.Background(), Params{Email: "foo@bar.com"})

			lookupErr, ok := err.(*LookupError)
			Expect(ok).To(BeTrue())
			Expect(lookupErr.Message).To(ContainSubstring("missing IntelBase API key"))
			Expect(calls).To(Equal(0))
		})

		It("should return an error from NewClient", func() {
			config.GetConfig().Options.Set(config.Keys.IntelBaseAPIKey, "")

			_, err := NewClient(false)
			Expect(err).ToNot(BeNil())
			Expect(err.Error()).To(ContainSubstring(config.Keys.IntelBaseAPIKey))
		})
	})

	Context("When the lookup succeeds", func() {
		It("should send the api key header and return the decoded payload", func() {
			var gotAPIKey string
			var gotBody lookupRequest

			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAPIKey = r.Header.Get("x-api-key")
				json.NewDecoder(r.Body).Decode(&gotBody)
				w.Write([]byte(`{"identifier":{"email":"foo@bar.com","accounts":[]},"breach_count":2}`))
			}))
			defer ts.Close()

			client := newTestClient(ts)
			payload, err := client.LookupEmail(context.Background(), Params{
				Email:               "foo@bar.com",
				IncludeDataBreaches: true,
				TimeoutMs:           1000,
			})

			Expect(err).To(BeNil())
			Expect(gotAPIKey).To(Equal("test-key"))
			Expect(gotBody.Email).To(Equal("foo@bar.com"))

			decoded, ok := payload.(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(decoded["breach_count"]).To(Equal(float64(2)))
		})
	})

	Context("When IntelBase returns a non 2xx status", func() {
		It("should return a LookupError carrying the status code", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer ts.Close()

			client := newTestClient(ts)
			_, err := client.LookupEmail(context.Background(), Params{Email: "foo@bar.com", TimeoutMs: 1000})

			lookupErr, ok := err.(*LookupError)
			Expect(ok).To(BeTrue())
			Expect(lookupErr.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(lookupErr.Message).To(ContainSubstring("502"))
		})
	})

	Context("When IntelBase returns a 2xx with an unparsable body", func() {
		It("should return a LookupError", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json at all {"))
			}))
			defer ts.Close()

			client := newTestClient(ts)
			_, err := client.LookupEmail(context.Background(), Params{Email: "foo@bar.com", TimeoutMs: 1000})

			lookupErr, ok := err.(*LookupError)
			Expect(ok).To(BeTrue())
			Expect(lookupErr.Message).To(ContainSubstring("unable to decode"))
		})
	})

	Context("When the lookup exceeds its deadline", func() {
		It("should return a LookupError mentioning the timeout", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(500 * time.Millisecond)
			}))
			defer ts.Close()

			client := newTestClient(ts)
			_, err := client.LookupEmail(context.Background(), Params{Email: "foo@bar.com", TimeoutMs: 50})

			lookupErr, ok := err.(*LookupError)
			Expect(ok).To(BeTrue())
			Expect(lookupErr.Message).To(ContainSubstring("timed out"))
		})
	})

	Context("When the caller omits or exaggerates the timeout", func() {
		It("should default an absent timeout", func() {
			defaultMs := config.GetConfig().Options.GetInt(config.Keys.DefaultTimeoutMs)
			Expect(clampTimeout(0)).To(Equal(defaultMs))
		})

		It("should cap an excessive timeout", func() {
			maxMs := config.GetConfig().Options.GetInt(config.Keys.MaxTimeoutMs)
			Expect(clampTimeout(maxMs + 1)).To(Equal(maxMs))
		})

		It("should keep a reasonable timeout as-is", func() {
			Expect(clampTimeout(1500)).To(Equal(1500))
		})
	})

	Context("When debug mode is on", func() {
		It("should serve the configured mock response", func() {
			client, err := NewClient(true)
			Expect(err).To(BeNil())

			payload, err := client.LookupEmail(context.Background(), Params{Email: "foo@bar.com", TimeoutMs: 1000})
			Expect(err).To(BeNil())

			decoded, ok := payload.(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(decoded).To(HaveKey("identifier"))
		})
	})
})
