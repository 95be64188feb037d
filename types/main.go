package types

// LookupRequest is the struct that is used to unmarshal the body of an incoming
// /api/lookup request. IncludeDataBreaches is a pointer so that an absent field
// can default to true.
type LookupRequest struct {
	Email               string   `json:"email"`
	Consent             bool     `json:"consent"`
	IncludeDataBreaches *bool    `json:"include_data_breaches"`
	TimeoutMs           int      `json:"timeout_ms"`
	ExcludeModules      []string `json:"exclude_modules,omitempty"`
}

// CardField is one label/value pair rendered on a DisplayCard. Value may be a
// scalar or a list; list values are joined by the presentation layer.
type CardField struct {
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

// DisplayCard summarizes one account/module discovered for the email.
type DisplayCard struct {
	Module   string      `json:"module"`
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	Avatar   string      `json:"avatar,omitempty"`
	Fields   []CardField `json:"fields"`
}

// BreachEntry summarizes one reported data breach.
type BreachEntry struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Verified    bool   `json:"verified"`
}

// LookupResult is the normalized, display-friendly shape of an IntelBase
// response. Raw carries the upstream payload through for diagnostic display.
type LookupResult struct {
	Email       string        `json:"email"`
	Cards       []DisplayCard `json:"cards"`
	Breaches    []BreachEntry `json:"breaches"`
	BreachCount int           `json:"breach_count"`
	Raw         interface{}   `json:"raw"`
	RawKeys     []string      `json:"raw_keys"`
}

// ResponseEnvelope is the struct that is used to marshal/unmarshal the response
// from the Email Lookup API.
type ResponseEnvelope struct {
	Ok     bool          `json:"ok"`
	Result *LookupResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}
