// Package normalize reshapes the loosely-typed IntelBase payload into the fixed
// card/breach structure the UI renders. Missing or malformed sub-fields are
// skipped best-effort; only a payload that is not a JSON object at the top
// level is an error.
package normalize

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/osintlabs/lookup-api-go/moduleinfo"
	"github.com/osintlabs/lookup-api-go/types"
)

// fallbackModuleTag is the module tag used for accounts whose module type the
// registry does not recognize. They still get a generic card.
const fallbackModuleTag = "unknown"

const breachDescriptionLimit = 240

// genericFieldKeys are the safe data keys shown for modules without a display
// definition, in render order.
var genericFieldKeys = []string{"username", "profile_url", "id"}

// avatarKeys are checked in preference order for a card image.
var avatarKeys = []string{"avatar_url", "profile_image", "image"}

// MalformedResponseError means the upstream payload was not a JSON object and
// nothing at all could be normalized from it.
type MalformedResponseError struct {
	Detail string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed IntelBase response: %s", e.Detail)
}

// Normalizer turns raw IntelBase payloads into LookupResults. It holds only the
// immutable module display registry, so it is safe for concurrent use.
type Normalizer struct {
	registry *moduleinfo.Registry
}

func New(registry *moduleinfo.Registry) *Normalizer {
	if registry == nil {
		registry = moduleinfo.NewRegistry(nil)
	}
	return &Normalizer{registry: registry}
}

// Normalize is a pure function from a decoded payload to a LookupResult.
// Breach entries are only populated when the caller asked for them; the breach
// count always reflects the upstream-reported total.
func (n *Normalizer) Normalize(raw interface{}, includeBreaches bool) (*types.LookupResult, error) {
	payload, ok := asMap(raw)
	if !ok {
		return nil, &MalformedResponseError{Detail: "top-level payload is not a JSON object"}
	}

	result := &types.LookupResult{
		Cards:    []types.DisplayCard{},
		Breaches: []types.BreachEntry{},
		Raw:      raw,
		RawKeys:  sortedKeys(payload),
	}

	if identifier, ok := asMap(payload["identifier"]); ok {
		result.Email = getString(identifier, "email")

		if accounts, ok := asList(identifier["accounts"]); ok {
			for _, item := range accounts {
				account, ok := asMap(item)
				if !ok {
					continue
				}
				result.Cards = append(result.Cards, n.buildCard(account))
			}
		}
	}

	breaches, _ := asList(payload["data_breaches"])
	result.BreachCount = breachCount(payload, breaches)

	if includeBreaches {
		for _, item := range breaches {
			breach, ok := asMap(item)
			if !ok {
				continue
			}
			result.Breaches = append(result.Breaches, buildBreach(breach))
		}
	}

	return result, nil
}

func (n *Normalizer) buildCard(account map[string]interface{}) types.DisplayCard {
	module, _ := asMap(account["module"])
	data, _ := asMap(account["data"])

	moduleKey := getString(module, "name")

	title := firstString(module, "name_formatted", "name")
	if title == "" {
		title = "Module"
	}

	card := types.DisplayCard{
		Module:   moduleKey,
		Title:    title,
		Subtitle: getString(module, "domain"),
		Avatar:   pickAvatar(data),
		Fields:   []types.CardField{},
	}

	specs, known := n.registry.Fields(moduleKey)
	if !known || moduleKey == "" {
		card.Module = fallbackModuleTag
		for _, key := range genericFieldKeys {
			addField(&card, titleLabel(key), data[key])
		}
		return card
	}

	for _, spec := range specs {
		addField(&card, spec.Label, data[spec.Key])
	}

	return card
}

func buildBreach(breach map[string]interface{}) types.BreachEntry {
	verified, _ := breach["verified"].(bool)

	description := getString(breach, "description")
	if runes := []rune(description); len(runes) > breachDescriptionLimit {
		description = string(runes[:breachDescriptionLimit])
	}

	return types.BreachEntry{
		Name:        firstString(breach, "name", "title"),
		Date:        firstString(breach, "breach_date", "date"),
		Description: description,
		Verified:    verified,
	}
}

// breachCount prefers the upstream-reported total, which is present even when
// detailed entries were not requested.
func breachCount(payload map[string]interface{}, breaches []interface{}) int {
	if reported, ok := payload["breach_count"].(float64); ok && reported >= 0 {
		return int(reported)
	}
	return len(breaches)
}

func addField(card *types.DisplayCard, label string, value interface{}) {
	if isEmptyValue(value) {
		return
	}
	card.Fields = append(card.Fields, types.CardField{Label: label, Value: value})
}

func pickAvatar(data map[string]interface{}) string {
	for _, key := range avatarKeys {
		candidate := getString(data, key)
		if candidate == "" {
			continue
		}
		parsed, err := url.Parse(candidate)
		if err != nil || parsed.Host == "" {
			continue
		}
		if parsed.Scheme == "http" || parsed.Scheme == "https" {
			return candidate
		}
	}
	return ""
}

func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// titleLabel turns a payload key like "profile_url" into "Profile Url".
func titleLabel(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func asMap(value interface{}) (map[string]interface{}, bool) {
	m, ok := value.(map[string]interface{})
	return m, ok
}

func asList(value interface{}) ([]interface{}, bool) {
	l, ok := value.([]interface{})
	return l, ok
}

func getString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s := getString(m, key); s != "" {
			return s
		}
	}
	return ""
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
