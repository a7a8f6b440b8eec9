package etl

import (
	"encoding/json"
	"strings"
)

// unknownText is the placeholder stored when a localized field cannot be
// resolved to a display string.
const unknownText = "Unknown"

// DisplayName reduces a language-keyed JSON payload such as
// {"en": "Airbus A320", "ru": "Аэробус A320"} to a single display string.
// An "en" entry wins, otherwise the first string value in document order,
// otherwise "Unknown". A bare JSON string passes through unchanged.
func DisplayName(raw string) string {
	name, _ := displayName(raw)
	return name
}

func displayName(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return unknownText, false
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return unknownText, false
	}

	switch t := tok.(type) {
	case string:
		return t, true
	case json.Delim:
		if t != '{' {
			return unknownText, false
		}
	default:
		return unknownText, false
	}

	// Walk the object with the decoder rather than unmarshalling into a
	// map: the "first available value" fallback depends on document key
	// order, which a map would destroy.
	first := ""
	haveFirst := false
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return unknownText, false
		}
		key, _ := keyTok.(string)

		var val interface{}
		if err := dec.Decode(&val); err != nil {
			return unknownText, false
		}
		str, isString := val.(string)
		if !isString {
			continue
		}
		if key == "en" {
			return str, true
		}
		if !haveFirst {
			first = str
			haveFirst = true
		}
	}

	if haveFirst {
		return first, true
	}
	return unknownText, false
}
