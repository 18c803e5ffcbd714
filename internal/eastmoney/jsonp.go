package eastmoney

import (
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when a response body contains no JSON object.
var ErrNoJSONObject = errors.New("no JSON object in response body")

// StripJSONP extracts the JSON object from a possibly JSONP-wrapped body.
// push2 endpoints wrap their payload in a callback (`jQuery123({...});`)
// depending on query parameters; the object between the first "{" and the
// last "}" is the payload either way. Plain JSON passes through unchanged.
func StripJSONP(body string) (string, error) {
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return body[start : end+1], nil
}
