package meta

import (
	"fmt"
	"regexp"
)

// APIError is the error envelope returned by the Graph API:
// { "error": { "message": "...", "type": "...", "code": 100 } }
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("graph api error (code %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("graph api error: HTTP %d", e.Status)
}

// The API rejects fields the caller's permissions or API version do not
// support, naming the offending field in the message text. These are the
// two signatures observed in practice:
//
//	(#100) Tried accessing nonexisting field (foo) on node type (Whats...)
//	Field foo is not available on this object
var (
	nonexistingFieldRe = regexp.MustCompile(`nonexisting field \(([A-Za-z0-9_]+)\)`)
	unavailableFieldRe = regexp.MustCompile(`[Ff]ield '?([A-Za-z0-9_]+)'? is not available`)
)

// RejectedField extracts the name of the rejected field from a
// field-rejection error message, or "" if the error cannot be attributed
// to a single field.
func (e *APIError) RejectedField() string {
	for _, re := range []*regexp.Regexp{nonexistingFieldRe, unavailableFieldRe} {
		if m := re.FindStringSubmatch(e.Message); m != nil {
			return m[1]
		}
	}
	return ""
}
