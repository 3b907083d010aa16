package metadomain

import "fmt"

// Graph API error codes that signal throttling.
// https://developers.facebook.com/docs/graph-api/overview/rate-limiting
var rateLimitCodes = map[int]bool{
	4:   true, // application request limit reached
	17:  true, // user request limit reached
	32:  true, // page request limit reached
	613: true, // custom rate limit
}

// Error is the structured error payload of the Graph API.
type Error struct {
	Message    string `json:"message"`
	Type       string `json:"type"`
	Code       int    `json:"code"`
	Subcode    int    `json:"error_subcode"`
	HTTPStatus int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("meta: %s (type=%s, code=%d, subcode=%d)", e.Message, e.Type, e.Code, e.Subcode)
}

// RateLimited reports throttling from the structured error code or the HTTP
// status, independent of the message text.
func (e *Error) RateLimited() bool {
	return rateLimitCodes[e.Code] || e.HTTPStatus == 429
}
