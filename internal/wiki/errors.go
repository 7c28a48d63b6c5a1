package wiki

import "errors"

// Fetch errors returned by Client.FetchPage.
// Callers can use errors.Is() to distinguish a missing page from
// transport-level failures.
var (
	// ErrPageNotFound is returned when the wiki reports that the requested
	// page does not exist.
	ErrPageNotFound = errors.New("page not found")

	// ErrBadStatus is returned when the wiki responds with a non-200 status.
	ErrBadStatus = errors.New("unexpected HTTP status")

	// ErrAPIError is returned when the wiki API reports an error other than
	// a missing page (rate limiting, invalid title, internal errors).
	ErrAPIError = errors.New("wiki API error")

	// ErrMalformedResponse is returned when the API response cannot be
	// interpreted as a parse result.
	ErrMalformedResponse = errors.New("malformed API response")
)
