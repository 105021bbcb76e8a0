package rest

import "fmt"

const (
	CodeNetworkError   = "NETWORK_ERROR"
	CodeParseError     = "PARSE_ERROR"
	CodeAPIError       = "API_ERROR"
	CodeRequestAborted = "REQUEST_ABORTED"
)

// APIError is the structured error every endpoint returns as a value. It is
// never raised, callers match on Code.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Cause   string `json:"cause"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Aborted reports whether the request lost to a newer identical-key request.
// Aborted failures are not real errors and must not flip pagination state.
func (e *APIError) Aborted() bool {
	return e != nil && e.Code == CodeRequestAborted
}
