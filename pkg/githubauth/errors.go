package githubauth

import (
	"fmt"
	"sort"
	"strings"
)

// Every failure the client can produce is one of the types below. All of
// them are terminal: the client never retries, and an authorization code
// that failed cannot be replayed (codes are single-use).

// TransportError wraps an I/O or connection failure while talking to GitHub.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("github: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a non-success status on the token exchange. The body is not
// parsed in this case.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("github: token exchange rejected with status %d", e.Status)
}

// ProviderError is the token endpoint's structured error body: bad
// verification code, bad client credentials, and the like.
type ProviderError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
	URI         string `json:"error_uri"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("github: err=%s, desc=%s, uri=%s", e.Code, e.Description, e.URI)
}

// MissingScopeError means the token was granted but the user declined a
// capability this service requires. The token is discarded, never surfaced.
type MissingScopeError struct {
	Scope string
}

func (e *MissingScopeError) Error() string {
	return fmt.Sprintf("github: grant is missing required scope %q", e.Scope)
}

// APIError is a resource endpoint's error body, an open string map with no
// fixed schema.
type APIError struct {
	Fields map[string]string
}

func (e *APIError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Fields[k])
	}
	return "github: api error: " + strings.Join(parts, ", ")
}

// DecodeError reports a response body that matched no expected shape.
// Treat as non-retryable: the remedy is the same whether GitHub misbehaved
// or we mis-modeled the response.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("github: undecodable response from %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("github: undecodable response from %s", e.Endpoint)
}

func (e *DecodeError) Unwrap() error { return e.Err }
