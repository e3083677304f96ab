// Package githubauth exchanges an OAuth2 authorization code for a GitHub
// access token and resolves the authenticated user's profile and verified
// email addresses.
//
// The client performs no retries and no logging; every failure is one of
// the error types in errors.go and is returned to the caller as-is.
package githubauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// userAgent identifies this client on resource calls. GitHub rejects
	// unidentified clients.
	userAgent = "Habitat-Builder"

	// requiredScope must be present in the grant before a token is usable:
	// account provisioning needs the verified email set.
	requiredScope = "user:email"

	tokenExchangePath = "/login/oauth/access_token"
	userPath          = "/user"
	emailsPath        = "/user/emails"
)

// Client talks to GitHub's OAuth token endpoint and REST API. It holds no
// mutable state and is safe for concurrent use.
type Client struct {
	url          string
	clientID     string
	clientSecret string
	httpc        *http.Client
}

// NewClient builds a client from the provider base URL and OAuth app
// credentials. Timeouts belong to the HTTP client; callers needing a
// different policy can swap it with WithHTTPClient.
func NewClient(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		url:          baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpc:        &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the underlying transport. Returns the client for
// chaining at construction; not intended for use after requests started.
func (c *Client) WithHTTPClient(httpc *http.Client) *Client {
	c.httpc = httpc
	return c
}

// Authenticate exchanges a single-use authorization code for an access
// token. The token is only returned once the required scope is confirmed
// present in the grant; otherwise the caller gets *MissingScopeError and
// the token is discarded.
func (c *Client) Authenticate(ctx context.Context, code string) (string, error) {
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+tokenExchangePath+"?"+params.Encode(), nil)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	grant, perr, shape := decodeTokenBody(body)
	switch shape {
	case shapeGrant:
		if !grant.hasScope(requiredScope) {
			return "", &MissingScopeError{Scope: requiredScope}
		}
		return grant.AccessToken, nil
	case shapeProviderError:
		return "", &perr
	default:
		return "", &DecodeError{Endpoint: tokenExchangePath}
	}
}

// User fetches the authenticated user's profile.
func (c *Client) User(ctx context.Context, token string) (*User, error) {
	status, body, err := c.get(ctx, userPath, token)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeAPIError(userPath, body)
	}
	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, &DecodeError{Endpoint: userPath, Err: err}
	}
	return &user, nil
}

// Emails fetches every address on the account, verified or not; filtering
// is the caller's job.
func (c *Client) Emails(ctx context.Context, token string) ([]Email, error) {
	status, body, err := c.get(ctx, emailsPath, token)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeAPIError(emailsPath, body)
	}
	var emails []Email
	if err := json.Unmarshal(body, &emails); err != nil {
		return nil, &DecodeError{Endpoint: emailsPath, Err: err}
	}
	return emails, nil
}

// get performs an authenticated GET against a resource path and returns the
// status and full body. Transport failures come back wrapped; status
// interpretation is left to the caller.
func (c *Client) get(ctx context.Context, path, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	return resp.StatusCode, body, nil
}

// tokenShape tags the decoded form of a token-exchange body.
type tokenShape int

const (
	shapeGrant tokenShape = iota
	shapeProviderError
	shapeUnrecognized
)

// decodeTokenBody classifies a success-status token-exchange body by
// structure, not status: GitHub can put an error object inside a 200
// envelope. The granted-token shape is tried first and requires a non-empty
// access_token; then the provider-error shape, which requires a non-empty
// error code; anything else is unrecognized.
func decodeTokenBody(body []byte) (tokenGrant, ProviderError, tokenShape) {
	var grant tokenGrant
	if err := json.Unmarshal(body, &grant); err == nil && grant.AccessToken != "" {
		return grant, ProviderError{}, shapeGrant
	}
	var perr ProviderError
	if err := json.Unmarshal(body, &perr); err == nil && perr.Code != "" {
		return tokenGrant{}, perr, shapeProviderError
	}
	return tokenGrant{}, ProviderError{}, shapeUnrecognized
}

// decodeAPIError turns a resource endpoint's non-OK body into *APIError,
// or *DecodeError when the body is not the open string map GitHub uses.
func decodeAPIError(endpoint string, body []byte) error {
	fields := make(map[string]string)
	if err := json.Unmarshal(body, &fields); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return &APIError{Fields: fields}
}
