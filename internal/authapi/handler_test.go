package authapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/KurtDeGreeff/habitat/internal/account"
	"github.com/KurtDeGreeff/habitat/internal/session"
	"github.com/KurtDeGreeff/habitat/pkg/githubauth"
)

func newTestRouter(github GitHub, accounts Accounts, sessions Sessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(NewService(github, accounts, sessions, testLogger()), 3600)
	handler.RegisterRoutes(router)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateHandler(t *testing.T) {
	t.Run("success sets the session cookie", func(t *testing.T) {
		github := new(mockGitHub)
		accounts := new(mockAccounts)
		sessions := new(mockSessions)
		router := newTestRouter(github, accounts, sessions)

		provisioned := account.Account{ID: 9, Name: "octocat", Email: "octocat@github.com"}
		github.On("Authenticate", mock.Anything, "the-code").Return("the-token", nil)
		github.On("User", mock.Anything, "the-token").Return(&githubauth.User{Login: "octocat", Email: strptr("octocat@github.com")}, nil)
		accounts.On("FindOrCreate", mock.Anything, account.Account{Name: "octocat", Email: "octocat@github.com"}).Return(provisioned, nil)
		sessions.On("Create", mock.Anything, provisioned, "the-token").Return(&session.Session{ID: "sid", Account: provisioned, Token: "the-token"}, nil)

		rec := postJSON(router, "/v1/authenticate", `{"code":"the-code"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"octocat"`)

		cookie := findCookie(t, rec, "session_id")
		assert.Equal(t, "sid", cookie.Value)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("missing code is a bad request", func(t *testing.T) {
		router := newTestRouter(new(mockGitHub), new(mockAccounts), new(mockSessions))

		rec := postJSON(router, "/v1/authenticate", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("declined scope is unauthorized", func(t *testing.T) {
		github := new(mockGitHub)
		router := newTestRouter(github, new(mockAccounts), new(mockSessions))

		github.On("Authenticate", mock.Anything, "the-code").Return("", &githubauth.MissingScopeError{Scope: "user:email"})

		rec := postJSON(router, "/v1/authenticate", `{"code":"the-code"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "user:email")
	})

	t.Run("provider error is unauthorized with the provider code", func(t *testing.T) {
		github := new(mockGitHub)
		router := newTestRouter(github, new(mockAccounts), new(mockSessions))

		github.On("Authenticate", mock.Anything, "bad").Return("", &githubauth.ProviderError{Code: "bad_verification_code", Description: "expired"})

		rec := postJSON(router, "/v1/authenticate", `{"code":"bad"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "bad_verification_code")
	})

	t.Run("unreachable provider is service unavailable", func(t *testing.T) {
		github := new(mockGitHub)
		router := newTestRouter(github, new(mockAccounts), new(mockSessions))

		github.On("Authenticate", mock.Anything, "the-code").Return("", &githubauth.TransportError{Err: context.DeadlineExceeded})

		rec := postJSON(router, "/v1/authenticate", `{"code":"the-code"}`)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("rejected exchange and undecodable bodies are bad gateway", func(t *testing.T) {
		for _, err := range []error{
			&githubauth.HTTPError{Status: http.StatusInternalServerError},
			&githubauth.DecodeError{Endpoint: "/login/oauth/access_token"},
		} {
			github := new(mockGitHub)
			router := newTestRouter(github, new(mockAccounts), new(mockSessions))
			github.On("Authenticate", mock.Anything, "the-code").Return("", err)

			rec := postJSON(router, "/v1/authenticate", `{"code":"the-code"}`)

			assert.Equal(t, http.StatusBadGateway, rec.Code)
		}
	})
}

func TestSessionMiddleware(t *testing.T) {
	t.Run("no cookie is unauthorized", func(t *testing.T) {
		router := newTestRouter(new(mockGitHub), new(mockAccounts), new(mockSessions))

		req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown session is unauthorized", func(t *testing.T) {
		sessions := new(mockSessions)
		router := newTestRouter(new(mockGitHub), new(mockAccounts), sessions)

		sessions.On("Get", mock.Anything, "gone").Return(nil, session.ErrNotFound)

		req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "gone"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session reaches the profile", func(t *testing.T) {
		github := new(mockGitHub)
		sessions := new(mockSessions)
		router := newTestRouter(github, new(mockAccounts), sessions)

		sess := &session.Session{ID: "sid", Token: "the-token"}
		sessions.On("Get", mock.Anything, "sid").Return(sess, nil)
		github.On("User", mock.Anything, "the-token").Return(&githubauth.User{Login: "octocat"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "sid"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"octocat"`)
	})
}

func TestEmailsHandler(t *testing.T) {
	t.Run("api rejection surfaces the provider fields", func(t *testing.T) {
		github := new(mockGitHub)
		sessions := new(mockSessions)
		router := newTestRouter(github, new(mockAccounts), sessions)

		sessions.On("Get", mock.Anything, "sid").Return(&session.Session{ID: "sid", Token: "the-token"}, nil)
		github.On("Emails", mock.Anything, "the-token").Return(nil, &githubauth.APIError{Fields: map[string]string{"message": "Not Found"}})

		req := httptest.NewRequest(http.MethodGet, "/v1/emails", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "sid"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Not Found")
	})
}

func TestLogoutHandler(t *testing.T) {
	sessions := new(mockSessions)
	router := newTestRouter(new(mockGitHub), new(mockAccounts), sessions)

	sessions.On("Get", mock.Anything, "sid").Return(&session.Session{ID: "sid"}, nil)
	sessions.On("Delete", mock.Anything, "sid").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sid"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(t, rec, "session_id")
	assert.Empty(t, cookie.Value)
	sessions.AssertExpectations(t)
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "cookie not set", "no %q cookie in response", name)
	return nil
}
