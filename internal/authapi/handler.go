package authapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KurtDeGreeff/habitat/internal/session"
	"github.com/KurtDeGreeff/habitat/pkg/githubauth"
)

const (
	sessionCookieName = "session_id"
	sessionContextKey = "session"
)

type Handler struct {
	service      *Service
	cookieMaxAge int
}

func NewHandler(service *Service, cookieMaxAge int) *Handler {
	return &Handler{
		service:      service,
		cookieMaxAge: cookieMaxAge,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/v1/authenticate", h.AuthenticateHandler)

	protected := router.Group("/v1")
	protected.Use(h.SessionMiddleware())
	{
		protected.GET("/profile", h.ProfileHandler)
		protected.GET("/emails", h.EmailsHandler)
		protected.POST("/logout", h.LogoutHandler)
	}
}

type authenticateRequest struct {
	Code string `json:"code" binding:"required"`
}

// AuthenticateHandler exchanges an authorization code for a session. The
// caller obtained the code from GitHub's consent page; this service never
// builds that URL.
func (h *Handler) AuthenticateHandler(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	sess, err := h.service.Login(c.Request.Context(), req.Code)
	if err != nil {
		sendError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		sessionCookieName,
		sess.ID,
		h.cookieMaxAge,
		"/",
		"",
		true, // Secure: only HTTPS
		true, // HttpOnly: not accessible via JavaScript
	)

	c.JSON(http.StatusOK, gin.H{"account": sess.Account})
}

func (h *Handler) ProfileHandler(c *gin.Context) {
	sess := c.MustGet(sessionContextKey).(*session.Session)

	user, err := h.service.Profile(c.Request.Context(), sess)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) EmailsHandler(c *gin.Context) {
	sess := c.MustGet(sessionContextKey).(*session.Session)

	emails, err := h.service.Emails(c.Request.Context(), sess)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, emails)
}

func (h *Handler) LogoutHandler(c *gin.Context) {
	sess := c.MustGet(sessionContextKey).(*session.Session)

	if err := h.service.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session"})
		return
	}

	c.SetCookie(sessionCookieName, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// SessionMiddleware resolves the session cookie and aborts unauthenticated
// requests.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no session found"})
			return
		}

		sess, err := h.service.sessions.Get(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// sendError maps the client's error taxonomy onto HTTP statuses. Scope and
// provider rejections are the user's fault (401); GitHub being broken or
// unreachable is a gateway problem.
func sendError(c *gin.Context, err error) {
	var (
		provErr  *githubauth.ProviderError
		scopeErr *githubauth.MissingScopeError
		apiErr   *githubauth.APIError
		httpErr  *githubauth.HTTPError
		transErr *githubauth.TransportError
		decErr   *githubauth.DecodeError
	)
	switch {
	case errors.As(err, &scopeErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "required permission not granted", "scope": scopeErr.Scope})
	case errors.As(err, &provErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": provErr.Code, "description": provErr.Description})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider rejected the request", "fields": apiErr.Fields})
	case errors.As(err, &httpErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider rejected the token exchange", "status": httpErr.Status})
	case errors.As(err, &decErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider returned an unexpected response"})
	case errors.As(err, &transErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "provider unreachable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
