package httpserver

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/resellhub/storefront/internal/cart"
	"github.com/resellhub/storefront/internal/identity"
)

const (
	AccessCookie  = "auth-token"
	RefreshCookie = "refresh-token"

	ctxSession = "session"
)

// PublicPaths are the page routes reachable without a session.
var PublicPaths = []string{"/", "/signup", "/login"}

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func clearSessionCookies(c echo.Context) {
	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(CreateCookie(AccessCookie, "", "/", expired))
	c.SetCookie(CreateCookie(RefreshCookie, "", "/", expired))
}

// SessionMiddleware parses the access token from the Authorization header or
// the auth-token cookie and stashes the session on the context. It never
// rejects: routes that need a session check for nil themselves.
func SessionMiddleware(ids *identity.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				if cookie, err := c.Cookie(AccessCookie); err == nil {
					token = cookie.Value
				}
			}
			if token != "" {
				if sess, err := ids.ParseAccess(token); err == nil {
					c.Set(ctxSession, sess)
				}
			}
			return next(c)
		}
	}
}

// GateMiddleware guards page routes: anything outside the public set needs an
// auth-token cookie. A missing cookie clears any stale session cookies and
// redirects to login with the original path preserved; a present one is
// forwarded downstream as a bearer header.
func GateMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if slices.Contains(PublicPaths, path) {
				return next(c)
			}

			cookie, err := c.Cookie(AccessCookie)
			if err != nil || cookie.Value == "" {
				clearSessionCookies(c)
				return c.Redirect(http.StatusFound, "/login?from="+path)
			}

			c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+cookie.Value)
			return next(c)
		}
	}
}

// CORSMiddleware sets the API CORS headers on every response and answers
// preflight directly.
func CORSMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE, OPTIONS")
			h.Set(echo.HeaderAccessControlAllowHeaders, "Content-Type, Authorization")

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func sessionFrom(c echo.Context) *identity.Session {
	sess, _ := c.Get(ctxSession).(*identity.Session)
	return sess
}

// cartOwner keys the cart by the signed-in user, falling back to the shared
// guest cart for anonymous visitors.
func cartOwner(c echo.Context) string {
	if sess := sessionFrom(c); sess != nil {
		return sess.UserID
	}
	return cart.GuestOwner
}
