package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/resellhub/storefront/internal/identity"
	"github.com/resellhub/storefront/internal/models"
	"github.com/resellhub/storefront/internal/policy"
)

// Routes the login surfaces send clients on to.
const (
	DashboardRoute        = "/dashboard"
	PremiumDashboardRoute = "/premium-dashboard"
	AdminRoute            = "/admin"
)

type AccountSource interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

type SignUpRecorder interface {
	RecordSignUp()
}

type AuthHandler struct {
	IDs      *identity.Service
	Accounts AccountSource
	Marker   *policy.MarkerCache
	Metrics  SignUpRecorder
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req identity.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	acct, err := h.IDs.SignUp(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	if h.Metrics != nil {
		h.Metrics.RecordSignUp()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":    acct.ID,
		"email": acct.Email,
		"role":  acct.Role,
	})
}

// Login signs the credential in, sets the session cookies and tells the
// client where to land: premium accounts go to the premium dashboard,
// everyone else to the plain one.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	acct, pair, err := h.IDs.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	setSessionCookies(c, pair)

	redirect := DashboardRoute
	if acct.Role == models.RolePremium {
		redirect = PremiumDashboardRoute
	}
	return c.JSON(http.StatusOK, echo.Map{
		"redirect": redirect,
		"role":     acct.Role,
	})
}

// AdminLogin accepts the same credential but only admits admin accounts. A
// valid non-admin credential is signed straight back out so the session
// cannot be reused against the gate.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	acct, pair, err := h.IDs.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	if acct.Role != models.RoleAdmin {
		_ = h.IDs.SignOut(ctx, pair.Refresh)
		clearSessionCookies(c)
		return echo.NewHTTPError(http.StatusForbidden, "You do not have admin access")
	}

	setSessionCookies(c, pair)
	h.Marker.Set(ctx, acct.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"redirect": AdminRoute,
		"role":     acct.Role,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if cookie, err := c.Cookie(RefreshCookie); err == nil {
		if err := h.IDs.SignOut(ctx, cookie.Value); err != nil {
			return httpError(err)
		}
	}
	if sess := sessionFrom(c); sess != nil {
		h.Marker.Clear(ctx, sess.UserID)
	}
	clearSessionCookies(c)

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	pair, sess, err := h.IDs.Rotate(c.Request().Context(), cookie.Value)
	if err != nil {
		clearSessionCookies(c)
		return httpError(err)
	}
	setSessionCookies(c, pair)

	return c.JSON(http.StatusOK, echo.Map{"role": sess.Role})
}

// ChangePassword re-authenticates with the current password before storing
// the new one. The confirmation mismatch fails before anything is looked up.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	sess := sessionFrom(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.NewPassword != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "new passwords do not match")
	}

	ctx := c.Request().Context()
	acct, err := h.Accounts.GetByID(ctx, sess.UserID)
	if err != nil {
		return httpError(err)
	}
	if err := h.IDs.UpdatePassword(ctx, acct, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func setSessionCookies(c echo.Context, pair *identity.TokenPair) {
	c.SetCookie(CreateCookie(AccessCookie, pair.Access, "/", pair.AccessExp))
	c.SetCookie(CreateCookie(RefreshCookie, pair.Refresh, "/", pair.RefreshExp))
}
