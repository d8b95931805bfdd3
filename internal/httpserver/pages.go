package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/resellhub/storefront/internal/policy"
)

type PageHandler struct {
	Policy *policy.Engine
}

// Page runs the access decision for a gated page route. Denials turn into
// the engine's redirect; a forced sign-out drops the session cookies so a
// stale session cannot loop back to the same gate.
func (h *PageHandler) Page(name string, req policy.Requirement) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		decision := h.Policy.Decide(c.Request().Context(), req, sessionFrom(c), path)

		if !decision.Allow {
			if decision.SignOut {
				clearSessionCookies(c)
			}
			return c.Redirect(http.StatusFound, decision.RedirectTo)
		}

		view := echo.Map{"page": name}
		if decision.Account != nil {
			view["account"] = echo.Map{
				"name":  decision.Account.DisplayName(),
				"email": decision.Account.Email,
				"role":  decision.Account.Role,
			}
		}
		return c.JSON(http.StatusOK, view)
	}
}
