package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/resellhub/storefront/internal/models"
	"github.com/resellhub/storefront/internal/orders"
	"github.com/resellhub/storefront/internal/policy"
	"github.com/resellhub/storefront/internal/report"
)

type AdminHandler struct {
	Policy   *policy.Engine
	Reports  *report.Service
	OrderSvc *orders.Service
	Accounts AccountUpdater
}

func (h *AdminHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Policy.RequireAdmin(ctx, sessionFrom(c)); err != nil {
		return httpError(err)
	}

	snap, err := h.Reports.Load(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, snap.Summarize())
}

func (h *AdminHandler) Users(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Policy.RequireAdmin(ctx, sessionFrom(c)); err != nil {
		return httpError(err)
	}

	snap, err := h.Reports.Load(ctx)
	if err != nil {
		return httpError(err)
	}

	accts := report.FilterAccounts(snap.Accounts, c.QueryParam("role"))
	views := make([]echo.Map, 0, len(accts))
	for _, a := range accts {
		var registered string
		if !a.CreatedAt.IsZero() {
			registered = a.CreatedAt.Format(time.RFC3339)
		}
		views = append(views, echo.Map{
			"id":         a.ID,
			"name":       a.DisplayName(),
			"email":      a.Email,
			"role":       a.Role,
			"registered": registered,
		})
	}
	return c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) Orders(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Policy.RequireAdmin(ctx, sessionFrom(c)); err != nil {
		return httpError(err)
	}

	list, err := h.OrderSvc.All(ctx)
	if err != nil {
		return httpError(err)
	}
	if list == nil {
		list = []models.Order{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	acct, err := h.Policy.RequireAdmin(ctx, sessionFrom(c))
	if err != nil {
		return httpError(err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	status, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	if err := h.OrderSvc.UpdateStatus(ctx, c.Param("id"), status, acct.Role); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":     c.Param("id"),
		"status": status,
	})
}

// UpdateUserRole moves an account between the free, premium and admin tiers.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Policy.RequireAdmin(ctx, sessionFrom(c)); err != nil {
		return httpError(err)
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	if err := h.Accounts.UpdateField(ctx, c.Param("id"), "role", role); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":   c.Param("id"),
		"role": role,
	})
}

func (h *AdminHandler) UsersCSV(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Policy.RequireAdmin(ctx, sessionFrom(c)); err != nil {
		return httpError(err)
	}

	snap, err := h.Reports.Load(ctx)
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="users.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(report.AccountsCSV(snap.Accounts)))
}

func (h *AdminHandler) OrdersCSV(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Policy.RequireAdmin(ctx, sessionFrom(c)); err != nil {
		return httpError(err)
	}

	snap, err := h.Reports.Load(ctx)
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(report.OrdersCSV(snap.Orders)))
}
