package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/resellhub/storefront/internal/cart"
	"github.com/resellhub/storefront/internal/models"
	"github.com/resellhub/storefront/internal/orders"
	"github.com/resellhub/storefront/internal/report"
)

type CheckoutHandler struct {
	Carts    *cart.Service
	Orders   *orders.Service
	Accounts AccountSource
}

// Prefill returns the delivery fields the account profile can fill in
// ahead of checkout.
func (h *CheckoutHandler) Prefill(c echo.Context) error {
	acct, err := accountFromSession(c.Request().Context(), c, h.Accounts)
	if err != nil {
		return httpError(err)
	}
	if acct == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"name":  acct.DisplayName(),
		"phone": acct.PhoneNumber,
	})
}

func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
	var req models.DeliveryInfo
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	acct, err := accountFromSession(ctx, c, h.Accounts)
	if err != nil {
		return httpError(err)
	}

	owner := cartOwner(c)
	crt, err := h.Carts.Get(ctx, owner)
	if err != nil {
		return httpError(err)
	}

	order, err := h.Orders.Place(ctx, acct, req, crt)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *CheckoutHandler) OrderHistory(c echo.Context) error {
	sess := sessionFrom(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
	}

	list, err := h.Orders.History(c.Request().Context(), sess.UserID)
	if err != nil {
		return httpError(err)
	}
	if list == nil {
		list = []models.Order{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CheckoutHandler) OrderHistoryCSV(c echo.Context) error {
	sess := sessionFrom(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
	}

	list, err := h.Orders.History(c.Request().Context(), sess.UserID)
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(report.HistoryCSV(list)))
}
