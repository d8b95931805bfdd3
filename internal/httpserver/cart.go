package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/resellhub/storefront/internal/accounts"
	"github.com/resellhub/storefront/internal/cart"
	"github.com/resellhub/storefront/internal/catalog"
	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/models"
	"github.com/resellhub/storefront/internal/pricing"
)

type CartHandler struct {
	Carts    *cart.Service
	Catalog  *catalog.Client
	Accounts AccountSource
}

func (h *CartHandler) GetCart(c echo.Context) error {
	crt, err := h.Carts.Get(c.Request().Context(), cartOwner(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cartView(crt))
}

// AddToCart fetches the product from the catalog and stores it with the
// price the caller sees right now. Later price or discount changes do not
// touch lines already in the cart.
func (h *CartHandler) AddToCart(c echo.Context) error {
	var req struct {
		ProductID int64 `json:"productId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	item, err := h.Catalog.FetchItem(ctx, req.ProductID)
	if err != nil {
		return httpError(err)
	}

	role := models.RoleFree
	if sess := sessionFrom(c); sess != nil {
		role = sess.Role
	}
	quote, err := pricing.DisplayPrice(item.Price, role)
	if err != nil {
		return httpError(err)
	}

	line := models.CartItem{
		ID:    item.ID,
		Name:  item.Name,
		Price: quote.Price,
	}
	if len(item.Images) > 0 {
		line.Image = item.Images[0]
	}

	crt, err := h.Carts.AddItem(ctx, cartOwner(c), line)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cartView(crt))
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	crt, err := h.Carts.RemoveItem(c.Request().Context(), cartOwner(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cartView(crt))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	if err := h.Carts.Clear(c.Request().Context(), cartOwner(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func cartView(crt *cart.Cart) echo.Map {
	items := crt.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return echo.Map{
		"items": items,
		"total": crt.Total().StringFixed(2),
	}
}

func accountFromSession(ctx context.Context, c echo.Context, src AccountSource) (*models.Account, error) {
	sess := sessionFrom(c)
	if sess == nil {
		return nil, nil
	}
	acct, err := src.GetByID(ctx, sess.UserID)
	if errors.Is(err, accounts.ErrNotFound) {
		// A session naming a deleted account is a stale session.
		return nil, fmt.Errorf("%w: account gone", fault.ErrNotAuthenticated)
	}
	return acct, err
}
