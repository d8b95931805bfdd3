package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/resellhub/storefront/internal/catalog"
	"github.com/resellhub/storefront/internal/models"
	"github.com/resellhub/storefront/internal/pricing"
)

type CatalogErrorRecorder interface {
	RecordCatalogError()
}

type CatalogHandler struct {
	Catalog *catalog.Client
	Metrics CatalogErrorRecorder
}

// Proxy relays the upstream product document as-is so the credentials stay
// server-side. Upstream failures come back as a 500 with an error field.
func (h *CatalogHandler) Proxy(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	raw, err := h.Catalog.FetchRaw(c.Request().Context(), id)
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordCatalogError()
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch product"})
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// PricedProduct is the product view with the caller's effective discount
// applied, base price alongside for the struck-through display.
func (h *CatalogHandler) PricedProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	item, err := h.Catalog.FetchItem(c.Request().Context(), id)
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordCatalogError()
		}
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

	return c.JSON(http.StatusOK, echo.Map{
		"id":          item.ID,
		"name":        item.Name,
		"description": item.Description,
		"images":      item.Images,
		"pricing":     quote,
	})
}
