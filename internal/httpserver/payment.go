package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/resellhub/storefront/internal/logging"
	"github.com/resellhub/storefront/internal/models"
	"github.com/resellhub/storefront/internal/policy"
)

type AccountUpdater interface {
	UpdateField(ctx context.Context, id, field string, value any) error
}

type PaymentHandler struct {
	Verifier policy.PaymentVerifier
	Accounts AccountUpdater
}

// VerifyPaymentStatus checks a payment intent with the provider. When the
// caller has a session and the intent verifies, the account is marked paid so
// the premium gate stops re-checking it.
func (h *PaymentHandler) VerifyPaymentStatus(c echo.Context) error {
	var req struct {
		PaymentIntentID string `json:"paymentIntentId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PaymentIntentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "paymentIntentId is required")
	}

	ctx := c.Request().Context()
	verified, err := h.Verifier.Verify(ctx, req.PaymentIntentID)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"verified": false,
			"error":    err.Error(),
		})
	}

	if verified && h.Accounts != nil {
		if sess := sessionFrom(c); sess != nil {
			if err := h.Accounts.UpdateField(ctx, sess.UserID, "paymentStatus", models.PaymentCompleted); err != nil {
				logging.FromContext(ctx).Warn("payment status update failed", "user_id", sess.UserID, "error", err)
			}
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": verified})
}
