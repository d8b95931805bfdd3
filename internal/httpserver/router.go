package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/resellhub/storefront/internal/cart"
	"github.com/resellhub/storefront/internal/catalog"
	"github.com/resellhub/storefront/internal/identity"
	"github.com/resellhub/storefront/internal/metrics"
	"github.com/resellhub/storefront/internal/orders"
	"github.com/resellhub/storefront/internal/policy"
	"github.com/resellhub/storefront/internal/report"
)

type Deps struct {
	IDs          *identity.Service
	Accounts     AccountSource
	AccountAdmin AccountUpdater
	Policy       *policy.Engine
	Carts        *cart.Service
	Orders       *orders.Service
	Reports      *report.Service
	Catalog      *catalog.Client
	Verifier     policy.PaymentVerifier
	Metrics      *metrics.Collector
	Gatherer     prometheus.Gatherer
	Logger       *slog.Logger
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	e.Use(ecM.Recover())
	e.Use(ecM.RequestID())
	e.Use(RequestLogger(d.Logger))
	e.Use(ecM.Secure())
	e.Use(SessionMiddleware(d.IDs))

	auth := &AuthHandler{IDs: d.IDs, Accounts: d.Accounts, Marker: d.Policy.Marker}
	carts := &CartHandler{Carts: d.Carts, Catalog: d.Catalog, Accounts: d.Accounts}
	checkout := &CheckoutHandler{Carts: d.Carts, Orders: d.Orders, Accounts: d.Accounts}
	cat := &CatalogHandler{Catalog: d.Catalog}
	// Assign only when non-nil: a nil *metrics.Collector stored in the
	// interface fields would defeat the handlers' Metrics != nil guards.
	if d.Metrics != nil {
		auth.Metrics = d.Metrics
		cat.Metrics = d.Metrics
	}
	pay := &PaymentHandler{Verifier: d.Verifier, Accounts: d.AccountAdmin}
	admin := &AdminHandler{Policy: d.Policy, Reports: d.Reports, OrderSvc: d.Orders, Accounts: d.AccountAdmin}
	pages := &PageHandler{Policy: d.Policy}

	api := e.Group("/api", CORSMiddleware())
	api.OPTIONS("/*", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api.POST("/auth/register", auth.Register)
	api.POST("/auth/login", auth.Login)
	api.POST("/auth/admin-login", auth.AdminLogin)
	api.POST("/auth/logout", auth.Logout)
	api.POST("/auth/refresh", auth.Refresh)
	api.POST("/auth/change-password", auth.ChangePassword)

	api.GET("/products/:id", cat.Proxy)
	api.POST("/verify-payment-status", pay.VerifyPaymentStatus)

	api.GET("/cart", carts.GetCart)
	api.POST("/cart/items", carts.AddToCart)
	api.DELETE("/cart/items/:id", carts.RemoveFromCart)
	api.DELETE("/cart", carts.ClearCart)

	api.GET("/checkout", checkout.Prefill)
	api.POST("/checkout", checkout.PlaceOrder)
	api.GET("/orders", checkout.OrderHistory)
	api.GET("/orders/export", checkout.OrderHistoryCSV)

	api.GET("/admin/summary", admin.Summary)
	api.GET("/admin/users", admin.Users)
	api.GET("/admin/orders", admin.Orders)
	api.PATCH("/admin/orders/:id/status", admin.UpdateOrderStatus)
	api.PATCH("/admin/users/:id/role", admin.UpdateUserRole)
	api.GET("/admin/users/export", admin.UsersCSV)
	api.GET("/admin/orders/export", admin.OrdersCSV)

	v1 := e.Group("/api/v1", CORSMiddleware())
	v1.GET("/products/:id/price", cat.PricedProduct)

	// Page routes sit behind the cookie gate; the policy engine then decides
	// per requirement.
	site := e.Group("", GateMiddleware())
	site.GET("/", pages.Page("home", policy.Public))
	site.GET("/signup", pages.Page("signup", policy.Public))
	site.GET("/login", pages.Page("login", policy.Public))
	site.GET("/admin-login", pages.Page("admin-login", policy.Authenticated))
	site.GET(DashboardRoute, pages.Page("dashboard", policy.Authenticated))
	site.GET(PremiumDashboardRoute, pages.Page("premium-dashboard", policy.PremiumGated))
	site.GET(AdminRoute, pages.Page("admin", policy.AdminGated))
	site.GET(policy.PaymentRoute, pages.Page("payment", policy.Authenticated))
	site.GET("/checkout", pages.Page("checkout", policy.Authenticated))
	site.GET("/orders", pages.Page("orders", policy.Authenticated))
}
