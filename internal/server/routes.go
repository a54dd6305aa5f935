package server

import (
	"net/http"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/handler"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/middleware"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Shipping     *handler.ShippingHandler
	Orders       *handler.OrderHandler
	Addresses    *handler.AddressHandler
	Products     *handler.ProductHandler
	AdminOrders  *handler.AdminOrderHandler
	AdminProduct *handler.AdminProductHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// 公開
	h.Auth.RegisterRoutes(e)
	h.Products.RegisterRoutes(e)
	h.Shipping.RegisterRoutes(e)

	// ログイン済みの顧客
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.Checkout.RegisterRoutes(e, cfg, userRepo)
	h.Orders.RegisterRoutes(e, cfg, userRepo)

	me := e.Group("/me",
		middleware.AuthJWT(cfg.JWTSecret),
		middleware.TokenVersionGuard(userRepo),
	)
	h.Addresses.RegisterRoutes(me)
	h.Orders.RegisterMeRoutes(me)

	admin := e.Group("/admin",
		middleware.AuthJWT(cfg.JWTSecret),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	)
	h.Auth.RegisterAdminRoutes(admin)
	h.AdminOrders.RegisterRoutes(admin)
	h.AdminProduct.RegisterRoutes(admin)
}
