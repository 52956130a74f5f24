package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"farmstore/internal/middleware"
	"farmstore/internal/notifications"
	"farmstore/internal/pricing"
	"farmstore/internal/session"
)

type Dependencies struct {
	Catalog       Catalog
	Sessions      *session.Manager
	Notifications *notifications.Channel
	Hub           *notifications.Hub
	OrderEvents   notifications.Publisher

	Currency       pricing.Currency
	DeliveryFee    float64
	Admin          AdminCredentials
	JWTSecret      string
	AccessTokenTTL time.Duration
	CheckoutLimit  int
	SecureCookies  bool
}

// Register mounts the storefront and admin routes on r.
func Register(r *gin.Engine, d Dependencies) {
	r.GET("/", Home())
	r.GET("/health", Health())

	shop := r.Group("/")
	shop.Use(middleware.Shopper(d.Sessions, d.SecureCookies))
	{
		shop.GET("/categories", GetCategories(d.Catalog))
		shop.GET("/products", GetProducts(d.Catalog, d.Currency))
		shop.GET("/products/:id", GetProduct(d.Catalog, d.Currency))
		shop.POST("/products/:id/toggle", ToggleProduct(d.Catalog, d.Currency))
		shop.GET("/products/:id/selection", GetSelection(d.Catalog, d.Currency))
		shop.PUT("/products/:id/selection", UpdateSelection(d.Currency))
		shop.POST("/products/:id/selection/confirm", ConfirmSelection(d.Currency))

		shop.GET("/cart", GetCart(d.Currency))
		shop.DELETE("/cart", ClearCart(d.Currency))
		shop.POST("/cart/viewed", MarkCartViewed(d.Currency))
		shop.PATCH("/cart/items/:productId", UpdateCartItem(d.Currency))
		shop.DELETE("/cart/items/:productId", RemoveCartItem(d.Currency))

		shop.GET("/checkout", GetCheckout(d.Currency, d.DeliveryFee))
		shop.POST("/checkout", middleware.NewRateLimiter(d.CheckoutLimit).Limit(), SubmitCheckout(d.Currency, d.OrderEvents))
	}

	r.POST("/admin/login", AdminLogin(d.Admin, d.JWTSecret, d.AccessTokenTTL))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(d.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/notifications", ListNotifications(d.Notifications))
		admin.POST("/notifications/read-all", MarkAllNotificationsRead(d.Notifications))
		admin.POST("/notifications/:id/read", MarkNotificationRead(d.Notifications))
		admin.DELETE("/notifications", ClearNotifications(d.Notifications))
		admin.GET("/ws", NotificationsSocket(d.Notifications, d.Hub))
	}
}
