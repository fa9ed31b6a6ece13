package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"northberries/pkg/logger"
	"northberries/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	catalogHandler *CatalogHandler,
	cartHandler *CartHandler,
	orderHandler *OrderHandler,
	paymentHandler *PaymentHandler,
	notificationHandler *NotificationHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("shop-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "shop-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты каталога (без аутентификации)
	router.GET("/products", catalogHandler.GetProducts)
	router.GET("/products/featured", catalogHandler.GetFeatured)
	router.GET("/products/:id", catalogHandler.GetProduct)
	router.GET("/categories", catalogHandler.GetCategories)
	router.GET("/payment-types", orderHandler.GetPaymentTypes)
	router.GET("/delivery-types", orderHandler.GetDeliveryTypes)

	// Callback платёжного провайдера
	router.POST("/payments/confirm", paymentHandler.ConfirmPayment)

	// Корзина - требует аутентификации
	cart := router.Group("/cart")
	cart.Use(authMiddleware.Authenticate())
	{
		cart.GET("/:cart_id", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PATCH("/:cart_id/items/:item_id", cartHandler.UpdateItem)
		cart.DELETE("/:cart_id/items/:product_id", cartHandler.DeleteItem)
		cart.POST("/:cart_id/claim", cartHandler.ClearOtherCarts)
	}

	// Список желаний - требует аутентификации
	wishlist := router.Group("/wishlist")
	wishlist.Use(authMiddleware.Authenticate())
	{
		wishlist.GET("/:wishlist_id", cartHandler.GetWishlist)
		wishlist.POST("/items", cartHandler.AddToWishlist)
		wishlist.DELETE("/:wishlist_id/items/:product_id", cartHandler.RemoveFromWishlist)
	}

	// Заказы - требует аутентификации
	orders := router.Group("/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.GetMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)
	}

	// Уведомления - требует аутентификации
	notifications := router.Group("/notifications")
	notifications.Use(authMiddleware.Authenticate())
	{
		notifications.GET("", notificationHandler.GetNotifications)
		notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
		notifications.POST("/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.DELETE("/:id", notificationHandler.DeleteNotification)
	}

	// Admin эндпоинты - только для администраторов
	admin := router.Group("/admin")
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireRole("admin"))
	{
		admin.POST("/categories", catalogHandler.CreateCategory)
		admin.PUT("/categories/:id", catalogHandler.UpdateCategory)
		admin.DELETE("/categories/:id", catalogHandler.DeleteCategory)

		admin.GET("/products", catalogHandler.ListProducts)
		admin.POST("/products", catalogHandler.CreateProduct)
		admin.PUT("/products/:id", catalogHandler.UpdateProduct)
		admin.DELETE("/products/:id", catalogHandler.DeleteProduct)

		admin.GET("/orders", orderHandler.ListOrders)
		admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
		admin.DELETE("/orders/:id", orderHandler.DeleteOrder)
	}

	return router
}
