package main

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	_ "github.com/MikeMC777/storefront-ecom/docs"
	"github.com/MikeMC777/storefront-ecom/internal/category"
	"github.com/MikeMC777/storefront-ecom/internal/dashboard"
	"github.com/MikeMC777/storefront-ecom/internal/httpx"
	"github.com/MikeMC777/storefront-ecom/internal/merchant"
	"github.com/MikeMC777/storefront-ecom/internal/notification"
	"github.com/MikeMC777/storefront-ecom/internal/order"
	"github.com/MikeMC777/storefront-ecom/internal/product"
	"github.com/MikeMC777/storefront-ecom/internal/session"
	"github.com/MikeMC777/storefront-ecom/internal/user"
	"github.com/MikeMC777/storefront-ecom/internal/visitor"
	"github.com/MikeMC777/storefront-ecom/internal/wishlist"
)

type routerDeps struct {
	fx.In

	Log           *slog.Logger
	Issuer        *session.Issuer
	Products      product.Repository
	Categories    category.Repository
	Merchants     merchant.Repository
	Users         user.Repository
	Orders        order.Repository
	Ext           *order.Ext
	Wishlist      wishlist.Repository
	Notifications notification.Repository
	Stats         *dashboard.Aggregator
	Visits        visitor.Recorder
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(d.Log), httpx.SecurityHeaders(), httpx.Session(d.Issuer))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.POST("/auth/login", loginHandler(d.Users, d.Issuer))

	// catalog reads count as visits
	catalog := api.Group("", visitor.Middleware(d.Visits, d.Log))
	catalog.GET("/products", listProductsHandler(d.Products))
	catalog.GET("/products/:id", getProductHandler(d.Products))
	catalog.GET("/slugs/:slug", getProductBySlugHandler(d.Products))
	catalog.GET("/search", searchHandler(d.Products))
	api.GET("/categories", listCategoriesHandler(d.Categories))
	api.GET("/merchants", listMerchantsHandler(d.Merchants))
	api.GET("/merchants/:id", getMerchantHandler(d.Merchants))

	api.POST("/orders", createOrderHandler(d.Orders, d.Ext))

	signedIn := api.Group("", httpx.RequireSession())
	signedIn.GET("/users/email/:email", userIDByEmailHandler(d.Ext))
	signedIn.GET("/wishlist", listWishlistHandler(d.Wishlist))
	signedIn.POST("/wishlist", addWishlistHandler(d.Wishlist))
	signedIn.DELETE("/wishlist/:productId", removeWishlistHandler(d.Wishlist))
	signedIn.GET("/notifications", listNotificationsHandler(d.Notifications))
	signedIn.GET("/notifications/:id/unread-count", unreadCountHandler(d.Notifications))
	signedIn.PUT("/notifications/:id/read", markNotificationReadHandler(d.Notifications))

	admin := api.Group("", httpx.RequireAdmin())
	admin.GET("/dashboard-stats", dashboardStatsHandler(d.Stats))

	admin.POST("/products", createProductHandler(d.Products))
	admin.PUT("/products/:id", updateProductHandler(d.Products))
	admin.DELETE("/products/:id", deleteProductHandler(d.Products))

	admin.POST("/categories", createCategoryHandler(d.Categories))
	admin.PUT("/categories/:id", renameCategoryHandler(d.Categories))
	admin.DELETE("/categories/:id", deleteCategoryHandler(d.Categories))

	admin.POST("/merchants", createMerchantHandler(d.Merchants))
	admin.PUT("/merchants/:id", updateMerchantHandler(d.Merchants))
	admin.DELETE("/merchants/:id", deleteMerchantHandler(d.Merchants))

	admin.GET("/users", listUsersHandler(d.Users))
	admin.POST("/users", createUserHandler(d.Users))
	admin.GET("/users/:id", getUserHandler(d.Users))
	admin.PUT("/users/:id", updateUserHandler(d.Users))
	admin.DELETE("/users/:id", deleteUserHandler(d.Users))

	admin.GET("/orders", listOrdersHandler(d.Orders))
	admin.GET("/orders/:id", getOrderHandler(d.Orders))
	admin.PUT("/orders/:id", updateOrderHandler(d.Orders))
	admin.DELETE("/orders/:id", deleteOrderHandler(d.Orders))
	admin.GET("/order-product/:orderId", getOrderItemsHandler(d.Orders))
	admin.DELETE("/order-product/:orderId", deleteOrderItemsHandler(d.Orders))

	return r
}

// internalError logs err and answers 500 without leaking it.
func internalError(c *gin.Context, tag string, err error) {
	httpx.Internal(c, slog.Default(), tag, err)
}

func badRequest(c *gin.Context, err error) {
	httpx.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
}
