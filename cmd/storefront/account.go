package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront-ecom/internal/dashboard"
	"github.com/MikeMC777/storefront-ecom/internal/httpx"
	"github.com/MikeMC777/storefront-ecom/internal/notification"
	"github.com/MikeMC777/storefront-ecom/internal/wishlist"
)

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

func listWishlistHandler(repo wishlist.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := httpx.Claims(c)
		out, err := repo.List(c.Request.Context(), claims.UserID)
		if err != nil {
			internalError(c, "[WISHLIST] list", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// addWishlistHandler godoc
//
//	@Summary	Save a product to the signed-in user's wishlist
//	@Tags		wishlist
//	@Accept		json
//	@Produce	json
//	@Param		body	body		wishlistRequest	true	"product"
//	@Success	201		{object}	product.Product
//	@Failure	404		{object}	httpx.ErrorBody
//	@Failure	409		{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/wishlist [post]
func addWishlistHandler(repo wishlist.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := httpx.Claims(c)
		var req wishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		id := strings.TrimSpace(req.ProductID)
		if id == "" {
			httpx.Error(c, http.StatusBadRequest, "productId is required")
			return
		}
		p, err := repo.Add(c.Request.Context(), claims.UserID, id)
		switch {
		case errors.Is(err, wishlist.ErrProductNotFound):
			httpx.Error(c, http.StatusNotFound, "product not found")
		case errors.Is(err, wishlist.ErrAlreadyExists):
			httpx.Error(c, http.StatusConflict, "product already in wishlist")
		case err != nil:
			internalError(c, "[WISHLIST] add", err)
		default:
			c.JSON(http.StatusCreated, p)
		}
	}
}

func removeWishlistHandler(repo wishlist.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := httpx.Claims(c)
		ok, err := repo.Remove(c.Request.Context(), claims.UserID, c.Param("productId"))
		switch {
		case err != nil:
			internalError(c, "[WISHLIST] remove", err)
		case !ok:
			httpx.Error(c, http.StatusNotFound, "product not in wishlist")
		default:
			c.Status(http.StatusNoContent)
		}
	}
}

func listNotificationsHandler(repo notification.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := httpx.Claims(c)
		limit, _ := httpx.Page(c, 20, 100)
		out, err := repo.List(c.Request.Context(), claims.UserID, limit)
		if err != nil {
			internalError(c, "[NOTIFICATIONS] list", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func unreadCountHandler(repo notification.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := httpx.Claims(c)
		userID := c.Param("id")
		if userID != claims.UserID && !claims.IsAdmin() {
			httpx.Error(c, http.StatusForbidden, "forbidden")
			return
		}
		n, err := repo.UnreadCount(c.Request.Context(), userID)
		if err != nil {
			internalError(c, "[NOTIFICATIONS] unread", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": n})
	}
}

func markNotificationReadHandler(repo notification.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := httpx.Claims(c)
		ctx := c.Request.Context()
		n, err := repo.Get(ctx, c.Param("id"))
		switch {
		case errors.Is(err, notification.ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "notification not found")
			return
		case err != nil:
			internalError(c, "[NOTIFICATIONS] get", err)
			return
		}
		if n.UserID != claims.UserID && !claims.IsAdmin() {
			httpx.Error(c, http.StatusForbidden, "forbidden")
			return
		}
		if err := repo.MarkRead(ctx, n.ID); err != nil && !errors.Is(err, notification.ErrNotFound) {
			internalError(c, "[NOTIFICATIONS] mark read", err)
			return
		}
		n.IsRead = true
		c.JSON(http.StatusOK, n)
	}
}

// dashboardStatsHandler godoc
//
//	@Summary	Today against yesterday, plus the last seven days of revenue
//	@Tags		dashboard
//	@Produce	json
//	@Success	200	{object}	dashboard.Stats
//	@Failure	500	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/dashboard-stats [get]
func dashboardStatsHandler(agg *dashboard.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := agg.Compute(c.Request.Context())
		if err != nil {
			internalError(c, "[DASHBOARD] stats", err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}
