package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront-ecom/internal/httpx"
	"github.com/MikeMC777/storefront-ecom/internal/order"
)

// createOrderHandler godoc
//
//	@Summary		Place an order
//	@Description	Stores the header and every line in one transaction. Prices come from the catalog.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		order.CreateOrderRequest	true	"contact and lines"
//	@Success		201		{object}	order.WithItems
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		401		{object}	httpx.ErrorBody
//	@Failure		403		{object}	httpx.ErrorBody
//	@Failure		404		{object}	httpx.ErrorBody
//	@Failure		409		{object}	httpx.ErrorBody
//	@Router			/orders [post]
func createOrderHandler(repo order.Repository, ext *order.Ext) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		contact := req.Contact.Normalized()
		if errs := contact.Validate(); len(errs) > 0 {
			httpx.ErrorDetails(c, http.StatusBadRequest, "invalid contact information", errs)
			return
		}

		items, total, err := ext.PriceItems(ctx, req.Items)
		var missing *order.ProductNotFoundError
		switch {
		case errors.Is(err, order.ErrEmptyOrder), errors.Is(err, order.ErrInvalidQuantity), errors.Is(err, order.ErrDuplicateLine):
			httpx.Error(c, http.StatusBadRequest, err.Error())
			return
		case errors.As(err, &missing):
			httpx.Error(c, http.StatusNotFound, missing.Error())
			return
		case err != nil:
			internalError(c, "[ORDERS] price", err)
			return
		}
		if !total.IsPositive() {
			httpx.Error(c, http.StatusBadRequest, "order total must be positive")
			return
		}

		userID := ""
		if req.UserID != nil {
			userID = strings.TrimSpace(*req.UserID)
		}
		if claims, ok := httpx.Claims(c); ok {
			if userID == "" {
				userID = claims.UserID
			} else if userID != claims.UserID && !claims.IsAdmin() {
				httpx.Error(c, http.StatusForbidden, "cannot order on behalf of another user")
				return
			}
		} else if userID != "" {
			httpx.Error(c, http.StatusUnauthorized, "sign in to place an order for an account")
			return
		}
		o := order.Order{Contact: contact, Status: order.StatusPending, Total: total}
		if userID != "" {
			valid, err := ext.ValidateUser(ctx, userID)
			if err != nil {
				internalError(c, "[ORDERS] validate user", err)
				return
			}
			if !valid {
				httpx.Error(c, http.StatusBadRequest, "unknown user")
				return
			}
			o.UserID = &userID
		}

		err = repo.Create(ctx, &o, items)
		switch {
		case errors.Is(err, order.ErrDuplicate):
			httpx.Error(c, http.StatusConflict, "duplicate order")
		case errors.Is(err, order.ErrUnknownUser):
			httpx.Error(c, http.StatusBadRequest, "unknown user")
		case err != nil:
			internalError(c, "[ORDERS] create", err)
		default:
			c.JSON(http.StatusCreated, order.WithItems{Order: o, Items: items})
		}
	}
}

func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.Query("status")
		if status != "" && !order.ValidStatus(status) {
			httpx.Error(c, http.StatusBadRequest, "invalid status")
			return
		}
		limit, offset := httpx.Page(c, 20, 100)
		out, err := repo.List(c.Request.Context(), order.Filter{Status: status, Limit: limit, Offset: offset})
		if err != nil {
			internalError(c, "[ORDERS] list", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		o, ok := loadOrder(c, repo, c.Param("id"))
		if !ok {
			return
		}
		items, err := repo.GetItems(ctx, o.ID)
		if err != nil {
			internalError(c, "[ORDERS] items", err)
			return
		}
		c.JSON(http.StatusOK, order.WithItems{Order: *o, Items: items})
	}
}

func getOrderItemsHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, ok := loadOrder(c, repo, c.Param("orderId"))
		if !ok {
			return
		}
		items, err := repo.GetItems(c.Request.Context(), o.ID)
		if err != nil {
			internalError(c, "[ORDERS] items", err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// updateOrderHandler godoc
//
//	@Summary	Edit an order's contact data or move its status forward
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"order id"
//	@Param		body	body		order.UpdateOrderRequest	true	"changes"
//	@Success	200		{object}	order.Order
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	404		{object}	httpx.ErrorBody
//	@Failure	409		{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/orders/{id} [put]
func updateOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, ok := loadOrder(c, repo, c.Param("id"))
		if !ok {
			return
		}
		var req order.UpdateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		prev := o.Status
		if req.Status != nil {
			next := strings.ToLower(strings.TrimSpace(*req.Status))
			err := order.CheckTransition(prev, next)
			switch {
			case errors.Is(err, order.ErrInvalidStatus):
				httpx.Error(c, http.StatusBadRequest, "invalid status")
				return
			case err != nil:
				httpx.Error(c, http.StatusConflict, err.Error())
				return
			}
			o.Status = next
		}
		req.Apply(o)
		o.Contact = o.Contact.Normalized()
		if errs := o.Contact.Validate(); len(errs) > 0 {
			httpx.ErrorDetails(c, http.StatusBadRequest, "invalid contact information", errs)
			return
		}

		err := repo.Update(c.Request.Context(), o, prev)
		switch {
		case errors.Is(err, order.ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrStatusChanged):
			httpx.Error(c, http.StatusConflict, "order was modified concurrently")
		case err != nil:
			internalError(c, "[ORDERS] update", err)
		default:
			c.JSON(http.StatusOK, o)
		}
	}
}

func deleteOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		switch {
		case err != nil:
			internalError(c, "[ORDERS] delete", err)
		case !ok:
			httpx.Error(c, http.StatusNotFound, "order not found")
		default:
			c.Status(http.StatusNoContent)
		}
	}
}

func deleteOrderItemsHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := repo.DeleteItems(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			internalError(c, "[ORDERS] delete items", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": n})
	}
}

func loadOrder(c *gin.Context, repo order.Repository, id string) (*order.Order, bool) {
	o, err := repo.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, order.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "order not found")
		return nil, false
	case err != nil:
		internalError(c, "[ORDERS] get", err)
		return nil, false
	}
	return o, true
}
