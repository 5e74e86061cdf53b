package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront-ecom/internal/httpx"
	"github.com/MikeMC777/storefront-ecom/internal/product"
)

// listProductsHandler godoc
//
//	@Summary	List products
//	@Tags		products
//	@Produce	json
//	@Param		category	query		string	false	"category id"
//	@Param		maxPrice	query		number	false	"highest price"
//	@Param		rating		query		int		false	"minimum rating"
//	@Param		inStock		query		bool	false	"only products in stock"
//	@Param		sort		query		string	false	"lowPrice, highPrice, titleAsc or rating"
//	@Param		limit		query		int		false	"page size"
//	@Param		offset		query		int		false	"page offset"
//	@Success	200			{object}	product.ListResponse
//	@Router		/products [get]
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := productQuery(c)
		if err != nil {
			httpx.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			internalError(c, "[PRODUCTS] list", err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Limit: q.Limit, Offset: q.Offset, Items: items})
	}
}

func productQuery(c *gin.Context) (product.Query, error) {
	limit, offset := httpx.Page(c, 20, 100)
	q := product.Query{
		CategoryID:  c.Query("category"),
		InStockOnly: c.Query("inStock") == "true" || c.Query("inStock") == "1",
		Sort:        c.Query("sort"),
		Limit:       limit,
		Offset:      offset,
	}
	switch q.Sort {
	case product.SortNewest, product.SortPriceAsc, product.SortPriceDesc, product.SortTitle, product.SortRating:
	default:
		return q, errors.New("unknown sort order")
	}
	if v := c.Query("maxPrice"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return q, errors.New("maxPrice must be a number")
		}
		q.MaxPrice = &p
	}
	if v := c.Query("rating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, errors.New("rating must be an integer")
		}
		q.MinRating = n
	}
	return q.Normalize(), nil
}

// searchHandler godoc
//
//	@Summary	Search products by title or description
//	@Tags		products
//	@Produce	json
//	@Param		query	query		string	true	"at least 2 characters"
//	@Success	200		{object}	product.ListResponse
//	@Failure	400		{object}	httpx.ErrorBody
//	@Router		/search [get]
func searchHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := strings.TrimSpace(c.Query("query"))
		if len([]rune(term)) < 2 {
			httpx.Error(c, http.StatusBadRequest, "query must be at least 2 characters")
			return
		}
		limit, offset := httpx.Page(c, 20, 100)
		q := product.Query{Q: term, Limit: limit, Offset: offset}.Normalize()
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			internalError(c, "[PRODUCTS] search", err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q.Q, Limit: q.Limit, Offset: q.Offset, Items: items})
	}
}

func getProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		respondProduct(c, p, err)
	}
}

func getProductBySlugHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetBySlug(c.Request.Context(), c.Param("slug"))
		respondProduct(c, p, err)
	}
}

func respondProduct(c *gin.Context, p *product.Product, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "product not found")
	case err != nil:
		internalError(c, "[PRODUCTS] get", err)
	default:
		c.JSON(http.StatusOK, p)
	}
}

// createProductHandler godoc
//
//	@Summary	Create product
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		body	body		product.CreateProductRequest	true	"product"
//	@Success	201		{object}	product.Product
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	409		{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/products [post]
func createProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Price.IsNegative() {
			httpx.Error(c, http.StatusBadRequest, "price must not be negative")
			return
		}
		p := product.Product{
			ID:           uuid.NewString(),
			Slug:         strings.TrimSpace(req.Slug),
			Title:        strings.TrimSpace(req.Title),
			MainImage:    req.MainImage,
			Price:        req.Price,
			Rating:       req.Rating,
			Description:  req.Description,
			Manufacturer: req.Manufacturer,
			InStock:      req.InStock,
			CategoryID:   req.CategoryID,
			MerchantID:   req.MerchantID,
		}
		if !cleanMerchantRef(&p) {
			httpx.Error(c, http.StatusBadRequest, "merchantId must be a uuid")
			return
		}
		if err := repo.Create(c.Request.Context(), &p); err != nil {
			productWriteError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updateProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p, err := repo.GetByID(ctx, c.Param("id"))
		if err != nil {
			respondProduct(c, nil, err)
			return
		}
		var req product.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Price != nil && req.Price.IsNegative() {
			httpx.Error(c, http.StatusBadRequest, "price must not be negative")
			return
		}
		req.Apply(p)
		if !cleanMerchantRef(p) {
			httpx.Error(c, http.StatusBadRequest, "merchantId must be a uuid")
			return
		}
		if err := repo.Update(ctx, p); err != nil {
			productWriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// cleanMerchantRef turns an empty merchant id into "no merchant" and reports
// whether what remains is a well-formed id.
func cleanMerchantRef(p *product.Product) bool {
	if p.MerchantID == nil {
		return true
	}
	if strings.TrimSpace(*p.MerchantID) == "" {
		p.MerchantID = nil
		return true
	}
	_, err := uuid.Parse(*p.MerchantID)
	return err == nil
}

func productWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, product.ErrSlugTaken):
		httpx.Error(c, http.StatusConflict, "slug already in use")
	case errors.Is(err, product.ErrBadReference):
		httpx.Error(c, http.StatusBadRequest, "unknown category or merchant")
	case errors.Is(err, product.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "product not found")
	default:
		internalError(c, "[PRODUCTS] write", err)
	}
}

func deleteProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, product.ErrInUse):
			httpx.Error(c, http.StatusConflict, "product is referenced by orders")
		case err != nil:
			internalError(c, "[PRODUCTS] delete", err)
		case !ok:
			httpx.Error(c, http.StatusNotFound, "product not found")
		default:
			c.Status(http.StatusNoContent)
		}
	}
}
