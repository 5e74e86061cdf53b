package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/storefront-ecom/internal/category"
	"github.com/MikeMC777/storefront-ecom/internal/httpx"
	"github.com/MikeMC777/storefront-ecom/internal/merchant"
)

func listCategoriesHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.List(c.Request.Context())
		if err != nil {
			internalError(c, "[CATEGORIES] list", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// createCategoryHandler godoc
//
//	@Summary	Create category
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		body	body		category.CategoryRequest	true	"category"
//	@Success	201		{object}	category.Category
//	@Failure	409		{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/categories [post]
func createCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req category.CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			httpx.Error(c, http.StatusBadRequest, "name is required")
			return
		}
		cat := category.Category{ID: category.Slug(name), Name: name}
		err := repo.Create(c.Request.Context(), &cat)
		switch {
		case errors.Is(err, category.ErrAlreadyExists):
			httpx.Error(c, http.StatusConflict, "category already exists")
		case err != nil:
			internalError(c, "[CATEGORIES] create", err)
		default:
			c.JSON(http.StatusCreated, cat)
		}
	}
}

func renameCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req category.CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			httpx.Error(c, http.StatusBadRequest, "name is required")
			return
		}
		cat, err := repo.Rename(c.Request.Context(), c.Param("id"), name)
		switch {
		case errors.Is(err, category.ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "category not found")
		case errors.Is(err, category.ErrAlreadyExists):
			httpx.Error(c, http.StatusConflict, "category already exists")
		case err != nil:
			internalError(c, "[CATEGORIES] rename", err)
		default:
			c.JSON(http.StatusOK, cat)
		}
	}
}

func deleteCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, category.ErrInUse):
			httpx.Error(c, http.StatusConflict, "category has products")
		case err != nil:
			internalError(c, "[CATEGORIES] delete", err)
		case !ok:
			httpx.Error(c, http.StatusNotFound, "category not found")
		default:
			c.Status(http.StatusNoContent)
		}
	}
}

func listMerchantsHandler(repo merchant.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.List(c.Request.Context())
		if err != nil {
			internalError(c, "[MERCHANTS] list", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func getMerchantHandler(repo merchant.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := repo.Get(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, merchant.ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "merchant not found")
		case err != nil:
			internalError(c, "[MERCHANTS] get", err)
		default:
			c.JSON(http.StatusOK, m)
		}
	}
}

func validMerchantStatus(s string) bool {
	return s == merchant.StatusActive || s == merchant.StatusInactive
}

func createMerchantHandler(repo merchant.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req merchant.MerchantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
			httpx.Error(c, http.StatusBadRequest, "name and email are required")
			return
		}
		m := merchant.Merchant{ID: uuid.NewString(), Status: merchant.StatusActive}
		req.Apply(&m)
		if !validMerchantStatus(m.Status) {
			httpx.Error(c, http.StatusBadRequest, "status must be ACTIVE or INACTIVE")
			return
		}
		if err := repo.Create(c.Request.Context(), &m); err != nil {
			internalError(c, "[MERCHANTS] create", err)
			return
		}
		c.JSON(http.StatusCreated, m)
	}
}

func updateMerchantHandler(repo merchant.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		m, err := repo.Get(ctx, c.Param("id"))
		switch {
		case errors.Is(err, merchant.ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "merchant not found")
			return
		case err != nil:
			internalError(c, "[MERCHANTS] get", err)
			return
		}
		var req merchant.MerchantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		req.Apply(m)
		if !validMerchantStatus(m.Status) {
			httpx.Error(c, http.StatusBadRequest, "status must be ACTIVE or INACTIVE")
			return
		}
		err = repo.Update(ctx, m)
		switch {
		case errors.Is(err, merchant.ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "merchant not found")
		case err != nil:
			internalError(c, "[MERCHANTS] update", err)
		default:
			c.JSON(http.StatusOK, m)
		}
	}
}

func deleteMerchantHandler(repo merchant.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		switch {
		case err != nil:
			internalError(c, "[MERCHANTS] delete", err)
		case !ok:
			httpx.Error(c, http.StatusNotFound, "merchant not found")
		default:
			c.Status(http.StatusNoContent)
		}
	}
}
