package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	MainImage    string          `json:"mainImage"`
	Price        decimal.Decimal `json:"price"`
	Rating       int             `json:"rating"`
	Description  string          `json:"description,omitempty"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	InStock      int             `json:"inStock"`
	CategoryID   string          `json:"categoryId,omitempty"`
	MerchantID   *string         `json:"merchantId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int `json:"offset"`
	// page of products
	Items []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Slug         string          `json:"slug"         binding:"required"        example:"mechanical-keyboard"`
	Title        string          `json:"title"        binding:"required"        example:"Mechanical Keyboard"`
	MainImage    string          `json:"mainImage"                              example:"/uploads/keyboard.png"`
	Price        decimal.Decimal `json:"price"                                  example:"199.90"`
	Rating       int             `json:"rating"       binding:"gte=0,lte=5"     example:"5"`
	Description  string          `json:"description"                            example:"RGB 60%"`
	Manufacturer string          `json:"manufacturer"                           example:"Keychron"`
	InStock      int             `json:"inStock"      binding:"gte=0"           example:"10"`
	CategoryID   string          `json:"categoryId"   binding:"required"        example:"keyboards"`
	MerchantID   *string         `json:"merchantId,omitempty"                   example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
}

// UpdateProductRequest payload of partial update; omitted fields are kept.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Slug         *string          `json:"slug,omitempty"`
	Title        *string          `json:"title,omitempty"`
	MainImage    *string          `json:"mainImage,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Rating       *int             `json:"rating,omitempty"       binding:"omitempty,gte=0,lte=5"`
	Description  *string          `json:"description,omitempty"`
	Manufacturer *string          `json:"manufacturer,omitempty"`
	InStock      *int             `json:"inStock,omitempty"      binding:"omitempty,gte=0"`
	CategoryID   *string          `json:"categoryId,omitempty"`
	MerchantID   *string          `json:"merchantId,omitempty"`
}

// Apply copies the non-nil fields of the patch onto p.
func (r UpdateProductRequest) Apply(p *Product) {
	if r.Slug != nil {
		p.Slug = *r.Slug
	}
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.MainImage != nil {
		p.MainImage = *r.MainImage
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Manufacturer != nil {
		p.Manufacturer = *r.Manufacturer
	}
	if r.InStock != nil {
		p.InStock = *r.InStock
	}
	if r.CategoryID != nil {
		p.CategoryID = *r.CategoryID
	}
	if r.MerchantID != nil {
		id := *r.MerchantID
		p.MerchantID = &id
	}
}
