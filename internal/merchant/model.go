package merchant

import (
	"time"

	"github.com/MikeMC777/storefront-ecom/internal/product"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type Merchant struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone,omitempty"`
	Address      string            `json:"address,omitempty"`
	Description  string            `json:"description,omitempty"`
	Status       string            `json:"status"`
	ProductCount int               `json:"productCount"`
	Products     []product.Product `json:"products,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// MerchantRequest payload for create and update. On update, empty fields are kept.
// swagger:model MerchantRequest
type MerchantRequest struct {
	Name        string `json:"name"        example:"Acme Audio"`
	Email       string `json:"email"       example:"sales@acme.test"`
	Phone       string `json:"phone"       example:"+1 555 0100"`
	Address     string `json:"address"     example:"1 Main St"`
	Description string `json:"description" example:"Headphones and speakers"`
	Status      string `json:"status"      example:"ACTIVE"`
}

// Apply merges the non-empty request fields into m.
func (r MerchantRequest) Apply(m *Merchant) {
	if r.Name != "" {
		m.Name = r.Name
	}
	if r.Email != "" {
		m.Email = r.Email
	}
	if r.Phone != "" {
		m.Phone = r.Phone
	}
	if r.Address != "" {
		m.Address = r.Address
	}
	if r.Description != "" {
		m.Description = r.Description
	}
	if r.Status != "" {
		m.Status = r.Status
	}
}
