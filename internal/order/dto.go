package order

// CreateOrderItem line of a new order; prices are taken from the catalog.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ProductID string `json:"productId" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"  example:"2"`
}

// CreateOrderRequest header and lines of a new order, submitted together.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Contact
	UserID *string           `json:"userId,omitempty" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Items  []CreateOrderItem `json:"items"`
}

// UpdateOrderRequest partial edit of an order; omitted fields are kept.
// swagger:model UpdateOrderRequest
type UpdateOrderRequest struct {
	Name        *string `json:"name,omitempty"`
	Lastname    *string `json:"lastname,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Company     *string `json:"company,omitempty"`
	Address     *string `json:"address,omitempty"`
	Apartment   *string `json:"apartment,omitempty"`
	PostalCode  *string `json:"postalCode,omitempty"`
	City        *string `json:"city,omitempty"`
	Country     *string `json:"country,omitempty"`
	OrderNotice *string `json:"orderNotice,omitempty"`
	Status      *string `json:"status,omitempty" example:"processing"`
}

// Apply copies the contact edits onto o. The status is handled separately
// because it is subject to transition rules.
func (r UpdateOrderRequest) Apply(o *Order) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&o.Name, r.Name)
	set(&o.Lastname, r.Lastname)
	set(&o.Phone, r.Phone)
	set(&o.Email, r.Email)
	set(&o.Company, r.Company)
	set(&o.Address, r.Address)
	set(&o.Apartment, r.Apartment)
	set(&o.PostalCode, r.PostalCode)
	set(&o.City, r.City)
	set(&o.Country, r.Country)
	set(&o.OrderNotice, r.OrderNotice)
}

// WithItems is an order together with its lines.
// swagger:model OrderWithItems
type WithItems struct {
	Order
	Items []Item `json:"items"`
}
