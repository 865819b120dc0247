package api

// Types mirror the upstream storefront API's JSON wire shapes.

// User is the authenticated identity returned by /users/me and sign-in.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
}

// AuthResult carries the session credential issued on sign-in/sign-up.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// ProductSnapshot is the denormalized product copy embedded in a cart line.
type ProductSnapshot struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Slug   string   `json:"slug,omitempty"`
	Price  float64  `json:"price"`
	Images []string `json:"images,omitempty"`
}

// Product is the full catalog entry returned by the browse endpoints.
type Product struct {
	ProductSnapshot
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Featured    bool   `json:"featured,omitempty"`
}

// CartLine is one entry of the authenticated user's cart.
type CartLine struct {
	ID              string            `json:"id"`
	ProductID       string            `json:"product_id"`
	Quantity        int               `json:"quantity"`
	SelectedVariant map[string]string `json:"selectedVariant,omitempty"`
	Product         ProductSnapshot   `json:"product"`
}

// ShippingAddress is the checkout shipping form as submitted upstream.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderShippingMethod is the resolved shipping selection sent with an order.
type OrderShippingMethod struct {
	Type          string  `json:"type"`
	Cost          float64 `json:"cost"`
	EstimatedDays int     `json:"estimatedDays"`
}

// OrderRequest is the body of orders.create.
type OrderRequest struct {
	ShippingAddress ShippingAddress     `json:"shippingAddress"`
	ShippingMethod  OrderShippingMethod `json:"shippingMethod"`
}

// Order is the confirmation returned on successful order creation.
type Order struct {
	ID     string  `json:"id"`
	Status string  `json:"status,omitempty"`
	Total  float64 `json:"total,omitempty"`
}
