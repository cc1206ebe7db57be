package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice,omitempty"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// EffectivePrice is the sale price when set, the list price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

type CheckoutItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CheckoutRequest struct {
	Items        []CheckoutItem `json:"items"`
	DiscountCode string         `json:"discountCode,omitempty"`
}

func (r *CheckoutRequest) Validate() error {
	if len(r.Items) == 0 {
		return ValidationError("at least one item is required")
	}
	for _, it := range r.Items {
		if it.ProductID <= 0 {
			return ValidationError("invalid product id")
		}
		if it.Quantity <= 0 || it.Quantity > 20 {
			return ValidationError("quantity must be between 1 and 20")
		}
	}
	return nil
}

type CheckoutResponse struct {
	Success         bool            `json:"success"`
	ClientSecret    string          `json:"clientSecret"`
	Amount          decimal.Decimal `json:"amount"`
	DiscountApplied int             `json:"discountApplied"`
}
