package domain

import "time"

type DiscountType string

const (
	DiscountWelcome  DiscountType = "welcome"
	DiscountReferral DiscountType = "referral"
	DiscountStreak   DiscountType = "streak"
	DiscountSeasonal DiscountType = "seasonal"
)

type DiscountCode struct {
	ID         int64        `json:"id"`
	CustomerID int64        `json:"-"`
	Code       string       `json:"code"`
	Percent    int          `json:"discountPercent"`
	Type       DiscountType `json:"type"`
	Label      string       `json:"label"`
	ExpiresAt  time.Time    `json:"expiresAt"`
	UsedAt     *time.Time   `json:"usedAt,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// Valid reports whether the code is currently usable.
func (d *DiscountCode) Valid(now time.Time) bool {
	return d.UsedAt == nil && now.Before(d.ExpiresAt)
}

// HoursRemaining is the time until expiry in whole hours, floored at zero.
func (d *DiscountCode) HoursRemaining(now time.Time) int {
	h := int(d.ExpiresAt.Sub(now).Hours())
	if h < 0 {
		return 0
	}
	return h
}

// DiscountView is the per-code shape returned by the my-codes endpoint.
type DiscountView struct {
	Code           string       `json:"code"`
	Percent        int          `json:"discountPercent"`
	Type           DiscountType `json:"type"`
	Label          string       `json:"label"`
	HoursRemaining int          `json:"hoursRemaining"`
	ExpiresAt      time.Time    `json:"expiresAt"`
}

type MyDiscountsResponse struct {
	Success        bool           `json:"success"`
	Discounts      []DiscountView `json:"discounts"`
	BestDiscount   *DiscountView  `json:"bestDiscount,omitempty"`
	TotalAvailable int            `json:"totalAvailable"`
}

type ValidateDiscountResponse struct {
	Valid           bool         `json:"valid"`
	DiscountPercent int          `json:"discountPercent,omitempty"`
	Type            DiscountType `json:"type,omitempty"`
	Error           string       `json:"error,omitempty"`
}
