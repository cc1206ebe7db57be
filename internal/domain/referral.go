package domain

import "time"

// ReferralCode is a per-customer shareable code. Each customer owns at most one.
type ReferralCode struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"-"`
	Code       string    `json:"code"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReferralRedemption links a referred customer to the code they redeemed.
// A customer can redeem at most one referral code, exactly once.
type ReferralRedemption struct {
	ID                 int64     `json:"id"`
	ReferralCodeID     int64     `json:"referralCodeId"`
	ReferredCustomerID int64     `json:"referredCustomerId"`
	DiscountID         int64     `json:"discountId"`
	CreatedAt          time.Time `json:"createdAt"`
}

type ReferralStats struct {
	TotalRedemptions int64 `json:"totalRedemptions"`
	PendingRewards   int64 `json:"pendingRewards"`
}

type ReferralResponse struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Stats   *ReferralStats `json:"stats,omitempty"`
}

type ApplyReferralRequest struct {
	Code string `json:"code"`
}

type ApplyReferralResponse struct {
	Success         bool   `json:"success"`
	DiscountCode    string `json:"discountCode"`
	DiscountPercent int    `json:"discountPercent"`
	Message         string `json:"message"`
}
