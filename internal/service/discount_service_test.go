package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/internal/service"
	"github.com/lumiskin/lumiskin-api/pkg/events"
)

func TestHighestPercentFirst(t *testing.T) {
	now := time.Now()
	used := now.Add(-time.Hour)

	codes := []domain.DiscountCode{
		{Code: "A", Percent: 25, ExpiresAt: now.Add(-time.Hour)},            // expired
		{Code: "B", Percent: 30, ExpiresAt: now.Add(time.Hour), UsedAt: &used}, // used
		{Code: "C", Percent: 15, ExpiresAt: now.Add(48 * time.Hour)},
		{Code: "D", Percent: 20, ExpiresAt: now.Add(72 * time.Hour)},
		{Code: "E", Percent: 20, ExpiresAt: now.Add(24 * time.Hour)}, // same percent, sooner expiry
	}

	best := service.HighestPercentFirst(codes, now)
	if best == nil {
		t.Fatal("expected a best discount")
	}
	if best.Code != "E" {
		t.Errorf("expected E (highest percent, earliest expiry), got %s", best.Code)
	}
}

func TestHighestPercentFirstAllInvalid(t *testing.T) {
	now := time.Now()
	codes := []domain.DiscountCode{
		{Code: "A", Percent: 25, ExpiresAt: now.Add(-time.Hour)},
	}
	if best := service.HighestPercentFirst(codes, now); best != nil {
		t.Errorf("expected nil best, got %s", best.Code)
	}
}

func TestMyCodesCountsOnlyUsable(t *testing.T) {
	repo := newMockDiscountsRepo()
	svc := service.NewDiscountService(repo, nil, events.NopEventBus{})
	ctx := context.Background()

	repo.Create(ctx, 1, "GLOW-1", 10, domain.DiscountWelcome, "Welcome", time.Now().Add(24*time.Hour))
	expired, _ := repo.Create(ctx, 1, "GLOW-2", 20, domain.DiscountWelcome, "Welcome", time.Now().Add(time.Hour))
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	repo.Create(ctx, 2, "GLOW-3", 30, domain.DiscountWelcome, "Welcome", time.Now().Add(24*time.Hour)) // other customer

	resp, err := svc.MyCodes(ctx, 1)
	if err != nil {
		t.Fatalf("MyCodes: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if len(resp.Discounts) != 2 {
		t.Errorf("expected 2 listed codes, got %d", len(resp.Discounts))
	}
	if resp.TotalAvailable != 1 {
		t.Errorf("expected 1 available, got %d", resp.TotalAvailable)
	}
	if resp.BestDiscount == nil || resp.BestDiscount.Code != "GLOW-1" {
		t.Errorf("unexpected best discount: %+v", resp.BestDiscount)
	}
}

func TestMyCodesHoursRemainingNeverNegative(t *testing.T) {
	repo := newMockDiscountsRepo()
	svc := service.NewDiscountService(repo, nil, events.NopEventBus{})
	ctx := context.Background()

	d, _ := repo.Create(ctx, 1, "GLOW-OLD", 10, domain.DiscountWelcome, "Welcome", time.Now())
	d.ExpiresAt = time.Now().Add(-30 * time.Hour)

	resp, err := svc.MyCodes(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Discounts[0].HoursRemaining; got != 0 {
		t.Errorf("expired code should report 0 hours remaining, got %d", got)
	}
}

func TestValidateOutcomes(t *testing.T) {
	repo := newMockDiscountsRepo()
	svc := service.NewDiscountService(repo, nil, events.NopEventBus{})
	ctx := context.Background()

	repo.Create(ctx, 1, "GLOW-OK", 15, domain.DiscountWelcome, "Welcome", time.Now().Add(24*time.Hour))
	used, _ := repo.Create(ctx, 1, "GLOW-USED", 15, domain.DiscountWelcome, "Welcome", time.Now().Add(24*time.Hour))
	repo.MarkUsed(ctx, used.ID)
	old, _ := repo.Create(ctx, 1, "GLOW-OLD", 15, domain.DiscountWelcome, "Welcome", time.Now())
	old.ExpiresAt = time.Now().Add(-time.Minute)

	tests := []struct {
		name      string
		code      string
		wantValid bool
		wantErr   string
	}{
		{"valid code", "glow-ok", true, ""},
		{"unknown code", "NOPE", false, "Discount code not found"},
		{"used code", "GLOW-USED", false, "Discount code already used"},
		{"expired code", "GLOW-OLD", false, "Discount code expired"},
		{"blank code", "  ", false, "Discount code is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Validate(ctx, tt.code)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if resp.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v", resp.Valid, tt.wantValid)
			}
			if resp.Error != tt.wantErr {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantErr)
			}
			if tt.wantValid && resp.DiscountPercent != 15 {
				t.Errorf("percent = %d, want 15", resp.DiscountPercent)
			}
		})
	}
}

func TestGrantGeneratesTypedCode(t *testing.T) {
	repo := newMockDiscountsRepo()
	svc := service.NewDiscountService(repo, nil, events.NopEventBus{})

	d, err := svc.Grant(context.Background(), 1, 15, domain.DiscountReferral, "Referral discount", 24*time.Hour)
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if len(d.Code) < 7 || d.Code[:7] != "FRIEND-" {
		t.Errorf("referral code should carry FRIEND prefix, got %q", d.Code)
	}
	if d.Percent != 15 {
		t.Errorf("percent = %d, want 15", d.Percent)
	}
}
