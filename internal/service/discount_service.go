package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/internal/repo/postgres"
	"github.com/lumiskin/lumiskin-api/internal/utils"
	"github.com/lumiskin/lumiskin-api/pkg/events"
	"github.com/lumiskin/lumiskin-api/pkg/logger"
)

// BestDiscountPolicy selects the dominant discount among a customer's codes.
// It is pluggable so marketing can change the dominance rule without touching
// handlers.
type BestDiscountPolicy func(codes []domain.DiscountCode, now time.Time) *domain.DiscountCode

// HighestPercentFirst picks the valid code with the largest percent; ties go
// to the code expiring soonest.
func HighestPercentFirst(codes []domain.DiscountCode, now time.Time) *domain.DiscountCode {
	var best *domain.DiscountCode
	for i := range codes {
		d := &codes[i]
		if !d.Valid(now) {
			continue
		}
		if best == nil ||
			d.Percent > best.Percent ||
			(d.Percent == best.Percent && d.ExpiresAt.Before(best.ExpiresAt)) {
			best = d
		}
	}
	return best
}

type DiscountService interface {
	MyCodes(ctx context.Context, customerID int64) (*domain.MyDiscountsResponse, error)
	Validate(ctx context.Context, code string) (*domain.ValidateDiscountResponse, error)
	Grant(ctx context.Context, customerID int64, percent int, dtype domain.DiscountType, label string, ttl time.Duration) (*domain.DiscountCode, error)
}

type discountService struct {
	discounts postgres.DiscountsRepo
	best      BestDiscountPolicy
	eventBus  events.Publisher
}

func NewDiscountService(discounts postgres.DiscountsRepo, best BestDiscountPolicy, eventBus events.Publisher) DiscountService {
	if best == nil {
		best = HighestPercentFirst
	}
	return &discountService{discounts: discounts, best: best, eventBus: eventBus}
}

func (s *discountService) MyCodes(ctx context.Context, customerID int64) (*domain.MyDiscountsResponse, error) {
	codes, err := s.discounts.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}

	now := time.Now()
	resp := &domain.MyDiscountsResponse{
		Success:   true,
		Discounts: make([]domain.DiscountView, 0, len(codes)),
	}
	for i := range codes {
		d := &codes[i]
		resp.Discounts = append(resp.Discounts, toView(d, now))
		if d.Valid(now) {
			resp.TotalAvailable++
		}
	}
	if best := s.best(codes, now); best != nil {
		v := toView(best, now)
		resp.BestDiscount = &v
	}
	return resp, nil
}

func toView(d *domain.DiscountCode, now time.Time) domain.DiscountView {
	return domain.DiscountView{
		Code:           d.Code,
		Percent:        d.Percent,
		Type:           d.Type,
		Label:          d.Label,
		HoursRemaining: d.HoursRemaining(now),
		ExpiresAt:      d.ExpiresAt,
	}
}

// Validate reports whether a code is currently usable. Business outcomes are
// values on the response, never errors.
func (s *discountService) Validate(ctx context.Context, code string) (*domain.ValidateDiscountResponse, error) {
	code = utils.NormalizeCode(code)
	if code == "" {
		return &domain.ValidateDiscountResponse{Valid: false, Error: "Discount code is required"}, nil
	}

	d, err := s.discounts.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up discount code: %w", err)
	}
	if d == nil {
		return &domain.ValidateDiscountResponse{Valid: false, Error: "Discount code not found"}, nil
	}
	now := time.Now()
	if d.UsedAt != nil {
		return &domain.ValidateDiscountResponse{Valid: false, Error: "Discount code already used"}, nil
	}
	if !now.Before(d.ExpiresAt) {
		return &domain.ValidateDiscountResponse{Valid: false, Error: "Discount code expired"}, nil
	}

	return &domain.ValidateDiscountResponse{
		Valid:           true,
		DiscountPercent: d.Percent,
		Type:            d.Type,
	}, nil
}

func (s *discountService) Grant(ctx context.Context, customerID int64, percent int, dtype domain.DiscountType, label string, ttl time.Duration) (*domain.DiscountCode, error) {
	code := generateDiscountCode(dtype)
	d, err := s.discounts.Create(ctx, customerID, code, percent, dtype, label, time.Now().Add(ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to create discount code: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.DiscountGranted, events.DiscountGrantedEvent{
		DiscountID: d.ID,
		CustomerID: d.CustomerID,
		Code:       d.Code,
		Percent:    d.Percent,
		Type:       string(d.Type),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish discount granted event", "error", err, "discount_id", d.ID)
	}

	return d, nil
}

var codePrefixes = map[domain.DiscountType]string{
	domain.DiscountWelcome:  "GLOW",
	domain.DiscountReferral: "FRIEND",
	domain.DiscountStreak:   "STREAK",
	domain.DiscountSeasonal: "SEASON",
}

func generateDiscountCode(dtype domain.DiscountType) string {
	prefix := codePrefixes[dtype]
	if prefix == "" {
		prefix = "LUMI"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + "-" + suffix
}
