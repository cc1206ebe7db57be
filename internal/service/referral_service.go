package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/internal/platform/mailer"
	"github.com/lumiskin/lumiskin-api/internal/repo/postgres"
	"github.com/lumiskin/lumiskin-api/internal/utils"
	"github.com/lumiskin/lumiskin-api/pkg/config"
	"github.com/lumiskin/lumiskin-api/pkg/events"
	"github.com/lumiskin/lumiskin-api/pkg/logger"
)

type ReferralService interface {
	GetOrCreate(ctx context.Context, customerID int64) (*domain.ReferralResponse, error)
	Apply(ctx context.Context, customerID int64, code string) (*domain.ApplyReferralResponse, error)
}

type referralService struct {
	referrals postgres.ReferralsRepo
	customers postgres.CustomersRepo
	discounts DiscountService
	repo      postgres.DiscountsRepo
	mailer    mailer.Service
	eventBus  events.Publisher
	cfg       config.ReferralConfig
}

func NewReferralService(
	referrals postgres.ReferralsRepo,
	customers postgres.CustomersRepo,
	discounts DiscountService,
	discountsRepo postgres.DiscountsRepo,
	mailSvc mailer.Service,
	eventBus events.Publisher,
	cfg config.ReferralConfig,
) ReferralService {
	return &referralService{
		referrals: referrals,
		customers: customers,
		discounts: discounts,
		repo:      discountsRepo,
		mailer:    mailSvc,
		eventBus:  eventBus,
		cfg:       cfg,
	}
}

// GetOrCreate returns the customer's referral code, lazily creating it on
// first request, together with redemption statistics.
func (s *referralService) GetOrCreate(ctx context.Context, customerID int64) (*domain.ReferralResponse, error) {
	rc, err := s.referrals.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find referral code: %w", err)
	}
	if rc == nil {
		rc, err = s.referrals.Create(ctx, customerID, generateReferralCode())
		if err != nil {
			return nil, fmt.Errorf("failed to create referral code: %w", err)
		}
	}

	stats, err := s.referrals.Stats(ctx, rc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load referral stats: %w", err)
	}

	return &domain.ReferralResponse{Success: true, Code: rc.Code, Stats: stats}, nil
}

// Apply redeems a referral code for the calling customer. Redemption is
// idempotent: a second apply returns the originally granted discount and never
// grants twice.
func (s *referralService) Apply(ctx context.Context, customerID int64, code string) (*domain.ApplyReferralResponse, error) {
	code = utils.NormalizeCode(code)
	if code == "" {
		return nil, domain.ValidationError("referral code is required")
	}

	// Idempotence: a customer redeems at most once.
	if existing, err := s.referrals.FindRedemptionByCustomer(ctx, customerID); err != nil {
		return nil, fmt.Errorf("failed to check prior redemption: %w", err)
	} else if existing != nil {
		return s.respondExisting(ctx, existing)
	}

	rc, err := s.referrals.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}
	if rc == nil {
		return nil, domain.NewBusinessError(400, "INVALID_REFERRAL", "Invalid referral code")
	}
	if rc.CustomerID == customerID {
		return nil, domain.NewBusinessError(400, "OWN_REFERRAL", "You cannot redeem your own referral code")
	}

	grant, err := s.discounts.Grant(ctx, customerID, s.cfg.RefereePercent, domain.DiscountReferral,
		"Referral discount", s.cfg.DiscountTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to grant referral discount: %w", err)
	}

	red, err := s.referrals.CreateRedemption(ctx, rc.ID, customerID, grant.ID)
	if err != nil {
		// A concurrent apply won the unique race; return its grant instead.
		if existing, ferr := s.referrals.FindRedemptionByCustomer(ctx, customerID); ferr == nil && existing != nil {
			return s.respondExisting(ctx, existing)
		}
		return nil, fmt.Errorf("failed to record redemption: %w", err)
	}

	// Reward the referrer; the referee's grant stands even if this fails.
	if reward, err := s.discounts.Grant(ctx, rc.CustomerID, s.cfg.ReferrerPercent, domain.DiscountReferral,
		"Referral reward", s.cfg.DiscountTTL); err != nil {
		logger.ErrorContext(ctx, "Failed to grant referrer reward", "error", err, "referrer_id", rc.CustomerID)
	} else if referrer, err := s.customers.FindByID(ctx, rc.CustomerID); err == nil && referrer != nil {
		if err := s.mailer.SendReferralReward(referrer.Email, referrer.FirstName, reward.Code, reward.Percent); err != nil {
			logger.WarnContext(ctx, "Failed to send referral reward email", "error", err, "referrer_id", rc.CustomerID)
		}
	}

	if err := s.eventBus.Publish(ctx, events.ReferralRedeemed, events.ReferralRedeemedEvent{
		ReferralCodeID:     rc.ID,
		ReferrerID:         rc.CustomerID,
		ReferredCustomerID: customerID,
		DiscountID:         grant.ID,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish referral redeemed event", "error", err, "redemption_id", red.ID)
	}

	return &domain.ApplyReferralResponse{
		Success:         true,
		DiscountCode:    grant.Code,
		DiscountPercent: grant.Percent,
		Message:         applyMessage(grant.Percent),
	}, nil
}

func (s *referralService) respondExisting(ctx context.Context, red *domain.ReferralRedemption) (*domain.ApplyReferralResponse, error) {
	d, err := s.repo.FindByID(ctx, red.DiscountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load granted discount: %w", err)
	}
	if d == nil {
		return nil, domain.NewBusinessError(400, "ALREADY_REDEEMED", "A referral code has already been applied to this account")
	}
	return &domain.ApplyReferralResponse{
		Success:         true,
		DiscountCode:    d.Code,
		DiscountPercent: d.Percent,
		Message:         applyMessage(d.Percent),
	}, nil
}

func applyMessage(percent int) string {
	return fmt.Sprintf("Referral applied! You earned %d%% off your next order.", percent)
}

func generateReferralCode() string {
	return "LUMI" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}
