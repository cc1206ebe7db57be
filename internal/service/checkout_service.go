package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/internal/repo/postgres"
	"github.com/lumiskin/lumiskin-api/internal/utils"
	"github.com/lumiskin/lumiskin-api/pkg/config"
	"github.com/lumiskin/lumiskin-api/pkg/events"
	"github.com/lumiskin/lumiskin-api/pkg/logger"
)

// PaymentProvider creates a payment intent and returns its client secret.
// Stubbed in tests.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (string, error)
}

type StripeProvider struct {
	currency string
}

func NewStripeProvider(cfg config.StripeConfig) *StripeProvider {
	stripe.Key = cfg.SecretKey
	return &StripeProvider{currency: cfg.Currency}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}

type CheckoutService interface {
	Checkout(ctx context.Context, customerID int64, req *domain.CheckoutRequest) (*domain.CheckoutResponse, error)
}

type checkoutService struct {
	products  postgres.ProductsRepo
	discounts postgres.DiscountsRepo
	payments  PaymentProvider
	eventBus  events.Publisher
	currency  string
}

func NewCheckoutService(
	products postgres.ProductsRepo,
	discounts postgres.DiscountsRepo,
	payments PaymentProvider,
	eventBus events.Publisher,
	cfg config.StripeConfig,
) CheckoutService {
	return &checkoutService{
		products:  products,
		discounts: discounts,
		payments:  payments,
		eventBus:  eventBus,
		currency:  cfg.Currency,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, customerID int64, req *domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[int64]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	total := decimal.Zero
	for _, it := range req.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, domain.NewBusinessError(400, "UNKNOWN_PRODUCT",
				fmt.Sprintf("Product %d is not available", it.ProductID))
		}
		total = total.Add(p.EffectivePrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	var discount *domain.DiscountCode
	percent := 0
	if code := utils.NormalizeCode(req.DiscountCode); code != "" {
		discount, err = s.discounts.FindByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to look up discount: %w", err)
		}
		if discount == nil || discount.CustomerID != customerID || !discount.Valid(time.Now()) {
			return nil, domain.NewBusinessError(400, "INVALID_DISCOUNT", "Discount code is not valid for this order")
		}
		percent = discount.Percent
		factor := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
		total = total.Mul(factor)
	}
	total = total.Round(2)

	amountCents := total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	secret, err := s.payments.CreateIntent(ctx, amountCents, s.currency, map[string]string{
		"customer_id": strconv.FormatInt(customerID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if discount != nil {
		if ok, err := s.discounts.MarkUsed(ctx, discount.ID); err != nil || !ok {
			logger.WarnContext(ctx, "Failed to mark discount used", "error", err, "discount_id", discount.ID)
		}
	}

	if err := s.eventBus.Publish(ctx, events.CheckoutStarted, map[string]any{
		"customer_id": customerID,
		"amount":      total.String(),
		"discount":    percent,
	}); err != nil {
		logger.DebugContext(ctx, "Failed to publish checkout event", "error", err)
	}

	return &domain.CheckoutResponse{
		Success:         true,
		ClientSecret:    secret,
		Amount:          total,
		DiscountApplied: percent,
	}, nil
}
