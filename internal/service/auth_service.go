package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/internal/platform/mailer"
	"github.com/lumiskin/lumiskin-api/internal/repo/postgres"
	"github.com/lumiskin/lumiskin-api/pkg/events"
	"github.com/lumiskin/lumiskin-api/pkg/logger"
)

const (
	welcomePercent = 10
	welcomeTTL     = 14 * 24 * time.Hour
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Customer, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.Customer, error)
	Me(ctx context.Context, customerID int64) (*domain.CustomerInfo, error)
}

type authService struct {
	customers postgres.CustomersRepo
	analyses  postgres.AnalysesRepo
	discounts DiscountService
	mailer    mailer.Service
	eventBus  events.Publisher
}

func NewAuthService(
	customers postgres.CustomersRepo,
	analyses postgres.AnalysesRepo,
	discounts DiscountService,
	mailSvc mailer.Service,
	eventBus events.Publisher,
) AuthService {
	return &authService{
		customers: customers,
		analyses:  analyses,
		discounts: discounts,
		mailer:    mailSvc,
		eventBus:  eventBus,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Customer, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.customers.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing customer: %w", err)
	}
	if existing != nil {
		return nil, domain.NewBusinessError(400, "EMAIL_EXISTS", "An account with this email already exists")
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	c, err := s.customers.Create(ctx, req.Email, hash, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	// Welcome discount; registration succeeds even if the grant fails.
	welcome, err := s.discounts.Grant(ctx, c.ID, welcomePercent, domain.DiscountWelcome, "Welcome discount", welcomeTTL)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to grant welcome discount", "error", err, "customer_id", c.ID)
	} else if err := s.mailer.SendWelcome(c.Email, c.FirstName, welcome.Code, welcome.Percent); err != nil {
		logger.WarnContext(ctx, "Failed to send welcome email", "error", err, "customer_id", c.ID)
	}

	if err := s.eventBus.Publish(ctx, events.CustomerRegistered, events.CustomerRegisteredEvent{
		CustomerID: c.ID,
		Email:      c.Email,
		CreatedAt:  c.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish customer registered event", "error", err, "customer_id", c.ID)
	}

	return c, nil
}

// Login verifies credentials. Unknown email and wrong password return the same
// generic error so responses cannot be used to enumerate accounts.
func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Customer, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.customers.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	if c == nil {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := argon2id.ComparePasswordAndHash(req.Password, c.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.eventBus.Publish(ctx, events.CustomerLoggedIn, map[string]any{"customer_id": c.ID}); err != nil {
		logger.DebugContext(ctx, "Failed to publish login event", "error", err)
	}

	return c, nil
}

func (s *authService) Me(ctx context.Context, customerID int64) (*domain.CustomerInfo, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}

	count, err := s.analyses.CountCompleted(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	return c.ToInfo(count), nil
}
