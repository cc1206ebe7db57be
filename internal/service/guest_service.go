package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/internal/ratelimit"
	"github.com/lumiskin/lumiskin-api/internal/repo/postgres"
	"github.com/lumiskin/lumiskin-api/pkg/config"
	"github.com/lumiskin/lumiskin-api/pkg/events"
	"github.com/lumiskin/lumiskin-api/pkg/logger"
)

type GuestService interface {
	Start(ctx context.Context, clientIP string) (*domain.GuestSession, error)
	Resolve(ctx context.Context, token string) (*domain.GuestSession, error)
}

type guestService struct {
	guests   postgres.GuestsRepo
	limiter  ratelimit.Limiter
	eventBus events.Publisher
	ttl      time.Duration
	starts   int
	window   time.Duration
}

func NewGuestService(
	guests postgres.GuestsRepo,
	limiter ratelimit.Limiter,
	eventBus events.Publisher,
	guestCfg config.GuestConfig,
	rlCfg config.RateLimitConfig,
) GuestService {
	return &guestService{
		guests:   guests,
		limiter:  limiter,
		eventBus: eventBus,
		ttl:      guestCfg.SessionTTL,
		starts:   rlCfg.GuestStarts,
		window:   rlCfg.GuestWindow,
	}
}

// Start creates a guest session for the given IP, subject to the per-IP
// creation cap. Exceeding the cap is a structured business failure, not a
// fault.
func (s *guestService) Start(ctx context.Context, clientIP string) (*domain.GuestSession, error) {
	allowed, err := s.limiter.Allow(ctx, "guest-start:"+clientIP, s.starts, s.window)
	if err != nil {
		logger.ErrorContext(ctx, "Guest rate limit check failed", "error", err, "ip", clientIP)
		// fail open
	} else if !allowed {
		return nil, domain.NewBusinessError(429, "RATE_LIMIT_EXCEEDED",
			"Too many guest sessions from this address. Please try again later or create an account.")
	}

	sess, err := s.guests.Create(ctx, uuid.NewString(), clientIP, time.Now().Add(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to create guest session: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.GuestSessionCreated, events.GuestSessionCreatedEvent{
		SessionID: sess.ID,
		IP:        clientIP,
		ExpiresAt: sess.ExpiresAt,
	}); err != nil {
		logger.DebugContext(ctx, "Failed to publish guest session event", "error", err)
	}

	return sess, nil
}

func (s *guestService) Resolve(ctx context.Context, token string) (*domain.GuestSession, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	sess, err := s.guests.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up guest session: %w", err)
	}
	if sess == nil || sess.Expired(time.Now()) {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}
