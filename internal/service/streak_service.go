package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/internal/repo/postgres"
	"github.com/lumiskin/lumiskin-api/pkg/config"
	"github.com/lumiskin/lumiskin-api/pkg/events"
	"github.com/lumiskin/lumiskin-api/pkg/logger"
)

// StreakPolicy decides how an activity timestamp advances a streak. The
// window definition is pluggable; marketing owns it.
type StreakPolicy interface {
	// Advance returns the new current streak for activity at `at`, given the
	// previous activity time (nil when there was none).
	Advance(last *time.Time, current int, at time.Time) int
}

// DailyStreakPolicy counts consecutive UTC calendar days with at least one
// qualifying activity. A same-day repeat leaves the streak unchanged; a gap
// of more than one day resets it to 1.
type DailyStreakPolicy struct{}

func (DailyStreakPolicy) Advance(last *time.Time, current int, at time.Time) int {
	if last == nil {
		return 1
	}
	lastDay := last.UTC().Truncate(24 * time.Hour)
	day := at.UTC().Truncate(24 * time.Hour)
	switch day.Sub(lastDay) {
	case 0:
		if current == 0 {
			return 1
		}
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}

type StreakService interface {
	Status(ctx context.Context, customerID int64) (*domain.StreakStatusResponse, error)
	RecordActivity(ctx context.Context, customerID int64, at time.Time) error
}

type streakService struct {
	streaks   postgres.StreaksRepo
	customers postgres.CustomersRepo
	analyses  postgres.AnalysesRepo
	policy    StreakPolicy
	eventBus  events.Publisher
	target    int
}

func NewStreakService(
	streaks postgres.StreaksRepo,
	customers postgres.CustomersRepo,
	analyses postgres.AnalysesRepo,
	policy StreakPolicy,
	eventBus events.Publisher,
	cfg config.StreakConfig,
) StreakService {
	if policy == nil {
		policy = DailyStreakPolicy{}
	}
	return &streakService{
		streaks:   streaks,
		customers: customers,
		analyses:  analyses,
		policy:    policy,
		eventBus:  eventBus,
		target:    cfg.WeeklyTarget,
	}
}

// Status reports the streak and a rolling 7-day analysis count. An unknown
// customer is "not found"; a known customer without a streak record reports
// zeros.
func (s *streakService) Status(ctx context.Context, customerID int64) (*domain.StreakStatusResponse, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}

	resp := &domain.StreakStatusResponse{
		WeeklyProgress: domain.WeeklyProgress{Target: s.target},
	}

	rec, err := s.streaks.Get(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load streak: %w", err)
	}
	if rec != nil {
		resp.CurrentStreak = rec.CurrentStreak
		resp.LongestStreak = rec.LongestStreak
		resp.LastActivity = rec.LastActivity
	}

	weekly, err := s.analyses.CountCompletedSince(ctx, customerID, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to count weekly analyses: %w", err)
	}
	resp.WeeklyProgress.AnalysesThisWeek = weekly

	return resp, nil
}

func (s *streakService) RecordActivity(ctx context.Context, customerID int64, at time.Time) error {
	rec, err := s.streaks.Get(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to load streak: %w", err)
	}
	if rec == nil {
		rec = &domain.StreakRecord{CustomerID: customerID}
	}

	next := s.policy.Advance(rec.LastActivity, rec.CurrentStreak, at)
	extended := next > rec.CurrentStreak
	rec.CurrentStreak = next
	if next > rec.LongestStreak {
		rec.LongestStreak = next
	}
	activity := at
	rec.LastActivity = &activity

	if err := s.streaks.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}

	if extended {
		if err := s.eventBus.Publish(ctx, events.StreakExtended, events.StreakExtendedEvent{
			CustomerID:    customerID,
			CurrentStreak: rec.CurrentStreak,
		}); err != nil {
			logger.DebugContext(ctx, "Failed to publish streak event", "error", err)
		}
	}

	return nil
}
