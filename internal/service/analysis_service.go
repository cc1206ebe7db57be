package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/internal/repo/postgres"
	"github.com/lumiskin/lumiskin-api/pkg/events"
	"github.com/lumiskin/lumiskin-api/pkg/logger"
)

type AnalysisService interface {
	Create(ctx context.Context, customerID int64, req *domain.CreateAnalysisRequest) (*domain.SkinAnalysis, error)
	Get(ctx context.Context, customerID, analysisID int64) (*domain.SkinAnalysis, error)
	History(ctx context.Context, customerID int64, page, limit int) (*domain.AnalysisHistory, error)
}

type analysisService struct {
	analyses postgres.AnalysesRepo
	streaks  StreakService
	eventBus events.Publisher
}

func NewAnalysisService(analyses postgres.AnalysesRepo, streaks StreakService, eventBus events.Publisher) AnalysisService {
	return &analysisService{analyses: analyses, streaks: streaks, eventBus: eventBus}
}

// Create records an analysis and completes it with the scoring stub. The AI
// pipeline proper runs elsewhere; this endpoint only needs a completed record
// with a stable score.
func (s *analysisService) Create(ctx context.Context, customerID int64, req *domain.CreateAnalysisRequest) (*domain.SkinAnalysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.analyses.Create(ctx, customerID, req.SkinType, req.Concerns)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	a, err = s.analyses.Complete(ctx, a.ID, scoreFor(req))
	if err != nil {
		return nil, fmt.Errorf("failed to complete analysis: %w", err)
	}

	if err := s.streaks.RecordActivity(ctx, customerID, time.Now()); err != nil {
		logger.ErrorContext(ctx, "Failed to record streak activity", "error", err, "customer_id", customerID)
	}

	completedAt := time.Now()
	if a.CompletedAt != nil {
		completedAt = *a.CompletedAt
	}
	if err := s.eventBus.Publish(ctx, events.AnalysisCompleted, events.AnalysisCompletedEvent{
		AnalysisID:  a.ID,
		CustomerID:  customerID,
		Score:       a.Score,
		CompletedAt: completedAt,
	}); err != nil {
		logger.DebugContext(ctx, "Failed to publish analysis event", "error", err)
	}

	return a, nil
}

// scoreFor is a deterministic placeholder for the real scoring model.
func scoreFor(req *domain.CreateAnalysisRequest) int {
	score := 82
	score -= 4 * len(req.Concerns)
	if req.SkinType == "sensitive" {
		score -= 5
	}
	if score < 40 {
		score = 40
	}
	return score
}

// Get enforces ownership: a foreign analysis id is unauthorized, never the
// record body.
func (s *analysisService) Get(ctx context.Context, customerID, analysisID int64) (*domain.SkinAnalysis, error) {
	a, err := s.analyses.GetByID(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if a.CustomerID != customerID {
		return nil, domain.ErrUnauthorized
	}
	return a, nil
}

func (s *analysisService) History(ctx context.Context, customerID int64, page, limit int) (*domain.AnalysisHistory, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	total, err := s.analyses.CountByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	list, err := s.analyses.ListByCustomer(ctx, customerID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	return &domain.AnalysisHistory{
		Analyses:   list,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		HasMore:    int64(page*limit) < total,
	}, nil
}
