package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/internal/service"
	"github.com/lumiskin/lumiskin-api/pkg/config"
	"github.com/lumiskin/lumiskin-api/pkg/events"
)

func TestDailyStreakPolicyAdvance(t *testing.T) {
	policy := service.DailyStreakPolicy{}
	day := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	yesterday := day.Add(-24 * time.Hour)
	threeDaysAgo := day.Add(-72 * time.Hour)
	sameDayEarlier := day.Add(-3 * time.Hour)

	tests := []struct {
		name    string
		last    *time.Time
		current int
		want    int
	}{
		{"first activity", nil, 0, 1},
		{"next day extends", &yesterday, 4, 5},
		{"same day no-op", &sameDayEarlier, 4, 4},
		{"gap resets", &threeDaysAgo, 9, 1},
		{"same day with zero streak", &sameDayEarlier, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Advance(tt.last, tt.current, day); got != tt.want {
				t.Errorf("Advance = %d, want %d", got, tt.want)
			}
		})
	}
}

func newStreakFixture() (service.StreakService, *mockStreaksRepo, *mockCustomersRepo, *mockAnalysesRepo) {
	streaks := newMockStreaksRepo()
	customers := newMockCustomersRepo()
	analyses := newMockAnalysesRepo()
	svc := service.NewStreakService(streaks, customers, analyses, service.DailyStreakPolicy{},
		events.NopEventBus{}, config.StreakConfig{WeeklyTarget: 3})
	return svc, streaks, customers, analyses
}

func TestStreakStatusNewCustomer(t *testing.T) {
	svc, _, customers, _ := newStreakFixture()
	ctx := context.Background()
	c, _ := customers.Create(ctx, "ada@example.com", "hash", "Ada", "", "")

	resp, err := svc.Status(ctx, c.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if resp.CurrentStreak != 0 || resp.LongestStreak != 0 || resp.LastActivity != nil {
		t.Errorf("fresh customer should report zeros: %+v", resp)
	}
	if resp.WeeklyProgress.Target != 3 {
		t.Errorf("target = %d, want 3", resp.WeeklyProgress.Target)
	}
}

func TestStreakStatusUnknownCustomer(t *testing.T) {
	svc, _, _, _ := newStreakFixture()
	if _, err := svc.Status(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStreakStatusWeeklyProgress(t *testing.T) {
	svc, _, customers, analyses := newStreakFixture()
	ctx := context.Background()
	c, _ := customers.Create(ctx, "ada@example.com", "hash", "Ada", "", "")

	for i := 0; i < 2; i++ {
		a, _ := analyses.Create(ctx, c.ID, "dry", nil)
		analyses.Complete(ctx, a.ID, 80)
	}
	analyses.Create(ctx, c.ID, "oily", nil) // pending, excluded

	resp, err := svc.Status(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resp.WeeklyProgress.AnalysesThisWeek != 2 {
		t.Errorf("analysesThisWeek = %d, want 2", resp.WeeklyProgress.AnalysesThisWeek)
	}
}

func TestRecordActivityTracksLongest(t *testing.T) {
	svc, streaks, customers, _ := newStreakFixture()
	ctx := context.Background()
	c, _ := customers.Create(ctx, "ada@example.com", "hash", "Ada", "", "")

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := svc.RecordActivity(ctx, c.ID, base.Add(time.Duration(i)*24*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	rec := streaks.records[c.ID]
	if rec.CurrentStreak != 3 || rec.LongestStreak != 3 {
		t.Fatalf("after 3 consecutive days: %+v", rec)
	}

	// A gap resets current but longest survives.
	if err := svc.RecordActivity(ctx, c.ID, base.Add(10*24*time.Hour)); err != nil {
		t.Fatal(err)
	}
	rec = streaks.records[c.ID]
	if rec.CurrentStreak != 1 {
		t.Errorf("current = %d, want 1 after gap", rec.CurrentStreak)
	}
	if rec.LongestStreak != 3 {
		t.Errorf("longest = %d, want 3", rec.LongestStreak)
	}
}

func TestRecordActivitySameDayIdempotent(t *testing.T) {
	svc, streaks, customers, _ := newStreakFixture()
	ctx := context.Background()
	c, _ := customers.Create(ctx, "ada@example.com", "hash", "Ada", "", "")

	at := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	svc.RecordActivity(ctx, c.ID, at)
	svc.RecordActivity(ctx, c.ID, at.Add(2*time.Hour))

	if rec := streaks.records[c.ID]; rec.CurrentStreak != 1 {
		t.Errorf("same-day repeat should not extend: %+v", rec)
	}
}
