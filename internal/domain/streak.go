package domain

import "time"

// StreakRecord tracks consecutive qualifying engagement days per customer.
type StreakRecord struct {
	CustomerID    int64      `json:"-"`
	CurrentStreak int        `json:"currentStreak"`
	LongestStreak int        `json:"longestStreak"`
	LastActivity  *time.Time `json:"lastActivity,omitempty"`
	UpdatedAt     time.Time  `json:"-"`
}

type WeeklyProgress struct {
	AnalysesThisWeek int64 `json:"analysesThisWeek"`
	Target           int   `json:"target"`
}

type StreakStatusResponse struct {
	CurrentStreak  int            `json:"currentStreak"`
	LongestStreak  int            `json:"longestStreak"`
	LastActivity   *time.Time     `json:"lastActivity,omitempty"`
	WeeklyProgress WeeklyProgress `json:"weeklyProgress"`
}
