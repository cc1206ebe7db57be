package domain_test

import (
	"testing"
	"time"

	"github.com/lumiskin/lumiskin-api/internal/domain"
)

func TestDiscountValid(t *testing.T) {
	now := time.Now()
	used := now.Add(-time.Hour)

	tests := []struct {
		name string
		code domain.DiscountCode
		want bool
	}{
		{"fresh code", domain.DiscountCode{ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", domain.DiscountCode{ExpiresAt: now.Add(-time.Second)}, false},
		{"expires exactly now", domain.DiscountCode{ExpiresAt: now}, false},
		{"used", domain.DiscountCode{ExpiresAt: now.Add(time.Hour), UsedAt: &used}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Valid(now); got != tt.want {
				t.Errorf("Valid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHoursRemaining(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		exp  time.Time
		want int
	}{
		{"36 hours out", now.Add(36 * time.Hour), 36},
		{"partial hour rounds down", now.Add(90 * time.Minute), 1},
		{"under an hour", now.Add(30 * time.Minute), 0},
		{"already expired", now.Add(-5 * time.Hour), 0},
		{"long expired", now.Add(-1000 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := domain.DiscountCode{ExpiresAt: tt.exp}
			if got := d.HoursRemaining(now); got != tt.want {
				t.Errorf("HoursRemaining = %d, want %d", got, tt.want)
			}
		})
	}
}
