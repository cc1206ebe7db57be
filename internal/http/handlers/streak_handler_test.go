package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/internal/http/handlers"
)

func TestStreakStatusRequiresSession(t *testing.T) {
	h := handlers.NewStreakHandler(&mockStreakService{}, newSessions(t))

	if rec := doRequest(h.Routes(), httptest.NewRequest("GET", "/status", nil)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestStreakStatus(t *testing.T) {
	sessions := newSessions(t)
	svc := &mockStreakService{
		statusResp: &domain.StreakStatusResponse{
			CurrentStreak: 4,
			LongestStreak: 9,
			WeeklyProgress: domain.WeeklyProgress{
				AnalysesThisWeek: 2,
				Target:           3,
			},
		},
	}
	h := handlers.NewStreakHandler(svc, sessions)

	req := httptest.NewRequest("GET", "/status", nil)
	req.AddCookie(sessionCookie(t, sessions, 7, "ada@example.com"))
	rec := doRequest(h.Routes(), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body domain.StreakStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.CurrentStreak != 4 || body.WeeklyProgress.Target != 3 {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
