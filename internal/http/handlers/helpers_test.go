package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	"github.com/lumiskin/lumiskin-api/pkg/auth"
	"github.com/lumiskin/lumiskin-api/pkg/config"
)

// ---------- Shared fixtures ----------

func newSessions(t *testing.T) *auth.SessionManager {
	t.Helper()
	return auth.NewSessionManager(config.SessionConfig{
		JWTSecret:  "test-secret",
		CookieName: "lumiskin_session",
		TTL:        time.Hour,
	})
}

func sessionCookie(t *testing.T, sessions *auth.SessionManager, customerID int64, email string) *http.Cookie {
	t.Helper()
	token, err := sessions.Issue(customerID, email)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: sessions.CookieName(), Value: token}
}

func doRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// ---------- Service mocks ----------

type mockAuthService struct {
	registerResp *domain.Customer
	registerErr  error
	loginResp    *domain.Customer
	loginErr     error
	meResp       *domain.CustomerInfo
	meErr        error
}

func (m *mockAuthService) Register(_ context.Context, _ *domain.RegisterRequest) (*domain.Customer, error) {
	return m.registerResp, m.registerErr
}

func (m *mockAuthService) Login(_ context.Context, _ *domain.LoginRequest) (*domain.Customer, error) {
	return m.loginResp, m.loginErr
}

func (m *mockAuthService) Me(_ context.Context, _ int64) (*domain.CustomerInfo, error) {
	return m.meResp, m.meErr
}

type mockDiscountService struct {
	myCodesResp  *domain.MyDiscountsResponse
	myCodesErr   error
	validateResp *domain.ValidateDiscountResponse
	validateErr  error
	lastCode     string
}

func (m *mockDiscountService) MyCodes(_ context.Context, _ int64) (*domain.MyDiscountsResponse, error) {
	return m.myCodesResp, m.myCodesErr
}

func (m *mockDiscountService) Validate(_ context.Context, code string) (*domain.ValidateDiscountResponse, error) {
	m.lastCode = code
	return m.validateResp, m.validateErr
}

func (m *mockDiscountService) Grant(_ context.Context, _ int64, percent int, dtype domain.DiscountType, _ string, _ time.Duration) (*domain.DiscountCode, error) {
	return &domain.DiscountCode{Code: "TEST", Percent: percent, Type: dtype}, nil
}

type mockReferralService struct {
	getResp   *domain.ReferralResponse
	getErr    error
	applyResp *domain.ApplyReferralResponse
	applyErr  error
	lastCode  string
}

func (m *mockReferralService) GetOrCreate(_ context.Context, _ int64) (*domain.ReferralResponse, error) {
	return m.getResp, m.getErr
}

func (m *mockReferralService) Apply(_ context.Context, _ int64, code string) (*domain.ApplyReferralResponse, error) {
	m.lastCode = code
	return m.applyResp, m.applyErr
}

type mockGuestService struct {
	startResp *domain.GuestSession
	startErr  error
	lastIP    string
}

func (m *mockGuestService) Start(_ context.Context, clientIP string) (*domain.GuestSession, error) {
	m.lastIP = clientIP
	return m.startResp, m.startErr
}

func (m *mockGuestService) Resolve(_ context.Context, _ string) (*domain.GuestSession, error) {
	return nil, domain.ErrUnauthorized
}

type mockAnalysisService struct {
	createResp  *domain.SkinAnalysis
	createErr   error
	getResp     *domain.SkinAnalysis
	getErr      error
	historyResp *domain.AnalysisHistory
	historyErr  error
	lastPage    int
	lastLimit   int
}

func (m *mockAnalysisService) Create(_ context.Context, _ int64, _ *domain.CreateAnalysisRequest) (*domain.SkinAnalysis, error) {
	return m.createResp, m.createErr
}

func (m *mockAnalysisService) Get(_ context.Context, _, _ int64) (*domain.SkinAnalysis, error) {
	return m.getResp, m.getErr
}

func (m *mockAnalysisService) History(_ context.Context, _ int64, page, limit int) (*domain.AnalysisHistory, error) {
	m.lastPage = page
	m.lastLimit = limit
	return m.historyResp, m.historyErr
}

type mockStreakService struct {
	statusResp *domain.StreakStatusResponse
	statusErr  error
}

func (m *mockStreakService) Status(_ context.Context, _ int64) (*domain.StreakStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *mockStreakService) RecordActivity(_ context.Context, _ int64, _ time.Time) error {
	return nil
}

// mockLimiter denies once a key has been seen `limit` times.
type mockLimiter struct {
	counts map[string]int
}

func newMockLimiter() *mockLimiter {
	return &mockLimiter{counts: make(map[string]int)}
}

func (m *mockLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	m.counts[key]++
	return m.counts[key] <= limit, nil
}

func (m *mockLimiter) CleanupExpired(_ context.Context) (int64, error) { return 0, nil }
