package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/lumiskin/lumiskin-api/internal/domain"
)

// ---------- Mocks ----------

type mockCustomersRepo struct {
	nextID    int64
	customers map[int64]*domain.Customer
	byEmail   map[string]int64
}

func newMockCustomersRepo() *mockCustomersRepo {
	return &mockCustomersRepo{
		nextID:    1,
		customers: make(map[int64]*domain.Customer),
		byEmail:   make(map[string]int64),
	}
}

func (m *mockCustomersRepo) Create(_ context.Context, email, hash, firstName, lastName, phone string) (*domain.Customer, error) {
	if _, exists := m.byEmail[email]; exists {
		return nil, errors.New("duplicate email")
	}
	id := m.nextID
	m.nextID++
	c := &domain.Customer{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.customers[id] = c
	m.byEmail[email] = id
	return c, nil
}

func (m *mockCustomersRepo) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	return m.customers[id], nil
}

func (m *mockCustomersRepo) FindByID(_ context.Context, id int64) (*domain.Customer, error) {
	return m.customers[id], nil
}

type mockAnalysesRepo struct {
	nextID   int64
	analyses map[int64]*domain.SkinAnalysis
}

func newMockAnalysesRepo() *mockAnalysesRepo {
	return &mockAnalysesRepo{nextID: 1, analyses: make(map[int64]*domain.SkinAnalysis)}
}

func (m *mockAnalysesRepo) Create(_ context.Context, customerID int64, skinType string, concerns []string) (*domain.SkinAnalysis, error) {
	id := m.nextID
	m.nextID++
	a := &domain.SkinAnalysis{
		ID:         id,
		CustomerID: customerID,
		Status:     domain.AnalysisPending,
		SkinType:   skinType,
		Concerns:   concerns,
		CreatedAt:  time.Now(),
	}
	m.analyses[id] = a
	return a, nil
}

func (m *mockAnalysesRepo) Complete(_ context.Context, id int64, score int) (*domain.SkinAnalysis, error) {
	a, ok := m.analyses[id]
	if !ok {
		return nil, errors.New("not found")
	}
	now := time.Now()
	a.Status = domain.AnalysisCompleted
	a.Score = score
	a.CompletedAt = &now
	return a, nil
}

func (m *mockAnalysesRepo) GetByID(_ context.Context, id int64) (*domain.SkinAnalysis, error) {
	return m.analyses[id], nil
}

func (m *mockAnalysesRepo) ListByCustomer(_ context.Context, customerID int64, limit, offset int) ([]domain.SkinAnalysis, error) {
	all := m.allByCustomer(customerID)
	if offset >= len(all) {
		return []domain.SkinAnalysis{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockAnalysesRepo) CountByCustomer(_ context.Context, customerID int64) (int64, error) {
	return int64(len(m.allByCustomer(customerID))), nil
}

func (m *mockAnalysesRepo) CountCompleted(_ context.Context, customerID int64) (int64, error) {
	var n int64
	for _, a := range m.allByCustomer(customerID) {
		if a.Status == domain.AnalysisCompleted {
			n++
		}
	}
	return n, nil
}

func (m *mockAnalysesRepo) CountCompletedSince(_ context.Context, customerID int64, since time.Time) (int64, error) {
	var n int64
	for _, a := range m.allByCustomer(customerID) {
		if a.Status == domain.AnalysisCompleted && a.CompletedAt != nil && a.CompletedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (m *mockAnalysesRepo) allByCustomer(customerID int64) []domain.SkinAnalysis {
	out := []domain.SkinAnalysis{}
	for id := int64(1); id < m.nextID; id++ {
		if a, ok := m.analyses[id]; ok && a.CustomerID == customerID {
			out = append(out, *a)
		}
	}
	return out
}

type mockDiscountsRepo struct {
	nextID    int64
	discounts map[int64]*domain.DiscountCode
	createErr error
}

func newMockDiscountsRepo() *mockDiscountsRepo {
	return &mockDiscountsRepo{nextID: 1, discounts: make(map[int64]*domain.DiscountCode)}
}

func (m *mockDiscountsRepo) Create(_ context.Context, customerID int64, code string, percent int, dtype domain.DiscountType, label string, expiresAt time.Time) (*domain.DiscountCode, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	id := m.nextID
	m.nextID++
	d := &domain.DiscountCode{
		ID:         id,
		CustomerID: customerID,
		Code:       code,
		Percent:    percent,
		Type:       dtype,
		Label:      label,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now(),
	}
	m.discounts[id] = d
	return d, nil
}

func (m *mockDiscountsRepo) ListByCustomer(_ context.Context, customerID int64) ([]domain.DiscountCode, error) {
	out := []domain.DiscountCode{}
	for id := int64(1); id < m.nextID; id++ {
		if d, ok := m.discounts[id]; ok && d.CustomerID == customerID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockDiscountsRepo) FindByCode(_ context.Context, code string) (*domain.DiscountCode, error) {
	for _, d := range m.discounts {
		if d.Code == code {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockDiscountsRepo) FindByID(_ context.Context, id int64) (*domain.DiscountCode, error) {
	return m.discounts[id], nil
}

func (m *mockDiscountsRepo) MarkUsed(_ context.Context, id int64) (bool, error) {
	d, ok := m.discounts[id]
	if !ok || d.UsedAt != nil {
		return false, nil
	}
	now := time.Now()
	d.UsedAt = &now
	return true, nil
}

type mockReferralsRepo struct {
	nextID      int64
	codes       map[int64]*domain.ReferralCode
	redemptions map[int64]*domain.ReferralRedemption
}

func newMockReferralsRepo() *mockReferralsRepo {
	return &mockReferralsRepo{
		nextID:      1,
		codes:       make(map[int64]*domain.ReferralCode),
		redemptions: make(map[int64]*domain.ReferralRedemption),
	}
}

func (m *mockReferralsRepo) FindByCustomer(_ context.Context, customerID int64) (*domain.ReferralCode, error) {
	for _, rc := range m.codes {
		if rc.CustomerID == customerID {
			return rc, nil
		}
	}
	return nil, nil
}

func (m *mockReferralsRepo) FindByCode(_ context.Context, code string) (*domain.ReferralCode, error) {
	for _, rc := range m.codes {
		if rc.Code == code && rc.Active {
			return rc, nil
		}
	}
	return nil, nil
}

func (m *mockReferralsRepo) Create(_ context.Context, customerID int64, code string) (*domain.ReferralCode, error) {
	if existing, _ := m.FindByCustomer(context.Background(), customerID); existing != nil {
		return existing, nil
	}
	id := m.nextID
	m.nextID++
	rc := &domain.ReferralCode{ID: id, CustomerID: customerID, Code: code, Active: true, CreatedAt: time.Now()}
	m.codes[id] = rc
	return rc, nil
}

func (m *mockReferralsRepo) CreateRedemption(_ context.Context, codeID, referredCustomerID, discountID int64) (*domain.ReferralRedemption, error) {
	for _, red := range m.redemptions {
		if red.ReferredCustomerID == referredCustomerID {
			return nil, errors.New("duplicate redemption")
		}
	}
	id := m.nextID
	m.nextID++
	red := &domain.ReferralRedemption{
		ID:                 id,
		ReferralCodeID:     codeID,
		ReferredCustomerID: referredCustomerID,
		DiscountID:         discountID,
		CreatedAt:          time.Now(),
	}
	m.redemptions[id] = red
	return red, nil
}

func (m *mockReferralsRepo) FindRedemptionByCustomer(_ context.Context, referredCustomerID int64) (*domain.ReferralRedemption, error) {
	for _, red := range m.redemptions {
		if red.ReferredCustomerID == referredCustomerID {
			return red, nil
		}
	}
	return nil, nil
}

func (m *mockReferralsRepo) Stats(_ context.Context, codeID int64) (*domain.ReferralStats, error) {
	stats := &domain.ReferralStats{}
	for _, red := range m.redemptions {
		if red.ReferralCodeID == codeID {
			stats.TotalRedemptions++
		}
	}
	return stats, nil
}

type mockGuestsRepo struct {
	nextID   int64
	sessions map[string]*domain.GuestSession
}

func newMockGuestsRepo() *mockGuestsRepo {
	return &mockGuestsRepo{nextID: 1, sessions: make(map[string]*domain.GuestSession)}
}

func (m *mockGuestsRepo) Create(_ context.Context, token, ip string, expiresAt time.Time) (*domain.GuestSession, error) {
	id := m.nextID
	m.nextID++
	sess := &domain.GuestSession{ID: id, Token: token, IP: ip, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	m.sessions[token] = sess
	return sess, nil
}

func (m *mockGuestsRepo) FindByToken(_ context.Context, token string) (*domain.GuestSession, error) {
	return m.sessions[token], nil
}

func (m *mockGuestsRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for token, sess := range m.sessions {
		if sess.Expired(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

type mockProductsRepo struct {
	products map[int64]*domain.Product
}

func newMockProductsRepo() *mockProductsRepo {
	return &mockProductsRepo{products: make(map[int64]*domain.Product)}
}

func (m *mockProductsRepo) List(_ context.Context, category string) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range m.products {
		if p.Active && (category == "" || p.Category == category) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductsRepo) FindBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProductsRepo) FindByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok && p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

type mockStreaksRepo struct {
	records map[int64]*domain.StreakRecord
}

func newMockStreaksRepo() *mockStreaksRepo {
	return &mockStreaksRepo{records: make(map[int64]*domain.StreakRecord)}
}

func (m *mockStreaksRepo) Get(_ context.Context, customerID int64) (*domain.StreakRecord, error) {
	return m.records[customerID], nil
}

func (m *mockStreaksRepo) Upsert(_ context.Context, rec *domain.StreakRecord) error {
	cp := *rec
	m.records[rec.CustomerID] = &cp
	return nil
}

// mockLimiter counts calls per key and denies once a key reaches its limit.
type mockLimiter struct {
	counts   map[string]int
	allowErr error
}

func newMockLimiter() *mockLimiter {
	return &mockLimiter{counts: make(map[string]int)}
}

func (m *mockLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if m.allowErr != nil {
		return false, m.allowErr
	}
	m.counts[key]++
	return m.counts[key] <= limit, nil
}

func (m *mockLimiter) CleanupExpired(_ context.Context) (int64, error) { return 0, nil }

type mockMailer struct {
	welcomeTo  string
	rewardTo   string
	rewardCode string
	sendErr    error
}

func (m *mockMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	return "mock-id", m.sendErr
}

func (m *mockMailer) SendWelcome(toEmail, toName, discountCode string, discountPercent int) error {
	m.welcomeTo = toEmail
	return m.sendErr
}

func (m *mockMailer) SendReferralReward(toEmail, toName, discountCode string, discountPercent int) error {
	m.rewardTo = toEmail
	m.rewardCode = discountCode
	return m.sendErr
}
