package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"colorspot-server/internal/bus"
	"colorspot-server/internal/catalog"
	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
	"colorspot-server/internal/middleware"
	"colorspot-server/internal/providers/stcpay"
	"colorspot-server/internal/settings"
	"colorspot-server/internal/usage"
)

// In-memory fakes shared by the handler tests.

type fakeSettingsRepo struct {
	mu       sync.Mutex
	stored   *domain.AccessSettings
	failSave bool
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (*domain.AccessSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		return nil, domain.ErrNotFound
	}
	clone := f.stored.Clone()
	return &clone, nil
}

func (f *fakeSettingsRepo) Save(ctx context.Context, s domain.AccessSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return context.DeadlineExceeded
	}
	clone := s.Clone()
	f.stored = &clone
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) UpsertByGoogleSub(ctx context.Context, user *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.GoogleSub == user.GoogleSub || existing.Email == user.Email {
			existing.GoogleSub = user.GoogleSub
			copied := *existing
			return &copied, nil
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeUserRepo) SetPlan(ctx context.Context, userID string, plan domain.UserPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Plan = plan
	return nil
}

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*domain.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*domain.Subscription)}
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, sub *domain.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *sub
	f.subs[sub.ID] = &copied
	return nil
}

func (f *fakeSubscriptionRepo) GetByPaymentRef(ctx context.Context, ref string) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.PaymentRef == ref {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSubscriptionRepo) Activate(ctx context.Context, id string, startsAt, expiresAt time.Time) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sub.Status = domain.SubscriptionStatusActive
	sub.StartsAt = &startsAt
	sub.ExpiresAt = &expiresAt
	copied := *sub
	return &copied, nil
}

func (f *fakeSubscriptionRepo) GetActiveByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.UserID == userID && sub.IsActive(time.Now()) {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSubscriptionRepo) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakeUsageRepo struct {
	mu      sync.Mutex
	records []domain.UsageRecord
}

func (f *fakeUsageRepo) Insert(ctx context.Context, rec *domain.UsageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeUsageRepo) ListRecent(ctx context.Context, limit int) ([]domain.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.UsageRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeUsageRepo) Summary(ctx context.Context) (*domain.UsageSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summary := &domain.UsageSummary{ByTest: make(map[string]int64)}
	users := make(map[string]struct{})
	for _, rec := range f.records {
		summary.TotalAccesses++
		if rec.IsFreeTestUsed {
			summary.FreeSlotAccesses++
		}
		if rec.UserID != "" {
			users[rec.UserID] = struct{}{}
		}
		summary.ByTest[rec.TestID]++
	}
	summary.DistinctUsers = int64(len(users))
	return summary, nil
}

func (f *fakeUsageRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type testEnv struct {
	app          *App
	settingsRepo *fakeSettingsRepo
	usageRepo    *fakeUsageRepo
	users        *fakeUserRepo
	subs         *fakeSubscriptionRepo
}

func newTestEnv(t *testing.T) *testEnv {
	nop := infra.Logger(zerolog.New(io.Discard))
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	settingsRepo := &fakeSettingsRepo{}
	usageRepo := &fakeUsageRepo{}
	users := newFakeUserRepo()
	subs := newFakeSubscriptionRepo()
	svc := settings.NewService(settingsRepo, nil, bus.NewLocal(), nop)
	recorder := usage.NewRecorder(usageRepo, 64, nop)
	app := &App{
		Cfg:           &infra.Config{JWTIssuer: "colorspot", JWTAudience: "colorspot-clients"},
		Logger:        nop,
		Settings:      svc,
		Catalog:       cat,
		Users:         users,
		Subscriptions: subs,
		Usage:         usageRepo,
		Recorder:      recorder,
		Payments:      stcpay.NewClient(stcpay.Options{Sandbox: true}),
		JWTSecret:     "test-secret",
	}
	return &testEnv{app: app, settingsRepo: settingsRepo, usageRepo: usageRepo, users: users, subs: subs}
}

// requestForTest builds a request routed at /tests/{position} with optional
// identity baked into the context, mirroring what the middleware chain does.
func requestForTest(position string, userID, plan string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/tests/"+position, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("position", position)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	if userID != "" {
		ctx = middleware.WithIdentity(ctx, userID, "user", plan)
	}
	return req.WithContext(ctx)
}

func contextWithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, middleware.LocaleKey, locale)
}
