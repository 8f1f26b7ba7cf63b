package usage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
)

type memoryRepo struct {
	mu      sync.Mutex
	records []domain.UsageRecord
	fail    bool
}

func (m *memoryRepo) Insert(ctx context.Context, rec *domain.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("insert failed")
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *memoryRepo) ListRecent(ctx context.Context, limit int) ([]domain.UsageRecord, error) {
	return nil, errors.New("not implemented")
}

func (m *memoryRepo) Summary(ctx context.Context) (*domain.UsageSummary, error) {
	return nil, errors.New("not implemented")
}

func (m *memoryRepo) snapshot() []domain.UsageRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.UsageRecord, len(m.records))
	copy(out, m.records)
	return out
}

func sampleTest() domain.ReagentTest {
	return domain.ReagentTest{
		Slug:     "marquis",
		Position: 1,
		Name:     domain.LocalizedText{En: "Marquis Test", Ar: "اختبار ماركيز"},
	}
}

func TestRecorderWritesRecord(t *testing.T) {
	repo := &memoryRepo{}
	rec := NewRecorder(repo, 8, infra.NewLogger("test"))

	rec.Record("user-1", sampleTest(), true)
	rec.Close()

	records := repo.snapshot()
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	got := records[0]
	if got.UserID != "user-1" || got.TestID != "marquis" || !got.IsFreeTestUsed {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.TestName != "Marquis Test" {
		t.Fatalf("TestName = %q", got.TestName)
	}
	if got.ID == "" || got.CreatedAt.IsZero() {
		t.Fatalf("record missing id or timestamp: %+v", got)
	}
}

func TestRecorderDrainsQueueOnClose(t *testing.T) {
	repo := &memoryRepo{}
	rec := NewRecorder(repo, 64, infra.NewLogger("test"))

	for i := 0; i < 20; i++ {
		rec.Record("user-1", sampleTest(), false)
	}
	rec.Close()

	if got := len(repo.snapshot()); got != 20 {
		t.Fatalf("records = %d, want 20", got)
	}
}

func TestRecorderSwallowsInsertFailures(t *testing.T) {
	repo := &memoryRepo{fail: true}
	rec := NewRecorder(repo, 8, infra.NewLogger("test"))

	// Must not panic or block; failures are logged and dropped.
	rec.Record("user-1", sampleTest(), false)
	rec.Close()

	if got := len(repo.snapshot()); got != 0 {
		t.Fatalf("records = %d, want 0", got)
	}
}

func TestRecorderCloseIsIdempotent(t *testing.T) {
	rec := NewRecorder(&memoryRepo{}, 8, infra.NewLogger("test"))
	rec.Close()
	rec.Close()
}
