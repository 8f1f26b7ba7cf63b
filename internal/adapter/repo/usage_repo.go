package repo

import (
	"context"
	"fmt"

	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
	"colorspot-server/internal/sqlinline"
)

// UsageRepositoryPG appends and reads the append-only usage log.
type UsageRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewUsageRepository(sql infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{sql: sql}
}

func (r *UsageRepositoryPG) Insert(ctx context.Context, rec *domain.UsageRecord) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertUsageRecord,
		rec.ID,
		rec.UserID,
		rec.TestID,
		rec.TestName,
		rec.IsFreeTestUsed,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("usage: insert: %w", err)
	}
	return nil
}

func (r *UsageRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.UsageRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.sql.Query(ctx, sqlinline.QSelectRecentUsage, limit)
	if err != nil {
		return nil, fmt.Errorf("usage: list recent: %w", err)
	}
	defer rows.Close()

	var records []domain.UsageRecord
	for rows.Next() {
		var rec domain.UsageRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TestID, &rec.TestName, &rec.IsFreeTestUsed, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("usage: scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *UsageRepositoryPG) Summary(ctx context.Context) (*domain.UsageSummary, error) {
	summary := &domain.UsageSummary{ByTest: make(map[string]int64)}

	row := r.sql.QueryRow(ctx, sqlinline.QSelectUsageSummary)
	if err := row.Scan(&summary.TotalAccesses, &summary.FreeSlotAccesses, &summary.DistinctUsers); err != nil {
		return nil, fmt.Errorf("usage: summary: %w", err)
	}

	rows, err := r.sql.Query(ctx, sqlinline.QSelectUsageByTest)
	if err != nil {
		return nil, fmt.Errorf("usage: summary by test: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var testID string
		var count int64
		if err := rows.Scan(&testID, &count); err != nil {
			return nil, fmt.Errorf("usage: scan by-test row: %w", err)
		}
		summary.ByTest[testID] = count
	}
	return summary, rows.Err()
}

var _ domain.UsageRepository = (*UsageRepositoryPG)(nil)
