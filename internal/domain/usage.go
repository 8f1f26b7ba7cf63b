package domain

import "time"

// UsageRecord is an append-only log entry capturing that a user accessed a
// test and whether the access consumed a free-tier slot.
type UsageRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	TestID         string    `json:"test_id"`
	TestName       string    `json:"test_name"`
	IsFreeTestUsed bool      `json:"is_free_test_used"`
	CreatedAt      time.Time `json:"created_at"`
}

// UsageSummary aggregates usage records for the admin dashboard.
type UsageSummary struct {
	TotalAccesses    int64            `json:"total_accesses"`
	FreeSlotAccesses int64            `json:"free_slot_accesses"`
	DistinctUsers    int64            `json:"distinct_users"`
	ByTest           map[string]int64 `json:"by_test"`
}
