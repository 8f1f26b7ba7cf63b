// Package catalog serves the static reagent-test catalog. The data ships
// embedded in the binary; positions are the 1-based ordering the access
// rules key off, so they must be contiguous and unique.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"colorspot-server/internal/domain"
)

//go:embed tests.json
var rawCatalog []byte

// Catalog is an immutable, position-ordered view over the reagent tests.
type Catalog struct {
	tests      []domain.ReagentTest
	bySlug     map[string]int
	byPosition map[int]int
}

// Load parses the embedded catalog and validates its ordering.
func Load() (*Catalog, error) {
	var tests []domain.ReagentTest
	if err := json.Unmarshal(rawCatalog, &tests); err != nil {
		return nil, fmt.Errorf("catalog: decode embedded data: %w", err)
	}
	if len(tests) == 0 {
		return nil, fmt.Errorf("catalog: embedded data is empty")
	}

	sort.Slice(tests, func(i, j int) bool { return tests[i].Position < tests[j].Position })

	c := &Catalog{
		tests:      tests,
		bySlug:     make(map[string]int, len(tests)),
		byPosition: make(map[int]int, len(tests)),
	}
	for i, t := range tests {
		if t.Position != i+1 {
			return nil, fmt.Errorf("catalog: positions must be contiguous from 1, got %d at %q", t.Position, t.Slug)
		}
		if t.Slug == "" {
			return nil, fmt.Errorf("catalog: test at position %d has no slug", t.Position)
		}
		if _, dup := c.bySlug[t.Slug]; dup {
			return nil, fmt.Errorf("catalog: duplicate slug %q", t.Slug)
		}
		c.bySlug[t.Slug] = i
		c.byPosition[t.Position] = i
	}
	return c, nil
}

// Len returns the number of tests.
func (c *Catalog) Len() int {
	return len(c.tests)
}

// All returns the tests in position order. The slice is a copy; entries share
// the underlying reaction slices and must be treated as read-only.
func (c *Catalog) All() []domain.ReagentTest {
	out := make([]domain.ReagentTest, len(c.tests))
	copy(out, c.tests)
	return out
}

// ByPosition returns the test at the 1-based position.
func (c *Catalog) ByPosition(position int) (domain.ReagentTest, bool) {
	i, ok := c.byPosition[position]
	if !ok {
		return domain.ReagentTest{}, false
	}
	return c.tests[i], true
}

// BySlug returns the test with the given slug.
func (c *Catalog) BySlug(slug string) (domain.ReagentTest, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return domain.ReagentTest{}, false
	}
	return c.tests[i], true
}
