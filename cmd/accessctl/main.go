// Command accessctl inspects and edits the access settings document from the
// command line, bypassing the HTTP admin surface.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"colorspot-server/internal/adapter/repo"
	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
)

func main() {
	var (
		showFlag     bool
		freeEnabled  string
		freeCount    int
		premiumReq   string
		globalFree   string
		specificFlag string
	)

	flag.BoolVar(&showFlag, "show", false, "print the current settings and exit")
	flag.StringVar(&freeEnabled, "free-enabled", "", "enable the free tier (true/false)")
	flag.IntVar(&freeCount, "free-count", -1, "number of free tests from the top of the catalog")
	flag.StringVar(&premiumReq, "premium-required", "", "gate tests beyond the free range (true/false)")
	flag.StringVar(&globalFree, "global-free", "", "open every test to everyone (true/false)")
	flag.StringVar(&specificFlag, "specific-premium", "", "comma-separated 1-based positions that always need premium; \"none\" clears the list")
	flag.Parse()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "accessctl").Logger()
	settingsRepo := repo.NewSettingsRepository(infra.NewSQLRunner(pool, logger))

	current, err := settingsRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			exitWithError(fmt.Errorf("failed to load settings: %w", err))
		}
		defaults := domain.DefaultAccessSettings()
		current = &defaults
	}

	if showFlag {
		printSettings(*current)
		return
	}

	changed := false
	if v, ok := parseBoolFlag(freeEnabled); ok {
		current.FreeTestsEnabled = v
		changed = true
	}
	if freeCount >= 0 {
		current.FreeTestsCount = freeCount
		changed = true
	}
	if v, ok := parseBoolFlag(premiumReq); ok {
		current.PremiumRequired = v
		changed = true
	}
	if v, ok := parseBoolFlag(globalFree); ok {
		current.GlobalFreeAccess = v
		changed = true
	}
	if specificFlag != "" {
		list, err := parsePositions(specificFlag)
		if err != nil {
			exitWithError(err)
		}
		current.SpecificPremiumTests = list
		changed = true
	}

	if !changed {
		printSettings(*current)
		fmt.Fprintln(os.Stderr, "no flags given; nothing updated (use -show to suppress this note)")
		return
	}

	current.Normalize()
	if err := settingsRepo.Save(ctx, *current); err != nil {
		exitWithError(fmt.Errorf("failed to save settings: %w", err))
	}
	fmt.Println("settings updated; running API instances pick up the change on their next load or bus message")
	printSettings(*current)
}

func printSettings(s domain.AccessSettings) {
	encoded, _ := json.MarshalIndent(s, "", "  ")
	fmt.Println(string(encoded))
}

func parseBoolFlag(raw string) (bool, bool) {
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		exitWithError(fmt.Errorf("invalid boolean %q", raw))
	}
	return v, true
}

func parsePositions(raw string) ([]int, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "none") {
		return []int{}, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid position %q", trimmed)
		}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
