// Command paykey stores the STC Pay merchant key in the credentials table so
// the API can run live payments without the key in its environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"colorspot-server/internal/infra"
	"colorspot-server/internal/infra/credentials"
)

func main() {
	var keyFlag string
	flag.StringVar(&keyFlag, "key", "", "STC Pay merchant key (falls back to STCPAY_MERCHANT_KEY)")
	flag.Parse()

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("STCPAY_MERCHANT_KEY"))
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "merchant key is required via -key or STCPAY_MERCHANT_KEY")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "paykey").Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	execCtx, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()
	if err := store.SetSTCPayMerchantKey(execCtx, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist merchant key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("STC Pay merchant key stored successfully")
}
