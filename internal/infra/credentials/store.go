package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"colorspot-server/internal/infra"
	"colorspot-server/internal/sqlinline"
)

const (
	// ProviderSTCPay keys the payment gateway merchant secret.
	ProviderSTCPay = "stcpay"
)

// Store keeps third-party integration secrets in the database so they can be
// rotated without redeploying.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// STCPayMerchantKey returns the stored STC Pay merchant secret. An empty
// string means no key has been configured yet.
func (s *Store) STCPayMerchantKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderSTCPay)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetSTCPayMerchantKey stores or replaces the merchant secret.
func (s *Store) SetSTCPayMerchantKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("stcpay merchant key is required")
	}
	return s.upsert(ctx, ProviderSTCPay, key, nil)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
