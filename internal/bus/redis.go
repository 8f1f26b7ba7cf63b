package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
)

// envelope is the wire format published on the Redis channel. Origin lets a
// subscriber drop messages it published itself: the originating instance
// relies exclusively on the in-process channel.
type envelope struct {
	Origin   string                `json:"origin"`
	Settings domain.AccessSettings `json:"settings"`
}

// Redis extends a Local bus with a cross-instance channel over Redis
// pub/sub. Publishing fans out in-process first, then fires the Redis
// message; the two deliveries carry no mutual ordering guarantee.
type Redis struct {
	local   *Local
	rdb     *goredis.Client
	channel string
	origin  string
	logger  infra.Logger
	cancel  context.CancelFunc
}

// NewRedis wraps local with a Redis transport on the given channel.
func NewRedis(local *Local, rdb *goredis.Client, channel string, logger infra.Logger) *Redis {
	return &Redis{
		local:   local,
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

// Start subscribes to the channel and forwards foreign updates into the
// local bus until ctx is canceled.
func (b *Redis) Start(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	// Receive confirms the subscription is established before we return.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("bus: redis subscribe: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-runCtx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok || msg == nil {
					_ = sub.Close()
					return
				}
				b.handleMessage(runCtx, []byte(msg.Payload))
			}
		}
	}()

	return nil
}

// handleMessage decodes one channel payload and fans foreign updates into the
// local bus. Messages this instance published itself are dropped: their local
// delivery already happened inside Publish.
func (b *Redis) handleMessage(ctx context.Context, payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.logger.Warn().Err(err).Msg("bus: bad redis payload")
		return
	}
	if env.Origin == b.origin {
		return
	}
	b.local.Publish(ctx, env.Settings)
}

func (b *Redis) Subscribe(fn Listener) func() {
	return b.local.Subscribe(fn)
}

// Publish delivers in-process, then pushes to Redis. Redis failures are
// logged only; a degraded cross-instance channel never blocks the caller.
func (b *Redis) Publish(ctx context.Context, settings domain.AccessSettings) {
	b.local.Publish(ctx, settings)

	raw, err := json.Marshal(envelope{Origin: b.origin, Settings: settings})
	if err != nil {
		b.logger.Error().Err(err).Msg("bus: encode settings envelope")
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := b.rdb.Publish(pubCtx, b.channel, raw).Err(); err != nil {
		b.logger.Warn().Err(err).Msg("bus: redis publish failed")
	}
}

func (b *Redis) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	return b.rdb.Close()
}
