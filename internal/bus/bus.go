// Package bus propagates access-settings updates to every interested
// observer: handlers inside this process and, when Redis is configured,
// other running API instances.
package bus

import (
	"context"

	"colorspot-server/internal/domain"
)

// Listener receives the new settings value after a successful save or load.
type Listener func(domain.AccessSettings)

// Bus is the single broadcast abstraction the settings service publishes to
// on every successful write. In-process delivery is synchronous and ordered;
// cross-instance delivery is best-effort with no ordering guarantee relative
// to the in-process channel.
type Bus interface {
	// Subscribe registers a listener and returns its unsubscribe function.
	Subscribe(fn Listener) func()
	// Publish fans the settings out to all listeners.
	Publish(ctx context.Context, settings domain.AccessSettings)
	Close() error
}
