// Package notify defines the outbound notification boundary. Delivery is
// best-effort: failures are logged and never propagate back into the
// decision path.
package notify

import (
	"log/slog"

	"github.com/Shkiper2006/RustRP/internal/store"
)

// Category routes a notification to its delivery channel.
type Category string

const (
	CategoryCourt   Category = "court"
	CategoryPolice  Category = "police"
	CategoryRaid    Category = "raid"
	CategoryEconomy Category = "economy"
)

// Notifier delivers a message to a player. Implementations must not block
// the originating operation; a failed delivery is the implementation's
// problem to log.
type Notifier interface {
	Notify(player store.PlayerID, category Category, key string, args ...any)
}

// LogNotifier writes notifications to the structured log. It is the default
// sink when no chat/webhook transport is attached.
type LogNotifier struct{}

func (LogNotifier) Notify(player store.PlayerID, category Category, key string, args ...any) {
	fields := append([]any{"player", uint64(player), "category", string(category), "key", key}, args...)
	slog.Info("notify", fields...)
}

// Discard drops all notifications. Useful in tests that don't assert on
// notification traffic.
type Discard struct{}

func (Discard) Notify(store.PlayerID, Category, string, ...any) {}
