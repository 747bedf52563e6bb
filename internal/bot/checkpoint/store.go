// Package checkpoint persists conversation state between turns and
// serializes turns on the same thread.
package checkpoint

import (
	"context"

	"proppanda_backend/internal/bot/state"
)

// Store loads and saves per-thread conversation state. Load returns
// (nil, nil) for a thread with no checkpoint yet; the caller starts fresh.
type Store interface {
	Load(ctx context.Context, threadID string) (*state.ConversationState, error)
	Save(ctx context.Context, st *state.ConversationState) error
	Delete(ctx context.Context, threadID string) error
}
