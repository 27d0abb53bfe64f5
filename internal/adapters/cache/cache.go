// Package cache memoizes computed averages and handicaps per
// (season, player, kind, week). Entries are dropped whenever a player's
// scores, baselines or the season settings change.
package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/model"
)

// Key identifies one computed value.
type Key struct {
	Kind     model.BaselineKind
	SeasonID uuid.UUID
	PlayerID uuid.UUID
	Week     int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%d", k.SeasonID, k.PlayerID, k.Kind, k.Week)
}

// Cache is best effort for reads and writes: failures surface as misses.
// Invalidation reports its failure so the caller can stop trusting
// entries it could not drop.
type Cache interface {
	Get(ctx context.Context, k Key) (float64, bool)
	Set(ctx context.Context, k Key, v float64)
	InvalidatePlayer(ctx context.Context, seasonID, playerID uuid.UUID) error
	InvalidateSeason(ctx context.Context, seasonID uuid.UUID) error
}
