package notify

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

// FollowerLookup returns the ids of everyone following a user.
type FollowerLookup func(ctx context.Context, userID uint) ([]uint, error)

// FanoutResolver expands broadcast events into their recipients.
type FanoutResolver struct {
	followers FollowerLookup
}

func NewFanoutResolver(followers FollowerLookup) *FanoutResolver {
	return &FanoutResolver{followers: followers}
}

// Resolve returns the actor's followers, deduplicated and never including
// the actor.
func (r *FanoutResolver) Resolve(ctx context.Context, actorID uint) ([]uint, error) {
	ids, err := r.followers(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolve followers of %d: %w", actorID, err)
	}
	return lo.Without(lo.Uniq(ids), actorID), nil
}
