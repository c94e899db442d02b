package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/anonto42/travelsocial/backend/internal/testutil"
	"github.com/anonto42/travelsocial/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type pipeline struct {
	db            *gorm.DB
	bus           *events.Dispatcher
	subscriber    *Subscriber
	reactions     *repositories.PostgresReactionRepository
	follows       *repositories.PostgresFollowRepository
	notifications repositories.NotificationRepository
}

func newPipeline(t *testing.T, opts ...SubscriberOption) *pipeline {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Discard()

	users := repositories.NewPostgresUserRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	notifications := repositories.NewPostgresNotificationRepository(db)

	sub := NewSubscriber(
		NewTranslator(users.GetDisplayName),
		NewFanoutResolver(follows.GetFollowerIDs),
		NewCommandHandler(notifications, 2, log),
		log,
		opts...,
	)
	bus := events.NewDispatcher(log)
	sub.Register(bus)

	return &pipeline{
		db:            db,
		bus:           bus,
		subscriber:    sub,
		reactions:     repositories.NewPostgresReactionRepository(db),
		follows:       follows,
		notifications: notifications,
	}
}

// react performs the primary write and then publishes, like the HTTP handler.
func (p *pipeline) react(t *testing.T, postID string, owner, user uint, kind models.ReactionKind) {
	t.Helper()
	ctx := context.Background()
	prev, err := p.reactions.Upsert(ctx, postID, models.SubjectPost, user, kind)
	require.NoError(t, err)
	p.bus.Publish(ctx, events.New(user, owner, events.PostLikedPayload{
		PostID:   postID,
		PostKind: models.PostKindPost,
		Reaction: kind,
		Previous: prev,
	}))
}

func (p *pipeline) list(t *testing.T, recipient uint) []models.Notification {
	t.Helper()
	page, err := p.notifications.List(context.Background(), recipient, models.NotificationFilter{PerPage: 100})
	require.NoError(t, err)
	return page.Data
}

func TestPipeline_LikeByAnotherUser(t *testing.T) {
	p := newPipeline(t)
	users := testutil.SeedUsers(t, p.db,
		models.User{Username: "a", FullName: "A"},
		models.User{Username: "b", FullName: "B"},
	)
	a, b := users[0].ID, users[1].ID

	p.react(t, "p1", a, b, models.ReactionLike)

	got := p.list(t, a)
	require.Len(t, got, 1)
	assert.Equal(t, models.KindPostLike, got[0].Kind)
	assert.False(t, got[0].IsRead)

	data, err := got[0].DecodeData()
	require.NoError(t, err)
	like := data.(*models.PostLikeData)
	assert.Equal(t, "B", like.LikerName)
	assert.Equal(t, b, like.LikerID)
	assert.Equal(t, "p1", like.PostID)
	assert.Equal(t, "B liked your post", like.Message)

	assert.Empty(t, p.list(t, b))
}

func TestPipeline_SelfLikeIsSilent(t *testing.T) {
	p := newPipeline(t)
	users := testutil.SeedUsers(t, p.db, models.User{Username: "a", FullName: "A"})
	a := users[0].ID

	p.react(t, "p1", a, a, models.ReactionLike)

	assert.Empty(t, p.list(t, a))
	agg, err := p.reactions.Aggregate(context.Background(), "p1", models.SubjectPost)
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.Total, "the reaction itself is stored")
}

func TestPipeline_RepeatedAndNeutralReactions(t *testing.T) {
	p := newPipeline(t)
	users := testutil.SeedUsers(t, p.db,
		models.User{Username: "a", FullName: "A"},
		models.User{Username: "b", FullName: "B"},
	)
	a, b := users[0].ID, users[1].ID

	p.react(t, "p1", a, b, models.ReactionLike)
	p.react(t, "p1", a, b, models.ReactionLike)
	p.react(t, "p1", a, b, models.ReactionNone)

	assert.Len(t, p.list(t, a), 1)
}

func TestPipeline_FanoutReachesEveryFollower(t *testing.T) {
	const followers = 5
	p := newPipeline(t)
	ctx := context.Background()

	seed := []models.User{{Username: "author", FullName: "Author"}}
	for i := 0; i < followers; i++ {
		seed = append(seed, models.User{Username: fmt.Sprintf("f%d", i)})
	}
	users := testutil.SeedUsers(t, p.db, seed...)
	author := users[0].ID
	for _, u := range users[1:] {
		_, err := p.follows.CreateFollow(ctx, u.ID, author)
		require.NoError(t, err)
	}

	p.bus.Publish(ctx, events.New(author, author, events.NewPostPayload{PostID: "p1", PostKind: models.PostKindPost}))

	var count int64
	require.NoError(t, p.db.Model(&models.Notification{}).Where("kind = ?", models.KindNewPostFromFollowing).Count(&count).Error)
	assert.Equal(t, int64(followers), count)
	assert.Empty(t, p.list(t, author))
}

func TestPipeline_AsyncFanoutCompletesOnClose(t *testing.T) {
	p := newPipeline(t, WithAsyncFanout(true))
	ctx, cancel := context.WithCancel(context.Background())

	users := testutil.SeedUsers(t, p.db,
		models.User{Username: "author", FullName: "Author"},
		models.User{Username: "fan"},
	)
	_, err := p.follows.CreateFollow(ctx, users[1].ID, users[0].ID)
	require.NoError(t, err)

	p.bus.Publish(ctx, events.New(users[0].ID, users[0].ID, events.NewPostPayload{PostID: "p1"}))
	// the request is over before the fan-out runs
	cancel()
	p.subscriber.Close()

	got := p.list(t, users[1].ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.KindNewPostFromFollowing, got[0].Kind)
}
