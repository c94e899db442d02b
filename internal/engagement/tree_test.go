package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/anonto42/travelsocial/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestBuildTree_Shape(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rows := []models.Comment{
		{ID: 1, UserID: 10, Content: "C1", CreatedAt: base},
		{ID: 2, UserID: 11, Content: "C2", CreatedAt: base.Add(time.Minute)},
		{ID: 3, UserID: 11, ParentID: uintPtr(1), Content: "R1", CreatedAt: base.Add(2 * time.Minute)},
		{ID: 4, UserID: 10, ParentID: uintPtr(1), Content: "R2", CreatedAt: base.Add(3 * time.Minute)},
	}
	authors := map[uint]models.User{
		10: {ID: 10, Username: "ann", FullName: "Ann"},
		11: {ID: 11, Username: "ben"},
	}
	aggregates := map[string]models.ReactionAggregate{
		"1": models.NewReactionAggregate([]models.ReactionCount{{ReactionKind: models.ReactionLike, Count: 2}}),
	}

	tree := BuildTree(rows, authors, aggregates)

	require.Len(t, tree, 2)
	assert.Equal(t, "C2", tree[0].Content)
	assert.Empty(t, tree[0].Replies)
	assert.NotNil(t, tree[0].Replies)

	assert.Equal(t, "C1", tree[1].Content)
	assert.Equal(t, "Ann", tree[1].Author.FullName)
	assert.Equal(t, int64(2), tree[1].Reactions.Total)
	require.Len(t, tree[1].Replies, 2)
	assert.Equal(t, "R1", tree[1].Replies[0].Content)
	assert.Equal(t, "R2", tree[1].Replies[1].Content)
	assert.Equal(t, uint(1), tree[1].Replies[0].ParentID)
	assert.Equal(t, "ben", tree[1].Replies[0].Author.Username)
	assert.Equal(t, int64(0), tree[1].Replies[0].Reactions.Total)
}

func TestBuildTree_TieBreaksByID(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rows := []models.Comment{
		{ID: 1, CreatedAt: at},
		{ID: 2, CreatedAt: at},
		{ID: 4, ParentID: uintPtr(2), CreatedAt: at},
		{ID: 3, ParentID: uintPtr(2), CreatedAt: at},
	}

	tree := BuildTree(rows, nil, nil)

	require.Len(t, tree, 2)
	assert.Equal(t, uint(2), tree[0].ID)
	assert.Equal(t, uint(1), tree[1].ID)
	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, uint(3), tree[0].Replies[0].ID)
	assert.Equal(t, uint(4), tree[0].Replies[1].ID)
}

func TestBuildTree_DropsOrphansAndNestedReplies(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rows := []models.Comment{
		{ID: 1, CreatedAt: at},
		{ID: 2, ParentID: uintPtr(1), CreatedAt: at},
		{ID: 3, ParentID: uintPtr(2), CreatedAt: at},  // reply to a reply
		{ID: 4, ParentID: uintPtr(99), CreatedAt: at}, // parent missing
	}

	tree := BuildTree(rows, nil, nil)

	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, uint(2), tree[0].Replies[0].ID)
	assert.Equal(t, uint(0), tree[0].Author.ID, "unknown authors keep only the id")
}

func TestBuildTree_Empty(t *testing.T) {
	tree := BuildTree(nil, nil, nil)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func newTreeBuilder(t *testing.T) (*TreeBuilder, *repositories.PostgresCommentRepository, *repositories.PostgresReactionRepository, []models.User) {
	t.Helper()
	db := testutil.NewDB(t)
	users := testutil.SeedUsers(t, db,
		models.User{Username: "ann", FullName: "Ann"},
		models.User{Username: "ben", FullName: "Ben"},
	)
	comments := repositories.NewPostgresCommentRepository(db)
	reactions := repositories.NewPostgresReactionRepository(db)
	return NewTreeBuilder(comments, repositories.NewPostgresUserRepository(db), reactions), comments, reactions, users
}

func TestTreeBuilder_Build(t *testing.T) {
	ctx := context.Background()
	b, comments, reactions, users := newTreeBuilder(t)

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	c1 := models.Comment{SubjectID: "p1", SubjectType: models.PostKindPost, UserID: users[0].ID, Content: "C1", CreatedAt: base}
	require.NoError(t, comments.CreateComment(ctx, &c1))
	c2 := models.Comment{SubjectID: "p1", SubjectType: models.PostKindPost, UserID: users[1].ID, Content: "C2", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, comments.CreateComment(ctx, &c2))
	r1 := models.Comment{SubjectID: "p1", SubjectType: models.PostKindPost, ParentID: &c1.ID, UserID: users[1].ID, Content: "R1", CreatedAt: base.Add(2 * time.Minute)}
	require.NoError(t, comments.CreateComment(ctx, &r1))
	r2 := models.Comment{SubjectID: "p1", SubjectType: models.PostKindPost, ParentID: &c1.ID, UserID: users[0].ID, Content: "R2", CreatedAt: base.Add(3 * time.Minute)}
	require.NoError(t, comments.CreateComment(ctx, &r2))

	_, err := reactions.Upsert(ctx, CommentSubjectID(r1.ID), models.SubjectComment, users[0].ID, models.ReactionLove)
	require.NoError(t, err)

	tree, err := b.Build(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, c2.ID, tree[0].ID)
	assert.Empty(t, tree[0].Replies)
	assert.Equal(t, c1.ID, tree[1].ID)
	require.Len(t, tree[1].Replies, 2)
	assert.Equal(t, r1.ID, tree[1].Replies[0].ID)
	assert.Equal(t, "Ben", tree[1].Replies[0].Author.FullName)
	assert.Equal(t, int64(1), tree[1].Replies[0].Reactions.Total)
	assert.Equal(t, r2.ID, tree[1].Replies[1].ID)

	empty, err := b.Build(ctx, "nothing-here")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTreeBuilder_GetComment(t *testing.T) {
	ctx := context.Background()
	b, comments, _, users := newTreeBuilder(t)

	top := models.Comment{SubjectID: "p1", SubjectType: models.PostKindPost, UserID: users[0].ID, Content: "top"}
	require.NoError(t, comments.CreateComment(ctx, &top))
	reply := models.Comment{SubjectID: "p1", SubjectType: models.PostKindPost, ParentID: &top.ID, UserID: users[1].ID, Content: "reply"}
	require.NoError(t, comments.CreateComment(ctx, &reply))

	got, err := b.GetComment(ctx, top.ID)
	require.NoError(t, err)
	assert.Equal(t, "top", got.Content)
	require.Len(t, got.Replies, 1)

	got, err = b.GetComment(ctx, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, "reply", got.Content)
	assert.Equal(t, "Ben", got.Author.FullName)
	assert.Empty(t, got.Replies)

	_, err = b.GetComment(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
