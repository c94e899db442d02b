package engagement

import (
	"context"
	"testing"

	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/anonto42/travelsocial/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionService_React(t *testing.T) {
	ctx := context.Background()
	svc := NewReactionService(repositories.NewPostgresReactionRepository(testutil.NewDB(t)))

	res, err := svc.React(ctx, "p1", models.SubjectPost, 1, models.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionNone, res.Previous)
	assert.Equal(t, models.ReactionLike, res.Current)
	assert.Equal(t, int64(1), res.Reactions.Total)

	res, err = svc.React(ctx, "p1", models.SubjectPost, 1, models.ReactionNone)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionLike, res.Previous)
	assert.Equal(t, int64(0), res.Reactions.Total)
}

func TestReactionService_RejectsUnknownKinds(t *testing.T) {
	ctx := context.Background()
	svc := NewReactionService(repositories.NewPostgresReactionRepository(testutil.NewDB(t)))

	_, err := svc.React(ctx, "p1", models.SubjectPost, 1, models.ReactionKind(9))
	assert.ErrorIs(t, err, ErrInvalidReaction)

	none := models.ReactionNone
	_, err = svc.Reactors(ctx, "p1", models.SubjectPost, &none)
	assert.ErrorIs(t, err, ErrInvalidReaction)
}
