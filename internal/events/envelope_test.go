package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNew_TakesKindFromPayload(t *testing.T) {
	env := New(2, 1, CommentRepliedPayload{PostID: "p1", CommentID: 3, ReplyID: 4})

	assert.Equal(t, CommentReplied, env.Kind)
	assert.Equal(t, uint(2), env.ActorID)
	assert.Equal(t, uint(1), env.SubjectOwnerID)
	assert.NotEqual(t, uuid.Nil, env.ID)
	assert.False(t, env.OccurredAt.IsZero())
	assert.False(t, env.Broadcast())
}

func TestEnvelope_WithRecipientsCopies(t *testing.T) {
	env := New(1, 1, NewPostPayload{PostID: "p1"})
	ids := []uint{2, 3}

	addressed := env.WithRecipients(ids)
	ids[0] = 99

	assert.True(t, addressed.Broadcast())
	assert.Nil(t, env.RecipientIDs)
	assert.Equal(t, []uint{2, 3}, addressed.RecipientIDs)
	assert.Equal(t, env.ID, addressed.ID)
}
