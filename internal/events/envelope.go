// Package events carries engagement facts from the write paths to their
// side effects. Events never leave the process.
package events

import (
	"slices"
	"time"

	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/google/uuid"
)

// Kind names a domain event.
type Kind string

const (
	PostLiked            Kind = "post_liked"
	PostCommented        Kind = "post_commented"
	PostShared           Kind = "post_shared"
	CommentLiked         Kind = "comment_liked"
	CommentReplied       Kind = "comment_replied"
	NewFollower          Kind = "new_follower"
	NewPostFromFollowing Kind = "new_post_from_following"
	GroupInvitation      Kind = "group_invitation"
)

// Payload is the closed set of kind-specific event bodies.
type Payload interface {
	Kind() Kind
}

type PostLikedPayload struct {
	PostID   string
	PostKind models.PostKind
	Reaction models.ReactionKind
	Previous models.ReactionKind
}

type CommentLikedPayload struct {
	PostID    string
	PostKind  models.PostKind
	CommentID uint
	Reaction  models.ReactionKind
	Previous  models.ReactionKind
}

type PostCommentedPayload struct {
	PostID    string
	PostKind  models.PostKind
	CommentID uint
}

type CommentRepliedPayload struct {
	PostID    string
	PostKind  models.PostKind
	CommentID uint
	ReplyID   uint
}

type PostSharedPayload struct {
	PostID   string
	PostKind models.PostKind
	Platform string
}

type NewFollowerPayload struct{}

type NewPostPayload struct {
	PostID   string
	PostKind models.PostKind
}

type GroupInvitationPayload struct {
	GroupID   uint
	GroupName string
}

func (PostLikedPayload) Kind() Kind       { return PostLiked }
func (CommentLikedPayload) Kind() Kind    { return CommentLiked }
func (PostCommentedPayload) Kind() Kind   { return PostCommented }
func (CommentRepliedPayload) Kind() Kind  { return CommentReplied }
func (PostSharedPayload) Kind() Kind      { return PostShared }
func (NewFollowerPayload) Kind() Kind     { return NewFollower }
func (NewPostPayload) Kind() Kind         { return NewPostFromFollowing }
func (GroupInvitationPayload) Kind() Kind { return GroupInvitation }

// Envelope is an immutable event value. Direct events address SubjectOwnerID;
// broadcast events address RecipientIDs once the fan-out is resolved.
type Envelope struct {
	ID             uuid.UUID
	Kind           Kind
	ActorID        uint
	SubjectOwnerID uint
	RecipientIDs   []uint
	Payload        Payload
	OccurredAt     time.Time
}

// New builds an envelope whose kind is taken from the payload.
func New(actorID, subjectOwnerID uint, payload Payload) Envelope {
	return Envelope{
		ID:             uuid.New(),
		Kind:           payload.Kind(),
		ActorID:        actorID,
		SubjectOwnerID: subjectOwnerID,
		Payload:        payload,
		OccurredAt:     time.Now().UTC(),
	}
}

// Broadcast reports whether the recipients come from a fan-out rather than
// the subject owner.
func (e Envelope) Broadcast() bool {
	return e.Kind == NewPostFromFollowing
}

// WithRecipients returns a copy addressed to ids.
func (e Envelope) WithRecipients(ids []uint) Envelope {
	e.RecipientIDs = slices.Clone(ids)
	return e
}
