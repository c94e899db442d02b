package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/metrics"
	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/samber/lo"
)

// ErrPayloadMismatch means an envelope's payload does not belong to its kind.
var ErrPayloadMismatch = errors.New("payload does not match event kind")

// DisplayNameLookup resolves the name shown for an actor.
type DisplayNameLookup func(ctx context.Context, userID uint) (string, error)

// Command asks for one notification row.
type Command struct {
	RecipientID uint
	Kind        models.NotificationKind
	Data        models.NotificationData
}

type rule struct {
	post     models.NotificationKind
	miniBlog models.NotificationKind
	// {actor}, {subject} and {group} are substituted.
	template string
	data     func(env events.Envelope, actorName, message string) (models.NotificationData, error)
}

var rules = map[events.Kind]rule{
	events.PostLiked: {
		post:     models.KindPostLike,
		miniBlog: models.KindMiniBlogLike,
		template: "{actor} liked your {subject}",
		data: func(env events.Envelope, name, msg string) (models.NotificationData, error) {
			p, ok := env.Payload.(events.PostLikedPayload)
			if !ok {
				return nil, ErrPayloadMismatch
			}
			return models.PostLikeData{PostID: p.PostID, LikerID: env.ActorID, LikerName: name, ReactionID: p.Reaction, Message: msg}, nil
		},
	},
	events.PostCommented: {
		post:     models.KindPostComment,
		miniBlog: models.KindMiniBlogComment,
		template: "{actor} commented on your {subject}",
		data: func(env events.Envelope, name, msg string) (models.NotificationData, error) {
			p, ok := env.Payload.(events.PostCommentedPayload)
			if !ok {
				return nil, ErrPayloadMismatch
			}
			return models.PostCommentData{PostID: p.PostID, CommentID: p.CommentID, CommenterID: env.ActorID, CommenterName: name, Message: msg}, nil
		},
	},
	events.PostShared: {
		post:     models.KindPostShare,
		miniBlog: models.KindMiniBlogShare,
		template: "{actor} shared your {subject}",
		data: func(env events.Envelope, name, msg string) (models.NotificationData, error) {
			p, ok := env.Payload.(events.PostSharedPayload)
			if !ok {
				return nil, ErrPayloadMismatch
			}
			return models.PostShareData{PostID: p.PostID, SharerID: env.ActorID, SharerName: name, Platform: p.Platform, Message: msg}, nil
		},
	},
	events.CommentLiked: {
		post:     models.KindPostCommentLike,
		miniBlog: models.KindMiniBlogCommentLike,
		template: "{actor} liked your comment",
		data: func(env events.Envelope, name, msg string) (models.NotificationData, error) {
			p, ok := env.Payload.(events.CommentLikedPayload)
			if !ok {
				return nil, ErrPayloadMismatch
			}
			return models.CommentLikeData{PostID: p.PostID, CommentID: p.CommentID, LikerID: env.ActorID, LikerName: name, ReactionID: p.Reaction, Message: msg}, nil
		},
	},
	events.CommentReplied: {
		post:     models.KindCommentReply,
		miniBlog: models.KindMiniBlogCommentReply,
		template: "{actor} replied to your comment",
		data: func(env events.Envelope, name, msg string) (models.NotificationData, error) {
			p, ok := env.Payload.(events.CommentRepliedPayload)
			if !ok {
				return nil, ErrPayloadMismatch
			}
			return models.CommentReplyData{PostID: p.PostID, CommentID: p.CommentID, ReplyID: p.ReplyID, ReplierID: env.ActorID, ReplierName: name, Message: msg}, nil
		},
	},
	events.NewFollower: {
		post:     models.KindNewFollower,
		miniBlog: models.KindNewFollower,
		template: "{actor} started following you",
		data: func(env events.Envelope, name, msg string) (models.NotificationData, error) {
			if _, ok := env.Payload.(events.NewFollowerPayload); !ok {
				return nil, ErrPayloadMismatch
			}
			return models.NewFollowerData{FollowerID: env.ActorID, FollowerName: name, Message: msg}, nil
		},
	},
	events.NewPostFromFollowing: {
		post:     models.KindNewPostFromFollowing,
		miniBlog: models.KindNewMiniBlogFromFollowing,
		template: "{actor} published a new {subject}",
		data: func(env events.Envelope, name, msg string) (models.NotificationData, error) {
			p, ok := env.Payload.(events.NewPostPayload)
			if !ok {
				return nil, ErrPayloadMismatch
			}
			return models.NewPostData{PostID: p.PostID, PostCreatorID: env.ActorID, PostCreatorName: name, Message: msg}, nil
		},
	},
	events.GroupInvitation: {
		post:     models.KindGroupInvitation,
		miniBlog: models.KindGroupInvitation,
		template: `{actor} invited you to join the group "{group}"`,
		data: func(env events.Envelope, name, msg string) (models.NotificationData, error) {
			p, ok := env.Payload.(events.GroupInvitationPayload)
			if !ok {
				return nil, ErrPayloadMismatch
			}
			return models.GroupInvitationData{GroupID: p.GroupID, GroupName: p.GroupName, InviterID: env.ActorID, InviterName: name, Message: msg}, nil
		},
	},
}

// Translator turns events into notification commands.
type Translator struct {
	names DisplayNameLookup
}

func NewTranslator(names DisplayNameLookup) *Translator {
	return &Translator{names: names}
}

// Translate returns one command per recipient that survives suppression.
// Broadcast envelopes must already carry their resolved recipients.
func (t *Translator) Translate(ctx context.Context, env events.Envelope) ([]Command, error) {
	r, ok := rules[env.Kind]
	if !ok {
		return nil, fmt.Errorf("no notification rule for %q", env.Kind)
	}

	recipients := []uint{env.SubjectOwnerID}
	if env.Broadcast() {
		recipients = env.RecipientIDs
	}

	kind := r.kindFor(postKindOf(env.Payload))
	recipients = lo.Filter(recipients, func(id uint, _ int) bool {
		suppressed, reason := Suppressed(env, id)
		if suppressed {
			metrics.NotificationsSuppressed.WithLabelValues(string(kind), reason).Inc()
		}
		return !suppressed
	})
	if len(recipients) == 0 {
		return nil, nil
	}

	name, err := t.actorName(ctx, env.ActorID)
	if err != nil {
		return nil, err
	}

	data, err := r.data(env, name, r.message(name, env.Payload))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env.Kind, err)
	}

	return lo.Map(recipients, func(id uint, _ int) Command {
		return Command{RecipientID: id, Kind: kind, Data: data}
	}), nil
}

func (t *Translator) actorName(ctx context.Context, actorID uint) (string, error) {
	name, err := t.names(ctx, actorID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.DefaultDisplayName, nil
	}
	if err != nil {
		return "", fmt.Errorf("display name of %d: %w", actorID, err)
	}
	return name, nil
}

func (r rule) kindFor(pk models.PostKind) models.NotificationKind {
	if pk == models.PostKindMiniBlog {
		return r.miniBlog
	}
	return r.post
}

func (r rule) message(actorName string, p events.Payload) string {
	subject := "post"
	if postKindOf(p) == models.PostKindMiniBlog {
		subject = "mini blog"
	}
	group := ""
	if g, ok := p.(events.GroupInvitationPayload); ok {
		group = g.GroupName
	}
	return strings.NewReplacer("{actor}", actorName, "{subject}", subject, "{group}", group).Replace(r.template)
}

func postKindOf(p events.Payload) models.PostKind {
	switch p := p.(type) {
	case events.PostLikedPayload:
		return p.PostKind
	case events.CommentLikedPayload:
		return p.PostKind
	case events.PostCommentedPayload:
		return p.PostKind
	case events.CommentRepliedPayload:
		return p.PostKind
	case events.PostSharedPayload:
		return p.PostKind
	case events.NewPostPayload:
		return p.PostKind
	}
	return models.PostKindPost
}
