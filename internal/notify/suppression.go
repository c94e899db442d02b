package notify

import "github.com/anonto42/travelsocial/backend/internal/events"

// Suppression reasons, also used as metric labels.
const (
	ReasonSelf              = "self"
	ReasonInactiveReaction  = "inactive_reaction"
	ReasonDuplicateReaction = "duplicate_reaction"
)

// Suppressed decides whether recipientID should not hear about env. A user
// is never notified of their own action. Like events only notify for an
// active reaction that differs from the one already stored, so unliking and
// redelivered likes stay silent.
func Suppressed(env events.Envelope, recipientID uint) (bool, string) {
	if recipientID == env.ActorID {
		return true, ReasonSelf
	}

	switch p := env.Payload.(type) {
	case events.PostLikedPayload:
		return reactionSuppressed(p.Reaction.Active(), p.Reaction == p.Previous)
	case events.CommentLikedPayload:
		return reactionSuppressed(p.Reaction.Active(), p.Reaction == p.Previous)
	}
	return false, ""
}

func reactionSuppressed(active, unchanged bool) (bool, string) {
	switch {
	case !active:
		return true, ReasonInactiveReaction
	case unchanged:
		return true, ReasonDuplicateReaction
	}
	return false, ""
}
