package engagement

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/anonto42/travelsocial/backend/internal/models"
)

var ErrInvalidReaction = errors.New("invalid reaction")

type ReactionStore interface {
	Upsert(ctx context.Context, subjectID string, subjectType models.SubjectType, userID uint, kind models.ReactionKind) (models.ReactionKind, error)
	Aggregate(ctx context.Context, subjectID string, subjectType models.SubjectType) (models.ReactionAggregate, error)
	ListReactors(ctx context.Context, subjectID string, subjectType models.SubjectType, kind *models.ReactionKind) ([]models.Reactor, error)
}

// ReactResult reports a stored reaction together with the fresh aggregate.
type ReactResult struct {
	Previous  models.ReactionKind      `json:"previous_reaction_id"`
	Current   models.ReactionKind      `json:"reaction_id"`
	Reactions models.ReactionAggregate `json:"reactions"`
}

// ReactionService records reactions on posts and comments.
type ReactionService struct {
	store ReactionStore
}

func NewReactionService(store ReactionStore) *ReactionService {
	return &ReactionService{store: store}
}

// React stores kind for the user. ReactionNone withdraws a reaction.
func (s *ReactionService) React(ctx context.Context, subjectID string, subjectType models.SubjectType, userID uint, kind models.ReactionKind) (*ReactResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidReaction, kind)
	}
	prev, err := s.store.Upsert(ctx, subjectID, subjectType, userID, kind)
	if err != nil {
		return nil, err
	}
	agg, err := s.store.Aggregate(ctx, subjectID, subjectType)
	if err != nil {
		return nil, err
	}
	return &ReactResult{Previous: prev, Current: kind, Reactions: agg}, nil
}

func (s *ReactionService) Aggregate(ctx context.Context, subjectID string, subjectType models.SubjectType) (models.ReactionAggregate, error) {
	return s.store.Aggregate(ctx, subjectID, subjectType)
}

func (s *ReactionService) Reactors(ctx context.Context, subjectID string, subjectType models.SubjectType, kind *models.ReactionKind) ([]models.Reactor, error) {
	if kind != nil && !kind.Active() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidReaction, *kind)
	}
	return s.store.ListReactors(ctx, subjectID, subjectType, kind)
}

// CommentSubjectID is the reaction subject id of a comment.
func CommentSubjectID(commentID uint) string {
	return strconv.FormatUint(uint64(commentID), 10)
}
