package engagement

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/samber/lo"
)

type CommentStore interface {
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsBySubject(ctx context.Context, subjectID string) ([]models.Comment, error)
}

type UserStore interface {
	GetUsersByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error)
}

type AggregateStore interface {
	AggregateMany(ctx context.Context, subjectType models.SubjectType, subjectIDs []string) (map[string]models.ReactionAggregate, error)
}

// TreeBuilder assembles the comment read model of a post or mini-blog.
type TreeBuilder struct {
	comments  CommentStore
	users     UserStore
	reactions AggregateStore
}

func NewTreeBuilder(comments CommentStore, users UserStore, reactions AggregateStore) *TreeBuilder {
	return &TreeBuilder{comments: comments, users: users, reactions: reactions}
}

// Build returns the subject's top-level comments with their replies.
func (b *TreeBuilder) Build(ctx context.Context, subjectID string) ([]models.CommentNode, error) {
	rows, err := b.comments.GetCommentsBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.CommentNode{}, nil
	}

	authors, aggregates, err := b.load(ctx, rows)
	if err != nil {
		return nil, err
	}
	return BuildTree(rows, authors, aggregates), nil
}

// GetComment returns one comment. Top-level comments include their replies.
func (b *TreeBuilder) GetComment(ctx context.Context, id uint) (*models.CommentNode, error) {
	comment, err := b.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if comment.ParentID == nil {
		tree, err := b.Build(ctx, comment.SubjectID)
		if err != nil {
			return nil, err
		}
		if node, ok := lo.Find(tree, func(n models.CommentNode) bool { return n.ID == id }); ok {
			return &node, nil
		}
	}

	authors, aggregates, err := b.load(ctx, []models.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &models.CommentNode{
		ID:        comment.ID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		Author:    author(authors, comment.UserID),
		Reactions: aggregate(aggregates, comment.ID),
		Replies:   []models.ReplyNode{},
	}, nil
}

func (b *TreeBuilder) load(ctx context.Context, rows []models.Comment) (map[uint]models.User, map[string]models.ReactionAggregate, error) {
	userIDs := lo.Uniq(lo.Map(rows, func(c models.Comment, _ int) uint { return c.UserID }))
	authors, err := b.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load comment authors: %w", err)
	}

	commentIDs := lo.Map(rows, func(c models.Comment, _ int) string { return CommentSubjectID(c.ID) })
	aggregates, err := b.reactions.AggregateMany(ctx, models.SubjectComment, commentIDs)
	if err != nil {
		return nil, nil, err
	}
	return authors, aggregates, nil
}

// BuildTree nests replies under their top-level comments. Top-level comments
// are newest first, replies oldest first. Rows whose parent is not a
// top-level comment in rows are left out.
func BuildTree(rows []models.Comment, authors map[uint]models.User, aggregates map[string]models.ReactionAggregate) []models.CommentNode {
	top := lo.Filter(rows, func(c models.Comment, _ int) bool { return c.ParentID == nil })
	slices.SortFunc(top, func(a, b models.Comment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	nodes := make([]models.CommentNode, 0, len(top))
	index := make(map[uint]int, len(top))
	for _, c := range top {
		index[c.ID] = len(nodes)
		nodes = append(nodes, models.CommentNode{
			ID:        c.ID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			Author:    author(authors, c.UserID),
			Reactions: aggregate(aggregates, c.ID),
			Replies:   []models.ReplyNode{},
		})
	}

	replies := lo.Filter(rows, func(c models.Comment, _ int) bool { return c.ParentID != nil })
	slices.SortFunc(replies, func(a, b models.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for _, r := range replies {
		i, ok := index[*r.ParentID]
		if !ok {
			continue
		}
		nodes[i].Replies = append(nodes[i].Replies, models.ReplyNode{
			ID:        r.ID,
			ParentID:  *r.ParentID,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
			Author:    author(authors, r.UserID),
			Reactions: aggregate(aggregates, r.ID),
		})
	}
	return nodes
}

func author(users map[uint]models.User, id uint) models.UserCompact {
	if u, ok := users[id]; ok {
		return u.ToCompact()
	}
	return models.UserCompact{ID: id}
}

func aggregate(aggregates map[string]models.ReactionAggregate, commentID uint) models.ReactionAggregate {
	if agg, ok := aggregates[CommentSubjectID(commentID)]; ok {
		return agg
	}
	return models.NewReactionAggregate(nil)
}
