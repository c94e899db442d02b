package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/travelsocial/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	Upsert(ctx context.Context, subjectID string, subjectType models.SubjectType, userID uint, kind models.ReactionKind) (models.ReactionKind, error)
	Get(ctx context.Context, subjectID string, subjectType models.SubjectType, userID uint) (*models.Reaction, error)
	Aggregate(ctx context.Context, subjectID string, subjectType models.SubjectType) (models.ReactionAggregate, error)
	AggregateMany(ctx context.Context, subjectType models.SubjectType, subjectIDs []string) (map[string]models.ReactionAggregate, error)
	ListReactors(ctx context.Context, subjectID string, subjectType models.SubjectType, kind *models.ReactionKind) ([]models.Reactor, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

// Upsert stores kind as the user's reaction on the subject and returns the
// kind stored before the call (ReactionNone when there was no row).
func (r *PostgresReactionRepository) Upsert(ctx context.Context, subjectID string, subjectType models.SubjectType, userID uint, kind models.ReactionKind) (models.ReactionKind, error) {
	previous := models.ReactionNone
	existing, err := r.Get(ctx, subjectID, subjectType, userID)
	switch {
	case err == nil:
		previous = existing.ReactionKind
	case !errors.Is(err, ErrNotFound):
		return previous, err
	}

	now := time.Now()
	row := models.Reaction{
		SubjectID:    subjectID,
		SubjectType:  subjectType,
		UserID:       userID,
		ReactionKind: kind,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_id"}, {Name: "subject_type"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reaction_kind", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return previous, fmt.Errorf("upsert reaction: %w", err)
	}
	return previous, nil
}

func (r *PostgresReactionRepository) Get(ctx context.Context, subjectID string, subjectType models.SubjectType, userID uint) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND subject_type = ? AND user_id = ?", subjectID, subjectType, userID).
		First(&reaction).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &reaction, nil
}

// Aggregate counts active reactions on one subject by kind.
func (r *PostgresReactionRepository) Aggregate(ctx context.Context, subjectID string, subjectType models.SubjectType) (models.ReactionAggregate, error) {
	var counts []models.ReactionCount
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("reaction_kind, COUNT(*) AS count").
		Where("subject_id = ? AND subject_type = ? AND reaction_kind > ?", subjectID, subjectType, models.ReactionNone).
		Group("reaction_kind").
		Order("reaction_kind").
		Scan(&counts).Error
	if err != nil {
		return models.NewReactionAggregate(nil), fmt.Errorf("aggregate reactions: %w", err)
	}
	return models.NewReactionAggregate(counts), nil
}

// AggregateMany aggregates several subjects of one type in a single query.
// Subjects without active reactions are present with an empty aggregate.
func (r *PostgresReactionRepository) AggregateMany(ctx context.Context, subjectType models.SubjectType, subjectIDs []string) (map[string]models.ReactionAggregate, error) {
	out := make(map[string]models.ReactionAggregate, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		SubjectID    string
		ReactionKind models.ReactionKind
		Count        int64
	}
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("subject_id, reaction_kind, COUNT(*) AS count").
		Where("subject_type = ? AND subject_id IN ? AND reaction_kind > ?", subjectType, subjectIDs, models.ReactionNone).
		Group("subject_id, reaction_kind").
		Order("subject_id, reaction_kind").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate reactions: %w", err)
	}

	grouped := make(map[string][]models.ReactionCount, len(subjectIDs))
	for _, row := range rows {
		grouped[row.SubjectID] = append(grouped[row.SubjectID], models.ReactionCount{ReactionKind: row.ReactionKind, Count: row.Count})
	}
	for _, id := range subjectIDs {
		out[id] = models.NewReactionAggregate(grouped[id])
	}
	return out, nil
}

// ListReactors returns users with an active reaction on the subject, ordered
// by full name. A non-nil kind restricts the list to that reaction.
func (r *PostgresReactionRepository) ListReactors(ctx context.Context, subjectID string, subjectType models.SubjectType, kind *models.ReactionKind) ([]models.Reactor, error) {
	var rows []struct {
		ID           uint
		Username     string
		FullName     string
		AvatarURL    string
		ReactionKind models.ReactionKind
	}
	q := r.db.WithContext(ctx).Table("reactions").
		Select("users.id, users.username, users.full_name, users.avatar_url, reactions.reaction_kind").
		Joins("JOIN users ON users.id = reactions.user_id").
		Where("reactions.subject_id = ? AND reactions.subject_type = ? AND reactions.reaction_kind > ?", subjectID, subjectType, models.ReactionNone)
	if kind != nil {
		q = q.Where("reactions.reaction_kind = ?", *kind)
	}
	if err := q.Order("users.full_name, users.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list reactors: %w", err)
	}

	reactors := make([]models.Reactor, 0, len(rows))
	for _, row := range rows {
		reactors = append(reactors, models.Reactor{
			UserCompact: models.UserCompact{
				ID:        row.ID,
				Username:  row.Username,
				FullName:  row.FullName,
				AvatarURL: row.AvatarURL,
			},
			ReactionKind: row.ReactionKind,
		})
	}
	return reactors, nil
}
