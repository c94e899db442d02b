package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/anonto42/travelsocial/backend/internal/models"
	"gorm.io/gorm"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	olderLimit     = 50
)

// sortable maps accepted sort fields onto columns.
var sortable = map[string]string{
	"id":         "id",
	"kind":       "kind",
	"is_read":    "is_read",
	"created_at": "created_at",
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotifications(ctx context.Context, notifications []models.Notification, batchSize int) error
	GetByID(ctx context.Context, id, recipientID uint) (*models.Notification, error)
	List(ctx context.Context, recipientID uint, filter models.NotificationFilter) (*models.NotificationPage, error)
	GetGrouped(ctx context.Context, recipientID uint, now time.Time) (*models.GroupedNotifications, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, id, recipientID uint) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error)
	Delete(ctx context.Context, id, recipientID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

// CreateNotifications inserts rows in batches of batchSize. Any storage
// failure is reported as ErrCreateFailed.
func (r *postgresNotificationRepository) CreateNotifications(ctx context.Context, notifications []models.Notification, batchSize int) error {
	if len(notifications) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = len(notifications)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(notifications, batchSize).Error; err != nil {
		return fmt.Errorf("%w: %d notifications: %w", ErrCreateFailed, len(notifications), err)
	}
	return nil
}

// GetByID returns the notification only when it belongs to recipientID.
func (r *postgresNotificationRepository) GetByID(ctx context.Context, id, recipientID uint) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", id, recipientID).First(&n).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// List returns one page of the recipient's notifications matching filter.
func (r *postgresNotificationRepository) List(ctx context.Context, recipientID uint, filter models.NotificationFilter) (*models.NotificationPage, error) {
	page, perPage := normalizePage(filter.Page, filter.PerPage)

	where := sq.And{sq.Eq{"recipient_id": recipientID}}
	if filter.Kind != nil {
		where = append(where, sq.Eq{"kind": *filter.Kind})
	}
	if filter.IsRead != nil {
		where = append(where, sq.Eq{"is_read": *filter.IsRead})
	}

	orderBy, err := orderClauses(filter.Sorts)
	if err != nil {
		return nil, err
	}

	countSQL, countArgs, err := sq.Select("COUNT(*)").From("notifications").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.db.WithContext(ctx).Raw(countSQL, countArgs...).Scan(&total).Error; err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	listSQL, listArgs, err := sq.Select("id", "recipient_id", "kind", "data", "is_read", "created_at").
		From("notifications").
		Where(where).
		OrderBy(orderBy...).
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	notifications := make([]models.Notification, 0, perPage)
	if err := r.db.WithContext(ctx).Raw(listSQL, listArgs...).Scan(&notifications).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return &models.NotificationPage{
		Data:    notifications,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// orderClauses turns "field:dir" pairs into ORDER BY terms. id is appended
// as a tie-break so pages are stable.
func orderClauses(sorts []string) ([]string, error) {
	if len(sorts) == 0 {
		return []string{"created_at DESC", "id DESC"}, nil
	}
	clauses := make([]string, 0, len(sorts)+1)
	hasID := false
	for _, s := range sorts {
		field, dir, _ := strings.Cut(s, ":")
		column, ok := sortable[strings.TrimSpace(field)]
		if !ok {
			return nil, fmt.Errorf("%w: field %q", ErrInvalidSort, field)
		}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
			dir = "ASC"
		case "desc":
			dir = "DESC"
		default:
			return nil, fmt.Errorf("%w: direction %q", ErrInvalidSort, dir)
		}
		if column == "id" {
			hasID = true
		}
		clauses = append(clauses, column+" "+dir)
	}
	if !hasID {
		clauses = append(clauses, "id DESC")
	}
	return clauses, nil
}

// GetGrouped buckets the recipient's notifications relative to now.
func (r *postgresNotificationRepository) GetGrouped(ctx context.Context, recipientID uint, now time.Time) (*models.GroupedNotifications, error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	db := r.db.WithContext(ctx)
	out := &models.GroupedNotifications{
		Today:     []models.Notification{},
		Yesterday: []models.Notification{},
		ThisWeek:  []models.Notification{},
		Older:     []models.Notification{},
	}

	if err := db.Where("recipient_id = ? AND created_at >= ?", recipientID, todayStart).
		Order("created_at DESC").Find(&out.Today).Error; err != nil {
		return nil, err
	}
	if err := db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, yesterdayStart, todayStart).
		Order("created_at DESC").Find(&out.Yesterday).Error; err != nil {
		return nil, err
	}
	// this week excludes today and yesterday
	if err := db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, weekStart, yesterdayStart).
		Order("created_at DESC").Find(&out.ThisWeek).Error; err != nil {
		return nil, err
	}
	if err := db.Where("recipient_id = ? AND created_at < ?", recipientID, weekStart).
		Order("created_at DESC").Limit(olderLimit).Find(&out.Older).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Count(&count).Error
	return count, err
}

// MarkAsRead sets is_read on one of the recipient's notifications. Marking
// an already read notification is a no-op.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, id, recipientID uint) (*models.Notification, error) {
	n, err := r.GetByID(ctx, id, recipientID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	err = r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true).Error
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.IsRead = true
	return n, nil
}

// MarkAllAsRead returns the number of rows that changed; zero is not an error.
func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *postgresNotificationRepository) Delete(ctx context.Context, id, recipientID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", id, recipientID).Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
