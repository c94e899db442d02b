package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func seedNotifications(t *testing.T, repo NotificationRepository, rows ...models.Notification) {
	t.Helper()
	require.NoError(t, repo.CreateNotifications(context.Background(), rows, 2))
}

func notificationIDs(ns []models.Notification) []uint {
	ids := make([]uint, 0, len(ns))
	for _, n := range ns {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestNotificationRepository_CreateInBatches(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresNotificationRepository(db)

	rows := make([]models.Notification, 0, 5)
	for i := uint(1); i <= 5; i++ {
		rows = append(rows, models.Notification{
			RecipientID: i,
			Kind:        models.KindNewPostFromFollowing,
			Data:        datatypes.JSON(`{"post_id":"p1"}`),
		})
	}
	seedNotifications(t, repo, rows...)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestNotificationRepository_CreateFailureWrapsErrCreateFailed(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.Notification{}))
	repo := NewPostgresNotificationRepository(db)

	err := repo.CreateNotifications(context.Background(), []models.Notification{{RecipientID: 1, Kind: models.KindPostLike}}, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCreateFailed)
}

func TestNotificationRepository_MarkAsReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresNotificationRepository(testutil.NewDB(t))
	seedNotifications(t, repo, models.Notification{RecipientID: 1, Kind: models.KindPostLike})

	first, err := repo.MarkAsRead(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, first.IsRead)

	second, err := repo.MarkAsRead(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, second.IsRead)

	unread, err := repo.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestNotificationRepository_MarkAsReadNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresNotificationRepository(testutil.NewDB(t))
	seedNotifications(t, repo, models.Notification{RecipientID: 1, Kind: models.KindPostLike})

	_, err := repo.MarkAsRead(ctx, 99, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// another recipient's notification is invisible
	_, err = repo.MarkAsRead(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationRepository_MarkAllAsRead(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresNotificationRepository(testutil.NewDB(t))

	changed, err := repo.MarkAllAsRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)

	seedNotifications(t, repo,
		models.Notification{RecipientID: 1, Kind: models.KindPostLike},
		models.Notification{RecipientID: 1, Kind: models.KindPostComment},
		models.Notification{RecipientID: 2, Kind: models.KindPostComment},
	)

	changed, err = repo.MarkAllAsRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	other, err := repo.GetUnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestNotificationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresNotificationRepository(testutil.NewDB(t))
	seedNotifications(t, repo, models.Notification{RecipientID: 1, Kind: models.KindNewFollower})

	assert.ErrorIs(t, repo.Delete(ctx, 1, 2), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, 1, 1))
	assert.ErrorIs(t, repo.Delete(ctx, 1, 1), ErrNotFound)

	_, err := repo.GetByID(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationRepository_List(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewPostgresNotificationRepository(db)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seedNotifications(t, repo,
		models.Notification{RecipientID: 1, Kind: models.KindPostLike, CreatedAt: base},
		models.Notification{RecipientID: 1, Kind: models.KindPostComment, CreatedAt: base.Add(time.Minute)},
		models.Notification{RecipientID: 1, Kind: models.KindPostLike, CreatedAt: base.Add(2 * time.Minute)},
		models.Notification{RecipientID: 2, Kind: models.KindPostLike, CreatedAt: base.Add(3 * time.Minute)},
	)
	_, err := repo.MarkAsRead(ctx, 1, 1)
	require.NoError(t, err)

	like := models.KindPostLike
	unread := false

	tests := []struct {
		name    string
		filter  models.NotificationFilter
		wantIDs []uint
		total   int64
	}{
		{"default newest first", models.NotificationFilter{}, []uint{3, 2, 1}, 3},
		{"by kind", models.NotificationFilter{Kind: &like}, []uint{3, 1}, 2},
		{"unread only", models.NotificationFilter{IsRead: &unread}, []uint{3, 2}, 2},
		{"kind and unread", models.NotificationFilter{Kind: &like, IsRead: &unread}, []uint{3}, 1},
		{"ascending", models.NotificationFilter{Sorts: []string{"created_at:asc"}}, []uint{1, 2, 3}, 3},
		{"paged", models.NotificationFilter{Page: 2, PerPage: 2}, []uint{1}, 3},
		{"multi sort", models.NotificationFilter{Sorts: []string{"kind:asc", "id:asc"}}, []uint{2, 1, 3}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.List(ctx, 1, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, notificationIDs(page.Data))
			assert.Equal(t, tt.total, page.Total)
		})
	}
}

func TestNotificationRepository_ListRejectsUnknownSort(t *testing.T) {
	repo := NewPostgresNotificationRepository(testutil.NewDB(t))

	_, err := repo.List(context.Background(), 1, models.NotificationFilter{Sorts: []string{"recipient_id:asc"}})
	assert.ErrorIs(t, err, ErrInvalidSort)

	_, err = repo.List(context.Background(), 1, models.NotificationFilter{Sorts: []string{"id:sideways"}})
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestNotificationRepository_GetGrouped(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewPostgresNotificationRepository(db)

	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	seedNotifications(t, repo,
		models.Notification{RecipientID: 1, Kind: models.KindPostLike, CreatedAt: now.Add(-time.Hour)},
		models.Notification{RecipientID: 1, Kind: models.KindPostLike, CreatedAt: now.Add(-24 * time.Hour)},
		models.Notification{RecipientID: 1, Kind: models.KindPostLike, CreatedAt: now.Add(-4 * 24 * time.Hour)},
		models.Notification{RecipientID: 1, Kind: models.KindPostLike, CreatedAt: now.Add(-30 * 24 * time.Hour)},
	)

	grouped, err := repo.GetGrouped(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, notificationIDs(grouped.Today))
	assert.Equal(t, []uint{2}, notificationIDs(grouped.Yesterday))
	assert.Equal(t, []uint{3}, notificationIDs(grouped.ThisWeek))
	assert.Equal(t, []uint{4}, notificationIDs(grouped.Older))
}
