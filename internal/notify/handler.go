package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anonto42/travelsocial/backend/internal/metrics"
	"github.com/anonto42/travelsocial/backend/internal/models"
	"gorm.io/datatypes"
)

// NotificationStore persists notification rows.
type NotificationStore interface {
	CreateNotifications(ctx context.Context, notifications []models.Notification, batchSize int) error
}

// CommandHandler writes notification commands to the store.
type CommandHandler struct {
	store     NotificationStore
	batchSize int
	logger    *slog.Logger
}

func NewCommandHandler(store NotificationStore, batchSize int, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{
		store:     store,
		batchSize: batchSize,
		logger:    logger.With("component", "notify.CommandHandler"),
	}
}

// Handle persists one row per command. Fan-out commands are inserted in
// batches; a storage failure wraps repositories.ErrCreateFailed.
func (h *CommandHandler) Handle(ctx context.Context, cmds ...Command) error {
	if len(cmds) == 0 {
		return nil
	}

	rows := make([]models.Notification, 0, len(cmds))
	encoded := make(map[models.NotificationData]datatypes.JSON)
	for _, cmd := range cmds {
		data, ok := encoded[cmd.Data]
		if !ok {
			raw, err := json.Marshal(cmd.Data)
			if err != nil {
				return fmt.Errorf("encode %s data: %w", cmd.Kind, err)
			}
			data = datatypes.JSON(raw)
			encoded[cmd.Data] = data
		}
		rows = append(rows, models.Notification{
			RecipientID: cmd.RecipientID,
			Kind:        cmd.Kind,
			Data:        data,
		})
	}

	if err := h.store.CreateNotifications(ctx, rows, h.batchSize); err != nil {
		return err
	}

	for _, row := range rows {
		metrics.NotificationsCreated.WithLabelValues(string(row.Kind)).Inc()
	}
	h.logger.Debug("Notifications created", "kind", cmds[0].Kind, "count", len(rows))
	return nil
}
