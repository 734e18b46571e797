package social

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/models"
	"github.com/bizmesh/bizmesh/pkg/logging"
	"github.com/bizmesh/bizmesh/pkg/telemetry"
)

// Target points a notification at the entity it is about
type Target struct {
	ID   int64
	Type string
}

// NotificationView is a notification with the actor's public profile joined in
type NotificationView struct {
	*models.Notification
	TargetID   *int64                `json:"targetId,omitempty"`
	TargetType string                `json:"targetType,omitempty"`
	Actor      *models.PublicProfile `json:"actor,omitempty"`
}

// Notifier turns state changes into notification rows
type Notifier struct {
	repo   *db.Repository
	logger *zap.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(repo *db.Repository) *Notifier {
	return &Notifier{
		repo:   repo,
		logger: logging.WithComponent("notifier"),
	}
}

// WithRepo returns a notifier writing through repo, typically a transaction
// so the notification commits or rolls back with the change that caused it
func (n *Notifier) WithRepo(repo *db.Repository) *Notifier {
	return &Notifier{repo: repo, logger: n.logger}
}

// Notify inserts an unread notification for userID
func (n *Notifier) Notify(ctx context.Context, userID, actorID int64, notifyType, message string, target *Target) (*models.Notification, error) {
	notif := &models.Notification{
		UserID:  userID,
		ActorID: actorID,
		Type:    notifyType,
		Message: message,
	}
	if target != nil {
		notif.TargetID = sql.NullInt64{Int64: target.ID, Valid: true}
		notif.TargetType = sql.NullString{String: target.Type, Valid: target.Type != ""}
	}

	if err := db.NewNotificationRepository(n.repo).Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	n.logger.Debug("[NOTIFY]",
		zap.String("type", notifyType),
		zap.Int64("user_id", userID),
		zap.Int64("actor_id", actorID))
	telemetry.Count(ctx, "social.notifications", 1, attribute.String("type", notifyType))

	return notif, nil
}

// MarkRead marks a notification of userID read. It returns false when no such
// notification exists. There is no way back to unread.
func (n *Notifier) MarkRead(ctx context.Context, userID, notificationID int64) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.notifications.mark_read")
	defer span.End()

	ok, err := db.NewNotificationRepository(n.repo).MarkRead(ctx, notificationID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification %d read: %w", notificationID, err)
	}
	return ok, nil
}

// MarkAllRead marks every unread notification of userID read and returns how many changed
func (n *Notifier) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.notifications.mark_all_read")
	defer span.End()

	changed, err := db.NewNotificationRepository(n.repo).MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return changed, nil
}

// UnreadCount counts unread notifications of userID
func (n *Notifier) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	count, err := db.NewNotificationRepository(n.repo).CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// List returns notifications of userID newest first. A nil read returns both
// read and unread ones.
func (n *Notifier) List(ctx context.Context, userID int64, read *bool, limit int) ([]*NotificationView, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.notifications.list")
	defer span.End()

	notifications, err := db.NewNotificationRepository(n.repo).ListForUser(ctx, userID, read, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	views := make([]*NotificationView, 0, len(notifications))
	for _, notif := range notifications {
		view := &NotificationView{
			Notification: notif,
			Actor:        notif.Actor.Public(),
		}
		if notif.TargetID.Valid {
			id := notif.TargetID.Int64
			view.TargetID = &id
		}
		if notif.TargetType.Valid {
			view.TargetType = notif.TargetType.String
		}
		views = append(views, view)
	}
	return views, nil
}
