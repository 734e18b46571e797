package social

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/models"
	"github.com/bizmesh/bizmesh/pkg/logging"
	"github.com/bizmesh/bizmesh/pkg/telemetry"
)

// ConnectionManager owns the connection request state machine:
// pending -> accepted | rejected | blocked. Non-pending states are terminal.
type ConnectionManager struct {
	repo        *db.Repository
	notifier    *Notifier
	suggestions *Suggestions
	logger      *zap.Logger
	now         func() time.Time
}

// NewConnectionManager creates a connection manager. suggestions may be nil.
func NewConnectionManager(repo *db.Repository, notifier *Notifier, suggestions *Suggestions) *ConnectionManager {
	return &ConnectionManager{
		repo:        repo,
		notifier:    notifier,
		suggestions: suggestions,
		logger:      logging.WithComponent("connections"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a pending request from requesterID to receiverID and notifies
// the receiver. The pair is unordered: an existing row in either direction
// is a conflict.
func (m *ConnectionManager) Create(ctx context.Context, requesterID, receiverID int64) (*models.Connection, error) {
	const op = "create connection"
	ctx, span := telemetry.StartSpan(ctx, "social.connections.create")
	defer span.End()

	if requesterID == receiverID {
		return nil, invalidOperation(op, "cannot connect user %d to itself", requesterID)
	}

	conn := &models.Connection{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.ConnectionPending,
	}

	err := m.repo.Transaction(ctx, func(tx *db.Repository) error {
		users := db.NewUserRepository(tx)
		requester, err := users.GetByID(ctx, requesterID)
		if err != nil {
			return fmt.Errorf("failed to load user %d: %w", requesterID, err)
		}
		if requester == nil {
			return notFound(op, "user %d not found", requesterID)
		}
		receiver, err := users.GetByID(ctx, receiverID)
		if err != nil {
			return fmt.Errorf("failed to load user %d: %w", receiverID, err)
		}
		if receiver == nil {
			return notFound(op, "user %d not found", receiverID)
		}

		inserted, err := db.NewConnectionRepository(tx).Insert(ctx, conn)
		if err != nil {
			return fmt.Errorf("failed to insert connection: %w", err)
		}
		if !inserted {
			return conflict(op, "users %d and %d are already connected or have a pending request", requesterID, receiverID)
		}

		_, err = m.notifier.WithRepo(tx).Notify(ctx, receiverID, requesterID,
			models.NotifyTypeConnection,
			fmt.Sprintf("%s wants to connect with you", requester.Name()),
			&Target{ID: conn.ID, Type: models.TargetTypeConnection})
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Connection requested",
		zap.Int64("connection_id", conn.ID),
		zap.Int64("requester_id", requesterID),
		zap.Int64("receiver_id", receiverID))
	telemetry.Count(ctx, "social.connections", 1, attribute.String("status", string(models.ConnectionPending)))
	m.suggestions.Invalidate(ctx, requesterID, receiverID)

	return conn, nil
}

// UpdateStatus moves a pending connection to status. Accepting bumps both
// users' connection counts, notifies the requester and records a
// connection_made event for each participant, all in one transaction.
func (m *ConnectionManager) UpdateStatus(ctx context.Context, connectionID int64, status models.ConnectionStatus) (*models.Connection, error) {
	const op = "update connection status"
	ctx, span := telemetry.StartSpan(ctx, "social.connections.update_status")
	defer span.End()

	if !status.Valid() || status == models.ConnectionPending {
		return nil, invalidOperation(op, "unsupported target status %q", status)
	}

	var conn *models.Connection
	err := m.repo.Transaction(ctx, func(tx *db.Repository) error {
		conns := db.NewConnectionRepository(tx)

		var err error
		conn, err = conns.GetByID(ctx, connectionID)
		if err != nil {
			return fmt.Errorf("failed to load connection %d: %w", connectionID, err)
		}
		if conn == nil {
			return notFound(op, "connection %d not found", connectionID)
		}
		if conn.Status.Terminal() {
			return invalidOperation(op, "connection %d is already %s", connectionID, conn.Status)
		}

		at := m.now()
		moved, err := conns.TransitionFromPending(ctx, connectionID, status, at)
		if err != nil {
			return fmt.Errorf("failed to update connection %d: %w", connectionID, err)
		}
		if !moved {
			return invalidOperation(op, "connection %d is no longer pending", connectionID)
		}
		conn.Status = status
		conn.UpdatedAt = &at

		if status != models.ConnectionAccepted {
			return nil
		}
		return m.accept(ctx, tx, conn)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Connection status changed",
		zap.Int64("connection_id", conn.ID),
		zap.String("status", string(status)))
	telemetry.Count(ctx, "social.connections", 1, attribute.String("status", string(status)))

	return conn, nil
}

func (m *ConnectionManager) accept(ctx context.Context, tx *db.Repository, conn *models.Connection) error {
	users := db.NewUserRepository(tx)
	if err := users.AdjustConnections(ctx, []int64{conn.RequesterID, conn.ReceiverID}, 1); err != nil {
		return err
	}

	receiver, err := users.GetByID(ctx, conn.ReceiverID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", conn.ReceiverID, err)
	}
	name := fmt.Sprintf("user %d", conn.ReceiverID)
	if receiver != nil {
		name = receiver.Name()
	}
	if _, err := m.notifier.WithRepo(tx).Notify(ctx, conn.RequesterID, conn.ReceiverID,
		models.NotifyTypeConnectionAccepted,
		fmt.Sprintf("%s accepted your connection request", name),
		&Target{ID: conn.ID, Type: models.TargetTypeConnection}); err != nil {
		return err
	}

	analytics := db.NewAnalyticsRepository(tx)
	for _, pair := range [][2]int64{
		{conn.RequesterID, conn.ReceiverID},
		{conn.ReceiverID, conn.RequesterID},
	} {
		event, err := models.NewAnalyticsEvent(pair[0], models.EventConnectionMade, models.EventData{OtherUserID: pair[1]})
		if err != nil {
			return err
		}
		if err := analytics.Append(ctx, event); err != nil {
			return fmt.Errorf("failed to record connection event: %w", err)
		}
	}
	return nil
}

// Delete removes a connection and reports whether it existed. Deleting an
// accepted connection decrements both users' counts, floored at zero.
func (m *ConnectionManager) Delete(ctx context.Context, connectionID int64) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.connections.delete")
	defer span.End()

	var conn *models.Connection
	deleted := false
	err := m.repo.Transaction(ctx, func(tx *db.Repository) error {
		conns := db.NewConnectionRepository(tx)

		var err error
		conn, err = conns.GetByID(ctx, connectionID)
		if err != nil {
			return fmt.Errorf("failed to load connection %d: %w", connectionID, err)
		}
		if conn == nil {
			return nil
		}

		deleted, err = conns.Delete(ctx, connectionID)
		if err != nil {
			return fmt.Errorf("failed to delete connection %d: %w", connectionID, err)
		}
		if !deleted || conn.Status != models.ConnectionAccepted {
			return nil
		}
		return db.NewUserRepository(tx).AdjustConnections(ctx, []int64{conn.RequesterID, conn.ReceiverID}, -1)
	})
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	m.logger.Debug("Connection deleted", zap.Int64("connection_id", connectionID))
	m.suggestions.Invalidate(ctx, conn.RequesterID, conn.ReceiverID)
	return true, nil
}

// Exists reports whether any connection row relates a and b, in either direction
func (m *ConnectionManager) Exists(ctx context.Context, a, b int64) (bool, error) {
	conn, err := db.NewConnectionRepository(m.repo).GetBetween(ctx, a, b)
	if err != nil {
		return false, fmt.Errorf("failed to check connection: %w", err)
	}
	return conn != nil, nil
}

// Get returns a connection by id
func (m *ConnectionManager) Get(ctx context.Context, connectionID int64) (*models.Connection, error) {
	conn, err := db.NewConnectionRepository(m.repo).GetByID(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection %d: %w", connectionID, err)
	}
	if conn == nil {
		return nil, notFound("get connection", "connection %d not found", connectionID)
	}
	return conn, nil
}

// List returns connections touching userID, newest state change first. An
// empty status lists every status.
func (m *ConnectionManager) List(ctx context.Context, userID int64, status models.ConnectionStatus, limit int) ([]*models.Connection, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.connections.list")
	defer span.End()

	if status != "" && !status.Valid() {
		return nil, invalidOperation("list connections", "unknown status %q", status)
	}
	conns, err := db.NewConnectionRepository(m.repo).ListForUser(ctx, userID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return conns, nil
}
