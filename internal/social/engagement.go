package social

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/bizmesh/bizmesh/internal/db"
	"github.com/bizmesh/bizmesh/internal/models"
	"github.com/bizmesh/bizmesh/pkg/logging"
	"github.com/bizmesh/bizmesh/pkg/telemetry"
)

// Engagement keeps likes, comments and shares consistent with the counters on
// their post. Every row change and its counter adjustment share a transaction.
type Engagement struct {
	repo     *db.Repository
	notifier *Notifier
	logger   *zap.Logger
}

// NewEngagement creates the engagement component
func NewEngagement(repo *db.Repository, notifier *Notifier) *Engagement {
	return &Engagement{
		repo:     repo,
		notifier: notifier,
		logger:   logging.WithComponent("engagement"),
	}
}

func loadPost(ctx context.Context, tx *db.Repository, op string, postID int64) (*models.Post, error) {
	post, err := db.NewPostRepository(tx).GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post %d: %w", postID, err)
	}
	if post == nil {
		return nil, notFound(op, "post %d not found", postID)
	}
	return post, nil
}

func actorName(ctx context.Context, tx *db.Repository, userID int64) string {
	user, err := db.NewUserRepository(tx).GetByID(ctx, userID)
	if err != nil || user == nil {
		return fmt.Sprintf("user %d", userID)
	}
	return user.Name()
}

// Like records userID's like on postID. It returns false, not an error, when
// the user already liked the post; the unique (post, user) index makes that
// decision so concurrent likes cannot both count.
func (e *Engagement) Like(ctx context.Context, postID, userID int64) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.engagement.like")
	defer span.End()

	liked := false
	err := e.repo.Transaction(ctx, func(tx *db.Repository) error {
		post, err := loadPost(ctx, tx, "like", postID)
		if err != nil {
			return err
		}

		liked, err = db.NewLikeRepository(tx).Insert(ctx, &models.Like{PostID: postID, UserID: userID})
		if err != nil {
			return fmt.Errorf("failed to insert like: %w", err)
		}
		if !liked {
			return nil
		}
		if err := db.NewPostRepository(tx).AdjustLikes(ctx, postID, 1); err != nil {
			return err
		}

		if post.UserID == userID {
			return nil
		}
		_, err = e.notifier.WithRepo(tx).Notify(ctx, post.UserID, userID,
			models.NotifyTypeLike,
			fmt.Sprintf("%s liked your post", actorName(ctx, tx, userID)),
			&Target{ID: postID, Type: models.TargetTypePost})
		return err
	})
	if err != nil {
		return false, err
	}

	if liked {
		telemetry.Count(ctx, "social.likes", 1, attribute.String("action", "like"))
	}
	return liked, nil
}

// Unlike removes userID's like on postID. It returns false when there was none.
func (e *Engagement) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.engagement.unlike")
	defer span.End()

	removed := false
	err := e.repo.Transaction(ctx, func(tx *db.Repository) error {
		var err error
		removed, err = db.NewLikeRepository(tx).Delete(ctx, postID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete like: %w", err)
		}
		if !removed {
			return nil
		}
		return db.NewPostRepository(tx).AdjustLikes(ctx, postID, -1)
	})
	if err != nil {
		return false, err
	}

	if removed {
		telemetry.Count(ctx, "social.likes", 1, attribute.String("action", "unlike"))
	}
	return removed, nil
}

// IsLiked reports whether userID likes postID
func (e *Engagement) IsLiked(ctx context.Context, postID, userID int64) (bool, error) {
	liked, err := db.NewLikeRepository(e.repo).Exists(ctx, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return liked, nil
}

// AddComment stores comment and bumps the post's comment counter
func (e *Engagement) AddComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	const op = "add comment"
	ctx, span := telemetry.StartSpan(ctx, "social.engagement.add_comment")
	defer span.End()

	comment.Content = strings.TrimSpace(comment.Content)
	if comment.Content == "" {
		return nil, invalidOperation(op, "comment content is empty")
	}

	err := e.repo.Transaction(ctx, func(tx *db.Repository) error {
		post, err := loadPost(ctx, tx, op, comment.PostID)
		if err != nil {
			return err
		}

		if err := db.NewCommentRepository(tx).Create(ctx, comment); err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
		if err := db.NewPostRepository(tx).AdjustComments(ctx, comment.PostID, 1); err != nil {
			return err
		}

		if post.UserID == comment.UserID {
			return nil
		}
		_, err = e.notifier.WithRepo(tx).Notify(ctx, post.UserID, comment.UserID,
			models.NotifyTypeComment,
			fmt.Sprintf("%s commented on your post", actorName(ctx, tx, comment.UserID)),
			&Target{ID: comment.ID, Type: models.TargetTypeComment})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Comment added", zap.Int64("comment_id", comment.ID), zap.Int64("post_id", comment.PostID))
	telemetry.Count(ctx, "social.comments", 1, attribute.String("action", "add"))
	return comment, nil
}

// DeleteComment removes a comment and decrements its post's counter, floored
// at zero. It returns false when the comment does not exist.
func (e *Engagement) DeleteComment(ctx context.Context, commentID int64) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "social.engagement.delete_comment")
	defer span.End()

	deleted := false
	err := e.repo.Transaction(ctx, func(tx *db.Repository) error {
		comments := db.NewCommentRepository(tx)
		comment, err := comments.GetByID(ctx, commentID)
		if err != nil {
			return fmt.Errorf("failed to load comment %d: %w", commentID, err)
		}
		if comment == nil {
			return nil
		}

		deleted, err = comments.Delete(ctx, commentID)
		if err != nil {
			return fmt.Errorf("failed to delete comment %d: %w", commentID, err)
		}
		if !deleted {
			return nil
		}
		return db.NewPostRepository(tx).AdjustComments(ctx, comment.PostID, -1)
	})
	if err != nil {
		return false, err
	}

	if deleted {
		telemetry.Count(ctx, "social.comments", 1, attribute.String("action", "delete"))
	}
	return deleted, nil
}

// GetComment returns a comment by id
func (e *Engagement) GetComment(ctx context.Context, commentID int64) (*models.Comment, error) {
	comment, err := db.NewCommentRepository(e.repo).GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment %d: %w", commentID, err)
	}
	if comment == nil {
		return nil, notFound("get comment", "comment %d not found", commentID)
	}
	return comment, nil
}

// ListComments returns the newest comments on postID
func (e *Engagement) ListComments(ctx context.Context, postID int64, limit int) ([]*models.Comment, error) {
	comments, err := db.NewCommentRepository(e.repo).ListByPost(ctx, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Share counts a share of postID by userID and records a post_shared event
// against the post's author
func (e *Engagement) Share(ctx context.Context, postID, userID int64) error {
	const op = "share"
	ctx, span := telemetry.StartSpan(ctx, "social.engagement.share")
	defer span.End()

	return e.repo.Transaction(ctx, func(tx *db.Repository) error {
		post, err := loadPost(ctx, tx, op, postID)
		if err != nil {
			return err
		}
		if err := db.NewPostRepository(tx).AdjustShares(ctx, postID, 1); err != nil {
			return err
		}

		event, err := models.NewAnalyticsEvent(post.UserID, models.EventPostShared, models.EventData{
			PostID:      postID,
			OtherUserID: userID,
		})
		if err != nil {
			return err
		}
		if err := db.NewAnalyticsRepository(tx).Append(ctx, event); err != nil {
			return fmt.Errorf("failed to record share event: %w", err)
		}
		return nil
	})
}
