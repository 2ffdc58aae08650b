package repository

import (
	"context"
	"errors"
	"time"

	"pollhive/internal/models"

	"gorm.io/gorm"
)

// initialRepliesLimit is how many replies are eagerly joined onto each
// top-level comment when listing a poll's thread. Further replies are loaded
// through ListReplies pagination.
const initialRepliesLimit = 5

// CommentRepository defines persistence operations for threaded comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetLive(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	CountLiveChildren(ctx context.Context, id uint) (int64, error)
	SoftDelete(ctx context.Context, comment *models.Comment) error
	HardDelete(ctx context.Context, comment *models.Comment) error
	ListTopLevelByPoll(ctx context.Context, pollID uint, limit, offset int) ([]*models.Comment, error)
	CountTopLevelByPoll(ctx context.Context, pollID uint) (int64, error)
	ListReplies(ctx context.Context, parentID uint, limit, offset int) ([]*models.Comment, error)
	CountReplies(ctx context.Context, parentID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Comment, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create persists the comment and, for replies, bumps the parent's reply
// counter in the same transaction so the counter cannot drift on error paths.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if comment.ParentCommentID == nil {
			return nil
		}
		return tx.Model(&models.Comment{}).
			Where("id = ?", *comment.ParentCommentID).
			UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetLive returns the comment only when it has not been soft-deleted.
func (r *commentRepository) GetLive(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("User", "Poll").Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) CountLiveChildren(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("parent_comment_id = ? AND is_deleted = ?", id, false).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// SoftDelete tombstones the comment in place: the row survives so replies
// stay addressable, but the content is replaced with the fixed placeholder.
func (r *commentRepository) SoftDelete(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(comment).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
			"content":    models.DeletedCommentPlaceholder,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	comment.IsDeleted = true
	comment.DeletedAt = &now
	comment.Content = models.DeletedCommentPlaceholder
	return nil
}

// HardDelete removes the row and, when the comment was a reply, decrements
// its parent's counter inside the same transaction.
func (r *commentRepository) HardDelete(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Comment{}, comment.ID).Error; err != nil {
			return err
		}
		if comment.ParentCommentID == nil {
			return nil
		}
		return tx.Model(&models.Comment{}).
			Where("id = ? AND reply_count > 0", *comment.ParentCommentID).
			UpdateColumn("reply_count", gorm.Expr("reply_count - 1")).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) ListTopLevelByPoll(ctx context.Context, pollID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("poll_id = ? AND parent_comment_id IS NULL AND is_deleted = ?", pollID, false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	// Eagerly join the first page of replies onto each thread root.
	for _, comment := range comments {
		replies, err := r.ListReplies(ctx, comment.ID, initialRepliesLimit, 0)
		if err != nil {
			return nil, err
		}
		comment.Replies = replies
		comment.HasMoreReplies = comment.ReplyCount > len(replies)
	}
	return comments, nil
}

func (r *commentRepository) CountTopLevelByPoll(ctx context.Context, pollID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("poll_id = ? AND parent_comment_id IS NULL AND is_deleted = ?", pollID, false).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uint, limit, offset int) ([]*models.Comment, error) {
	var replies []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("parent_comment_id = ? AND is_deleted = ?", parentID, false).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&replies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

func (r *commentRepository) CountReplies(ctx context.Context, parentID uint) (int64, error) {
	return r.CountLiveChildren(ctx, parentID)
}

func (r *commentRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Poll").
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
