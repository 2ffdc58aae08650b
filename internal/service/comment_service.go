package service

import (
	"context"
	"strings"

	"pollhive/internal/cache"
	"pollhive/internal/models"
	"pollhive/internal/repository"
)

const (
	defaultCommentPageSize = 20
	defaultReplyPageSize   = 10
	maxPageSize            = 100
)

// CommentService owns threaded comment rules: creation, editing, the
// soft/hard deletion split and pagination.
type CommentService struct {
	commentRepo repository.CommentRepository
	pollRepo    repository.PollRepository
}

type CreateCommentInput struct {
	UserID          uint
	PollID          uint
	Content         string
	ParentCommentID *uint
}

// DeleteResult reports which deletion path was taken. Comment is set after a
// soft delete, CommentID after a hard delete.
type DeleteResult struct {
	Type      string          `json:"type"`
	Comment   *models.Comment `json:"comment,omitempty"`
	CommentID uint            `json:"comment_id,omitempty"`
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, pollRepo repository.PollRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, pollRepo: pollRepo}
}

func validateContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", models.NewValidationError("Comment content is required")
	}
	if len(content) > models.MaxCommentLength {
		return "", models.NewValidationError("Comment cannot exceed 1000 characters")
	}
	return content, nil
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

// CreateComment posts a comment or a reply. Replies must target a live
// comment on the same poll; a mismatch reads as the parent not existing.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}
	if _, err := s.pollRepo.GetByID(ctx, in.PollID); err != nil {
		return nil, err
	}

	if in.ParentCommentID != nil {
		parent, err := s.commentRepo.GetLive(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PollID != in.PollID {
			return nil, models.NewNotFoundError("Comment", *in.ParentCommentID)
		}
	}

	comment := &models.Comment{
		Content:         content,
		PollID:          in.PollID,
		UserID:          in.UserID,
		ParentCommentID: in.ParentCommentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.PollCommentsKey(in.PollID))
	return s.commentRepo.GetLive(ctx, comment.ID)
}

func (s *CommentService) UpdateComment(ctx context.Context, commentID, userID uint, rawContent string) (*models.Comment, error) {
	content, err := validateContent(rawContent)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetLive(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError("Comment not found or unauthorized")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.PollCommentsKey(comment.PollID))
	return comment, nil
}

// DeleteComment removes a comment. A comment with live replies is tombstoned
// so its thread stays navigable; a childless one is removed outright, giving
// back its slot in the parent's reply counter.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) (*DeleteResult, error) {
	comment, err := s.commentRepo.GetLive(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError("Comment not found or unauthorized")
	}

	liveChildren, err := s.commentRepo.CountLiveChildren(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if liveChildren > 0 {
		if err := s.commentRepo.SoftDelete(ctx, comment); err != nil {
			return nil, err
		}
		cache.Invalidate(ctx, cache.PollCommentsKey(comment.PollID))
		return &DeleteResult{Type: models.CommentSoftDeleted, Comment: comment}, nil
	}

	if err := s.commentRepo.HardDelete(ctx, comment); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.PollCommentsKey(comment.PollID))
	return &DeleteResult{Type: models.CommentHardDeleted, CommentID: commentID}, nil
}

// ListForPoll returns a page of top-level comments, newest first, each with
// its first few replies attached. The first default-sized page is the one
// every viewer loads, so it goes through the cache.
func (s *CommentService) ListForPoll(ctx context.Context, pollID uint, page, limit int) (*models.CommentPage, error) {
	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit, defaultCommentPageSize)

	if page == 1 && limit == defaultCommentPageSize {
		var cached models.CommentPage
		err := cache.Aside(ctx, cache.PollCommentsKey(pollID), &cached, cache.PollCommentsTTL, func() error {
			fetched, err := s.fetchCommentPage(ctx, pollID, page, limit)
			if err != nil {
				return err
			}
			cached = *fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}

	return s.fetchCommentPage(ctx, pollID, page, limit)
}

func (s *CommentService) fetchCommentPage(ctx context.Context, pollID uint, page, limit int) (*models.CommentPage, error) {
	comments, err := s.commentRepo.ListTopLevelByPoll(ctx, pollID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := s.commentRepo.CountTopLevelByPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return &models.CommentPage{
		Comments:      comments,
		TotalComments: total,
		CurrentPage:   page,
		TotalPages:    totalPages(total, limit),
		HasMore:       int64(page*limit) < total,
	}, nil
}

// ListReplies returns a page of a comment's replies, oldest first.
func (s *CommentService) ListReplies(ctx context.Context, commentID uint, page, limit int) (*models.ReplyPage, error) {
	if _, err := s.commentRepo.GetLive(ctx, commentID); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit, defaultReplyPageSize)

	replies, err := s.commentRepo.ListReplies(ctx, commentID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := s.commentRepo.CountReplies(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if replies == nil {
		replies = []*models.Comment{}
	}
	return &models.ReplyPage{
		Replies:      replies,
		TotalReplies: total,
		CurrentPage:  page,
		TotalPages:   totalPages(total, limit),
		HasMore:      int64(page*limit) < total,
	}, nil
}

// ListByUser returns a page of the user's live comments, newest first, with
// the owning poll attached for display.
func (s *CommentService) ListByUser(ctx context.Context, userID uint, page, limit int) (*models.CommentPage, error) {
	page, limit = normalizePage(page, limit, defaultCommentPageSize)

	comments, err := s.commentRepo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := s.commentRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return &models.CommentPage{
		Comments:      comments,
		TotalComments: total,
		CurrentPage:   page,
		TotalPages:    totalPages(total, limit),
		HasMore:       int64(page*limit) < total,
	}, nil
}
