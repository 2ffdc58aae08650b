package repository

import (
	"context"
	"errors"

	"pollhive/internal/cache"
	"pollhive/internal/middleware"
	"pollhive/internal/models"

	"gorm.io/gorm"
)

// PollRepository defines persistence operations for polls and votes.
type PollRepository interface {
	Create(ctx context.Context, poll *models.Poll) error
	GetByID(ctx context.Context, id uint) (*models.Poll, error)
	List(ctx context.Context) ([]*models.Poll, error)
	ListByCreator(ctx context.Context, userID uint) ([]*models.Poll, error)
	ListVotedBy(ctx context.Context, userID uint) ([]*models.Poll, error)
	Update(ctx context.Context, poll *models.Poll) error
	ReplaceOptions(ctx context.Context, pollID uint, options []models.PollOption) error
	Delete(ctx context.Context, id uint) error
	Vote(ctx context.Context, pollID, userID uint, option *models.PollOption) (*models.PollVote, error)
	GetUserVote(ctx context.Context, pollID, userID uint) (*models.PollVote, error)
	CountVotes(ctx context.Context, pollID uint) (int64, error)
}

type pollRepository struct {
	db *gorm.DB
}

// NewPollRepository returns a new PollRepository implementation.
func NewPollRepository(db *gorm.DB) PollRepository {
	return &pollRepository{db: db}
}

func (r *pollRepository) Create(ctx context.Context, poll *models.Poll) error {
	if err := r.db.WithContext(ctx).Create(poll).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.PollsListKey())
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uint) (*models.Poll, error) {
	var poll models.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("User").
		First(&poll, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Poll", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &poll, nil
}

func (r *pollRepository) List(ctx context.Context) ([]*models.Poll, error) {
	var polls []*models.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("User").
		Order("created_at DESC").
		Find(&polls).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return polls, nil
}

func (r *pollRepository) ListByCreator(ctx context.Context, userID uint) ([]*models.Poll, error) {
	var polls []*models.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&polls).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return polls, nil
}

// ListVotedBy reads through the legacy voted-by set rather than the vote
// ledger; the two are written in the same transaction so they agree.
func (r *pollRepository) ListVotedBy(ctx context.Context, userID uint) ([]*models.Poll, error) {
	var polls []*models.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("User").
		Joins("JOIN poll_voters ON poll_voters.poll_id = polls.id AND poll_voters.user_id = ?", userID).
		Order("polls.created_at DESC").
		Find(&polls).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return polls, nil
}

func (r *pollRepository) Update(ctx context.Context, poll *models.Poll) error {
	if err := r.db.WithContext(ctx).Omit("Options", "User").Save(poll).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePoll(ctx, poll.ID)
	return nil
}

// ReplaceOptions swaps the full option list of a poll. Callers must ensure
// the poll has no votes; historical vote rows would otherwise reference
// option ids that no longer exist.
func (r *pollRepository) ReplaceOptions(ctx context.Context, pollID uint, options []models.PollOption) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		for i := range options {
			options[i].ID = 0
			options[i].PollID = pollID
			options[i].Position = i
		}
		return tx.Create(&options).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePoll(ctx, pollID)
	return nil
}

func (r *pollRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Poll{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePoll(ctx, id)
	return nil
}

// Vote records a user's vote in a single transaction: the ledger insert is
// guarded by the unique (poll_id, user_id) index, so two concurrent voters
// cannot both pass the "not yet voted" check, and the option counter moves
// with an atomic in-place increment rather than a read-modify-write.
func (r *pollRepository) Vote(ctx context.Context, pollID, userID uint, option *models.PollOption) (*models.PollVote, error) {
	vote := &models.PollVote{
		PollID:     pollID,
		UserID:     userID,
		OptionID:   option.ID,
		OptionText: option.Text,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PollOption{}).
			Where("id = ?", option.ID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error; err != nil {
			return err
		}
		// Legacy voted-by set, kept for backward compatibility.
		return tx.Create(&models.PollVoter{PollID: pollID, UserID: userID}).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			middleware.VoteConflicts.Inc()
			return nil, models.NewConflictError("You have already voted on this poll")
		}
		return nil, models.NewInternalError(err)
	}

	cache.InvalidatePoll(ctx, pollID)
	return vote, nil
}

func (r *pollRepository) GetUserVote(ctx context.Context, pollID, userID uint) (*models.PollVote, error) {
	var vote models.PollVote
	err := r.db.WithContext(ctx).
		Where("poll_id = ? AND user_id = ?", pollID, userID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &vote, nil
}

func (r *pollRepository) CountVotes(ctx context.Context, pollID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PollVote{}).
		Where("poll_id = ?", pollID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
