// Package service implements the application's business rules on top of the
// repository layer.
package service

import (
	"context"
	"strings"

	"pollhive/internal/cache"
	"pollhive/internal/models"
	"pollhive/internal/repository"
)

const maxPollOptions = 20

// PollService owns poll lifecycle and voting rules.
type PollService struct {
	pollRepo repository.PollRepository
}

type CreatePollInput struct {
	UserID   uint
	Question string
	Options  []string
	Category string
}

type UpdatePollInput struct {
	UserID   uint
	PollID   uint
	Question string
	Category string
	// Options replaces the whole option list when non-nil. Refused once the
	// poll has any votes: historical ledger entries would otherwise point at
	// option ids that no longer exist.
	Options []string
}

type VoteInput struct {
	UserID     uint
	PollID     uint
	OptionText string
}

// VoteResult carries the updated option and the refreshed poll aggregate.
type VoteResult struct {
	Vote          *models.PollVote
	UpdatedOption *models.PollOption
	Poll          *models.Poll
}

// NewPollService creates a new PollService.
func NewPollService(pollRepo repository.PollRepository) *PollService {
	return &PollService{pollRepo: pollRepo}
}

func normalizeOptions(raw []string) ([]string, error) {
	var opts []string
	seen := map[string]struct{}{}
	for _, o := range raw {
		trimmed := strings.TrimSpace(o)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			return nil, models.NewValidationError("Poll options must be unique")
		}
		seen[trimmed] = struct{}{}
		opts = append(opts, trimmed)
	}
	if len(opts) < 2 {
		return nil, models.NewValidationError("Poll must have at least two non-empty options")
	}
	if len(opts) > maxPollOptions {
		return nil, models.NewValidationError("Poll cannot have more than 20 options")
	}
	return opts, nil
}

func (s *PollService) CreatePoll(ctx context.Context, in CreatePollInput) (*models.Poll, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, models.NewValidationError("Question is required")
	}
	if in.Category == "" {
		return nil, models.NewValidationError("Category is required")
	}
	if !models.IsValidPollCategory(in.Category) {
		return nil, models.NewValidationError("Unknown poll category")
	}
	opts, err := normalizeOptions(in.Options)
	if err != nil {
		return nil, err
	}

	poll := &models.Poll{
		Question: question,
		Category: in.Category,
		UserID:   in.UserID,
	}
	for i, text := range opts {
		poll.Options = append(poll.Options, models.PollOption{Text: text, Position: i})
	}

	if err := s.pollRepo.Create(ctx, poll); err != nil {
		return nil, err
	}
	return s.GetPoll(ctx, poll.ID, in.UserID)
}

// GetPoll returns the poll enriched with total votes, creator username and,
// for an authenticated caller, their own vote. Anonymous reads go through the
// cache; per-user reads bypass it so user_vote is never served stale.
func (s *PollService) GetPoll(ctx context.Context, id uint, currentUserID uint) (*models.Poll, error) {
	if currentUserID == 0 {
		var poll models.Poll
		err := cache.Aside(ctx, cache.PollKey(id), &poll, cache.PollTTL, func() error {
			fetched, err := s.fetchEnriched(ctx, id)
			if err != nil {
				return err
			}
			poll = *fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &poll, nil
	}

	poll, err := s.fetchEnriched(ctx, id)
	if err != nil {
		return nil, err
	}
	vote, err := s.pollRepo.GetUserVote(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}
	if vote != nil {
		poll.UserVote = &models.UserVote{
			OptionID:   vote.OptionID,
			OptionText: vote.OptionText,
			VotedAt:    vote.VotedAt,
		}
	}
	return poll, nil
}

func (s *PollService) fetchEnriched(ctx context.Context, id uint) (*models.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	enrichPoll(poll)
	return poll, nil
}

// enrichPoll resolves the computed read-side fields from the loaded aggregate.
func enrichPoll(poll *models.Poll) {
	total := 0
	for _, opt := range poll.Options {
		total += opt.VoteCount
	}
	poll.TotalVotes = total
	poll.CreatorUsername = poll.User.Username
}

func (s *PollService) ListPolls(ctx context.Context) ([]*models.Poll, error) {
	polls, err := s.pollRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range polls {
		enrichPoll(p)
	}
	return polls, nil
}

func (s *PollService) ListMyPolls(ctx context.Context, userID uint) ([]*models.Poll, error) {
	polls, err := s.pollRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range polls {
		enrichPoll(p)
	}
	return polls, nil
}

func (s *PollService) ListVotedPolls(ctx context.Context, userID uint) ([]*models.Poll, error) {
	polls, err := s.pollRepo.ListVotedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range polls {
		enrichPoll(p)
	}
	return polls, nil
}

// Vote records a single vote for the user. The uniqueness check and counter
// increment happen atomically in the repository; a duplicate vote surfaces as
// a ConflictError without touching any counter.
func (s *PollService) Vote(ctx context.Context, in VoteInput) (*VoteResult, error) {
	poll, err := s.pollRepo.GetByID(ctx, in.PollID)
	if err != nil {
		return nil, err
	}

	var selected *models.PollOption
	for i := range poll.Options {
		if poll.Options[i].Text == in.OptionText {
			selected = &poll.Options[i]
			break
		}
	}
	if selected == nil {
		return nil, models.NewValidationError("Option not found in this poll")
	}

	vote, err := s.pollRepo.Vote(ctx, in.PollID, in.UserID, selected)
	if err != nil {
		return nil, err
	}

	updated, err := s.GetPoll(ctx, in.PollID, in.UserID)
	if err != nil {
		return nil, err
	}
	var updatedOption *models.PollOption
	for i := range updated.Options {
		if updated.Options[i].ID == selected.ID {
			updatedOption = &updated.Options[i]
			break
		}
	}
	return &VoteResult{Vote: vote, UpdatedOption: updatedOption, Poll: updated}, nil
}

func (s *PollService) UpdatePoll(ctx context.Context, in UpdatePollInput) (*models.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, in.PollID)
	if err != nil {
		return nil, err
	}
	if poll.UserID != in.UserID {
		return nil, models.NewForbiddenError("Poll not found or unauthorized")
	}

	if in.Question != "" {
		poll.Question = strings.TrimSpace(in.Question)
	}
	if in.Category != "" {
		if !models.IsValidPollCategory(in.Category) {
			return nil, models.NewValidationError("Unknown poll category")
		}
		poll.Category = in.Category
	}

	if in.Options != nil {
		votes, err := s.pollRepo.CountVotes(ctx, in.PollID)
		if err != nil {
			return nil, err
		}
		if votes > 0 {
			return nil, models.NewConflictError("Poll options cannot be changed after voting has started")
		}
		opts, err := normalizeOptions(in.Options)
		if err != nil {
			return nil, err
		}
		options := make([]models.PollOption, len(opts))
		for i, text := range opts {
			options[i] = models.PollOption{Text: text, Position: i}
		}
		if err := s.pollRepo.ReplaceOptions(ctx, in.PollID, options); err != nil {
			return nil, err
		}
	}

	if err := s.pollRepo.Update(ctx, poll); err != nil {
		return nil, err
	}
	return s.GetPoll(ctx, in.PollID, in.UserID)
}

func (s *PollService) DeletePoll(ctx context.Context, pollID, userID uint) (*models.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.UserID != userID {
		return nil, models.NewForbiddenError("Poll not found or unauthorized")
	}

	enrichPoll(poll)
	if err := s.pollRepo.Delete(ctx, pollID); err != nil {
		return nil, err
	}
	// Comments referencing the poll are intentionally left in place.
	return poll, nil
}
