package service

import (
	"context"
	"errors"
	"testing"

	"pollhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pollRepoStub is a stub for repository.PollRepository.
type pollRepoStub struct {
	createFn         func(context.Context, *models.Poll) error
	getByIDFn        func(context.Context, uint) (*models.Poll, error)
	listFn           func(context.Context) ([]*models.Poll, error)
	listByCreatorFn  func(context.Context, uint) ([]*models.Poll, error)
	listVotedByFn    func(context.Context, uint) ([]*models.Poll, error)
	updateFn         func(context.Context, *models.Poll) error
	replaceOptionsFn func(context.Context, uint, []models.PollOption) error
	deleteFn         func(context.Context, uint) error
	voteFn           func(context.Context, uint, uint, *models.PollOption) (*models.PollVote, error)
	getUserVoteFn    func(context.Context, uint, uint) (*models.PollVote, error)
	countVotesFn     func(context.Context, uint) (int64, error)
}

func (s *pollRepoStub) Create(ctx context.Context, poll *models.Poll) error {
	return s.createFn(ctx, poll)
}
func (s *pollRepoStub) GetByID(ctx context.Context, id uint) (*models.Poll, error) {
	return s.getByIDFn(ctx, id)
}
func (s *pollRepoStub) List(ctx context.Context) ([]*models.Poll, error) {
	return s.listFn(ctx)
}
func (s *pollRepoStub) ListByCreator(ctx context.Context, userID uint) ([]*models.Poll, error) {
	return s.listByCreatorFn(ctx, userID)
}
func (s *pollRepoStub) ListVotedBy(ctx context.Context, userID uint) ([]*models.Poll, error) {
	return s.listVotedByFn(ctx, userID)
}
func (s *pollRepoStub) Update(ctx context.Context, poll *models.Poll) error {
	return s.updateFn(ctx, poll)
}
func (s *pollRepoStub) ReplaceOptions(ctx context.Context, pollID uint, options []models.PollOption) error {
	return s.replaceOptionsFn(ctx, pollID, options)
}
func (s *pollRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *pollRepoStub) Vote(ctx context.Context, pollID, userID uint, option *models.PollOption) (*models.PollVote, error) {
	return s.voteFn(ctx, pollID, userID, option)
}
func (s *pollRepoStub) GetUserVote(ctx context.Context, pollID, userID uint) (*models.PollVote, error) {
	return s.getUserVoteFn(ctx, pollID, userID)
}
func (s *pollRepoStub) CountVotes(ctx context.Context, pollID uint) (int64, error) {
	return s.countVotesFn(ctx, pollID)
}

func noopPollRepo() *pollRepoStub {
	return &pollRepoStub{
		createFn: func(_ context.Context, p *models.Poll) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Poll, error) {
			return &models.Poll{
				ID:       id,
				Question: "Which one?",
				Category: "Technology",
				UserID:   1,
				User:     models.User{ID: 1, Username: "alice"},
				Options: []models.PollOption{
					{ID: 10, PollID: id, Text: "Go", VoteCount: 3, Position: 0},
					{ID: 11, PollID: id, Text: "Rust", VoteCount: 1, Position: 1},
				},
			}, nil
		},
		listFn:          func(_ context.Context) ([]*models.Poll, error) { return nil, nil },
		listByCreatorFn: func(_ context.Context, _ uint) ([]*models.Poll, error) { return nil, nil },
		listVotedByFn:   func(_ context.Context, _ uint) ([]*models.Poll, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.Poll) error { return nil },
		replaceOptionsFn: func(_ context.Context, _ uint, _ []models.PollOption) error {
			return nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		voteFn: func(_ context.Context, pollID, userID uint, option *models.PollOption) (*models.PollVote, error) {
			return &models.PollVote{PollID: pollID, UserID: userID, OptionID: option.ID, OptionText: option.Text}, nil
		},
		getUserVoteFn: func(_ context.Context, _, _ uint) (*models.PollVote, error) { return nil, nil },
		countVotesFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestPollService_CreatePoll_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPollService(noopPollRepo())
	ctx := context.Background()

	t.Run("empty question", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePoll(ctx, CreatePollInput{UserID: 1, Category: "Technology", Options: []string{"a", "b"}})
		assertValidationError(t, err)
	})

	t.Run("missing category", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePoll(ctx, CreatePollInput{UserID: 1, Question: "Q?", Options: []string{"a", "b"}})
		assertValidationError(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePoll(ctx, CreatePollInput{UserID: 1, Question: "Q?", Category: "Astrology", Options: []string{"a", "b"}})
		assertValidationError(t, err)
	})

	t.Run("single option after trimming", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePoll(ctx, CreatePollInput{UserID: 1, Question: "Q?", Category: "Technology", Options: []string{"a", "  ", ""}})
		assertValidationError(t, err)
	})

	t.Run("duplicate options", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePoll(ctx, CreatePollInput{UserID: 1, Question: "Q?", Category: "Technology", Options: []string{"a", " a "}})
		assertValidationError(t, err)
	})

	t.Run("too many options", func(t *testing.T) {
		t.Parallel()
		opts := make([]string, 21)
		for i := range opts {
			opts[i] = string(rune('a' + i))
		}
		_, err := svc.CreatePoll(ctx, CreatePollInput{UserID: 1, Question: "Q?", Category: "Technology", Options: opts})
		assertValidationError(t, err)
	})
}

func TestPollService_CreatePoll_Success(t *testing.T) {
	t.Parallel()

	repo := noopPollRepo()
	var created *models.Poll
	repo.createFn = func(_ context.Context, p *models.Poll) error {
		p.ID = 7
		created = p
		return nil
	}
	svc := NewPollService(repo)

	poll, err := svc.CreatePoll(context.Background(), CreatePollInput{
		UserID:   1,
		Question: "  Best language?  ",
		Category: "Technology",
		Options:  []string{" Go ", "Rust"},
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Best language?", created.Question)
	require.Len(t, created.Options, 2)
	assert.Equal(t, "Go", created.Options[0].Text)
	assert.Equal(t, 0, created.Options[0].Position)
	assert.Equal(t, 1, created.Options[1].Position)
	assert.NotNil(t, poll)
}

func TestPollService_GetPoll_Enrichment(t *testing.T) {
	t.Parallel()

	svc := NewPollService(noopPollRepo())

	poll, err := svc.GetPoll(context.Background(), 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, poll.TotalVotes)
	assert.Equal(t, "alice", poll.CreatorUsername)
	assert.Nil(t, poll.UserVote)
}

func TestPollService_GetPoll_UserVote(t *testing.T) {
	t.Parallel()

	repo := noopPollRepo()
	repo.getUserVoteFn = func(_ context.Context, pollID, userID uint) (*models.PollVote, error) {
		return &models.PollVote{PollID: pollID, UserID: userID, OptionID: 11, OptionText: "Rust"}, nil
	}
	svc := NewPollService(repo)

	poll, err := svc.GetPoll(context.Background(), 5, 2)
	require.NoError(t, err)
	require.NotNil(t, poll.UserVote)
	assert.Equal(t, uint(11), poll.UserVote.OptionID)
	assert.Equal(t, "Rust", poll.UserVote.OptionText)
}

func TestPollService_Vote(t *testing.T) {
	t.Parallel()

	t.Run("option not in poll is a validation error", func(t *testing.T) {
		t.Parallel()
		svc := NewPollService(noopPollRepo())
		_, err := svc.Vote(context.Background(), VoteInput{UserID: 2, PollID: 5, OptionText: "Zig"})
		assertValidationError(t, err)
	})

	t.Run("conflict propagates", func(t *testing.T) {
		t.Parallel()
		repo := noopPollRepo()
		repo.voteFn = func(_ context.Context, _, _ uint, _ *models.PollOption) (*models.PollVote, error) {
			return nil, models.NewConflictError("You have already voted on this poll")
		}
		svc := NewPollService(repo)
		_, err := svc.Vote(context.Background(), VoteInput{UserID: 2, PollID: 5, OptionText: "Go"})
		assertAppErrorCode(t, err, "CONFLICT")
	})

	t.Run("success returns updated option and poll", func(t *testing.T) {
		t.Parallel()
		repo := noopPollRepo()
		repo.getUserVoteFn = func(_ context.Context, pollID, userID uint) (*models.PollVote, error) {
			return &models.PollVote{PollID: pollID, UserID: userID, OptionID: 10, OptionText: "Go"}, nil
		}
		svc := NewPollService(repo)

		result, err := svc.Vote(context.Background(), VoteInput{UserID: 2, PollID: 5, OptionText: "Go"})
		require.NoError(t, err)
		require.NotNil(t, result.Vote)
		assert.Equal(t, "Go", result.Vote.OptionText)
		require.NotNil(t, result.UpdatedOption)
		assert.Equal(t, uint(10), result.UpdatedOption.ID)
		require.NotNil(t, result.Poll)
		require.NotNil(t, result.Poll.UserVote)
	})
}

func TestPollService_UpdatePoll(t *testing.T) {
	t.Parallel()

	t.Run("non-owner reads as not found", func(t *testing.T) {
		t.Parallel()
		svc := NewPollService(noopPollRepo())
		_, err := svc.UpdatePoll(context.Background(), UpdatePollInput{UserID: 99, PollID: 5, Question: "New?"})
		assertAppErrorCode(t, err, "FORBIDDEN")
	})

	t.Run("options locked once votes exist", func(t *testing.T) {
		t.Parallel()
		repo := noopPollRepo()
		repo.countVotesFn = func(_ context.Context, _ uint) (int64, error) { return 4, nil }
		svc := NewPollService(repo)
		_, err := svc.UpdatePoll(context.Background(), UpdatePollInput{
			UserID: 1, PollID: 5, Options: []string{"X", "Y"},
		})
		assertAppErrorCode(t, err, "CONFLICT")
	})

	t.Run("options replaced when no votes", func(t *testing.T) {
		t.Parallel()
		repo := noopPollRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Poll, error) {
			return &models.Poll{
				ID: id, Question: "Old?", Category: "Technology", UserID: 1,
				User:    models.User{ID: 1, Username: "alice"},
				Options: []models.PollOption{{ID: 10, Text: "Old", Position: 0}, {ID: 11, Text: "Older", Position: 1}},
			}, nil
		}
		var replaced []models.PollOption
		repo.replaceOptionsFn = func(_ context.Context, _ uint, options []models.PollOption) error {
			replaced = options
			return nil
		}
		svc := NewPollService(repo)

		_, err := svc.UpdatePoll(context.Background(), UpdatePollInput{
			UserID: 1, PollID: 5, Options: []string{"X", "Y", "Z"},
		})
		require.NoError(t, err)
		require.Len(t, replaced, 3)
		assert.Equal(t, "X", replaced[0].Text)
	})

	t.Run("empty fields stay unchanged", func(t *testing.T) {
		t.Parallel()
		repo := noopPollRepo()
		var saved *models.Poll
		repo.updateFn = func(_ context.Context, p *models.Poll) error {
			saved = p
			return nil
		}
		svc := NewPollService(repo)

		_, err := svc.UpdatePoll(context.Background(), UpdatePollInput{UserID: 1, PollID: 5})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "Which one?", saved.Question)
		assert.Equal(t, "Technology", saved.Category)
	})
}

func TestPollService_DeletePoll(t *testing.T) {
	t.Parallel()

	t.Run("non-owner reads as not found", func(t *testing.T) {
		t.Parallel()
		svc := NewPollService(noopPollRepo())
		_, err := svc.DeletePoll(context.Background(), 5, 99)
		assertAppErrorCode(t, err, "FORBIDDEN")
	})

	t.Run("owner gets the deleted poll back", func(t *testing.T) {
		t.Parallel()
		repo := noopPollRepo()
		deleted := false
		repo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewPollService(repo)

		poll, err := svc.DeletePoll(context.Background(), 5, 1)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, 4, poll.TotalVotes)
		assert.Equal(t, "alice", poll.CreatorUsername)
	})
}
