package repository

import (
	"context"
	"errors"
	"testing"

	"pollhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteRecordsLedgerAndCounter(t *testing.T) {
	db := newTestDB(t)
	repo := NewPollRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	poll := seedPoll(t, db, alice.ID, "Go", "Rust", "Zig")

	vote, err := repo.Vote(ctx, poll.ID, alice.ID, &poll.Options[0])
	require.NoError(t, err)
	assert.Equal(t, poll.Options[0].ID, vote.OptionID)
	assert.Equal(t, "Go", vote.OptionText)
	assert.False(t, vote.VotedAt.IsZero())

	_, err = repo.Vote(ctx, poll.ID, bob.ID, &poll.Options[1])
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, poll.ID)
	require.NoError(t, err)

	sum := 0
	for _, opt := range got.Options {
		sum += opt.VoteCount
	}
	ledger, err := repo.CountVotes(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(sum), ledger, "option counters must sum to the ledger size")
	assert.Equal(t, 1, got.Options[0].VoteCount)
	assert.Equal(t, 1, got.Options[1].VoteCount)
	assert.Equal(t, 0, got.Options[2].VoteCount)
}

func TestVoteDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewPollRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	poll := seedPoll(t, db, alice.ID, "Tea", "Coffee")

	_, err := repo.Vote(ctx, poll.ID, alice.ID, &poll.Options[0])
	require.NoError(t, err)

	// A second vote, even for a different option, must be rejected without
	// touching any counter.
	_, err = repo.Vote(ctx, poll.ID, alice.ID, &poll.Options[1])
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CONFLICT", appErr.Code)

	got, err := repo.GetByID(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Options[0].VoteCount)
	assert.Equal(t, 0, got.Options[1].VoteCount)

	ledger, err := repo.CountVotes(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ledger)
}

func TestGetUserVote(t *testing.T) {
	db := newTestDB(t)
	repo := NewPollRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	poll := seedPoll(t, db, alice.ID, "Yes", "No")

	_, err := repo.Vote(ctx, poll.ID, alice.ID, &poll.Options[1])
	require.NoError(t, err)

	vote, err := repo.GetUserVote(ctx, poll.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, "No", vote.OptionText)

	none, err := repo.GetUserVote(ctx, poll.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestListVotedBy(t *testing.T) {
	db := newTestDB(t)
	repo := NewPollRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	pollA := seedPoll(t, db, alice.ID, "A1", "A2")
	pollB := seedPoll(t, db, alice.ID, "B1", "B2")

	_, err := repo.Vote(ctx, pollA.ID, bob.ID, &pollA.Options[0])
	require.NoError(t, err)

	voted, err := repo.ListVotedBy(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, voted, 1)
	assert.Equal(t, pollA.ID, voted[0].ID)

	none, err := repo.ListVotedBy(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	_ = pollB
}

func TestReplaceOptions(t *testing.T) {
	db := newTestDB(t)
	repo := NewPollRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	poll := seedPoll(t, db, alice.ID, "Old A", "Old B")

	err := repo.ReplaceOptions(ctx, poll.ID, []models.PollOption{
		{Text: "New A"},
		{Text: "New B"},
		{Text: "New C"},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, poll.ID)
	require.NoError(t, err)
	require.Len(t, got.Options, 3)
	assert.Equal(t, "New A", got.Options[0].Text)
	assert.Equal(t, "New C", got.Options[2].Text)
	for i, opt := range got.Options {
		assert.Equal(t, i, opt.Position)
		assert.Equal(t, 0, opt.VoteCount)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewPollRepository(db)

	_, err := repo.GetByID(context.Background(), 9999)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestDeletePoll(t *testing.T) {
	db := newTestDB(t)
	repo := NewPollRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	poll := seedPoll(t, db, alice.ID, "X", "Y")

	require.NoError(t, repo.Delete(ctx, poll.ID))

	_, err := repo.GetByID(ctx, poll.ID)
	require.Error(t, err)
}

func TestListByCreator(t *testing.T) {
	db := newTestDB(t)
	repo := NewPollRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	seedPoll(t, db, alice.ID, "A", "B")
	seedPoll(t, db, alice.ID, "C", "D")
	seedPoll(t, db, bob.ID, "E", "F")

	mine, err := repo.ListByCreator(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
