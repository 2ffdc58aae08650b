package models

import (
	"time"

	"gorm.io/gorm"
)

// PollCategories is the fixed set of labels a poll can be filed under.
var PollCategories = []string{
	"Technology",
	"Entertainment",
	"Science",
	"Sports",
	"Food",
	"Travel & Leisure",
	"Food & Drink",
	"Media",
	"Lifestyle",
	"Education",
	"Health",
	"Politics",
	"Other",
}

// IsValidPollCategory reports whether category is one of PollCategories.
func IsValidPollCategory(category string) bool {
	for _, c := range PollCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Poll represents a question with a fixed option list users vote on.
type Poll struct {
	ID       uint         `gorm:"primaryKey" json:"id"`
	Question string       `gorm:"not null" json:"question"`
	Category string       `gorm:"not null;index" json:"category"`
	UserID   uint         `gorm:"not null;index" json:"user_id"`
	User     User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Options  []PollOption `gorm:"foreignKey:PollID" json:"options"`
	// TotalVotes is not persisted; computed at read time as the sum of option counts.
	TotalVotes int `gorm:"-" json:"total_votes"`
	// CreatorUsername is resolved from the User join at read time.
	CreatorUsername string `gorm:"-" json:"creator_username,omitempty"`
	// UserVote carries the requesting user's own vote, when they have one.
	UserVote  *UserVote      `gorm:"-" json:"user_vote,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PollOption is a single answer on a poll with its running vote counter.
type PollOption struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PollID    uint   `gorm:"not null;index" json:"poll_id"`
	Text      string `gorm:"not null" json:"option"`
	VoteCount int    `gorm:"not null;default:0" json:"votes"`
	Position  int    `gorm:"not null;default:0" json:"-"`
}

// PollVote is the authoritative ledger of which user chose which option.
// The unique (poll_id, user_id) index is what enforces one vote per user.
type PollVote struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	PollID     uint      `gorm:"not null;uniqueIndex:idx_poll_votes_poll_user" json:"poll_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_poll_votes_poll_user" json:"user_id"`
	OptionID   uint      `gorm:"not null" json:"option_id"`
	OptionText string    `gorm:"not null" json:"option_text"`
	VotedAt    time.Time `gorm:"autoCreateTime" json:"voted_at"`
}

// PollVoter is the legacy voted-by set, kept in lockstep with PollVote for
// backward compatibility and the "polls I voted on" listing.
type PollVoter struct {
	PollID uint `gorm:"primaryKey;autoIncrement:false" json:"poll_id"`
	UserID uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
}

// UserVote is the read-side projection of a PollVote returned with GetPoll.
type UserVote struct {
	OptionID   uint      `json:"option_id"`
	OptionText string    `json:"option_text"`
	VotedAt    time.Time `json:"voted_at"`
}
