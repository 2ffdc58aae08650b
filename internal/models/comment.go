package models

import (
	"time"
)

// MaxCommentLength caps comment content after trimming.
const MaxCommentLength = 1000

// DeletedCommentPlaceholder replaces the content of a soft-deleted comment.
const DeletedCommentPlaceholder = "[Comment deleted by author]"

// Deletion result tags returned by the delete endpoint.
const (
	CommentSoftDeleted = "soft_deleted"
	CommentHardDeleted = "hard_deleted"
)

// Comment is a threaded comment on a poll. A nil ParentCommentID marks a
// top-level comment; replies reference their parent and bump its ReplyCount.
//
// Deletion is asymmetric: a comment that still has live replies is tombstoned
// in place (IsDeleted + placeholder content) so the thread stays navigable; a
// childless comment is removed outright. Soft-deleted comments accept no
// further edits and cannot be un-deleted.
type Comment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	PollID          uint       `gorm:"not null;index:idx_comments_poll_created" json:"poll_id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	User            User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Poll            *Poll      `gorm:"foreignKey:PollID" json:"poll,omitempty"`
	ParentCommentID *uint      `gorm:"index" json:"parent_comment_id"`
	IsDeleted       bool       `gorm:"not null;default:false" json:"is_deleted"`
	DeletedAt       *time.Time `json:"deleted_at"`
	ReplyCount      int        `gorm:"not null;default:0" json:"reply_count"`
	// Replies holds up to the first few live replies when listing poll
	// comments; it is populated by the repository, not by GORM.
	Replies        []*Comment `gorm:"-" json:"replies,omitempty"`
	HasMoreReplies bool       `gorm:"-" json:"has_more_replies"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CommentPage is the pagination envelope for comment listings.
type CommentPage struct {
	Comments      []*Comment `json:"comments"`
	TotalComments int64      `json:"total_comments"`
	CurrentPage   int        `json:"current_page"`
	TotalPages    int        `json:"total_pages"`
	HasMore       bool       `json:"has_more"`
}

// ReplyPage is the pagination envelope for reply listings.
type ReplyPage struct {
	Replies      []*Comment `json:"replies"`
	TotalReplies int64      `json:"total_replies"`
	CurrentPage  int        `json:"current_page"`
	TotalPages   int        `json:"total_pages"`
	HasMore      bool       `json:"has_more"`
}
