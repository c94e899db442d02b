package models

import "time"

// Comment represents a comment on a post or mini-blog. A nil ParentID marks
// a top-level comment.
type Comment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SubjectID   string    `json:"subject_id" gorm:"size:64;index:idx_comment_subject"`
	SubjectType PostKind  `json:"subject_type" gorm:"size:20;index:idx_comment_subject"`
	ParentID    *uint     `json:"parent_id" gorm:"index"`
	UserID      uint      `json:"user_id" gorm:"index"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// ReplyNode is a reply under a top-level comment.
type ReplyNode struct {
	ID        uint              `json:"id"`
	ParentID  uint              `json:"parent_id"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
	Author    UserCompact       `json:"author"`
	Reactions ReactionAggregate `json:"reactions"`
}

// CommentNode is a top-level comment with its replies, oldest reply first.
type CommentNode struct {
	ID        uint              `json:"id"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
	Author    UserCompact       `json:"author"`
	Reactions ReactionAggregate `json:"reactions"`
	Replies   []ReplyNode       `json:"replies"`
}

// CreateCommentRequest defines the request body for commenting on a post or
// replying to a comment (ParentID set).
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=500"`
	ParentID *uint  `json:"parent_id,omitempty"`
}
