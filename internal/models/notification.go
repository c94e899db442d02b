package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// NotificationKind is the persisted notification type.
type NotificationKind string

const (
	KindNewFollower          NotificationKind = "new_follower"
	KindGroupInvitation      NotificationKind = "group_invitation"
	KindPostLike             NotificationKind = "post_like"
	KindPostComment          NotificationKind = "post_comment"
	KindPostCommentLike      NotificationKind = "post_comment_like"
	KindPostShare            NotificationKind = "post_share"
	KindCommentReply         NotificationKind = "comment_reply"
	KindNewPostFromFollowing NotificationKind = "new_post_from_following"

	KindMiniBlogLike             NotificationKind = "mini_blog_like"
	KindMiniBlogComment          NotificationKind = "mini_blog_comment"
	KindMiniBlogCommentReply     NotificationKind = "mini_blog_comment_reply"
	KindMiniBlogCommentLike      NotificationKind = "mini_blog_comment_like"
	KindMiniBlogShare            NotificationKind = "mini_blog_share"
	KindNewMiniBlogFromFollowing NotificationKind = "new_mini_blog_from_following"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID uint             `json:"recipient_id" gorm:"index;not null"`
	Kind        NotificationKind `json:"kind" gorm:"size:40;index;not null"`
	Data        datatypes.JSON   `json:"data"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index;not null"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}

// NotificationData is implemented by every per-kind payload shape.
type NotificationData interface {
	NotificationMessage() string
}

type PostLikeData struct {
	PostID     string       `json:"post_id"`
	LikerID    uint         `json:"liker_id"`
	LikerName  string       `json:"liker_name"`
	ReactionID ReactionKind `json:"reaction_id"`
	Message    string       `json:"message"`
}

type PostCommentData struct {
	PostID        string `json:"post_id"`
	CommentID     uint   `json:"comment_id"`
	CommenterID   uint   `json:"commenter_id"`
	CommenterName string `json:"commenter_name"`
	Message       string `json:"message"`
}

type PostShareData struct {
	PostID     string `json:"post_id"`
	SharerID   uint   `json:"sharer_id"`
	SharerName string `json:"sharer_name"`
	Platform   string `json:"platform,omitempty"`
	Message    string `json:"message"`
}

type CommentLikeData struct {
	PostID     string       `json:"post_id"`
	CommentID  uint         `json:"comment_id"`
	LikerID    uint         `json:"liker_id"`
	LikerName  string       `json:"liker_name"`
	ReactionID ReactionKind `json:"reaction_id"`
	Message    string       `json:"message"`
}

type CommentReplyData struct {
	PostID      string `json:"post_id"`
	CommentID   uint   `json:"comment_id"`
	ReplyID     uint   `json:"reply_id"`
	ReplierID   uint   `json:"replier_id"`
	ReplierName string `json:"replier_name"`
	Message     string `json:"message"`
}

type NewFollowerData struct {
	FollowerID   uint   `json:"follower_id"`
	FollowerName string `json:"follower_name"`
	Message      string `json:"message"`
}

type NewPostData struct {
	PostID          string `json:"post_id"`
	PostCreatorID   uint   `json:"post_creator_id"`
	PostCreatorName string `json:"post_creator_name"`
	Message         string `json:"message"`
}

type GroupInvitationData struct {
	GroupID     uint   `json:"group_id"`
	GroupName   string `json:"group_name"`
	InviterID   uint   `json:"inviter_id"`
	InviterName string `json:"inviter_name"`
	Message     string `json:"message"`
}

func (d PostLikeData) NotificationMessage() string        { return d.Message }
func (d PostCommentData) NotificationMessage() string     { return d.Message }
func (d PostShareData) NotificationMessage() string       { return d.Message }
func (d CommentLikeData) NotificationMessage() string     { return d.Message }
func (d CommentReplyData) NotificationMessage() string    { return d.Message }
func (d NewFollowerData) NotificationMessage() string     { return d.Message }
func (d NewPostData) NotificationMessage() string         { return d.Message }
func (d GroupInvitationData) NotificationMessage() string { return d.Message }

// newDataFor returns an empty payload of the shape stored for kind.
func newDataFor(kind NotificationKind) (NotificationData, error) {
	switch kind {
	case KindPostLike, KindMiniBlogLike:
		return &PostLikeData{}, nil
	case KindPostComment, KindMiniBlogComment:
		return &PostCommentData{}, nil
	case KindPostShare, KindMiniBlogShare:
		return &PostShareData{}, nil
	case KindPostCommentLike, KindMiniBlogCommentLike:
		return &CommentLikeData{}, nil
	case KindCommentReply, KindMiniBlogCommentReply:
		return &CommentReplyData{}, nil
	case KindNewFollower:
		return &NewFollowerData{}, nil
	case KindNewPostFromFollowing, KindNewMiniBlogFromFollowing:
		return &NewPostData{}, nil
	case KindGroupInvitation:
		return &GroupInvitationData{}, nil
	default:
		return nil, fmt.Errorf("unknown notification kind %q", kind)
	}
}

// DecodeData unmarshals Data into the payload shape of the notification's kind.
func (n *Notification) DecodeData() (NotificationData, error) {
	data, err := newDataFor(n.Kind)
	if err != nil {
		return nil, err
	}
	if len(n.Data) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(n.Data, data); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", n.Kind, err)
	}
	return data, nil
}

// NotificationFilter selects a page of a recipient's notifications.
// Sorts are "field:direction" pairs, e.g. "created_at:desc".
type NotificationFilter struct {
	Page    int               `query:"page"`
	PerPage int               `query:"per_page"`
	Kind    *NotificationKind `query:"kind"`
	IsRead  *bool             `query:"is_read"`
	Sorts   []string          `query:"sort"`
}

// NotificationPage is one page of a filtered listing.
type NotificationPage struct {
	Data    []Notification `json:"data"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// GroupedNotifications buckets a recipient's notifications by age.
type GroupedNotifications struct {
	Today     []Notification `json:"today"`
	Yesterday []Notification `json:"yesterday"`
	ThisWeek  []Notification `json:"thisWeek"`
	Older     []Notification `json:"older"`
}
