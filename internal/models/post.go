package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostKind distinguishes regular posts from mini-blogs. Both live in the
// same collection and share comments and reactions.
type PostKind string

const (
	PostKindPost     PostKind = "post"
	PostKindMiniBlog PostKind = "mini_blog"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint               `json:"user_id" bson:"user_id"`
	Kind          PostKind           `json:"kind" bson:"kind"`
	Content       string             `json:"content" bson:"content"`
	ImageURLs     []string           `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	VideoURLs     []string           `json:"video_urls,omitempty" bson:"video_urls,omitempty"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	SharesCount   int                `json:"shares_count" bson:"shares_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// KindOrDefault treats documents written before Kind existed as posts.
func (p *Post) KindOrDefault() PostKind {
	if p.Kind == "" {
		return PostKindPost
	}
	return p.Kind
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Kind      PostKind `json:"kind,omitempty" validate:"omitempty,oneof=post mini_blog"`
	Content   string   `json:"content" validate:"required,min=1,max=280"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	VideoURLs []string `json:"video_urls,omitempty" validate:"omitempty,dive,url"`
}

// SharePostRequest defines the request body for sharing a post
type SharePostRequest struct {
	Platform string `json:"platform,omitempty" validate:"omitempty,max=30"`
}
