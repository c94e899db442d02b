// Package fakes holds in-memory stand-ins for stores that need a live
// server in production.
package fakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostStore is an in-memory repositories.PostRepository.
type PostStore struct {
	mu    sync.Mutex
	posts map[string]models.Post
}

var _ repositories.PostRepository = (*PostStore)(nil)

func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]models.Post)}
}

func (s *PostStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = primitive.NewObjectID()
	post.Kind = post.KindOrDefault()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	s.posts[post.ID.Hex()] = *post
	return nil
}

func (s *PostStore) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", id, repositories.ErrNotFound)
	}
	return &post, nil
}

func (s *PostStore) IncrementCommentsCount(_ context.Context, postID string) error {
	return s.update(postID, func(p *models.Post) { p.CommentsCount++ })
}

func (s *PostStore) IncrementSharesCount(_ context.Context, postID string) error {
	return s.update(postID, func(p *models.Post) { p.SharesCount++ })
}

func (s *PostStore) update(postID string, fn func(*models.Post)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return fmt.Errorf("post %q: %w", postID, repositories.ErrNotFound)
	}
	fn(&post)
	s.posts[postID] = post
	return nil
}

// Seed stores post as is and returns its hex id. A zero ID is assigned.
func (s *PostStore) Seed(post models.Post) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	s.posts[post.ID.Hex()] = post
	return post.ID.Hex()
}

// Publisher records every published envelope.
type Publisher struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (p *Publisher) Publish(_ context.Context, env events.Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, env)
}

func (p *Publisher) Events() []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Envelope(nil), p.events...)
}
