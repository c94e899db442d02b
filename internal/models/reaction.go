package models

import (
	"fmt"
	"time"
)

// ReactionKind is an ordinal; the lowest value means "no active reaction".
type ReactionKind int

const (
	ReactionNone ReactionKind = iota + 1
	ReactionLike
	ReactionLove
	ReactionHaha
	ReactionWow
	ReactionSad
)

var reactionNames = map[ReactionKind]string{
	ReactionNone: "none",
	ReactionLike: "like",
	ReactionLove: "love",
	ReactionHaha: "haha",
	ReactionWow:  "wow",
	ReactionSad:  "sad",
}

// Active reports whether the kind counts towards aggregates.
func (k ReactionKind) Active() bool {
	return k > ReactionNone
}

func (k ReactionKind) Valid() bool {
	_, ok := reactionNames[k]
	return ok
}

func (k ReactionKind) String() string {
	if name, ok := reactionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("reaction(%d)", int(k))
}

// SubjectType identifies what a reaction points at.
type SubjectType string

const (
	SubjectPost    SubjectType = "post"
	SubjectComment SubjectType = "comment"
)

// Reaction is keyed by (subject, user): at most one row per user per subject.
// Unliking stores ReactionNone instead of deleting the row.
type Reaction struct {
	SubjectID    string       `json:"subject_id" gorm:"primaryKey;size:64"`
	SubjectType  SubjectType  `json:"subject_type" gorm:"primaryKey;size:20"`
	UserID       uint         `json:"user_id" gorm:"primaryKey;autoIncrement:false;index"`
	ReactionKind ReactionKind `json:"reaction_kind" gorm:"not null;default:1"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ReactionCount is the number of active reactions of one kind.
type ReactionCount struct {
	ReactionKind ReactionKind `json:"reaction_id"`
	Count        int64        `json:"count"`
}

// ReactionAggregate is the read model for a subject's reactions.
// Total always equals the sum of Reactions[].Count.
type ReactionAggregate struct {
	Total     int64           `json:"total"`
	Reactions []ReactionCount `json:"reactions"`
}

// NewReactionAggregate derives Total from the per-kind counts, dropping
// inactive kinds and empty groups.
func NewReactionAggregate(counts []ReactionCount) ReactionAggregate {
	agg := ReactionAggregate{Reactions: make([]ReactionCount, 0, len(counts))}
	for _, c := range counts {
		if !c.ReactionKind.Active() || c.Count <= 0 {
			continue
		}
		agg.Reactions = append(agg.Reactions, c)
		agg.Total += c.Count
	}
	return agg
}

// Reactor is a user with an active reaction on a subject.
type Reactor struct {
	UserCompact
	ReactionKind ReactionKind `json:"reaction_id"`
}

// ReactRequest defines the request body for reacting to a post or comment
type ReactRequest struct {
	ReactionID int `json:"reaction_id" validate:"required,min=1,max=6"`
}
