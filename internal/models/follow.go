package models

import "time"

// Follow is a one-way edge: FollowerID receives FollowingID's broadcasts.
// The pair is the key, so a user follows another at most once.
type Follow struct {
	FollowerID  uint      `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FollowingID uint      `json:"following_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt   time.Time `json:"created_at"`
}
