package model

import "time"

// Follow UserID 关注 AuthorID；(user_id, author_id) 唯一
type Follow struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uk_follow_pair,priority:1"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorID  uint64    `gorm:"not null;uniqueIndex:uk_follow_pair,priority:2;index:idx_follow_author"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
}

// TableName sets table name for Follow
func (Follow) TableName() string {
	return "follows"
}
