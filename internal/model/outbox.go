package model

import "time"

const (
	EventFollow         = "follow"
	EventUnfollow       = "unfollow"
	EventPostCreated    = "post_created"
	EventCommentCreated = "comment_created"
)

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// Outbox 事件表，与业务写入同一事务落库，由 relay 进程投递
type Outbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:32;not null"`
	Key       string `gorm:"size:64;not null"`
	Payload   string `gorm:"type:text;not null"`
	Status    int8   `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Outbox) TableName() string { return "outbox" }
