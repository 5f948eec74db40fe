package model

import "time"

// previewLength String 截取的字符数
const previewLength = 15

// Post 作者可编辑 text/group/image；created_at 只在插入时赋值
type Post struct {
	ID        uint64    `gorm:"primaryKey;index:idx_post_time_id,priority:2,sort:desc" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_post_time_id,priority:1,sort:desc;<-:create" json:"pub_date"`
	UpdatedAt time.Time `json:"-"`
	AuthorID  uint64    `gorm:"not null;index:idx_author_time" json:"-"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	GroupID   *uint64   `gorm:"index" json:"-"`
	Group     *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group"`
	Image     string    `gorm:"size:255" json:"image,omitempty"`
	Thumbnail string    `gorm:"size:255" json:"thumbnail,omitempty"`
}

func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > previewLength {
		r = r[:previewLength]
	}
	return string(r)
}
