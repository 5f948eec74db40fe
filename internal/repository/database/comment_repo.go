package database

import (
	"context"

	"gorm.io/gorm"

	"yatube/internal/model"
)

type CommentRepository struct {
	DB *gorm.DB
}

// Create 评论与 outbox 事件同一事务写入
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Post").Create(c).Error; err != nil {
			return err
		}
		return insertOutbox(tx, model.EventCommentCreated, c.PostID, map[string]any{
			"comment_id": c.ID,
			"post_id":    c.PostID,
			"author_id":  c.AuthorID,
		})
	})
}

// ListByPost 旧评论在前
func (r *CommentRepository) ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&list).Error
	return list, err
}
