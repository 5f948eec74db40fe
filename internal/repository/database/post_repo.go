package database

import (
	"context"

	"gorm.io/gorm"

	"yatube/internal/model"
)

// PostFilter 列表的集合条件，零值表示全部帖子
type PostFilter struct {
	GroupID    uint64
	AuthorID   uint64
	FollowerID uint64 // 只取 FollowerID 关注的作者的帖子
}

type PostRepository struct {
	DB *gorm.DB
}

// Create 帖子与 outbox 事件同一事务写入
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Group").Create(post).Error; err != nil {
			return err
		}
		return insertOutbox(tx, model.EventPostCreated, post.ID, map[string]any{
			"post_id":   post.ID,
			"author_id": post.AuthorID,
			"group_id":  post.GroupID,
		})
	})
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	return &post, err
}

// UpdateContent 只允许修改 text/group_id/image/thumbnail，作者与发布时间不可变
func (r *PostRepository) UpdateContent(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).
		Model(&model.Post{ID: post.ID}).
		Select("text", "group_id", "image", "thumbnail").
		Updates(map[string]any{
			"text":      post.Text,
			"group_id":  post.GroupID,
			"image":     post.Image,
			"thumbnail": post.Thumbnail,
		}).Error
}

func (r *PostRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	var n int64
	err := r.scope(ctx, f).Model(&model.Post{}).Count(&n).Error
	return n, err
}

// List 基础分页查询：created_at 倒序，同一时间点用 id 倒序打破并列
func (r *PostRepository) List(ctx context.Context, f PostFilter, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.scope(ctx, f).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *PostRepository) scope(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.DB.WithContext(ctx)
	if f.GroupID > 0 {
		q = q.Where("group_id = ?", f.GroupID)
	}
	if f.AuthorID > 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.FollowerID > 0 {
		q = q.Where("author_id IN (?)",
			r.DB.Model(&model.Follow{}).Select("author_id").Where("user_id = ?", f.FollowerID))
	}
	return q
}

// Delete 仅管理与测试使用，评论由外键级联删除
func (r *PostRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Delete(&model.Post{}, id).Error
}
