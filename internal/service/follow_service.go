package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"
)

type FollowService struct {
	repo    *database.FollowRepository
	users   *database.UserRepository
	listing *ListingService
}

func NewFollowService(db *gorm.DB, listing *ListingService) *FollowService {
	return &FollowService{
		repo:    &database.FollowRepository{DB: db},
		users:   &database.UserRepository{DB: db},
		listing: listing,
	}
}

// Follow 关注 username；关注自己与重复关注都是无操作
func (s *FollowService) Follow(ctx context.Context, viewerID uint64, username string) (bool, error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return false, notFound(err, "user "+username)
	}
	if viewerID == 0 || viewerID == author.ID {
		return false, nil
	}
	changed, err := s.repo.Follow(ctx, viewerID, author.ID)
	if err != nil {
		return false, fmt.Errorf("follow %s: %w", username, err)
	}
	if changed {
		log.WithFields(log.Fields{"user_id": viewerID, "author_id": author.ID}).Debug("[follow] created")
	}
	return changed, nil
}

// Unfollow 取关 username；不存在的关系是无操作
func (s *FollowService) Unfollow(ctx context.Context, viewerID uint64, username string) (bool, error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return false, notFound(err, "user "+username)
	}
	if viewerID == 0 || viewerID == author.ID {
		return false, nil
	}
	changed, err := s.repo.Unfollow(ctx, viewerID, author.ID)
	if err != nil {
		return false, fmt.Errorf("unfollow %s: %w", username, err)
	}
	if changed {
		log.WithFields(log.Fields{"user_id": viewerID, "author_id": author.ID}).Debug("[follow] removed")
	}
	return changed, nil
}

// IsFollowing 匿名用户恒为 false
func (s *FollowService) IsFollowing(ctx context.Context, viewerID, authorID uint64) (bool, error) {
	if viewerID == 0 || authorID == 0 {
		return false, nil
	}
	return s.repo.IsFollowing(ctx, viewerID, authorID)
}

// FollowFeed viewer 关注的作者的帖子；匿名时返回空页
func (s *FollowService) FollowFeed(ctx context.Context, viewerID uint64, rawPage string) (*PostPage, error) {
	if viewerID == 0 {
		return &PostPage{Posts: []model.Post{}, Page: pkg.Paginate(rawPage, 0, pkg.PostsPerPage)}, nil
	}
	return s.listing.ListPosts(ctx, database.PostFilter{FollowerID: viewerID}, rawPage)
}
