package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"
)

// PostPage 一页帖子及分页信息
type PostPage struct {
	Posts []model.Post `json:"posts"`
	Page  pkg.Page     `json:"page_obj"`
}

// ProfileView 作者主页
type ProfileView struct {
	Author    *model.User `json:"author"`
	Following bool        `json:"following"`
	*PostPage
}

type ListingService struct {
	posts   *database.PostRepository
	groups  *database.GroupRepository
	users   *database.UserRepository
	follows *database.FollowRepository
}

func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{
		posts:   &database.PostRepository{DB: db},
		groups:  &database.GroupRepository{DB: db},
		users:   &database.UserRepository{DB: db},
		follows: &database.FollowRepository{DB: db},
	}
}

// ListPosts 对任意集合做统一分页；页码不合法时不报错
func (s *ListingService) ListPosts(ctx context.Context, f database.PostFilter, rawPage string) (*PostPage, error) {
	count, err := s.posts.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	page := pkg.Paginate(rawPage, count, pkg.PostsPerPage)
	posts := []model.Post{}
	if count > 0 {
		if posts, err = s.posts.List(ctx, f, page.Offset(), page.PerPage); err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
	}
	return &PostPage{Posts: posts, Page: page}, nil
}

// Index 全部帖子
func (s *ListingService) Index(ctx context.Context, rawPage string) (*PostPage, error) {
	return s.ListPosts(ctx, database.PostFilter{}, rawPage)
}

// Group 按 slug 查社区帖子
func (s *ListingService) Group(ctx context.Context, slug, rawPage string) (*model.Group, *PostPage, error) {
	group, err := s.groups.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, notFound(err, "group "+slug)
	}
	page, err := s.ListPosts(ctx, database.PostFilter{GroupID: group.ID}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return group, page, nil
}

// Profile viewerID 为 0 表示匿名，此时 following 恒为 false
func (s *ListingService) Profile(ctx context.Context, username string, viewerID uint64, rawPage string) (*ProfileView, error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user "+username)
	}
	page, err := s.ListPosts(ctx, database.PostFilter{AuthorID: author.ID}, rawPage)
	if err != nil {
		return nil, err
	}
	view := &ProfileView{Author: author, PostPage: page}
	if viewerID != 0 && viewerID != author.ID {
		if view.Following, err = s.follows.IsFollowing(ctx, viewerID, author.ID); err != nil {
			return nil, fmt.Errorf("follow status: %w", err)
		}
	}
	return view, nil
}
