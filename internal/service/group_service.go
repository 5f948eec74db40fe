package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"yatube/internal/model"
	"yatube/internal/repository/database"
)

const msgSlugTaken = "Group with this Slug already exists."

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type GroupService struct {
	repo *database.GroupRepository
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{repo: &database.GroupRepository{DB: db}}
}

// CreateGroup 仅管理员调用；slug 必须唯一且只含字母数字、下划线和连字符
func (s *GroupService) CreateGroup(ctx context.Context, title, slug, desc string) (*model.Group, error) {
	ve := &ValidationError{}
	title = strings.TrimSpace(title)
	slug = strings.TrimSpace(slug)
	switch {
	case title == "":
		ve.Add("title", msgRequired)
	case utf8.RuneCountInString(title) > 200:
		ve.Add("title", "Ensure this value has at most 200 characters.")
	}
	switch {
	case slug == "":
		ve.Add("slug", msgRequired)
	case len(slug) > 50:
		ve.Add("slug", "Ensure this value has at most 50 characters.")
	case !slugPattern.MatchString(slug):
		ve.Add("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	default:
		_, err := s.repo.FindBySlug(ctx, slug)
		if err == nil {
			ve.Add("slug", msgSlugTaken)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check slug: %w", err)
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	group := &model.Group{Title: title, Slug: slug, Description: strings.TrimSpace(desc)}
	if err := s.repo.Create(ctx, group); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ve.Add("slug", msgSlugTaken)
			return nil, ve
		}
		return nil, fmt.Errorf("create group: %w", err)
	}
	log.WithField("slug", slug).Info("[admin] group created")
	return group, nil
}

// DeleteGroup 帖子保留，group 置空
func (s *GroupService) DeleteGroup(ctx context.Context, slug string) error {
	n, err := s.repo.DeleteBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("delete group %s: %w", slug, err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", slug, ErrNotFound)
	}
	log.WithField("slug", slug).Info("[admin] group deleted")
	return nil
}

func (s *GroupService) ListGroups(ctx context.Context) ([]model.Group, error) {
	return s.repo.List(ctx)
}
