package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"
	"yatube/internal/storage"
)

const (
	msgInvalidGroup = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgImageTooBig  = "Image file too large (maximum 5 MiB)."
	msgImageHuge    = "Image dimensions too large (maximum 40 megapixels)."
)

// PostInput 创建与编辑共用的表单输入；Group 为空表示不选社区，Image 为 nil 表示不上传
type PostInput struct {
	Text  string
	Group string
	Image io.Reader
}

type PostService struct {
	repo     *database.PostRepository
	groups   *database.GroupRepository
	comments *database.CommentRepository
	media    storage.Storage
}

func NewPostService(db *gorm.DB, media storage.Storage) *PostService {
	return &PostService{
		repo:     &database.PostRepository{DB: db},
		groups:   &database.GroupRepository{DB: db},
		comments: &database.CommentRepository{DB: db},
		media:    media,
	}
}

// Groups 发帖表单中的社区选项
func (s *PostService) Groups(ctx context.Context) ([]model.Group, error) {
	return s.groups.List(ctx)
}

// Detail 帖子与评论，评论按时间正序
func (s *PostService) Detail(ctx context.Context, postID uint64) (*model.Post, []model.Comment, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, nil, notFound(err, "post")
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, nil, fmt.Errorf("list comments: %w", err)
	}
	return post, comments, nil
}

// CreatePost 校验通过才落库；作者与发布时间由服务端决定
func (s *PostService) CreatePost(ctx context.Context, authorID uint64, in PostInput) (*model.Post, error) {
	text, groupID, img, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	post := &model.Post{
		Text:     text,
		AuthorID: authorID,
		GroupID:  groupID,
	}
	cleanup := func() {}
	if img != nil {
		if post.Image, post.Thumbnail, cleanup, err = s.saveImage(ctx, img); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, post); err != nil {
		cleanup()
		return nil, fmt.Errorf("create post: %w", err)
	}
	log.WithFields(log.Fields{"post_id": post.ID, "author_id": authorID}).Info("[post] created")
	return post, nil
}

// EditablePost 编辑前的权限检查：不存在返回 ErrNotFound，非作者返回 ErrForbidden
func (s *PostService) EditablePost(ctx context.Context, viewerID, postID uint64) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post")
	}
	if viewerID == 0 || post.AuthorID != viewerID {
		return post, ErrForbidden
	}
	return post, nil
}

// EditPost 只修改 text/group/image；不上传图片时保留原图
func (s *PostService) EditPost(ctx context.Context, viewerID, postID uint64, in PostInput) (*model.Post, error) {
	post, err := s.EditablePost(ctx, viewerID, postID)
	if err != nil {
		return post, err
	}
	text, groupID, img, err := s.validate(ctx, in)
	if err != nil {
		return post, err
	}
	post.Text = text
	post.GroupID = groupID
	cleanup := func() {}
	if img != nil {
		if post.Image, post.Thumbnail, cleanup, err = s.saveImage(ctx, img); err != nil {
			return post, err
		}
	}
	if err := s.repo.UpdateContent(ctx, post); err != nil {
		cleanup()
		return post, fmt.Errorf("update post %d: %w", postID, err)
	}
	return s.repo.FindByID(ctx, postID)
}

// AddComment 帖子不存在返回 ErrNotFound；空文本返回 ValidationError 且不写库
func (s *PostService) AddComment(ctx context.Context, viewerID, postID uint64, text string) (*model.Comment, error) {
	if _, err := s.repo.FindByID(ctx, postID); err != nil {
		return nil, notFound(err, "post")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		ve := &ValidationError{}
		ve.Add("text", msgRequired)
		return nil, ve
	}
	c := &model.Comment{PostID: postID, AuthorID: viewerID, Text: text}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

func (s *PostService) validate(ctx context.Context, in PostInput) (string, *uint64, *pkg.ImageInfo, error) {
	ve := &ValidationError{}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		ve.Add("text", msgRequired)
	}

	var groupID *uint64
	if raw := strings.TrimSpace(in.Group); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			ve.Add("group", msgInvalidGroup)
		} else if _, err := s.groups.FindByID(ctx, id); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return "", nil, nil, fmt.Errorf("load group: %w", err)
			}
			ve.Add("group", msgInvalidGroup)
		} else {
			groupID = &id
		}
	}

	var img *pkg.ImageInfo
	if in.Image != nil {
		var err error
		img, err = pkg.ReadImage(in.Image)
		switch {
		case errors.Is(err, pkg.ErrImageTooLarge):
			ve.Add("image", msgImageTooBig)
		case errors.Is(err, pkg.ErrImageDimension):
			ve.Add("image", msgImageHuge)
		case err != nil:
			ve.Add("image", msgInvalidImage)
		}
	}

	if err := ve.Err(); err != nil {
		return "", nil, nil, err
	}
	return text, groupID, img, nil
}

// saveImage 保存原图与缩略图，返回两者的访问地址及失败回滚函数
func (s *PostService) saveImage(ctx context.Context, img *pkg.ImageInfo) (string, string, func(), error) {
	if s.media == nil {
		return "", "", nil, errors.New("media storage not configured")
	}
	id := pkg.NewID()
	imagePath := "posts/" + id + img.Ext
	thumbPath := "posts/thumbs/" + id + ".jpg"

	var thumb bytes.Buffer
	res, err := pkg.CreateThumb(pkg.ThumbSize, bytes.NewReader(img.Data), &thumb)
	if err != nil {
		ve := &ValidationError{}
		ve.Add("image", msgInvalidImage)
		return "", "", nil, ve
	}
	log.WithFields(log.Fields{
		"id":         id,
		"size":       fmt.Sprintf("%dx%d", res.OldX, res.OldY),
		"thumb":      fmt.Sprintf("%dx%d", res.NewX, res.NewY),
		"thumb_size": res.ThumbSize,
	}).Debug("[post] thumbnail created")
	if _, err := s.media.Save(ctx, imagePath, img.ContentType, bytes.NewReader(img.Data)); err != nil {
		return "", "", nil, fmt.Errorf("save image: %w", err)
	}
	if _, err := s.media.Save(ctx, thumbPath, "image/jpeg", &thumb); err != nil {
		_ = s.media.Delete(ctx, imagePath)
		return "", "", nil, fmt.Errorf("save thumbnail: %w", err)
	}
	cleanup := func() {
		for _, p := range []string{imagePath, thumbPath} {
			if err := s.media.Delete(context.Background(), p); err != nil {
				log.WithError(err).WithField("path", p).Warn("[post] media cleanup failed")
			}
		}
	}
	return s.media.URL(imagePath), s.media.URL(thumbPath), cleanup, nil
}
