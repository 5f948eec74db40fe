package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"yatube/internal/middleware"
	"yatube/internal/model"
	"yatube/internal/service"
)

type PostHandler struct {
	listing *service.ListingService
	posts   *service.PostService
}

func NewPostHandler(listing *service.ListingService, posts *service.PostService) *PostHandler {
	return &PostHandler{listing: listing, posts: posts}
}

// postForm 同时接受表单与 JSON
type postForm struct {
	Text  string `form:"text" json:"text"`
	Group string `form:"group" json:"group"`
}

type commentForm struct {
	Text string `form:"text" json:"text"`
}

// Index 首页，由 CachePage 缓存
func (h *PostHandler) Index(c *gin.Context) {
	page, err := h.listing.Index(c.Request.Context(), c.Query("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page_obj": page.Page, "posts": page.Posts, "index": true})
}

func (h *PostHandler) GroupPosts(c *gin.Context) {
	group, page, err := h.listing.Group(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group, "page_obj": page.Page, "posts": page.Posts})
}

// Profile 匿名访问时 following 为 false
func (h *PostHandler) Profile(c *gin.Context) {
	view, err := h.listing.Profile(c.Request.Context(), c.Param("username"), middleware.UserID(c), c.Query("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"author":    view.Author,
		"following": view.Following,
		"page_obj":  view.Page,
		"posts":     view.Posts,
	})
}

func (h *PostHandler) PostDetail(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	post, comments, err := h.posts.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "comments": comments, "form": commentForm{}})
}

// CreateForm GET /create/
func (h *PostHandler) CreateForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, postForm{}, nil, 0)
}

// CreatePost 成功后跳转到作者主页
func (h *PostHandler) CreatePost(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var form postForm
	if !bindForm(c, &form) {
		return
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeImage()

	_, err = h.posts.CreatePost(c.Request.Context(), user.ID, service.PostInput{Text: form.Text, Group: form.Group, Image: image})
	if ve, ok := service.AsValidation(err); ok {
		h.renderForm(c, http.StatusBadRequest, form, ve.Fields, 0)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(user.Username))
}

// EditForm 非作者跳回帖子详情
func (h *PostHandler) EditForm(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	post, err := h.posts.EditablePost(c.Request.Context(), middleware.UserID(c), id)
	if errors.Is(err, service.ErrForbidden) {
		c.Redirect(http.StatusFound, postURL(id))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderForm(c, http.StatusOK, formFromPost(post), nil, id)
}

// EditPost 只修改 text/group/image
func (h *PostHandler) EditPost(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	var form postForm
	if !bindForm(c, &form) {
		return
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeImage()

	_, err = h.posts.EditPost(c.Request.Context(), middleware.UserID(c), id, service.PostInput{Text: form.Text, Group: form.Group, Image: image})
	if errors.Is(err, service.ErrForbidden) {
		c.Redirect(http.StatusFound, postURL(id))
		return
	}
	if ve, ok := service.AsValidation(err); ok {
		h.renderForm(c, http.StatusBadRequest, form, ve.Fields, id)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(id))
}

// AddComment 无论校验是否通过都跳回帖子详情
func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	var form commentForm
	if !bindForm(c, &form) {
		return
	}

	_, err := h.posts.AddComment(c.Request.Context(), middleware.UserID(c), id, form.Text)
	if _, invalid := service.AsValidation(err); err != nil && !invalid {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(id))
}

func (h *PostHandler) renderForm(c *gin.Context, status int, form postForm, errs map[string]string, postID uint64) {
	groups, err := h.posts.Groups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := gin.H{"form": form, "groups": groups}
	if errs != nil {
		ctx["errors"] = errs
	}
	if postID != 0 {
		ctx["is_edit"] = true
		ctx["post_id"] = postID
	}
	c.JSON(status, ctx)
}

func formFromPost(p *model.Post) postForm {
	f := postForm{Text: p.Text}
	if p.GroupID != nil {
		f.Group = strconv.FormatUint(*p.GroupID, 10)
	}
	return f
}

// formImage 读取可选的 image 文件字段
func formImage(c *gin.Context) (io.Reader, func(), error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// 没有上传文件或不是 multipart 请求
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return f, func() { _ = f.Close() }, nil
}
