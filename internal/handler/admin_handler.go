package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/internal/service"
)

// AdminHandler 仅管理员可用
type AdminHandler struct {
	groups *service.GroupService
	users  *service.UserService
	cache  *service.PageCache
}

func NewAdminHandler(groups *service.GroupService, users *service.UserService, cache *service.PageCache) *AdminHandler {
	return &AdminHandler{groups: groups, users: users, cache: cache}
}

type groupReq struct {
	Title       string `form:"title" json:"title"`
	Slug        string `form:"slug" json:"slug"`
	Description string `form:"description" json:"description"`
}

func (h *AdminHandler) CreateGroup(c *gin.Context) {
	var req groupReq
	if !bindForm(c, &req) {
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), req.Title, req.Slug, req.Description)
	if ve, ok := service.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"form": req, "errors": ve.Fields})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *AdminHandler) ListGroups(c *gin.Context) {
	groups, err := h.groups.ListGroups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// DeleteGroup 帖子保留，group 置空
func (h *AdminHandler) DeleteGroup(c *gin.Context) {
	if err := h.groups.DeleteGroup(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

// ClearCache 清空整页缓存
func (h *AdminHandler) ClearCache(c *gin.Context) {
	n, err := h.cache.Clear(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": n})
}
