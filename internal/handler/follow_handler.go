package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"yatube/internal/middleware"
	"yatube/internal/service"
)

type FollowHandler struct {
	svc *service.FollowService
}

func NewFollowHandler(svc *service.FollowService) *FollowHandler {
	return &FollowHandler{svc: svc}
}

// FollowIndex 关注作者的帖子流
func (h *FollowHandler) FollowIndex(c *gin.Context) {
	page, err := h.svc.FollowFeed(c.Request.Context(), middleware.UserID(c), c.Query("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page_obj": page.Page, "posts": page.Posts, "follow": true})
}

// Follow 关注接口，完成后回到作者主页
func (h *FollowHandler) Follow(c *gin.Context) {
	username := c.Param("username")
	changed, err := h.svc.Follow(c.Request.Context(), middleware.UserID(c), username)
	if err != nil {
		respondError(c, err)
		return
	}
	log.WithFields(log.Fields{"author": username, "changed": changed}).Debug("[follow] follow")
	c.Redirect(http.StatusFound, profileURL(username))
}

// Unfollow 取关接口
func (h *FollowHandler) Unfollow(c *gin.Context) {
	username := c.Param("username")
	changed, err := h.svc.Unfollow(c.Request.Context(), middleware.UserID(c), username)
	if err != nil {
		respondError(c, err)
		return
	}
	log.WithFields(log.Fields{"author": username, "changed": changed}).Debug("[follow] unfollow")
	c.Redirect(http.StatusFound, profileURL(username))
}
