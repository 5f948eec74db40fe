package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"yatube/internal/repository/cache"
)

// PageCache 首页整页缓存：键为完整请求 URI，过期前不随内容变化失效
type PageCache struct {
	repo *cache.PageRepository
	ttl  time.Duration
}

func NewPageCache(store cache.Store, ttl time.Duration) *PageCache {
	return &PageCache{repo: &cache.PageRepository{Store: store}, ttl: ttl}
}

// Enabled ttl 为 0 时关闭缓存
func (c *PageCache) Enabled() bool {
	return c != nil && c.ttl > 0
}

func (c *PageCache) Get(ctx context.Context, uri string) (*cache.Page, bool) {
	page, ok, err := c.repo.Get(ctx, uri)
	if err != nil {
		log.WithError(err).WithField("uri", uri).Warn("[cache] get failed")
		return nil, false
	}
	return page, ok
}

// Put 写失败只记录日志，不影响本次响应
func (c *PageCache) Put(ctx context.Context, uri, contentType string, body []byte) {
	page := &cache.Page{ContentType: contentType, Body: body}
	if err := c.repo.Set(ctx, uri, page, c.ttl); err != nil {
		log.WithError(err).WithField("uri", uri).Warn("[cache] set failed")
	}
}

// Clear 清空所有缓存页面
func (c *PageCache) Clear(ctx context.Context) (int64, error) {
	n, err := c.repo.Clear(ctx)
	if err != nil {
		return n, err
	}
	log.WithField("pages", n).Info("[cache] cleared")
	return n, nil
}
