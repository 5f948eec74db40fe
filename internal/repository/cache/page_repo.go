package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const PagePrefix = "page:"

// Page 缓存的一次完整响应
type Page struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// PageRepository 整页缓存，键为 PagePrefix + 请求 URI
type PageRepository struct {
	Store Store
}

func (r *PageRepository) Get(ctx context.Context, uri string) (*Page, bool, error) {
	raw, err := r.Store.Get(ctx, PagePrefix+uri)
	if errors.Is(err, ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var p Page
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// 损坏的条目当作未命中
		return nil, false, nil
	}
	return &p, true, nil
}

func (r *PageRepository) Set(ctx context.Context, uri string, p *Page, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.Store.Set(ctx, PagePrefix+uri, string(raw), ttl)
}

// Clear 删除所有缓存页面
func (r *PageRepository) Clear(ctx context.Context) (int64, error) {
	return r.Store.DeletePrefix(ctx, PagePrefix)
}
