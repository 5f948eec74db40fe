// Package memory 进程内的 cache.Store 实现，未配置 redis 时使用
package memory

import (
	"context"
	"strings"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"

	"yatube/internal/repository/cache"
)

type entry struct {
	value   string
	expires time.Time // 零值表示不过期
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

type Store struct {
	items cmap.ConcurrentMap[string, entry]
	now   func() time.Time
}

var _ cache.Store = (*Store)(nil)

func New() *Store {
	return &Store{items: cmap.New[entry](), now: time.Now}
}

// NewWithClock 测试用，可控制时间
func NewWithClock(now func() time.Time) *Store {
	return &Store{items: cmap.New[entry](), now: now}
}

func (s *Store) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	e, ok := s.items.Get(key)
	if !ok {
		return "", cache.ErrMiss
	}
	if e.expired(s.now()) {
		s.items.RemoveCb(key, func(_ string, v entry, exists bool) bool {
			return exists && v.expired(s.now())
		})
		return "", cache.ErrMiss
	}
	return e.value, nil
}

func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.items.Set(key, entry{value: value, expires: s.deadline(ttl)})
	return nil
}

func (s *Store) Expire(_ context.Context, key string, ttl time.Duration) error {
	e, ok := s.items.Get(key)
	if !ok || e.expired(s.now()) {
		return nil
	}
	e.expires = s.deadline(ttl)
	s.items.Set(key, e)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.items.Remove(key)
	return nil
}

// DeletePrefix 遍历所有键，过期但尚未清理的条目同样删除并计数
func (s *Store) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, key := range s.items.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if s.items.RemoveCb(key, func(_ string, _ entry, exists bool) bool { return exists }) {
			n++
		}
	}
	return n, nil
}

// Len 当前条目数，含已过期未清理的
func (s *Store) Len() int {
	return s.items.Count()
}
