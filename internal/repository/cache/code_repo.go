package cache

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultResetCodeTTL = 5 * time.Minute
	ResetCodePrefix     = "email:code:reset"
)

var ErrCodeInvalid = errors.New("code invalid or expired")

// CodeRepository 密码重置验证码，按邮箱存放
type CodeRepository struct {
	Store Store
	TTL   time.Duration
}

func (r *CodeRepository) key(email string) string {
	return fmt.Sprintf("%s:%s", ResetCodePrefix, strings.ToLower(email))
}

func (r *CodeRepository) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return DefaultResetCodeTTL
}

// SaveResetCode 覆盖旧验证码
func (r *CodeRepository) SaveResetCode(ctx context.Context, email, code string) error {
	return r.Store.Set(ctx, r.key(email), code, r.ttl())
}

// ConsumeResetCode 校验成功后删除，验证码只能使用一次
func (r *CodeRepository) ConsumeResetCode(ctx context.Context, email, code string) error {
	stored, err := r.Store.Get(ctx, r.key(email))
	if errors.Is(err, ErrMiss) {
		return ErrCodeInvalid
	}
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrCodeInvalid
	}
	return r.Store.Delete(ctx, r.key(email))
}
