package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenMismatch = errors.New("token mismatch")
)

const (
	UserTokenPrefix = "login:user:token"
	UserTokenExpire = 30 * time.Minute
)

// TokenRepository 每个用户只保存最后一次签发的 access token
type TokenRepository struct {
	Store Store
}

func (r *TokenRepository) key(userID uint64) string {
	return fmt.Sprintf("%s:%d", UserTokenPrefix, userID)
}

func (r *TokenRepository) AddUserToken(ctx context.Context, userID uint64, token string) error {
	if err := r.Store.Set(ctx, r.key(userID), token, UserTokenExpire); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *TokenRepository) GetUserToken(ctx context.Context, userID uint64) (string, error) {
	token, err := r.Store.Get(ctx, r.key(userID))
	if errors.Is(err, ErrMiss) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return token, nil
}

// CheckUserToken 校验 token 是否为最新签发的那个，通过后续期
func (r *TokenRepository) CheckUserToken(ctx context.Context, userID uint64, token string) error {
	stored, err := r.GetUserToken(ctx, userID)
	if err != nil {
		return err
	}
	if stored != token {
		return ErrTokenMismatch
	}
	return r.Store.Expire(ctx, r.key(userID), UserTokenExpire)
}

func (r *TokenRepository) DeleteUserToken(ctx context.Context, userID uint64) error {
	return r.Store.Delete(ctx, r.key(userID))
}
