package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/cache"
	"yatube/internal/repository/database"
)

const (
	minPasswordLength = 8
	msgUsernameTaken  = "A user with that username already exists."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// passwordCost bcrypt 代价，测试中调低
var passwordCost = bcrypt.DefaultCost

type UserService struct {
	repo   *database.UserRepository
	tokens *cache.TokenRepository
	issuer *pkg.TokenIssuer
}

func NewUserService(db *gorm.DB, store cache.Store, issuer *pkg.TokenIssuer) *UserService {
	return &UserService{
		repo:   &database.UserRepository{DB: db},
		tokens: &cache.TokenRepository{Store: store},
		issuer: issuer,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validatePassword(ve *ValidationError, field, password string) {
	switch {
	case password == "":
		ve.Add(field, msgRequired)
	case utf8.RuneCountInString(password) < minPasswordLength:
		ve.Add(field, fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
}

// Register 注册；用户名唯一，邮箱可选
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	ve := &ValidationError{}
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	switch {
	case username == "":
		ve.Add("username", msgRequired)
	case utf8.RuneCountInString(username) > 150 || !usernamePattern.MatchString(username):
		ve.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	default:
		_, err := s.repo.FindByUsername(ctx, username)
		if err == nil {
			ve.Add("username", msgUsernameTaken)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			ve.Add("email", "Enter a valid email address.")
		}
	}
	validatePassword(ve, "password", password)
	if err := ve.Err(); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: username,
		Password: hash,
		Email:    strings.ToLower(email),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// 并发注册同名用户时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ve.Add("username", msgUsernameTaken)
			return nil, ve
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.WithField("username", username).Info("[user] registered")
	return user, nil
}

// Authenticate 校验用户名与密码
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login 签发令牌对；只有最后签发的 access token 有效
func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user.ID)
}

func (s *UserService) issue(ctx context.Context, userID uint64) (*pkg.Pair, error) {
	pair, err := s.issuer.GeneratePair(userID)
	if err != nil {
		return nil, err
	}
	// 将token写入缓存
	if err := s.tokens.AddUserToken(ctx, userID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh 利用 refresh 换发新的令牌对
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.ErrRefreshInvalid
		}
		return nil, err
	}
	return s.issue(ctx, claims.UserID)
}

// ResolveToken Bearer 令牌到用户；令牌必须是该用户最近一次签发的
func (s *UserService) ResolveToken(ctx context.Context, accessToken string) (*model.User, error) {
	claims, err := s.issuer.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.CheckUserToken(ctx, claims.UserID, accessToken); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// Logout 作废 API 令牌
func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	return s.tokens.DeleteUserToken(ctx, userID)
}

// ChangePassword 登录态修改密码，成功后作废已签发的令牌
func (s *UserService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	ve := &ValidationError{}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		ve.Add("old_password", "Your old password was entered incorrectly. Please enter it again.")
	}
	validatePassword(ve, "new_password", newPassword)
	if err := ve.Err(); err != nil {
		return err
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *UserService) setPassword(ctx context.Context, user *model.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.Logout(ctx, user.ID)
}

// DeleteUser 级联删除帖子、评论与关注关系
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return notFound(err, "user "+username)
	}
	if _, err := s.repo.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user %s: %w", username, err)
	}
	_ = s.Logout(ctx, user.ID)
	log.WithField("username", username).Info("[admin] user deleted")
	return nil
}
