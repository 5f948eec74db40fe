package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"yatube/internal/pkg"
	"yatube/internal/repository/cache"
)

// EmailService 通过邮件验证码重置密码
type EmailService struct {
	users  *UserService
	codes  *cache.CodeRepository
	mailer pkg.Mailer
}

func NewEmailService(users *UserService, store cache.Store, mailer pkg.Mailer) *EmailService {
	return &EmailService{
		users:  users,
		codes:  &cache.CodeRepository{Store: store},
		mailer: mailer,
	}
}

// SendResetCode 发送重置密码验证码；邮箱未注册时静默成功
func (s *EmailService) SendResetCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		ve := &ValidationError{}
		ve.Add("email", msgRequired)
		return ve
	}
	if _, err := s.users.repo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithField("email", email).Debug("[reset] unknown email")
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}

	code, err := pkg.RandDigits(pkg.ResetCodeLength)
	if err != nil {
		return err
	}
	if err := s.codes.SaveResetCode(ctx, email, code); err != nil {
		return fmt.Errorf("save reset code: %w", err)
	}

	html := pkg.EmailCodeHTML("password reset", code, cache.DefaultResetCodeTTL)
	if err := s.mailer.Send(email, "Password reset code", html); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// ResetPassword 校验验证码并一次性消费，然后设置新密码
func (s *EmailService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	ve := &ValidationError{}
	validatePassword(ve, "new_password", newPassword)
	if err := ve.Err(); err != nil {
		return err
	}
	if err := s.codes.ConsumeResetCode(ctx, email, strings.TrimSpace(code)); err != nil {
		if errors.Is(err, cache.ErrCodeInvalid) {
			ve.Add("code", "The code is invalid or has expired.")
			return ve
		}
		return err
	}
	user, err := s.users.repo.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, "user")
	}
	if err := s.users.setPassword(ctx, user, newPassword); err != nil {
		return err
	}
	log.WithField("user_id", user.ID).Info("[reset] password reset")
	return nil
}
