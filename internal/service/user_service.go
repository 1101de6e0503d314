package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
	"github.com/d60-Lab/tieba/pkg/auth"
)

type RegisterInput struct {
	Username string
	Password string
	Nickname string
	Email    string
}

// ProfileInput nil 字段保持不变
type ProfileInput struct {
	Nickname *string
	Bio      *string
	Email    *string
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// Login 校验密码并签发令牌
	Login(ctx context.Context, username, password string) (string, *model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error)
	// ChangePassword 需要当前密码，已签发的令牌不失效
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type userService struct {
	users  repository.UserRepository
	tokens *auth.Manager
}

func NewUserService(users repository.UserRepository, tokens *auth.Manager) UserService {
	return &userService{users: users, tokens: tokens}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: username and a password of at least 6 characters required", ErrInvalidArgument)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	nickname := sanitizePlain(in.Nickname)
	if nickname == "" {
		nickname = username
	}
	u := &model.User{
		Username: username,
		Nickname: nickname,
		Email:    strings.TrimSpace(in.Email),
		Password: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(u.ID, u.Username)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *userService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	var p repository.ProfileUpdate
	if in.Nickname != nil {
		n := sanitizePlain(*in.Nickname)
		if n == "" {
			return nil, fmt.Errorf("%w: nickname must not be empty", ErrInvalidArgument)
		}
		p.Nickname = &n
	}
	if in.Bio != nil {
		b := sanitizePlain(*in.Bio)
		p.Bio = &b
	}
	if in.Email != nil {
		e := strings.TrimSpace(*in.Email)
		p.Email = &e
	}
	return s.users.UpdateProfile(ctx, userID, p)
}

func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: new password must be at least 6 characters", ErrInvalidArgument)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)) != nil {
		return fmt.Errorf("%w: current password incorrect", ErrInvalidArgument)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	err = s.users.UpdatePassword(ctx, userID, u.Password, string(hash))
	if errors.Is(err, repository.ErrForbidden) {
		return fmt.Errorf("%w: password changed concurrently", ErrInvalidArgument)
	}
	return err
}
