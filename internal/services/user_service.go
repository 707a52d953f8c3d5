package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/justsurfingit/lead-labeler/internal/auth"
	"github.com/justsurfingit/lead-labeler/internal/models"
)

type UserService struct {
	DB     *gorm.DB
	Tokens *auth.TokenManager
}

func NewUserService(db *gorm.DB, tokens *auth.TokenManager) *UserService {
	return &UserService{DB: db, Tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a user. Emails are unique, case-insensitively.
func (s *UserService) Signup(ctx context.Context, fullName, email, password string) (*models.User, error) {
	email = normalizeEmail(email)

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{FullName: strings.TrimSpace(fullName), Email: email, PasswordHash: string(hash)}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a bearer token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.Tokens.Sign(user.Email)
}
