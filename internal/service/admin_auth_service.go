package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"greenpark/internal/db"
	apperrors "greenpark/internal/errors"
	"greenpark/internal/repository"
	"greenpark/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AdminAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateStaff(ctx context.Context, email, password string, role db.StaffRole) (*db.StaffAccount, error)
}

type adminAuthService struct {
	repo   repository.StaffRepository
	secret string
	ttl    time.Duration
	clock  utils.Clock
}

func NewAdminAuthService(repo repository.StaffRepository, secret string, ttl time.Duration, clock utils.Clock) AdminAuthService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &adminAuthService{repo: repo, secret: secret, ttl: ttl, clock: clock}
}

func (s *adminAuthService) Login(ctx context.Context, email, password string) (string, error) {
	account, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !checkPasswordHash(password, account.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	if s.secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}

	claims := jwt.MapClaims{
		"staff_id": account.ID,
		"email":    account.Email,
		"role":     string(account.Role),
		"exp":      s.clock.Now().Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *adminAuthService) CreateStaff(ctx context.Context, email, password string, role db.StaffRole) (*db.StaffAccount, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("email and password cannot be empty")
	}
	if role == "" {
		role = db.RoleStaff
	}
	if role != db.RoleStaff && role != db.RoleAdmin {
		return nil, apperrors.Validation("unknown role %q", role)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account := &db.StaffAccount{Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, mapRepoErr(err, fmt.Sprintf("staff account %s", email))
	}
	return account, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
