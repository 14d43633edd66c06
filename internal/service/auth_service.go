package service

import (
	"context"
	"errors"
	"escape_room_backend/internal/config"
	"escape_room_backend/internal/model"
	"escape_room_backend/internal/repository"
	"escape_room_backend/internal/util"
	"escape_room_backend/pkg/logger"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionStore keeps issued tokens revocable. It is nil when Redis is
// disabled, in which case a token is valid until it expires.
type SessionStore interface {
	Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	Get(ctx context.Context, tokenID string) (string, error)
	Delete(ctx context.Context, tokenID string) error
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Sessions SessionStore
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, sessions SessionStore, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Sessions: sessions,
		Cfg:      cfg,
	}
}

// Register creates a user holding the configured starting gold.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	exists, err := s.UserRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrEmailRegistered
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Gold:     s.Cfg.Game.StartingGold,
		IsActive: true,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}

	logger.For("auth").Info("User registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login accepts either the email or the username as identifier.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return "", nil, err
	}
	if user == nil || !user.IsActive {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	expiration := s.Cfg.JWT.ExpireTime
	if s.Sessions != nil {
		if ttl := s.Cfg.Game.SessionTTL(); ttl > 0 && ttl < expiration {
			expiration = ttl
		}
	}

	token, claims, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, expiration)
	if err != nil {
		return "", nil, err
	}

	if s.Sessions != nil {
		if err := s.Sessions.Save(ctx, claims.ID, user.ID, expiration); err != nil {
			return "", nil, fmt.Errorf("save session: %w", err)
		}
	}
	return token, user, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.Sessions == nil || claims == nil {
		return nil
	}
	return s.Sessions.Delete(ctx, claims.ID)
}

// CheckSession reports util.ErrSessionExpired for tokens revoked by logout.
func (s *AuthService) CheckSession(ctx context.Context, claims *util.Claims) error {
	if s.Sessions == nil {
		return nil
	}
	userID, err := s.Sessions.Get(ctx, claims.ID)
	if err != nil {
		return err
	}
	if userID == "" || userID != claims.UserID {
		return util.ErrSessionExpired
	}
	return nil
}

// CurrentUser reloads the user behind a token so the gold balance is fresh.
func (s *AuthService) CurrentUser(ctx context.Context, claims *util.Claims) (*model.User, error) {
	if claims == nil {
		return nil, util.ErrUserNotFound
	}
	user, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}
