package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sds-studio/sds/internal/auth/domain"
	"github.com/sds-studio/sds/internal/auth/password"
	"go.uber.org/zap"
)

const (
	sessionTokenBytes = 32
	sessionTTL        = 7 * 24 * time.Hour

	minPasswordLength = 8
)

type Service struct {
	log         *zap.Logger
	repo        domain.Repository
	sessionRepo domain.SessionRepository
	genID       *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, sessionRepo domain.SessionRepository, genID *snowflake.Node) domain.Service {
	return &Service{
		log:         log.Named("auth.service"),
		repo:        repo,
		sessionRepo: sessionRepo,
		genID:       genID,
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleViewer
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.repo.FindOne(ctx, domain.User{Email: email}); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultName(email)
	}
	user := &domain.User{
		ID:                  s.genID.Generate(),
		Name:                name,
		Email:               email,
		PasswordHash:        &hashed,
		Role:                role,
		LastPasswordChanged: &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindOne(ctx, domain.User{Email: email})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil || !password.Verify(req.Password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		UserAgent:        strings.TrimSpace(req.UserAgent),
		IPAddress:        strings.TrimSpace(req.IPAddress),
		ExpiresAt:        now.Add(sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		User:      user,
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
		SessionID: session.ID,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return err
	}
	return s.sessionRepo.RevokeSession(ctx, session.ID, time.Now().UTC())
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Session, *domain.User, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, nil, domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil, domain.ErrInvalidSession
		}
		return nil, nil, err
	}

	now := time.Now().UTC()
	if session.RevokedAt != nil {
		return nil, nil, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return nil, nil, domain.ErrSessionExpired
	}

	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessionRepo.UpdateLastSeen(ctx, session.ID, now); err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID snowflake.ID, newPassword string) error {
	if len(strings.TrimSpace(newPassword)) < minPasswordLength {
		return domain.ErrInvalidCredentials
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.repo.UpdateFields(ctx, userID, map[string]any{
		"password_hash":         hashed,
		"last_password_changed": &now,
		"updated_at":            now,
	})
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func defaultName(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
