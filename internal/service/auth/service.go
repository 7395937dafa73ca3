// Package auth handles admin login, sessions and startup seeding.
package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"service-admin/internal/domain/admin"
	xerrors "service-admin/internal/pkg/errors"
	"service-admin/internal/pkg/session"
	"service-admin/internal/pkg/token"
	"service-admin/internal/repository/postgres"
)

type Service struct {
	admins   *postgres.AdminRepository
	sessions *session.Store
	tokens   *token.Manager
	logger   *zap.Logger
}

func NewService(
	admins *postgres.AdminRepository,
	sessions *session.Store,
	tokens *token.Manager,
	logger *zap.Logger,
) *Service {
	return &Service{
		admins:   admins,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login verifies credentials, opens a session and issues an access token.
func (s *Service) Login(ctx context.Context, req *admin.LoginRequest) (*admin.LoginResponse, error) {
	account, err := s.admins.FindByEmail(ctx, req.Email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, xerrors.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	sess, err := s.sessions.Create(ctx, account.ID, account.Email, string(account.Role))
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.tokens.Generate(account.ID, account.Email, string(account.Role), sess.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin logged in",
		zap.Int64("admin_id", account.ID),
		zap.String("email", account.Email),
		zap.String("session_id", sess.ID))

	return &admin.LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		Admin:       *account,
	}, nil
}

// Authenticate verifies an access token and checks its session still exists.
func (s *Service) Authenticate(ctx context.Context, tokenStr string) (*token.Claims, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.Get(ctx, claims.SessionID); err != nil {
		return nil, xerrors.ErrUnauthorized
	}
	return claims, nil
}

// Me returns the authenticated admin's account.
func (s *Service) Me(ctx context.Context, adminID int64) (*admin.Account, error) {
	return s.admins.FindByID(ctx, adminID)
}

// Logout tears down the session behind a token.
func (s *Service) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return err
	}
	return s.sessions.Delete(ctx, claims.SessionID)
}

// CreateAdmin adds a new admin account. Only super admins may call this; the
// handler enforces the role.
func (s *Service) CreateAdmin(ctx context.Context, req *admin.CreateAdminRequest) (*admin.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &admin.Account{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         admin.Role(req.Role),
		IsActive:     true,
	}
	if account.Role == "" {
		account.Role = admin.RoleAdmin
	}

	if err := s.admins.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("admin account created",
		zap.Int64("admin_id", account.ID),
		zap.String("email", account.Email),
		zap.String("role", string(account.Role)))

	return account, nil
}

// EnsureSuperAdmin seeds the first super admin account when none exists.
func (s *Service) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	count, err := s.admins.CountSuperAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = s.CreateAdmin(ctx, &admin.CreateAdminRequest{
		Email:    email,
		Password: password,
		FullName: "Super Admin",
		Role:     string(admin.RoleSuperAdmin),
	})
	if err != nil && !xerrors.Is(err, xerrors.ErrConflict) {
		return err
	}

	s.logger.Info("super admin seeded", zap.String("email", email))

	return nil
}
