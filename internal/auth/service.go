package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetPrincipal(ctx context.Context, userID string) (*Principal, error)
	ChangePassword(ctx context.Context, userID string, dto ChangePasswordDTO) error
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	cred, err := s.userRepo.GetCredentialByUsername(ctx, dto.Username)
	if err != nil {
		s.logger.Warn("login for unknown user", "username", dto.Username, "error", err)
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(cred.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login with wrong password", "username", dto.Username)
		return AuthTokens{}, ErrInvalidCredentials
	}

	tokens, err := s.issue(cred.Principal)
	if err != nil {
		return AuthTokens{}, err
	}

	s.logger.Info("user authenticated", "user_id", cred.Principal.ID, "role", cred.Principal.Role)
	return tokens, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	p, err := s.userRepo.GetPrincipalByID(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}

	return s.issue(p)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

func (s *Service) GetPrincipal(ctx context.Context, userID string) (*Principal, error) {
	p, err := s.userRepo.GetPrincipalByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrUserNotFound
	}
	return p, nil
}

// ChangePassword replaces the caller's password and clears the forced-change flag.
func (s *Service) ChangePassword(ctx context.Context, userID string, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	p, err := s.GetPrincipal(ctx, userID)
	if err != nil {
		return err
	}

	cred, err := s.userRepo.GetCredentialByUsername(ctx, p.Username)
	if err != nil {
		return err
	}
	if err := VerifyPassword(cred.PasswordHash, dto.CurrentPassword); err != nil {
		return ErrInvalidCredentials
	}
	if dto.CurrentPassword == dto.NewPassword {
		return ErrSamePassword
	}

	hash, err := HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash, false); err != nil {
		s.logger.Error("failed to update password", "user_id", userID, "error", err)
		return err
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

func (s *Service) issue(p *Principal) (AuthTokens, error) {
	if p == nil {
		return AuthTokens{}, errors.New("principal is required")
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(p.ID, p.Username)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(p.ID, p.Username)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:        accessToken,
		RefreshToken:       refreshToken,
		MustChangePassword: p.MustChangePassword,
	}, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
