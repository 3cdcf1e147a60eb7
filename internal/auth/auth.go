package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleSystemAdmin Role = "SystemAdmin"
	RoleHR          Role = "HR"
	RoleGeneralUser Role = "GeneralUser"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystemAdmin, RoleHR, RoleGeneralUser:
		return true
	}
	return false
}

// CompanyPermission grants visibility into one company, either to every
// department or to the listed ones.
type CompanyPermission struct {
	Company            string   `json:"company"`
	ViewAllDepartments bool     `json:"viewAllDepartments"`
	AllowedDepartments []string `json:"allowedDepartments"`
}

// Principal is the acting user as seen by permission checks.
type Principal struct {
	ID                 string              `json:"id"`
	Username           string              `json:"username"`
	Name               string              `json:"name"`
	Role               Role                `json:"role"`
	Permissions        []CompanyPermission `json:"permissions"`
	MustChangePassword bool                `json:"mustChangePassword"`
}

func (p *Principal) IsSystemAdmin() bool {
	return p != nil && p.Role == RoleSystemAdmin
}

// Credential pairs a principal with its stored password hash.
type Credential struct {
	Principal    *Principal
	PasswordHash string
}

type UserRepository interface {
	GetCredentialByUsername(ctx context.Context, username string) (*Credential, error)
	GetPrincipalByID(ctx context.Context, userID string) (*Principal, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string, mustChange bool) error
}

// TokenGenerator creates tokens and expiration times.
type TokenGenerator interface {
	GenerateAccessToken(userID, username string) (token string, err error)
	GenerateRefreshToken(userID, username string) (token string, err error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken        string `json:"access_token"`
	RefreshToken       string `json:"refresh_token"`
	MustChangePassword bool   `json:"must_change_password"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrSamePassword       = errors.New("new password must differ from the current one")
)

type principalCtxKey struct{}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return p, ok && p != nil
}
