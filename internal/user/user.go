package user

import (
	"context"
	"time"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
)

// DefaultAdminID is the built-in administrator. It cannot be deleted and
// keeps its username and role.
const DefaultAdminID = "admin"

// User is an account together with its company/department grants.
type User struct {
	ID                 string                   `json:"id"`
	Username           string                   `json:"username"`
	Name               string                   `json:"name"`
	Email              string                   `json:"email,omitempty"`
	Role               auth.Role                `json:"role"`
	Permissions        []auth.CompanyPermission `json:"permissions"`
	MustChangePassword bool                     `json:"mustChangePassword"`
	PasswordHash       string                   `json:"-"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

func (u *User) IsDefaultAdmin() bool {
	return u.ID == DefaultAdminID
}

func (u *User) Principal() *auth.Principal {
	return &auth.Principal{
		ID:                 u.ID,
		Username:           u.Username,
		Name:               u.Name,
		Role:               u.Role,
		Permissions:        u.Permissions,
		MustChangePassword: u.MustChangePassword,
	}
}

type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

var (
	ErrUserNotFound             = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrUsernameTaken            = internal.NewConflictError("username is already taken", internal.ErrCodeUsernameTaken)
	ErrCannotDeleteDefaultAdmin = internal.NewForbiddenError("無法刪除預設管理員", internal.ErrCodeCannotDeleteDefaultUser)
)
