package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
)

// PermissionValidator checks grants against the department taxonomy.
type PermissionValidator interface {
	ValidatePermissions(perms []auth.CompanyPermission) error
}

type Service struct {
	repo       Repository
	taxonomy   PermissionValidator
	bcryptCost int
	newID      func() string
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(repo Repository, taxonomy PermissionValidator, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		taxonomy:   taxonomy,
		bcryptCost: bcryptCost,
		newID:      uuid.NewString,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewSyncError("failed to list users", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds an account. New accounts must change their password on first
// login unless the caller says otherwise.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	perms, err := s.permissions(dto.Permissions)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, dto.Username, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	mustChange := true
	if dto.MustChangePassword != nil {
		mustChange = *dto.MustChangePassword
	}

	now := s.now()
	u := &User{
		ID:                 s.newID(),
		Username:           dto.Username,
		Name:               dto.Name,
		Email:              dto.Email,
		Role:               dto.Role,
		Permissions:        perms,
		MustChangePassword: mustChange,
		PasswordHash:       hash,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
		return nil, internal.NewSyncError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

// Update replaces an account. The default administrator keeps its username
// and role.
func (s *Service) Update(ctx context.Context, id string, dto UpdateUserDTO) (*User, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	perms, err := s.permissions(dto.Permissions)
	if err != nil {
		return nil, err
	}

	if u.IsDefaultAdmin() {
		dto.Username = u.Username
		dto.Role = u.Role
	}
	if dto.Username != u.Username {
		if err := s.ensureUsernameFree(ctx, dto.Username, u.ID); err != nil {
			return nil, err
		}
	}

	if dto.Password != "" {
		hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
	}
	if dto.MustChangePassword != nil {
		u.MustChangePassword = *dto.MustChangePassword
	}
	u.Username = dto.Username
	u.Name = dto.Name
	u.Email = dto.Email
	u.Role = dto.Role
	u.Permissions = perms
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
		return nil, internal.NewSyncError("failed to update user", err)
	}

	s.logger.Info("user updated", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == DefaultAdminID {
		return ErrCannotDeleteDefaultAdmin
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return internal.NewSyncError("failed to delete user", err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func (s *Service) ensureUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.repo.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil
	case err != nil:
		return internal.NewSyncError("failed to check username", err)
	case existing.ID != selfID:
		return ErrUsernameTaken
	}
	return nil
}

// permissions validates grants and drops department lists made redundant by
// a view-all grant.
func (s *Service) permissions(in []auth.CompanyPermission) ([]auth.CompanyPermission, error) {
	out := make([]auth.CompanyPermission, 0, len(in))
	for _, p := range in {
		if p.ViewAllDepartments || p.AllowedDepartments == nil {
			p.AllowedDepartments = []string{}
		}
		out = append(out, p)
	}
	if err := s.taxonomy.ValidatePermissions(out); err != nil {
		return nil, err
	}
	return out, nil
}
