package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/training-management/internal/auth"
	userDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/user"
	"github.com/frahmantamala/training-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	var rows []userDatamodel.User
	if err := r.db.WithContext(ctx).Order("created_at ASC, username ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]user.User, 0, len(rows))
	for i := range rows {
		out = append(out, *toDomain(&rows[i]))
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return toDomain(&row), nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	row := toRow(u)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", u.ID).
		Select("username", "name", "email", "password_hash", "role", "permissions", "must_change_password", "updated_at").
		Updates(toRow(u))
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return user.ErrUsernameTaken
		}
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&userDatamodel.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// SeedUser inserts u unless its id already exists, leaving existing rows
// untouched.
func (r *UserRepository) SeedUser(ctx context.Context, u *user.User) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", u.ID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	return true, r.Create(ctx, u)
}

func toRow(u *user.User) *userDatamodel.User {
	perms := make([]userDatamodel.CompanyPermission, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		perms = append(perms, userDatamodel.CompanyPermission{
			Company:            p.Company,
			ViewAllDepartments: p.ViewAllDepartments,
			AllowedDepartments: append([]string{}, p.AllowedDepartments...),
		})
	}
	return &userDatamodel.User{
		ID:                 u.ID,
		Username:           u.Username,
		Name:               u.Name,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		Role:               string(u.Role),
		Permissions:        perms,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func toDomain(row *userDatamodel.User) *user.User {
	perms := make([]auth.CompanyPermission, 0, len(row.Permissions))
	for _, p := range row.Permissions {
		perms = append(perms, auth.CompanyPermission{
			Company:            p.Company,
			ViewAllDepartments: p.ViewAllDepartments,
			AllowedDepartments: append([]string{}, p.AllowedDepartments...),
		})
	}
	return &user.User{
		ID:                 row.ID,
		Username:           row.Username,
		Name:               row.Name,
		Email:              row.Email,
		Role:               auth.Role(row.Role),
		Permissions:        perms,
		MustChangePassword: row.MustChangePassword,
		PasswordHash:       row.PasswordHash,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
