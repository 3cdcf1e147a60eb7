package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/training-management/internal/auth"
	userDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentialByUsername(ctx context.Context, username string) (*auth.Credential, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}
	return &auth.Credential{
		Principal:    ToPrincipal(&row),
		PasswordHash: row.PasswordHash,
	}, nil
}

func (r *Repository) GetPrincipalByID(ctx context.Context, userID string) (*auth.Principal, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	return ToPrincipal(&row), nil
}

func (r *Repository) UpdatePassword(ctx context.Context, userID, passwordHash string, mustChange bool) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash":        passwordHash,
			"must_change_password": mustChange,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// ToPrincipal strips the credential columns from a user row.
func ToPrincipal(row *userDatamodel.User) *auth.Principal {
	perms := make([]auth.CompanyPermission, 0, len(row.Permissions))
	for _, p := range row.Permissions {
		perms = append(perms, auth.CompanyPermission{
			Company:            p.Company,
			ViewAllDepartments: p.ViewAllDepartments,
			AllowedDepartments: append([]string(nil), p.AllowedDepartments...),
		})
	}
	return &auth.Principal{
		ID:                 row.ID,
		Username:           row.Username,
		Name:               row.Name,
		Role:               auth.Role(row.Role),
		Permissions:        perms,
		MustChangePassword: row.MustChangePassword,
	}
}
