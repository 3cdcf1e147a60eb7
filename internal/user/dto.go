package user

import (
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/common/validation"
)

type CreateUserDTO struct {
	Username           string                   `json:"username" validate:"required,max=64"`
	Password           string                   `json:"password" validate:"required,max=72"`
	Name               string                   `json:"name" validate:"required"`
	Email              string                   `json:"email" validate:"omitempty,email"`
	Role               auth.Role                `json:"role" validate:"required,oneof=SystemAdmin HR GeneralUser"`
	Permissions        []auth.CompanyPermission `json:"permissions"`
	MustChangePassword *bool                    `json:"mustChangePassword"`
}

// UpdateUserDTO replaces an account. An empty password keeps the current one.
type UpdateUserDTO struct {
	Username           string                   `json:"username" validate:"required,max=64"`
	Password           string                   `json:"password" validate:"omitempty,max=72"`
	Name               string                   `json:"name" validate:"required"`
	Email              string                   `json:"email" validate:"omitempty,email"`
	Role               auth.Role                `json:"role" validate:"required,oneof=SystemAdmin HR GeneralUser"`
	Permissions        []auth.CompanyPermission `json:"permissions"`
	MustChangePassword *bool                    `json:"mustChangePassword"`
}

type ListResponse struct {
	Users []User `json:"users"`
}

func (d CreateUserDTO) Validate() error {
	return validation.Struct(d)
}

func (d UpdateUserDTO) Validate() error {
	return validation.Struct(d)
}
