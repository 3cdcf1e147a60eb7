package auth

import "github.com/frahmantamala/training-management/internal/core/common/validation"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=4,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

func (d LoginDTO) Validate() error {
	return validation.Struct(d)
}

func (d RefreshTokenDTO) Validate() error {
	return validation.Struct(d)
}

func (d ChangePasswordDTO) Validate() error {
	return validation.Struct(d)
}
