package user

import "time"

type User struct {
	ID                 string              `gorm:"primaryKey;type:varchar(64)"`
	Username           string              `gorm:"column:username;uniqueIndex;not null"`
	Name               string              `gorm:"column:name;not null"`
	Email              string              `gorm:"column:email"`
	PasswordHash       string              `gorm:"column:password_hash;not null"`
	Role               string              `gorm:"column:role;not null"`
	Permissions        []CompanyPermission `gorm:"column:permissions;serializer:json"`
	MustChangePassword bool                `gorm:"column:must_change_password;default:false"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// CompanyPermission is stored as a JSON array on the user row.
type CompanyPermission struct {
	Company            string   `json:"company"`
	ViewAllDepartments bool     `json:"viewAllDepartments"`
	AllowedDepartments []string `json:"allowedDepartments"`
}
