package models

import "time"

type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleManager      Role = "MANAGER"
	RoleSubManager   Role = "SUB_MANAGER"
	RoleUjalaManager Role = "UJALA_MANAGER"
	RoleDriver       Role = "DRIVER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleManager, RoleSubManager, RoleUjalaManager, RoleDriver:
		return true
	}
	return false
}

// IsMainManager is true for the roles allowed to edit or delete trips, vehicles and payments
func (r Role) IsMainManager() bool {
	return r == RoleManager || r == RoleSuperAdmin
}

// SubManagerType decides which leg a sub-manager raises trip requests for
type SubManagerType string

const (
	SubManagerImport SubManagerType = "IMPORT"
	SubManagerExport SubManagerType = "EXPORT"
)

type User struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	Phone             string         `json:"phone"`
	PasswordHash      string         `json:"-"` // Never expose in JSON
	Role              Role           `json:"role"`
	SubManagerType    SubManagerType `json:"sub_manager_type,omitempty"`
	AssignedManagerID string         `json:"assigned_manager_id,omitempty"`
	IsActive          bool           `json:"is_active"`
	NID               string         `json:"nid,omitempty"`
	LicenseNumber     string         `json:"license_number,omitempty"`
	Bio               string         `json:"bio,omitempty"`
	Address           string         `json:"address,omitempty"`
	PhotoURL          string         `json:"photo_url,omitempty"`
	TOTPEnabled       bool           `json:"totp_enabled"`
	TOTPSecret        string         `json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// LoginRequest accepts an email or a phone number as identifier
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	TOTPCode   string `json:"totp_code,omitempty"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// LoginStepResponse is returned when the password matched but a TOTP code is still needed
type LoginStepResponse struct {
	RequiresTOTP bool   `json:"requires_totp"`
	Message      string `json:"message"`
}

// CreateUserRequest is used for managers, drivers and sub-managers alike
type CreateUserRequest struct {
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Password       string         `json:"password"`
	Role           Role           `json:"role,omitempty"`
	SubManagerType SubManagerType `json:"sub_manager_type,omitempty"`
	Address        string         `json:"address,omitempty"`
	NID            string         `json:"nid,omitempty"`
	LicenseNumber  string         `json:"license_number,omitempty"`
	IsActive       *bool          `json:"is_active,omitempty"`
}

// UpdateUserRequest leaves fields with nil values untouched
type UpdateUserRequest struct {
	Name           *string         `json:"name,omitempty"`
	Email          *string         `json:"email,omitempty"`
	Phone          *string         `json:"phone,omitempty"`
	Password       string          `json:"password,omitempty"` // Optional
	SubManagerType *SubManagerType `json:"sub_manager_type,omitempty"`
	Address        *string         `json:"address,omitempty"`
	NID            *string         `json:"nid,omitempty"`
	LicenseNumber  *string         `json:"license_number,omitempty"`
	IsActive       *bool           `json:"is_active,omitempty"`
}

// UpdateProfileRequest is what a user may change about themselves
type UpdateProfileRequest struct {
	Name          *string `json:"name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	Address       *string `json:"address,omitempty"`
	NID           *string `json:"nid,omitempty"`
	LicenseNumber *string `json:"license_number,omitempty"`
	PhotoURL      *string `json:"photo_url,omitempty"`
}
