package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet-backend/internal/access"
	"fleet-backend/internal/auth"
	"fleet-backend/internal/cache"
	"fleet-backend/internal/metrics"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	maxFailedLogins   = 5
	failedLoginWindow = 15 * time.Minute
	minPasswordLength = 6
	generatedPassLen  = 12
)

type UserService struct {
	Users      store.UserStore
	JWTManager *auth.JWTManager
	Cache      *cache.Cache
	TOTP       *TOTPService
	Clock      timeutil.Clock
}

func NewUserService(users store.UserStore, jwtManager *auth.JWTManager, c *cache.Cache, totp *TOTPService) *UserService {
	return &UserService{
		Users:      users,
		JWTManager: jwtManager,
		Cache:      c,
		TOTP:       totp,
	}
}

// Login authenticates by email or phone and returns a JWT token.
// Accounts with 2FA enabled also need a current TOTP code.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, invalidf("identifier and password are required")
	}

	if s.Cache.FailedLogins(ctx, identifier) >= maxFailedLogins {
		metrics.LoginAttempts.WithLabelValues("throttled").Inc()
		return nil, ErrTooManyAttempts
	}

	user, err := s.Users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, s.failLogin(ctx, identifier)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, s.failLogin(ctx, identifier)
	}

	if !user.IsActive {
		metrics.LoginAttempts.WithLabelValues("suspended").Inc()
		return nil, ErrAccountSuspended
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			return nil, ErrTOTPRequired
		}
		if !s.TOTP.Validate(user, req.TOTPCode) {
			s.Cache.RecordFailedLogin(ctx, identifier, failedLoginWindow)
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			return nil, ErrInvalidTOTPCode
		}
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	s.Cache.ResetFailedLogins(ctx, identifier)
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	log.Printf("[Auth] %s (%s) logged in", user.Name, user.Role)

	return &models.AuthResponse{
		Token: token,
		User:  user,
	}, nil
}

func (s *UserService) failLogin(ctx context.Context, identifier string) error {
	n := s.Cache.RecordFailedLogin(ctx, identifier, failedLoginWindow)
	metrics.LoginAttempts.WithLabelValues("failure").Inc()
	log.Debugf("[Auth] failed login for %s (%d in window)", identifier, n)
	return ErrInvalidCredentials
}

// Logout revokes the token until it would have expired
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) {
	if claims == nil || claims.ExpiresAt == nil {
		return
	}
	s.Cache.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time)
}

// SeedAdmin creates the first super admin when the store has no users.
// A random password is generated and logged when none is configured.
func (s *UserService) SeedAdmin(ctx context.Context, name, email, password string) (bool, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}

	generated := password == ""
	if generated {
		password = strings.ReplaceAll(uuid.NewString(), "-", "")[:generatedPassLen]
	}

	active := true
	admin, err := s.create(ctx, models.RoleSuperAdmin, "", &models.CreateUserRequest{
		Name:     name,
		Email:    email,
		Password: password,
		IsActive: &active,
	})
	if err != nil {
		return false, fmt.Errorf("seed super admin: %w", err)
	}

	if generated {
		log.Warnf("[Seed] Created super admin %s with generated password %s, change it after first login", admin.Email, password)
	} else {
		log.Printf("[Seed] Created super admin %s", admin.Email)
	}
	return true, nil
}

// CreateManager is used by the super admin
func (s *UserService) CreateManager(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	return s.create(ctx, models.RoleManager, "", req)
}

// CreateDriver assigns the new driver to the acting manager
func (s *UserService) CreateDriver(ctx context.Context, actor *models.User, req *models.CreateUserRequest) (*models.User, error) {
	return s.create(ctx, models.RoleDriver, actor.ID, req)
}

// CreateSubManager creates a SUB_MANAGER (default) or UJALA_MANAGER under the acting manager
func (s *UserService) CreateSubManager(ctx context.Context, actor *models.User, req *models.CreateUserRequest) (*models.User, error) {
	role := req.Role
	if role == "" {
		role = models.RoleSubManager
	}
	if role != models.RoleSubManager && role != models.RoleUjalaManager {
		return nil, invalidf("role must be %s or %s", models.RoleSubManager, models.RoleUjalaManager)
	}
	return s.create(ctx, role, actor.ID, req)
}

func (s *UserService) create(ctx context.Context, role models.Role, managerID string, req *models.CreateUserRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)

	if name == "" {
		return nil, invalidf("name is required")
	}
	if email == "" && phone == "" {
		return nil, invalidf("email or phone is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalidf("password must be at least %d characters", minPasswordLength)
	}

	subType := req.SubManagerType
	if role == models.RoleSubManager {
		if subType == "" {
			subType = models.SubManagerImport
		}
		if subType != models.SubManagerImport && subType != models.SubManagerExport {
			return nil, invalidf("sub_manager_type must be IMPORT or EXPORT")
		}
	} else {
		subType = ""
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := clockNow(s.Clock)
	user := &models.User{
		ID:                uuid.NewString(),
		Name:              name,
		Email:             email,
		Phone:             phone,
		PasswordHash:      hash,
		Role:              role,
		SubManagerType:    subType,
		AssignedManagerID: managerID,
		IsActive:          req.IsActive == nil || *req.IsActive,
		Address:           strings.TrimSpace(req.Address),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if role == models.RoleDriver {
		user.NID = strings.TrimSpace(req.NID)
		user.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	}

	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email or phone already in use", store.ErrDuplicate)
		}
		return nil, err
	}

	log.Printf("[Users] Created %s %s", role, user.Name)
	return user, nil
}

// ListManagers returns every MANAGER account
func (s *UserService) ListManagers(ctx context.Context) ([]*models.User, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	return access.Managers(users), nil
}

// ListDrivers returns the drivers of the acting manager
func (s *UserService) ListDrivers(ctx context.Context, actor *models.User) ([]*models.User, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	return access.DriversOf(access.ManagerScope(actor), users), nil
}

// ListSubManagers returns the sub-managers and Ujala managers of the acting manager
func (s *UserService) ListSubManagers(ctx context.Context, actor *models.User) ([]*models.User, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	return access.SubManagersOf(access.ManagerScope(actor), users), nil
}

func (s *UserService) UpdateManager(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	return s.update(ctx, id, req, func(u *models.User) bool { return u.Role == models.RoleManager })
}

func (s *UserService) UpdateDriver(ctx context.Context, actor *models.User, id string, req *models.UpdateUserRequest) (*models.User, error) {
	return s.update(ctx, id, req, func(u *models.User) bool {
		return u.Role == models.RoleDriver && u.AssignedManagerID == actor.ID
	})
}

func (s *UserService) UpdateSubManager(ctx context.Context, actor *models.User, id string, req *models.UpdateUserRequest) (*models.User, error) {
	return s.update(ctx, id, req, func(u *models.User) bool {
		isSub := u.Role == models.RoleSubManager || u.Role == models.RoleUjalaManager
		return isSub && u.AssignedManagerID == actor.ID
	})
}

// update applies req to the user with id. Users outside the caller's reach read as not found.
func (s *UserService) update(ctx context.Context, id string, req *models.UpdateUserRequest, inScope func(*models.User) bool) (*models.User, error) {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inScope(user) {
		return nil, store.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidf("name cannot be empty")
		}
		user.Name = name
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if user.Email == "" && user.Phone == "" {
		return nil, invalidf("email or phone is required")
	}
	if req.SubManagerType != nil && user.Role == models.RoleSubManager {
		t := *req.SubManagerType
		if t != models.SubManagerImport && t != models.SubManagerExport {
			return nil, invalidf("sub_manager_type must be IMPORT or EXPORT")
		}
		user.SubManagerType = t
	}
	if req.Address != nil {
		user.Address = strings.TrimSpace(*req.Address)
	}
	if req.NID != nil {
		user.NID = strings.TrimSpace(*req.NID)
	}
	if req.LicenseNumber != nil {
		user.LicenseNumber = strings.TrimSpace(*req.LicenseNumber)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		if len(req.Password) < minPasswordLength {
			return nil, invalidf("password must be at least %d characters", minPasswordLength)
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = clockNow(s.Clock)
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile lets a user edit their own contact and bio fields
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidf("name cannot be empty")
		}
		user.Name = name
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&user.Phone, req.Phone)
	set(&user.Bio, req.Bio)
	set(&user.Address, req.Address)
	set(&user.PhotoURL, req.PhotoURL)
	if user.Role == models.RoleDriver {
		set(&user.NID, req.NID)
		set(&user.LicenseNumber, req.LicenseNumber)
	}

	user.UpdatedAt = clockNow(s.Clock)
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
