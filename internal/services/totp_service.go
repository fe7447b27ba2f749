package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"strings"

	"fleet-backend/internal/auth"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpIssuer = "FleetManager"
	totpPeriod = 30
)

var totpOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TOTPService manages authenticator based 2FA for admins and managers
type TOTPService struct {
	Users store.UserStore
	Clock timeutil.Clock
}

func NewTOTPService(users store.UserStore) *TOTPService {
	return &TOTPService{Users: users}
}

// GenerateSetup creates a new TOTP secret and QR code for a user.
// The secret is stored but 2FA stays off until Enable confirms a code.
func (s *TOTPService) GenerateSetup(ctx context.Context, userID string) (*models.TOTPSetupResponse, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsMainManager() {
		return nil, ErrForbidden
	}

	account := user.Email
	if account == "" {
		account = user.Phone
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: account,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	user.TOTPSecret = key.Secret()
	user.TOTPEnabled = false
	user.UpdatedAt = clockNow(s.Clock)
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}

	qrImage, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, qrImage); err != nil {
		return nil, err
	}

	return &models.TOTPSetupResponse{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Issuer:      totpIssuer,
		AccountName: account,
	}, nil
}

// Enable verifies a code against the pending secret and turns 2FA on
func (s *TOTPService) Enable(ctx context.Context, userID, code string) error {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return ErrNoTOTPSecret
	}
	if !s.check(user.TOTPSecret, code) {
		return ErrInvalidTOTPCode
	}

	user.TOTPEnabled = true
	user.UpdatedAt = clockNow(s.Clock)
	return s.Users.Update(ctx, user)
}

// Disable turns 2FA off after verifying password and current code
func (s *TOTPService) Disable(ctx context.Context, userID, password, code string) error {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled {
		return ErrTOTPNotEnabled
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return ErrInvalidPassword
	}
	if !s.check(user.TOTPSecret, code) {
		return ErrInvalidTOTPCode
	}

	user.TOTPEnabled = false
	user.TOTPSecret = ""
	user.UpdatedAt = clockNow(s.Clock)
	return s.Users.Update(ctx, user)
}

// Validate checks a login code for a user with 2FA enabled
func (s *TOTPService) Validate(user *models.User, code string) bool {
	return user.TOTPEnabled && s.check(user.TOTPSecret, code)
}

func (s *TOTPService) check(secret, code string) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, clockNow(s.Clock).UTC(), totpOpts)
	return err == nil && ok
}
