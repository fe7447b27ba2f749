package repositories

import (
	"context"
	"strings"

	"fleet-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	DB DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), password_hash, role, sub_manager_type,
	assigned_manager_id, is_active, nid, license_number, bio, address, photo_url, totp_enabled, totp_secret,
	created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.SubManagerType,
		&u.AssignedManagerID, &u.IsActive, &u.NID, &u.LicenseNumber, &u.Bio, &u.Address, &u.PhotoURL,
		&u.TOTPEnabled, &u.TOTPSecret, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return mapErr(r.DB.QueryRow(ctx,
		`INSERT INTO users(id, name, email, phone, password_hash, role, sub_manager_type, assigned_manager_id,
			is_active, nid, license_number, bio, address, photo_url, totp_enabled, totp_secret, created_at, updated_at)
         VALUES($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
         RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.SubManagerType, u.AssignedManagerID,
		u.IsActive, u.NID, u.LicenseNumber, u.Bio, u.Address, u.PhotoURL, u.TOTPEnabled, u.TOTPSecret, u.CreatedAt,
	).Scan(&u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

// GetByIdentifier matches the email case-insensitively or the phone exactly
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	return scanUser(r.DB.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER($1) OR phone=$1 ORDER BY seq LIMIT 1`,
		identifier))
}

// List returns all users in insertion order
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	return affected(r.DB.Exec(ctx,
		`UPDATE users SET name=$2, email=NULLIF($3, ''), phone=NULLIF($4, ''), password_hash=$5, role=$6,
			sub_manager_type=$7, assigned_manager_id=$8, is_active=$9, nid=$10, license_number=$11, bio=$12,
			address=$13, photo_url=$14, totp_enabled=$15, totp_secret=$16, updated_at=$17
         WHERE id=$1`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.SubManagerType, u.AssignedManagerID,
		u.IsActive, u.NID, u.LicenseNumber, u.Bio, u.Address, u.PhotoURL, u.TOTPEnabled, u.TOTPSecret, u.UpdatedAt,
	))
}
