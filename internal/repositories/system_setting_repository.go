package repositories

import (
	"context"

	"fleet-backend/internal/models"
)

type SystemSettingRepository struct {
	DB DB
}

func NewSystemSettingRepository(db DB) *SystemSettingRepository {
	return &SystemSettingRepository{DB: db}
}

func (r *SystemSettingRepository) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	query := `
		SELECT setting_key, setting_value, updated_at, updated_by_user_id
		FROM app_settings
		WHERE setting_key = $1
	`

	setting := &models.SystemSetting{}
	err := r.DB.QueryRow(ctx, query, key).Scan(
		&setting.SettingKey,
		&setting.SettingValue,
		&setting.UpdatedAt,
		&setting.UpdatedByUserID,
	)
	if err != nil {
		return nil, mapErr(err)
	}

	return setting, nil
}

func (r *SystemSettingRepository) List(ctx context.Context) ([]*models.SystemSetting, error) {
	query := `
		SELECT setting_key, setting_value, updated_at, updated_by_user_id
		FROM app_settings
		ORDER BY setting_key
	`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*models.SystemSetting
	for rows.Next() {
		setting := &models.SystemSetting{}
		err := rows.Scan(
			&setting.SettingKey,
			&setting.SettingValue,
			&setting.UpdatedAt,
			&setting.UpdatedByUserID,
		)
		if err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}

	return settings, rows.Err()
}

func (r *SystemSettingRepository) Upsert(ctx context.Context, s *models.SystemSetting) error {
	query := `
		INSERT INTO app_settings (setting_key, setting_value, updated_at, updated_by_user_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (setting_key)
		DO UPDATE SET setting_value = EXCLUDED.setting_value,
		              updated_at = EXCLUDED.updated_at,
		              updated_by_user_id = EXCLUDED.updated_by_user_id
	`

	_, err := r.DB.Exec(ctx, query, s.SettingKey, s.SettingValue, s.UpdatedAt, s.UpdatedByUserID)
	return err
}
