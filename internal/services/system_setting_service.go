package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"fleet-backend/internal/cache"
	"fleet-backend/internal/models"
	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultAppName   = "Fleet Manager"
	settingsCacheTTL = 5 * time.Minute
)

type SystemSettingService struct {
	Repo  store.SettingStore
	Cache *cache.Cache
	Clock timeutil.Clock
}

func NewSystemSettingService(repo store.SettingStore, c *cache.Cache) *SystemSettingService {
	return &SystemSettingService{Repo: repo, Cache: c}
}

// ListSettings returns the raw rows with their audit fields
func (s *SystemSettingService) ListSettings(ctx context.Context) ([]*models.SystemSetting, error) {
	return s.Repo.List(ctx)
}

// Get returns branding and feature toggles. Missing rows fall back to defaults.
func (s *SystemSettingService) Get(ctx context.Context) (*models.AppSettings, error) {
	if data, ok := s.Cache.GetCached(ctx, cache.SettingsKey); ok {
		var cached models.AppSettings
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	rows, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	settings := &models.AppSettings{
		AppName:         DefaultAppName,
		FeaturesEnabled: models.Features{Chat: true, Reports: true, Payments: true},
	}
	for _, row := range rows {
		switch row.SettingKey {
		case models.SettingAppName:
			if row.SettingValue != "" {
				settings.AppName = row.SettingValue
			}
		case models.SettingAppIcon:
			settings.AppIcon = row.SettingValue
		case models.SettingFeatureChat:
			settings.FeaturesEnabled.Chat = parseFlag(row.SettingValue, true)
		case models.SettingFeatureReports:
			settings.FeaturesEnabled.Reports = parseFlag(row.SettingValue, true)
		case models.SettingFeaturePayments:
			settings.FeaturesEnabled.Payments = parseFlag(row.SettingValue, true)
		}
	}

	if data, err := json.Marshal(settings); err == nil {
		s.Cache.SetCached(ctx, cache.SettingsKey, data, settingsCacheTTL)
	}
	return settings, nil
}

// Features satisfies the feature gate middleware
func (s *SystemSettingService) Features(ctx context.Context) (models.Features, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return models.Features{}, err
	}
	return settings.FeaturesEnabled, nil
}

// Update writes the present fields and records who changed them
func (s *SystemSettingService) Update(ctx context.Context, userID string, req *models.UpdateSettingsRequest) (*models.AppSettings, error) {
	values := map[string]string{}
	if req.AppName != nil {
		name := strings.TrimSpace(*req.AppName)
		if name == "" {
			return nil, invalidf("app_name cannot be empty")
		}
		values[models.SettingAppName] = name
	}
	if req.AppIcon != nil {
		values[models.SettingAppIcon] = strings.TrimSpace(*req.AppIcon)
	}
	if f := req.FeaturesEnabled; f != nil {
		if f.Chat != nil {
			values[models.SettingFeatureChat] = strconv.FormatBool(*f.Chat)
		}
		if f.Reports != nil {
			values[models.SettingFeatureReports] = strconv.FormatBool(*f.Reports)
		}
		if f.Payments != nil {
			values[models.SettingFeaturePayments] = strconv.FormatBool(*f.Payments)
		}
	}

	now := clockNow(s.Clock)
	for _, key := range []string{
		models.SettingAppName, models.SettingAppIcon,
		models.SettingFeatureChat, models.SettingFeatureReports, models.SettingFeaturePayments,
	} {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := s.Repo.Upsert(ctx, &models.SystemSetting{
			SettingKey:      key,
			SettingValue:    value,
			UpdatedAt:       now,
			UpdatedByUserID: userID,
		}); err != nil {
			return nil, err
		}
		log.Printf("[Settings] %s set to %q by %s", key, value, userID)
	}

	s.Cache.InvalidateKeys(ctx, cache.SettingsKey)
	return s.Get(ctx)
}

func parseFlag(value string, fallback bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
