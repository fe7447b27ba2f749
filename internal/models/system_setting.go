package models

import "time"

// Setting keys stored in app_settings
const (
	SettingAppName         = "app_name"
	SettingAppIcon         = "app_icon"
	SettingFeatureChat     = "feature_chat"
	SettingFeatureReports  = "feature_reports"
	SettingFeaturePayments = "feature_payments"
)

type SystemSetting struct {
	SettingKey      string    `json:"setting_key"`
	SettingValue    string    `json:"setting_value"`
	UpdatedAt       time.Time `json:"updated_at"`
	UpdatedByUserID string    `json:"updated_by_user_id,omitempty"`
}

type Features struct {
	Chat     bool `json:"chat"`
	Reports  bool `json:"reports"`
	Payments bool `json:"payments"`
}

// AppSettings is the branding and feature toggle view over the key/value rows
type AppSettings struct {
	AppName         string   `json:"app_name"`
	AppIcon         string   `json:"app_icon"`
	FeaturesEnabled Features `json:"features_enabled"`
}

// UpdateSettingsRequest only touches the fields that are present
type UpdateSettingsRequest struct {
	AppName         *string `json:"app_name,omitempty"`
	AppIcon         *string `json:"app_icon,omitempty"`
	FeaturesEnabled *struct {
		Chat     *bool `json:"chat,omitempty"`
		Reports  *bool `json:"reports,omitempty"`
		Payments *bool `json:"payments,omitempty"`
	} `json:"features_enabled,omitempty"`
}
