package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fleet-backend/internal/cache"
	"fleet-backend/internal/mocks"
	"fleet-backend/internal/models"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_DefaultsAreCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockSettingStore(ctrl)
	repo.EXPECT().List(gomock.Any()).Return(nil, nil).Times(1)
	svc := NewSystemSettingService(repo, cache.NewLocal())
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	second, err := svc.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, DefaultAppName, first.AppName)
	assert.Equal(t, models.Features{Chat: true, Reports: true, Payments: true}, first.FeaturesEnabled)
	assert.Equal(t, first, second)
}

func TestSettings_RowsOverrideDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockSettingStore(ctrl)
	repo.EXPECT().List(gomock.Any()).Return([]*models.SystemSetting{
		{SettingKey: models.SettingAppName, SettingValue: "Dhaka Fleet"},
		{SettingKey: models.SettingFeatureReports, SettingValue: "false"},
		{SettingKey: models.SettingFeaturePayments, SettingValue: "not-a-bool"},
	}, nil)
	svc := NewSystemSettingService(repo, cache.NewLocal())

	features, err := svc.Features(context.Background())
	require.NoError(t, err)

	assert.True(t, features.Chat)
	assert.False(t, features.Reports)
	assert.True(t, features.Payments, "unparseable values keep the default")
}

func TestSettings_UpdateWritesPresentFieldsAndInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockSettingStore(ctrl)
	svc := NewSystemSettingService(repo, cache.NewLocal())
	svc.Clock = func() time.Time { return testNow }
	ctx := context.Background()

	repo.EXPECT().List(gomock.Any()).Return(nil, nil)
	_, err := svc.Get(ctx)
	require.NoError(t, err)

	var written []*models.SystemSetting
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *models.SystemSetting) error {
		written = append(written, s)
		return nil
	}).Times(2)
	repo.EXPECT().List(gomock.Any()).DoAndReturn(func(context.Context) ([]*models.SystemSetting, error) {
		return written, nil
	})

	var req models.UpdateSettingsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"app_name":" Dhaka Fleet ","features_enabled":{"chat":false}}`), &req))

	got, err := svc.Update(ctx, "admin", &req)
	require.NoError(t, err)

	require.Len(t, written, 2)
	assert.Equal(t, models.SettingAppName, written[0].SettingKey)
	assert.Equal(t, "Dhaka Fleet", written[0].SettingValue)
	assert.Equal(t, models.SettingFeatureChat, written[1].SettingKey)
	assert.Equal(t, "false", written[1].SettingValue)
	assert.Equal(t, "admin", written[1].UpdatedByUserID)
	assert.Equal(t, testNow, written[1].UpdatedAt)

	assert.Equal(t, "Dhaka Fleet", got.AppName)
	assert.False(t, got.FeaturesEnabled.Chat)
	assert.True(t, got.FeaturesEnabled.Reports)
}

func TestSettings_UpdateRejectsEmptyName(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewSystemSettingService(mocks.NewMockSettingStore(ctrl), cache.NewLocal())
	empty := "  "

	_, err := svc.Update(context.Background(), "admin", &models.UpdateSettingsRequest{AppName: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSettings_StoreErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("connection reset")
	repo := mocks.NewMockSettingStore(ctrl)
	repo.EXPECT().List(gomock.Any()).Return(nil, boom)

	_, err := NewSystemSettingService(repo, cache.NewLocal()).Get(context.Background())
	assert.ErrorIs(t, err, boom)
}
