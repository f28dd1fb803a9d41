package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefectoDePlanta(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Plant.TimeZone)
	assert.Equal(t, 10*time.Minute, cfg.Plant.SnapshotTTL)
	assert.Equal(t, 5*time.Minute, cfg.Plant.WaitlistTTL)
	assert.Equal(t, 15, cfg.Plant.SwatchRetentionDays)
	assert.True(t, cfg.Plant.InvalidateOnWrite)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.False(t, cfg.DB.ForceIPv4)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("PLANT_WAITLIST_TTL", "90s")
	t.Setenv("PLANT_INVALIDATE_ON_WRITE", "false")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("DB_MAX_CONNS", "8")
	t.Setenv("DB_FORCE_IPV4", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Plant.WaitlistTTL)
	assert.False(t, cfg.Plant.InvalidateOnWrite)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, int32(8), cfg.DB.MaxConns)
	assert.True(t, cfg.DB.ForceIPv4)
}

func TestPlantConfig_Location(t *testing.T) {
	loc := PlantConfig{TimeZone: ""}.Location()
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 7*3600, offset)

	loc = PlantConfig{TimeZone: "zona/inexistente"}.Location()
	_, offset = time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 7*3600, offset)
}
