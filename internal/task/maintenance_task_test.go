package task

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"priceoye_shop_v1/internal/middleware"
	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/repository"
	"priceoye_shop_v1/pkg/database"
	"priceoye_shop_v1/pkg/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver: "sqlite",
		DSN:    "file::memory:",
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, model.AllModels()...))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// createUser 创建用户并把注册时间改成 joined
func createUser(t *testing.T, db *gorm.DB, name string, active bool, joined time.Time) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com", Password: "x", IsActive: active}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Model(u).UpdateColumn("created_at", joined).Error)
	return u
}

func TestMaintenanceTask_PurgeInactive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	stale := createUser(t, db, "stale", false, now.Add(-10*24*time.Hour))
	createUser(t, db, "fresh", false, now.Add(-time.Hour))
	createUser(t, db, "active", true, now.Add(-30*24*time.Hour))

	// 未激活用户的关联数据一并删除
	require.NoError(t, db.Create(&model.Payment{UserID: stale.ID, Amount: decimal.RequireFromString("1.00")}).Error)

	task := NewMaintenanceTask(repository.NewUserRepository(db), middleware.NewActionLimiter(), MaintenanceConfig{
		LimiterMaxAge:      time.Minute,
		PurgeInactiveAfter: 7 * 24 * time.Hour,
	}, logger.Nop())
	task.now = func() time.Time { return now }

	purged, err := task.PurgeInactive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	var names []string
	require.NoError(t, db.Model(&model.User{}).Order("id").Pluck("username", &names).Error)
	assert.Equal(t, []string{"fresh", "active"}, names)

	var payments int64
	require.NoError(t, db.Model(&model.Payment{}).Count(&payments).Error)
	assert.Zero(t, payments)
}

func TestMaintenanceTask_PurgeDisabled(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "stale", false, time.Now().Add(-365*24*time.Hour))

	task := NewMaintenanceTask(repository.NewUserRepository(db), middleware.NewActionLimiter(), MaintenanceConfig{}, logger.Nop())
	purged, err := task.PurgeInactive(context.Background())
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestMaintenanceTask_StartStop(t *testing.T) {
	db := setupTestDB(t)
	limiter := middleware.NewActionLimiter()
	limiter.Check("resend_activation:ali@example.com", time.Minute)

	task := NewMaintenanceTask(repository.NewUserRepository(db), limiter, MaintenanceConfig{
		LimiterMaxAge:      time.Hour,
		PurgeInactiveAfter: 24 * time.Hour,
	}, logger.Nop())

	require.NoError(t, task.Start())
	assert.Len(t, task.cron.Entries(), 2)
	assert.Zero(t, task.PruneLimiter(), "未过期的记录保留")
	<-task.Stop().Done()
}
