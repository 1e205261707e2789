package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"priceoye_shop_v1/internal/middleware"
	"priceoye_shop_v1/internal/repository"
)

// MaintenanceConfig 维护任务配置
type MaintenanceConfig struct {
	// 限流记录保留时长，一般等于重发间隔
	LimiterMaxAge time.Duration
	// 超过该时长仍未激活的账号会被删除，0 表示不清理
	PurgeInactiveAfter time.Duration
}

// ==================== MaintenanceTask 后台维护任务 ====================

// MaintenanceTask 清理过期的限流记录和长期未激活的账号
type MaintenanceTask struct {
	users   repository.UserRepository
	limiter *middleware.ActionLimiter
	cfg     MaintenanceConfig
	cron    *cron.Cron
	log     zerolog.Logger
	now     func() time.Time
}

// NewMaintenanceTask 创建维护任务
func NewMaintenanceTask(users repository.UserRepository, limiter *middleware.ActionLimiter, cfg MaintenanceConfig, log zerolog.Logger) *MaintenanceTask {
	return &MaintenanceTask{
		users:   users,
		limiter: limiter,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()), // 支持秒级控制
		log:     log.With().Str("task", "maintenance").Logger(),
		now:     time.Now,
	}
}

// Start 注册定时策略并启动
func (t *MaintenanceTask) Start() error {
	// 每 10 分钟清理一次限流记录
	if _, err := t.cron.AddFunc("0 */10 * * * *", func() {
		t.PruneLimiter()
	}); err != nil {
		return err
	}

	// 每天凌晨 3 点清理未激活账号
	if t.cfg.PurgeInactiveAfter > 0 {
		if _, err := t.cron.AddFunc("0 0 3 * * *", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := t.PurgeInactive(ctx); err != nil {
				t.log.Error().Err(err).Msg("清理未激活账号失败")
			}
		}); err != nil {
			return err
		}
	}

	t.cron.Start()
	t.log.Info().Dur("purge_inactive_after", t.cfg.PurgeInactiveAfter).Msg("维护任务已启动")
	return nil
}

// Stop 停止调度，返回的 context 在进行中的任务结束后关闭
func (t *MaintenanceTask) Stop() context.Context {
	return t.cron.Stop()
}

// PruneLimiter 清理过期的限流记录
func (t *MaintenanceTask) PruneLimiter() int {
	removed := t.limiter.Prune(t.cfg.LimiterMaxAge)
	if removed > 0 {
		t.log.Debug().Int("removed", removed).Msg("限流记录已清理")
	}
	return removed
}

// PurgeInactive 删除注册超过 PurgeInactiveAfter 仍未激活的账号
// 逐个删除，关联的订单、支付、购物车随之级联删除
func (t *MaintenanceTask) PurgeInactive(ctx context.Context) (int, error) {
	if t.cfg.PurgeInactiveAfter <= 0 {
		return 0, nil
	}

	users, err := t.users.ListInactiveJoinedBefore(ctx, t.now().Add(-t.cfg.PurgeInactiveAfter))
	if err != nil {
		return 0, err
	}

	purged := 0
	for i := range users {
		select {
		case <-ctx.Done():
			return purged, ctx.Err()
		default:
		}

		if err := t.users.Delete(ctx, &users[i]); err != nil {
			// 单个失败不影响其他账号
			t.log.Warn().Err(err).Int64("user_id", users[i].ID).Msg("删除未激活账号失败")
			continue
		}
		purged++
	}

	if purged > 0 {
		t.log.Info().Int("purged", purged).Msg("未激活账号已清理")
	}
	return purged, nil
}
