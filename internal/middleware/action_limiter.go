package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== ActionLimiter 操作限流器 ====================

// ActionLimiter 同一个 key 在冷却间隔内只允许执行一次
// 用于重发激活邮件、申请重置密码，防止邮箱被刷
type ActionLimiter struct {
	locks sync.Map // key -> *lockEntry
	now   func() time.Time
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewActionLimiter 创建限流器
func NewActionLimiter() *ActionLimiter {
	return &ActionLimiter{now: time.Now}
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时记录本次执行时间
// key: 限流键，如 "resend_activation:ali@example.com"
func (r *ActionLimiter) Check(key string, interval time.Duration) CheckResult {
	if interval <= 0 {
		return CheckResult{Allowed: true}
	}

	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *ActionLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// Prune 清理超过 maxAge 没有再触发的 key，返回清理数量
func (r *ActionLimiter) Prune(maxAge time.Duration) int {
	now := r.now()
	removed := 0
	r.locks.Range(func(key, value interface{}) bool {
		entry := value.(*lockEntry)
		entry.mu.Lock()
		stale := now.Sub(entry.lastTime) > maxAge
		entry.mu.Unlock()
		if stale {
			r.locks.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// ActionKey 生成限流 Key
func ActionKey(action, subject string) string {
	return fmt.Sprintf("%s:%s", action, subject)
}

// RetryMessage 格式化重试提示信息
func RetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	if seconds < 60 {
		return fmt.Sprintf("操作过于频繁，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("操作过于频繁，请 %d 分钟后重试", minutes)
	}

	return fmt.Sprintf("操作过于频繁，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
