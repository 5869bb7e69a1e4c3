package service

import (
	"sync"
	"time"

	"classsync/internal/model"
)

// Clock 当前时间来源（已换算到学校时区）
type Clock func() time.Time

// SystemClock 返回指定时区的系统时钟
func SystemClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// tenantLocks 每个租户一把互斥锁，保护整集合的读-改-写
type tenantLocks struct {
	mu    sync.Mutex
	locks map[model.Tenant]*sync.Mutex
}

func newTenantLocks() *tenantLocks {
	return &tenantLocks{locks: make(map[model.Tenant]*sync.Mutex)}
}

// lock 加锁并返回解锁函数
func (l *tenantLocks) lock(t model.Tenant) func() {
	l.mu.Lock()
	m, ok := l.locks[t]
	if !ok {
		m = &sync.Mutex{}
		l.locks[t] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// nextID 生成集合内递增 ID（毫秒时间戳，冲突时顺延）
func nextID(now time.Time, maxExisting int64) int64 {
	id := now.UnixMilli()
	if id <= maxExisting {
		id = maxExisting + 1
	}
	return id
}
