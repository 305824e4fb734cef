package hardware

import (
	"sync"
	"time"
)

// OffsetClock 以系统时间加偏移量模拟终端时钟
// 设置时间只改变偏移量，不修改系统时间
type OffsetClock struct {
	mu     sync.RWMutex
	offset time.Duration
	loc    *time.Location
	now    func() time.Time
}

// NewOffsetClock 创建终端时钟，loc为nil时使用本地时区
func NewOffsetClock(loc *time.Location) *OffsetClock {
	if loc == nil {
		loc = time.Local
	}
	return &OffsetClock{loc: loc, now: time.Now}
}

// Now 返回终端当前时间
func (c *OffsetClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now().Add(c.offset).In(c.loc)
}

// Set 将终端时间设置为t
func (c *OffsetClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = t.Sub(c.now())
}

// Location 返回终端时区
func (c *OffsetClock) Location() *time.Location {
	return c.loc
}
