package notification

import (
	"sync"
	"time"
)

const defaultRecentSize = 200

// EventRecorder 保存最近发布的事件，满时覆盖最旧的一条
type EventRecorder struct {
	mu     sync.RWMutex
	events []NotificationEvent
	head   int // 最旧事件的位置
	size   int
}

// NewEventRecorder 创建事件记录器
func NewEventRecorder(capacity int) *EventRecorder {
	if capacity <= 0 {
		capacity = defaultRecentSize
	}
	return &EventRecorder{events: make([]NotificationEvent, capacity)}
}

// Record 保存事件副本
func (r *EventRecorder) Record(event *NotificationEvent) {
	if event == nil {
		return
	}
	saved := *event
	if saved.Timestamp.IsZero() {
		saved.Timestamp = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	capacity := len(r.events)
	if r.size < capacity {
		r.events[(r.head+r.size)%capacity] = saved
		r.size++
		return
	}
	r.events[r.head] = saved
	r.head = (r.head + 1) % capacity
}

// Recent 按发布顺序返回最近limit条事件，limit<=0时返回全部
func (r *EventRecorder) Recent(limit int) []*NotificationEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*NotificationEvent, 0, n)
	for i := r.size - n; i < r.size; i++ {
		e := r.events[(r.head+i)%len(r.events)]
		out = append(out, &e)
	}
	return out
}
