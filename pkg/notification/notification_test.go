package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	mu      sync.Mutex
	items   []published
	fail    bool
	closed  bool
	release chan struct{}
}

func (f *fakePublisher) Publish(topic string, qos byte, payload []byte) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker down")
	}
	f.items = append(f.items, published{topic: topic, qos: qos, payload: payload})
	return nil
}

func (f *fakePublisher) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakePublisher) snapshot() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.items...)
}

func newTestService(t *testing.T, pub Publisher, queue int) *NotificationService {
	t.Helper()
	cfg := DefaultNotificationConfig()
	cfg.QueueSize = queue
	cfg.QoS = 1
	svc, err := NewNotificationService(cfg, pub)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	return svc
}

func TestTopicSuffix(t *testing.T) {
	testCases := []struct {
		eventType string
		want      string
	}{
		{EventTypeAccessGranted, TopicRecords},
		{EventTypeAccessDenied, TopicRecords},
		{EventTypeRecordUploaded, TopicRecords},
		{EventTypeUnlock, TopicUnlock},
		{EventTypeRestart, TopicSystem},
	}
	for _, tc := range testCases {
		t.Run(tc.eventType, func(t *testing.T) {
			assert.Equal(t, tc.want, TopicSuffix(tc.eventType))
		})
	}
}

func TestNotificationService_Publish(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestService(t, pub, 8)

	svc.Notify(EventTypeAccessGranted, 0x00010001, map[string]interface{}{"card": 123})
	svc.Notify(EventTypeUnlock, 0x00010001, nil)

	require.NoError(t, svc.Stop(context.Background()))

	items := pub.snapshot()
	require.Len(t, items, 2)
	assert.Equal(t, "terminal/records", items[0].topic)
	assert.Equal(t, byte(1), items[0].qos)
	assert.Equal(t, "terminal/unlock", items[1].topic)
	assert.True(t, pub.closed)

	var event NotificationEvent
	require.NoError(t, json.Unmarshal(items[0].payload, &event))
	assert.Equal(t, EventTypeAccessGranted, event.EventType)
	assert.Equal(t, uint32(0x00010001), event.DeviceID)
	assert.NotEmpty(t, event.EventID)
	assert.EqualValues(t, 123, event.Data["card"])

	stats := svc.GetStats()
	assert.Equal(t, int64(2), stats.TotalSent)
	assert.False(t, svc.IsRunning())
}

func TestNotificationService_Failures(t *testing.T) {
	t.Run("发布失败计数", func(t *testing.T) {
		pub := &fakePublisher{fail: true}
		svc := newTestService(t, pub, 4)
		svc.Notify(EventTypeUnlock, 1, nil)
		require.NoError(t, svc.Stop(context.Background()))
		assert.Equal(t, int64(1), svc.GetStats().TotalFailed)
		// 发布失败不影响最近事件
		assert.Len(t, svc.Recent(10), 1)
	})

	t.Run("队列满时丢弃", func(t *testing.T) {
		pub := &fakePublisher{release: make(chan struct{})}
		svc := newTestService(t, pub, 1)

		// 第一条被工作协程取走并阻塞，第二条占满队列
		require.NoError(t, svc.SendNotification(&NotificationEvent{EventType: EventTypeUnlock}))
		assert.Eventually(t, func() bool { return len(svc.eventQueue) == 0 }, time.Second, time.Millisecond)
		require.NoError(t, svc.SendNotification(&NotificationEvent{EventType: EventTypeUnlock}))
		assert.Error(t, svc.SendNotification(&NotificationEvent{EventType: EventTypeUnlock}))
		assert.Equal(t, int64(1), svc.GetStats().TotalDropped)

		close(pub.release)
		require.NoError(t, svc.Stop(context.Background()))
		assert.Len(t, pub.snapshot(), 2)
	})

	t.Run("未启动时拒绝", func(t *testing.T) {
		svc, err := NewNotificationService(nil, nil)
		require.NoError(t, err)
		assert.Error(t, svc.SendNotification(&NotificationEvent{EventType: EventTypeUnlock}))
		assert.NoError(t, svc.Stop(context.Background()))
	})

	t.Run("配置非法", func(t *testing.T) {
		_, err := NewNotificationService(&NotificationConfig{QueueSize: 0, TopicPrefix: "t"}, nil)
		assert.Error(t, err)
		_, err = NewNotificationService(&NotificationConfig{QueueSize: 1, TopicPrefix: "t", QoS: 3}, nil)
		assert.Error(t, err)
	})
}

func TestEventRecorder_Recent(t *testing.T) {
	r := NewEventRecorder(3)
	assert.Empty(t, r.Recent(10))

	for i := 1; i <= 5; i++ {
		r.Record(&NotificationEvent{EventID: string(rune('0' + i))})
	}
	r.Record(nil)

	all := r.Recent(0)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].EventID)
	assert.Equal(t, "5", all[2].EventID)

	last := r.Recent(2)
	require.Len(t, last, 2)
	assert.Equal(t, "4", last[0].EventID)
	assert.False(t, last[1].Timestamp.IsZero())
}
