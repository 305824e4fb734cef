package service

import (
	"sync"
	"time"

	"github.com/bujia-iot/iot-terminal/pkg/storage"
)

type memPersistence struct {
	mu          sync.Mutex
	cfg         storage.BasicConfig
	users       []storage.User
	records     []storage.AccessRecord
	newCount    int
	configSaves int
	userSaves   int
	recordSaves int
}

func newMemPersistence() *memPersistence {
	return &memPersistence{cfg: storage.DefaultBasicConfig()}
}

func (p *memPersistence) LoadConfig() storage.BasicConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

func (p *memPersistence) SaveConfig(cfg storage.BasicConfig) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	p.configSaves++
	return true
}

func (p *memPersistence) LoadUsers() []storage.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]storage.User(nil), p.users...)
}

func (p *memPersistence) SaveUsers(users []storage.User) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = users
	p.userSaves++
	return true
}

func (p *memPersistence) LoadRecords() ([]storage.AccessRecord, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]storage.AccessRecord(nil), p.records...), p.newCount
}

func (p *memPersistence) SaveRecords(records []storage.AccessRecord, newCount int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = records
	p.newCount = newCount
	p.recordSaves++
	return true
}

type fakeActuator struct {
	mu        sync.Mutex
	relay     bool
	indicator bool
	pulses    int
	pins      storage.Pins
}

func (a *fakeActuator) SetRelay(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if on && !a.relay {
		a.pulses++
	}
	a.relay = on
}

func (a *fakeActuator) SetIndicator(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.indicator = on
}

func (a *fakeActuator) SetPins(pins storage.Pins) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pins = pins
}

func (a *fakeActuator) state() (relay, indicator bool, pulses int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.relay, a.indicator, a.pulses
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type sentEvent struct {
	eventType string
	deviceID  uint32
	data      map[string]interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *fakeNotifier) Notify(eventType string, deviceID uint32, data map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{eventType: eventType, deviceID: deviceID, data: data})
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.eventType
	}
	return out
}
