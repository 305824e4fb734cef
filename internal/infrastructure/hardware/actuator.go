package hardware

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
)

// LogActuator 模拟继电器和指示灯，状态变化只写日志
type LogActuator struct {
	mu        sync.RWMutex
	pins      storage.Pins
	relay     bool
	indicator bool
	pulses    int
}

// NewLogActuator 创建模拟执行器
func NewLogActuator(pins storage.Pins) *LogActuator {
	return &LogActuator{pins: pins}
}

// SetPins 更新引脚分配
func (a *LogActuator) SetPins(pins storage.Pins) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pins = pins
}

// SetRelay 设置继电器状态
func (a *LogActuator) SetRelay(on bool) {
	a.mu.Lock()
	if on && !a.relay {
		a.pulses++
	}
	a.relay = on
	pin := a.pins.Relay
	a.mu.Unlock()

	logger.WithFields(logrus.Fields{"pin": pin, "on": on}).Info("继电器状态变化")
}

// SetIndicator 设置指示灯状态
func (a *LogActuator) SetIndicator(on bool) {
	a.mu.Lock()
	a.indicator = on
	pin := a.pins.LED
	a.mu.Unlock()

	logger.WithFields(logrus.Fields{"pin": pin, "on": on}).Debug("指示灯状态变化")
}

// State 返回继电器和指示灯当前状态
func (a *LogActuator) State() (relay, indicator bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.relay, a.indicator
}

// Pulses 返回继电器吸合次数
func (a *LogActuator) Pulses() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pulses
}
