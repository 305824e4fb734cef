package metrics

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// CommandMetrics 终端协议命令指标
type CommandMetrics struct {
	mu            sync.RWMutex
	commands      map[uint8]*commandCounter
	invalidFrames uint64
	droppedBytes  uint64
	lastResetTime time.Time
}

type commandCounter struct {
	count    uint64
	failures uint64
	total    time.Duration
	max      time.Duration
}

// CommandStats 单个命令的统计
type CommandStats struct {
	Command       string        `json:"command"`
	Count         uint64        `json:"count"`
	Failures      uint64        `json:"failures"`
	AvgProcessing time.Duration `json:"avgProcessingNs"`
	MaxProcessing time.Duration `json:"maxProcessingNs"`
}

// Summary 指标摘要
type Summary struct {
	Commands      []CommandStats `json:"commands"`
	TotalCommands uint64         `json:"totalCommands"`
	TotalFailures uint64         `json:"totalFailures"`
	InvalidFrames uint64         `json:"invalidFrames"`
	DroppedBytes  uint64         `json:"droppedBytes"`
	Uptime        string         `json:"uptime"`
	LastResetTime string         `json:"lastResetTime"`
}

// NewCommandMetrics 创建指标
func NewCommandMetrics() *CommandMetrics {
	return &CommandMetrics{
		commands:      make(map[uint8]*commandCounter),
		lastResetTime: time.Now(),
	}
}

var globalMetrics = NewCommandMetrics()

// GetGlobalMetrics 获取全局指标实例
func GetGlobalMetrics() *CommandMetrics {
	return globalMetrics
}

// RecordCommand 记录一次命令处理，failed表示应答状态不是成功
func (m *CommandMetrics) RecordCommand(command uint8, failed bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.commands[command]
	if !ok {
		c = &commandCounter{}
		m.commands[command] = c
	}
	c.count++
	if failed {
		c.failures++
	}
	c.total += duration
	if duration > c.max {
		c.max = duration
	}
}

// RecordInvalidFrame 记录一个被丢弃的非法帧
func (m *CommandMetrics) RecordInvalidFrame(droppedBytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidFrames++
	if droppedBytes > 0 {
		m.droppedBytes += uint64(droppedBytes)
	}
}

// GetCommandCount 获取命令计数
func (m *CommandMetrics) GetCommandCount(command uint8) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.commands[command]; ok {
		return c.count
	}
	return 0
}

// Snapshot 获取指标摘要，命令按命令码排序
func (m *CommandMetrics) Snapshot() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	codes := make([]int, 0, len(m.commands))
	for code := range m.commands {
		codes = append(codes, int(code))
	}
	sort.Ints(codes)

	summary := Summary{
		Commands:      make([]CommandStats, 0, len(codes)),
		InvalidFrames: m.invalidFrames,
		DroppedBytes:  m.droppedBytes,
		Uptime:        time.Since(m.lastResetTime).Round(time.Second).String(),
		LastResetTime: m.lastResetTime.Format("2006-01-02 15:04:05"),
	}
	for _, code := range codes {
		c := m.commands[uint8(code)]
		stats := CommandStats{
			Command:       fmt.Sprintf("0x%02X", code),
			Count:         c.count,
			Failures:      c.failures,
			MaxProcessing: c.max,
		}
		if c.count > 0 {
			stats.AvgProcessing = c.total / time.Duration(c.count)
		}
		summary.Commands = append(summary.Commands, stats)
		summary.TotalCommands += c.count
		summary.TotalFailures += c.failures
	}
	return summary
}

// Reset 重置指标
func (m *CommandMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = make(map[uint8]*commandCounter)
	m.invalidFrames = 0
	m.droppedBytes = 0
	m.lastResetTime = time.Now()
}
