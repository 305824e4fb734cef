package storage

import "sync"

// RecordStore 有界考勤记录存储
// 满时淘汰最旧的记录；newCount记录尚未以"新记录"方式下载的条数
type RecordStore struct {
	mu       sync.RWMutex
	records  []AccessRecord
	newCount int
	capacity int
}

// NewRecordStore 创建记录存储，capacity<=0时使用默认容量
func NewRecordStore(capacity int) *RecordStore {
	if capacity <= 0 {
		capacity = MaxRecords
	}
	return &RecordStore{
		records:  make([]AccessRecord, 0, capacity),
		capacity: capacity,
	}
}

// Capacity 返回容量
func (s *RecordStore) Capacity() int {
	return s.capacity
}

// Append 追加记录，返回被淘汰的条数
func (s *RecordStore) Append(record AccessRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	if len(s.records) >= s.capacity {
		copy(s.records, s.records[1:])
		s.records = s.records[:len(s.records)-1]
		evicted = 1
	}
	s.records = append(s.records, record)
	if s.newCount < len(s.records) {
		s.newCount++
	}
	return evicted
}

// Count 返回记录总数
func (s *RecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// NewCount 返回新记录数
func (s *RecordStore) NewCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newCount
}

// Counts 同时返回记录总数和新记录数
func (s *RecordStore) Counts() (total, newCount int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), s.newCount
}

// Range 返回从start开始最多count条记录的副本
func (s *RecordStore) Range(start, count int) []AccessRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rangeOf(s.records, start, count)
}

// Latest 返回最近的n条记录，最新的在前
func (s *RecordStore) Latest(n int) []AccessRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.records) {
		n = len(s.records)
	}
	out := make([]AccessRecord, 0, n)
	for i := len(s.records) - 1; i >= len(s.records)-n; i-- {
		out = append(out, s.records[i])
	}
	return out
}

// ClearAll 清空全部记录
func (s *RecordStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
	s.newCount = 0
}

// ClearNewFlag 清除新记录标记
func (s *RecordStore) ClearNewFlag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newCount = 0
}

// Snapshot 返回全部记录副本和新记录数
func (s *RecordStore) Snapshot() ([]AccessRecord, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AccessRecord, len(s.records))
	copy(out, s.records)
	return out, s.newCount
}

// Load 替换全部记录
// 超出容量时保留最新的部分，新记录数被限制在[0, 总数]
func (s *RecordStore) Load(records []AccessRecord, newCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(records) > s.capacity {
		records = records[len(records)-s.capacity:]
	}
	s.records = append(s.records[:0], records...)
	switch {
	case newCount < 0:
		newCount = 0
	case newCount > len(s.records):
		newCount = len(s.records)
	}
	s.newCount = newCount
}
