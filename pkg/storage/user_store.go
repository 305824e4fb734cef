package storage

import "sync"

// UserStore 有界用户存储，按插入顺序保存
type UserStore struct {
	mu       sync.RWMutex
	users    []User
	capacity int
}

// NewUserStore 创建用户存储，capacity<=0时使用默认容量
func NewUserStore(capacity int) *UserStore {
	if capacity <= 0 {
		capacity = MaxUsers
	}
	return &UserStore{
		users:    make([]User, 0, capacity),
		capacity: capacity,
	}
}

// Capacity 返回容量
func (s *UserStore) Capacity() int {
	return s.capacity
}

// Count 返回用户数量
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// FindByID 按ID查找，返回下标
func (s *UserStore) FindByID(id [5]byte) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id)
}

func (s *UserStore) indexOf(id [5]byte) (int, bool) {
	for i := range s.users {
		if s.users[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// FindActiveByCard 按卡号查找有效用户
func (s *UserStore) FindActiveByCard(cardID uint32) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if s.users[i].Active && s.users[i].CardID == cardID {
			return i, true
		}
	}
	return -1, false
}

// Get 返回指定下标的用户副本
func (s *UserStore) Get(index int) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.users) {
		return User{}, false
	}
	return s.users[index], true
}

// GetByID 按ID返回用户副本
func (s *UserStore) GetByID(id [5]byte) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.indexOf(id); ok {
		return s.users[i], true
	}
	return User{}, false
}

// Upsert 按ID更新已有用户，不存在且未满时追加到末尾
// 更新不改变ID和位置，写入后的用户总是有效的
func (s *UserStore) Upsert(user User) UpsertResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Active = true
	if i, ok := s.indexOf(user.ID); ok {
		s.users[i] = user
		return UpsertUpdated
	}
	if len(s.users) >= s.capacity {
		return UpsertRejected
	}
	s.users = append(s.users, user)
	return UpsertInserted
}

// Delete 删除用户
// mode为DeleteAll时移除并压缩，否则按位清除卡号和密码
func (s *UserStore) Delete(id [5]byte, mode uint8) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indexOf(id)
	if !ok {
		return false
	}
	if mode == DeleteAll {
		s.users = append(s.users[:i], s.users[i+1:]...)
		return true
	}
	if mode&DeleteCard != 0 {
		s.users[i].CardID = 0
	}
	if mode&DeletePassword != 0 {
		s.users[i].Password = ClearedPassword
	}
	return true
}

// Range 返回从start开始最多count个用户的副本
func (s *UserStore) Range(start, count int) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rangeOf(s.users, start, count)
}

// Snapshot 返回全部用户的副本
func (s *UserStore) Snapshot() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, len(s.users))
	copy(out, s.users)
	return out
}

// Load 替换全部用户，超出容量的部分被丢弃
func (s *UserStore) Load(users []User) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(users) > s.capacity {
		users = users[:s.capacity]
	}
	s.users = append(s.users[:0], users...)
	return len(s.users)
}

// rangeOf 截取[start, start+count)范围的副本
func rangeOf[T any](items []T, start, count int) []T {
	if start < 0 || count <= 0 || start >= len(items) {
		return []T{}
	}
	end := start + count
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
