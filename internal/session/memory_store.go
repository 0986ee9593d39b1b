package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore はインメモリのセッションストア。
// 単一プロセス構成・開発環境向け。プロセス再起動で全セッションが消える。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
	}
}

// Create はセッションを保存する。
func (s *MemoryStore) Create(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// FindByID は指定IDのセッションを取得する。
// 存在しない、または期限切れの場合は (nil, nil) を返す。
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok || session.Expired(time.Now()) {
		return nil, nil
	}

	copied := session
	return &copied, nil
}

// Update はセッションを上書き保存する。
func (s *MemoryStore) Update(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// DeleteByID は指定IDのセッションを削除する。
func (s *MemoryStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteExpired は期限切れセッションを削除する。
func (s *MemoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var deleted int64
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
