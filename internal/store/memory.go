package store

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/shopgate/internal/model"
)

// memoryEntry は値と有効期限の組。
type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e memoryEntry[T]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryTokenStore はTokenStoreのインメモリ実装。
// 開発環境とテストで使用する。プロセス再起動で全セッションが失われる。
type MemoryTokenStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[string]
}

// NewMemoryTokenStore はMemoryTokenStoreを生成する。
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		entries: make(map[string]memoryEntry[string]),
	}
}

// Set はセッションIDに対応するトークンをTTL付きで保存する。
func (s *MemoryTokenStore) Set(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memoryEntry[string]{
		value:     token,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get は指定セッションのトークンを取得する。見つからない・期限切れの場合は空文字を返す。
func (s *MemoryTokenStore) Get(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[sessionID]
	if !ok || entry.expired(time.Now()) {
		return "", nil
	}
	return entry.value, nil
}

// Delete は指定セッションのトークンを削除する。
func (s *MemoryTokenStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// MemoryCheckoutStore はCheckoutStoreのインメモリ実装。
type MemoryCheckoutStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[*model.CheckoutSession]
}

// NewMemoryCheckoutStore はMemoryCheckoutStoreを生成する。
func NewMemoryCheckoutStore() *MemoryCheckoutStore {
	return &MemoryCheckoutStore{
		entries: make(map[string]memoryEntry[*model.CheckoutSession]),
	}
}

// Save はチェックアウトセッションをTTL付きで保存する。
func (s *MemoryCheckoutStore) Save(ctx context.Context, session *model.CheckoutSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// 共有ミューテーションを防ぐためコピーを保持する
	copied := *session
	s.entries[session.OwnerID] = memoryEntry[*model.CheckoutSession]{
		value:     &copied,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Find は指定オーナーのチェックアウトセッションを取得する。
func (s *MemoryCheckoutStore) Find(ctx context.Context, ownerID string) (*model.CheckoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[ownerID]
	if !ok || entry.expired(time.Now()) {
		return nil, nil
	}
	copied := *entry.value
	return &copied, nil
}

// Delete は指定オーナーのチェックアウトセッションを破棄する。
func (s *MemoryCheckoutStore) Delete(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, ownerID)
	return nil
}

// PurgeExpired は期限切れセッションを削除し、削除件数を返す。
func (s *MemoryCheckoutStore) PurgeExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	purged := 0
	for ownerID, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, ownerID)
			purged++
		}
	}
	return purged, nil
}

// compile-time interface checks
var (
	_ TokenStore    = (*MemoryTokenStore)(nil)
	_ CheckoutStore = (*MemoryCheckoutStore)(nil)
)
