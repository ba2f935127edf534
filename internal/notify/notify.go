// Package notify はユーザー向け一時通知のキューイングを提供する。
// 通知はセッションごとのフラッシュキューに積まれ、プレゼンテーション層
// （GET /api/notifications）がドレインして表示する。
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/shopgate/internal/model"
)

// maxPerSession は1セッションが保持できる未読通知の上限。
// ドレインされないまま溜まり続けるのを防ぐ。超過時は古いものから捨てる。
const maxPerSession = 20

// Notifier は通知の発行インターフェース。
// 分類器・アクセスガード・各ハンドラーが使用する。
type Notifier interface {
	Push(sessionID string, n model.Notification)
}

// Service はNotifierのインメモリ実装。
type Service struct {
	mu     sync.Mutex
	queues map[string][]model.Notification
}

// NewService はServiceを生成する。
func NewService() *Service {
	return &Service{
		queues: make(map[string][]model.Notification),
	}
}

// Push は通知をセッションのキューに追加する。
// ID・作成時刻・表示時間（ミリ秒）を補完する。セッションIDが空の場合は
// 宛先がないため破棄する。
func (s *Service) Push(sessionID string, n model.Notification) {
	if sessionID == "" {
		return
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.DurationMs = n.Duration.Milliseconds()

	s.mu.Lock()
	defer s.mu.Unlock()
	queue := append(s.queues[sessionID], n)
	if len(queue) > maxPerSession {
		queue = queue[len(queue)-maxPerSession:]
	}
	s.queues[sessionID] = queue
}

// Drain はセッションの未読通知をすべて取り出し、キューを空にする。
func (s *Service) Drain(sessionID string) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queues[sessionID]
	delete(s.queues, sessionID)
	return queue
}

// compile-time interface check
var _ Notifier = (*Service)(nil)
