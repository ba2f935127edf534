package handler

import (
	"sync"

	"github.com/hitoshi/shopgate/internal/apiclient"
)

// notFoundPath はNotFound分類時の遷移先ビュー。
const notFoundPath = "/not-found"

// PendingNavigator はセッションごとの保留中遷移要求を保持する。
// 分類器の副作用ステップが遷移を要求し、同一リクエストのエラーレスポンス
// 書き込み時に取り出されてクライアントへ伝えられる。
// NotFound 1件につき遷移要求はちょうど1件となる。
type PendingNavigator struct {
	mu      sync.Mutex
	pending map[string]string
}

// NewPendingNavigator はPendingNavigatorを生成する。
func NewPendingNavigator() *PendingNavigator {
	return &PendingNavigator{
		pending: make(map[string]string),
	}
}

// RequestNotFound は指定セッションのnot-foundビューへの遷移を要求する。
// 宛先のないセッションID（空文字）は破棄する。
func (n *PendingNavigator) RequestNotFound(sessionID string) {
	if sessionID == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending[sessionID] = notFoundPath
}

// Consume は保留中の遷移要求を取り出して消去する。要求がない場合は空文字を返す。
func (n *PendingNavigator) Consume(sessionID string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	path := n.pending[sessionID]
	delete(n.pending, sessionID)
	return path
}

// compile-time interface check
var _ apiclient.Navigator = (*PendingNavigator)(nil)
