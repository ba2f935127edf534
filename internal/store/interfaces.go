// Package store はゲートウェイのセッションデータ永続化インターフェースを定義する。
// バックエンドAPIは外部のブラックボックスであり、ゲートウェイが自前で
// 保持するのは資格情報とチェックアウトセッションのみ。
package store

import (
	"context"
	"time"

	"github.com/hitoshi/shopgate/internal/model"
)

// TokenStore はゲートウェイセッションごとの資格情報の永続化インターフェース。
// トークンは不透明な文字列として扱い、内容を解釈しない。
type TokenStore interface {
	// Set はセッションIDに対応するトークンをTTL付きで保存する。
	Set(ctx context.Context, sessionID, token string, ttl time.Duration) error

	// Get は指定セッションのトークンを取得する。見つからない場合は空文字を返す。
	Get(ctx context.Context, sessionID string) (string, error)

	// Delete は指定セッションのトークンを削除する。
	// 存在しない場合でもエラーにならない（冪等）。
	Delete(ctx context.Context, sessionID string) error
}

// CheckoutStore はチェックアウトセッションの永続化インターフェース。
// オーナー（ゲートウェイセッション）ごとに同時に1つのチェックアウトのみを保持する。
type CheckoutStore interface {
	// Save はチェックアウトセッションをTTL付きで保存する。
	Save(ctx context.Context, session *model.CheckoutSession, ttl time.Duration) error

	// Find は指定オーナーのチェックアウトセッションを取得する。
	// 見つからない場合はnilを返す。
	Find(ctx context.Context, ownerID string) (*model.CheckoutSession, error)

	// Delete は指定オーナーのチェックアウトセッションを破棄する。
	// 存在しない場合でもエラーにならない（冪等）。
	Delete(ctx context.Context, ownerID string) error

	// PurgeExpired は期限切れセッションを削除し、削除件数を返す。
	// TTLをストア側が自動処理する実装では何もせず0を返してよい。
	PurgeExpired(ctx context.Context) (int, error)
}
