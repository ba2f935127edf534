// Package model はドメインモデルを定義する。
package model

import "fmt"

// ErrorKind は分類済みエラーの種別を表す。
// バックエンドAPIの失敗レスポンスから導出され、失敗レスポンスごとに
// 必ず1つの種別が割り当てられる。
type ErrorKind string

const (
	// ErrorKindValidation は入力検証エラー（HTTP 400）を示す。
	ErrorKindValidation ErrorKind = "validation"
	// ErrorKindUnauthorized は認証エラー（HTTP 401）を示す。
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	// ErrorKindNotFound はリソース未検出（HTTP 404）を示す。
	ErrorKindNotFound ErrorKind = "not_found"
	// ErrorKindServerError はバックエンド内部エラー（HTTP 500）を示す。
	ErrorKindServerError ErrorKind = "server_error"
	// ErrorKindUnknown は上記以外の失敗（接続断、タイムアウト等）を示す。
	ErrorKindUnknown ErrorKind = "unknown"
)

// APIError はバックエンドAPIの失敗を正規化したエラー。
// 分類器が失敗レスポンスごとに1つ生成し、通知・ナビゲーションの
// 副作用適用後も呼び出し元へそのまま再伝播される。
type APIError struct {
	Kind       ErrorKind
	Message    string // ユーザー向けメッセージ。常に空でない。
	StatusCode int    // HTTPステータスコード。トランスポート障害の場合は0。
	Raw        error  // 元のトランスポートエラー（存在する場合）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap は元のトランスポートエラーを返す。errors.Is/Asでの検査用。
func (e *APIError) Unwrap() error {
	return e.Raw
}

// WorkflowError はチェックアウトワークフローの失敗を表す。
// 分類済みエラーの再分類ではなく、ワークフローとしての帰結を示す。
type WorkflowError struct {
	Step  string // 失敗したステップ: "create_order", "create_payment_session"
	Cause error
}

// Error はerrorインターフェースを実装する。
func (e *WorkflowError) Error() string {
	return fmt.Sprintf("checkout workflow failed at %s: %v", e.Step, e.Cause)
}

// Unwrap は失敗の原因を返す。
func (e *WorkflowError) Unwrap() error {
	return e.Cause
}
