// Package apiclient はリモートコマースバックエンドAPIへの境界層を提供する。
// 発信リクエストへの資格情報付与、失敗レスポンスの分類、分類結果に応じた
// 通知・遷移の副作用適用を担う。
package apiclient

import (
	"context"
	"log/slog"
	"net/http"
)

// TokenFunc はリクエストコンテキストに対応するBearerトークンを返す。
// トークン不在は公開エンドポイントへの正当なリクエストであり、
// 空文字を返す（エラーではない）。
type TokenFunc func(ctx context.Context) (string, error)

// AuthTransport は発信リクエストに資格情報を付与するhttp.RoundTripper。
// トークンが存在する場合のみAuthorizationヘッダを設定し、存在しない
// 場合はリクエストを変更せず通す。副作用を持たず、それ自体は失敗しない。
type AuthTransport struct {
	Base  http.RoundTripper // nilの場合はhttp.DefaultTransport
	Token TokenFunc
}

// RoundTrip はhttp.RoundTripperを実装する。
// 元のリクエストは変更せず、ヘッダ付与が必要な場合のみクローンする。
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Token == nil {
		return t.base().RoundTrip(req)
	}
	token, err := t.Token(req.Context())
	if err != nil {
		// 資格情報の取得失敗はリクエストの失敗にしない。
		// 未認証として通し、最終判断はバックエンドに委ねる。
		slog.Warn("credential lookup failed, sending request unauthenticated",
			slog.String("error", err.Error()),
		)
		return t.base().RoundTrip(req)
	}
	if token == "" {
		return t.base().RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return t.base().RoundTrip(clone)
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// compile-time interface check
var _ http.RoundTripper = (*AuthTransport)(nil)
