// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const sessionCookieName = "shopgate_session"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionIDContextKey はリクエストコンテキストにゲートウェイセッションIDを
// 格納するためのキー。
var sessionIDContextKey = contextKey("gateway_session_id")

// SessionConfig はゲートウェイセッションCookieの設定。
type SessionConfig struct {
	Secret       string
	CookieSecure bool
	CookieDomain string
	MaxAge       int // 秒
}

// NewGatewaySessionMiddleware はブラウザごとのゲートウェイセッションIDを
// 管理するミドルウェアを返す。Cookieが存在しない、または署名が不正な場合は
// 新しいセッションIDを発行する。セッションIDは認証の有無に関係なく
// 全リクエストに付与される（通知キューや未認証カート閲覧にも使うため）。
func NewGatewaySessionMiddleware(config SessionConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""

			// 1. 既存Cookieの検証
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				sessionID = verifySessionCookie(cookie.Value, config.Secret)
			}

			// 2. 無効な場合は新規発行
			if sessionID == "" {
				sessionID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    signSessionCookie(sessionID, config.Secret),
					Path:     "/",
					Domain:   config.CookieDomain,
					MaxAge:   config.MaxAge,
					HttpOnly: true,
					Secure:   config.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			// 3. セッションIDをコンテキストに注入
			ctx := context.WithValue(r.Context(), sessionIDContextKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// signSessionCookie はセッションIDにHMAC-SHA256署名を付与したCookie値を返す。
func signSessionCookie(sessionID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID))
	return sessionID + "." + hex.EncodeToString(mac.Sum(nil))
}

// verifySessionCookie はCookie値の署名を検証し、セッションIDを返す。
// 署名が不正な場合は空文字を返す。
func verifySessionCookie(value, secret string) string {
	sessionID, signature, ok := strings.Cut(value, ".")
	if !ok || sessionID == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ""
	}
	return sessionID
}

// SessionIDFromContext はリクエストコンテキストからゲートウェイセッションIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func SessionIDFromContext(ctx context.Context) (string, error) {
	sessionID, ok := ctx.Value(sessionIDContextKey).(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("gateway session ID not found in context")
	}
	return sessionID, nil
}

// ContextWithSessionID はコンテキストにセッションIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}
