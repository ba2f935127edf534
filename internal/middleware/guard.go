package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hitoshi/shopgate/internal/authstate"
	"github.com/hitoshi/shopgate/internal/model"
	"github.com/hitoshi/shopgate/internal/notify"
)

const (
	// loginPath は未認証時のリダイレクト先。
	loginPath = "/auth/login"
	// guardMessage は未認証時にユーザーへ表示する通知文言。
	guardMessage = "You must be logged in to access this page"
	// guardNotificationDuration はガード通知の表示時間。
	guardNotificationDuration = 3000 * time.Millisecond
)

// AuthSnapshotter は評価時点の認証状態スナップショットの供給元。
// authstate.Serviceの部分集合として定義する。
type AuthSnapshotter interface {
	Snapshot(ctx context.Context, sessionID string) (authstate.Snapshot, error)
}

// GuardMetrics はガード拒否のメトリクス収集インターフェース。
type GuardMetrics interface {
	RecordGuardDenial()
}

// NewAccessGuardMiddleware は認証済みセッションのみ通過させるミドルウェアを返す。
// 評価はリクエストごとの不変スナップショットに対して行い、呼び出し間で
// 状態を持たない（同一の認証状態に対して常に同一の判定を返す）。
//
// 未認証の場合は通知を1件発行し、元のリクエストURLをreturnUrlクエリ
// パラメータとして保存した上でログインルートへリダイレクトする。
// 元のナビゲーションは完了しない。
// metricsはnil許容で、nilの場合は拒否数を記録しない。
func NewAccessGuardMiddleware(auth AuthSnapshotter, notifier notify.Notifier, metrics GuardMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := SessionIDFromContext(r.Context())
			if err != nil {
				// セッションミドルウェア未通過。未認証として扱う。
				denyAndRedirect(w, r, "", notifier, metrics)
				return
			}

			snapshot, err := auth.Snapshot(r.Context(), sessionID)
			if err != nil {
				slog.Error("failed to take auth snapshot",
					slog.String("error", err.Error()),
				)
				denyAndRedirect(w, r, sessionID, notifier, metrics)
				return
			}

			if snapshot.Authenticated {
				next.ServeHTTP(w, r)
				return
			}

			denyAndRedirect(w, r, sessionID, notifier, metrics)
		})
	}
}

// denyAndRedirect は未認証リクエストを拒否し、ログインルートへ誘導する。
func denyAndRedirect(w http.ResponseWriter, r *http.Request, sessionID string, notifier notify.Notifier, metrics GuardMetrics) {
	notifier.Push(sessionID, model.Notification{
		Text:     guardMessage,
		Duration: guardNotificationDuration,
		Severity: model.SeverityWarning,
	})
	if metrics != nil {
		metrics.RecordGuardDenial()
	}

	redirect := loginPath + "?returnUrl=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}
