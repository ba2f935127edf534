package apiclient

import (
	"context"
	"time"

	"github.com/hitoshi/shopgate/internal/middleware"
	"github.com/hitoshi/shopgate/internal/model"
	"github.com/hitoshi/shopgate/internal/notify"
)

// Navigator はNotFound分類時のnot-foundビューへの遷移要求先。
type Navigator interface {
	// RequestNotFound は指定セッションのnot-foundビューへの遷移を要求する。
	RequestNotFound(sessionID string)
}

// ErrorReactor は分類済みエラーに対する副作用の適用インターフェース。
type ErrorReactor interface {
	React(ctx context.Context, apiErr *model.APIError)
}

// Reactor はErrorReactorの実装。分類関数から分離された副作用適用ステップで、
// 通知の発行とNotFound時の遷移要求のみを行う。
type Reactor struct {
	notifier  notify.Notifier
	navigator Navigator
}

// NewReactor はReactorを生成する。navigatorはnilでもよい（遷移要求を省略する）。
func NewReactor(notifier notify.Notifier, navigator Navigator) *Reactor {
	return &Reactor{
		notifier:  notifier,
		navigator: navigator,
	}
}

// React は失敗1件につき通知をちょうど1件発行し、NotFoundの場合のみ
// not-foundビューへの遷移を要求する。Unauthorizedであっても資格情報の
// 破棄や強制ログアウトは行わない。それは呼び出し側レベルのポリシーとして
// 意図的に残してある。
func (r *Reactor) React(ctx context.Context, apiErr *model.APIError) {
	sessionID, _ := middleware.SessionIDFromContext(ctx)

	severity := model.SeverityError
	if apiErr.Kind == model.ErrorKindNotFound {
		severity = model.SeverityWarning
	}

	r.notifier.Push(sessionID, model.Notification{
		Text:     apiErr.Message,
		Duration: notificationDuration(apiErr.Kind),
		Severity: severity,
	})

	if apiErr.Kind == model.ErrorKindNotFound && r.navigator != nil {
		r.navigator.RequestNotFound(sessionID)
	}
}

// notificationDuration は種別ごとの通知表示時間を返す。
// 定型的なバリデーションは短く、サーバーエラーは長く表示する。
func notificationDuration(kind model.ErrorKind) time.Duration {
	switch kind {
	case model.ErrorKindNotFound:
		return 4000 * time.Millisecond
	case model.ErrorKindServerError:
		return 5000 * time.Millisecond
	default:
		return 3000 * time.Millisecond
	}
}

// compile-time interface check
var _ ErrorReactor = (*Reactor)(nil)
