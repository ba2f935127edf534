package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/shopgate/internal/account"
	"github.com/hitoshi/shopgate/internal/middleware"
	"github.com/hitoshi/shopgate/internal/model"
	"github.com/hitoshi/shopgate/internal/notify"
)

// AccountServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	// Login はバックエンドで認証し、成功時に資格情報を保存する。
	Login(ctx context.Context, sessionID string, input account.LoginInput) (*model.User, error)
	// Register は新規ユーザーを登録する。自動ログインは行わない。
	Register(ctx context.Context, input account.RegisterInput) (*model.User, error)
	// Logout は資格情報を破棄する。
	Logout(ctx context.Context, sessionID string) error
}

// ReturnPathValidator はログイン後の戻り先パスの検証インターフェース。
type ReturnPathValidator interface {
	ValidateReturnPath(path string) error
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service  AccountServiceInterface
	auth     middleware.AuthSnapshotter
	guard    ReturnPathValidator
	notifier notify.Notifier
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AccountServiceInterface, auth middleware.AuthSnapshotter, guard ReturnPathValidator, notifier notify.Notifier) *AuthHandler {
	return &AuthHandler{
		service:  service,
		auth:     auth,
		guard:    guard,
		notifier: notifier,
	}
}

// loginResponse はログイン成功時のレスポンス。
// ReturnURLは検証済みのサイト内パスで、クライアントが遷移先として使用する。
type loginResponse struct {
	User      *model.User `json:"user,omitempty"`
	ReturnURL string      `json:"returnUrl"`
}

// meResponse は現在の認証状態のレスポンス。
type meResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId,omitempty"`
}

// Login はログインを処理する。
// POST /auth/login?returnUrl=/path
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Server error - Please try again later"})
		return
	}

	var input account.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidRequest(w)
		return
	}

	user, err := h.service.Login(r.Context(), sessionID, input)
	if err != nil {
		handleServiceError(w, r, nil, err)
		return
	}

	h.notifier.Push(sessionID, model.Notification{
		Text:     "Logged in successfully",
		Duration: 3000 * time.Millisecond,
		Severity: model.SeveritySuccess,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		User:      user,
		ReturnURL: h.returnURL(r),
	})
}

// Register はユーザー登録を処理する。登録成功後もログイン状態にはならない。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input account.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidRequest(w)
		return
	}

	if input.Password != input.ConfirmPassword {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Validation Error",
			Kind:    string(model.ErrorKindValidation),
			FieldErrors: map[string]string{
				"confirmPassword": "Passwords do not match",
			},
		})
		return
	}

	user, err := h.service.Register(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, nil, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Logout はログアウトを処理する。未ログインでも成功する（冪等）。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.service.Logout(r.Context(), sessionID); err != nil {
		handleServiceError(w, r, nil, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在の認証状態を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, meResponse{Authenticated: false})
		return
	}

	snapshot, err := h.auth.Snapshot(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusOK, meResponse{Authenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		Authenticated: snapshot.Authenticated,
		UserID:        snapshot.UserID,
	})
}

// returnURL はreturnUrlクエリパラメータを検証して返す。
// 検証に失敗した場合はトップページへフォールバックする。
func (h *AuthHandler) returnURL(r *http.Request) string {
	raw := r.URL.Query().Get("returnUrl")
	if raw == "" {
		return "/"
	}
	if err := h.guard.ValidateReturnPath(raw); err != nil {
		return "/"
	}
	return raw
}
