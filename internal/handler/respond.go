// Package handler はゲートウェイのHTTP APIを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/shopgate/internal/checkout"
	"github.com/hitoshi/shopgate/internal/middleware"
	"github.com/hitoshi/shopgate/internal/model"
)

// errorResponse は統一エラーフォーマットのレスポンス。
// Redirectは分類器がnot-foundビューへの遷移を要求した場合のみ設定される。
type errorResponse struct {
	Message     string            `json:"message"`
	Kind        string            `json:"kind,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Redirect    string            `json:"redirect,omitempty"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeInvalidRequest はリクエストボディの解析失敗を返す。
func writeInvalidRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Message: "Validation Error",
		Kind:    string(model.ErrorKindValidation),
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータス
// コードに変換する。分類済みエラーの副作用（通知・遷移要求）は適用済みで
// あり、ここでは遷移要求の取り出しとステータス変換のみを行う。
func handleServiceError(w http.ResponseWriter, r *http.Request, navigator *PendingNavigator, err error) {
	var validationErr *checkout.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message:     "Validation Error",
			Kind:        string(model.ErrorKindValidation),
			FieldErrors: validationErr.FieldErrors,
		})
		return
	}

	if errors.Is(err, checkout.ErrNoActiveSession) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Message: "No checkout in progress",
		})
		return
	}
	if errors.Is(err, checkout.ErrInvalidState) || errors.Is(err, checkout.ErrSessionAbandoned) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Message: err.Error(),
		})
		return
	}

	var workflowErr *model.WorkflowError
	if errors.As(err, &workflowErr) {
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Message:  workflowErr.Error(),
			Kind:     errorKindOf(workflowErr.Cause),
			Redirect: consumeRedirect(r, navigator),
		})
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErrorStatus(apiErr), errorResponse{
			Message:  apiErr.Message,
			Kind:     string(apiErr.Kind),
			Redirect: consumeRedirect(r, navigator),
		})
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Message: "Server error - Please try again later",
	})
}

// apiErrorStatus は分類済みエラー種別からHTTPステータスコードにマッピングする。
// バックエンド由来の5xxと到達不能はBad Gatewayとして伝える。
func apiErrorStatus(apiErr *model.APIError) int {
	switch apiErr.Kind {
	case model.ErrorKindValidation:
		return http.StatusBadRequest
	case model.ErrorKindUnauthorized:
		return http.StatusUnauthorized
	case model.ErrorKindNotFound:
		return http.StatusNotFound
	case model.ErrorKindServerError:
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// errorKindOf はラップされたエラーから分類済み種別を取り出す。
func errorKindOf(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return string(apiErr.Kind)
	}
	return ""
}

// consumeRedirect は保留中の遷移要求を取り出す。要求がない場合は空文字。
func consumeRedirect(r *http.Request, navigator *PendingNavigator) string {
	if navigator == nil {
		return ""
	}
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		return ""
	}
	return navigator.Consume(sessionID)
}
