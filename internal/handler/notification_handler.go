package handler

import (
	"net/http"

	"github.com/hitoshi/shopgate/internal/middleware"
	"github.com/hitoshi/shopgate/internal/model"
)

// NotificationDrainer はセッションの未読通知の取り出しインターフェース。
// notify.Serviceの部分集合として定義する。
type NotificationDrainer interface {
	Drain(sessionID string) []model.Notification
}

// NotificationHandler は通知キューのHTTPハンドラー。
type NotificationHandler struct {
	drainer NotificationDrainer
}

// NewNotificationHandler はNotificationHandlerを生成する。
func NewNotificationHandler(drainer NotificationDrainer) *NotificationHandler {
	return &NotificationHandler{drainer: drainer}
}

// notificationsResponse は未読通知一覧のレスポンス。
type notificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
}

// Drain はセッションの未読通知をすべて返し、キューを空にする。
// 同じ通知が二度返ることはない。
// GET /api/notifications
func (h *NotificationHandler) Drain(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, notificationsResponse{Notifications: []model.Notification{}})
		return
	}

	notifications := h.drainer.Drain(sessionID)
	if notifications == nil {
		notifications = []model.Notification{}
	}

	writeJSON(w, http.StatusOK, notificationsResponse{Notifications: notifications})
}
