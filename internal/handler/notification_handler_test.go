package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/shopgate/internal/model"
	"github.com/hitoshi/shopgate/internal/notify"
)

func TestNotificationHandler_Drain_ReturnsQueuedNotifications(t *testing.T) {
	notifier := notify.NewService()
	notifier.Push("session-1", model.Notification{Text: "first", Severity: model.SeverityInfo})
	notifier.Push("session-1", model.Notification{Text: "second", Severity: model.SeverityError})
	h := NewNotificationHandler(notifier)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/notifications", nil), "session-1")
	rec := httptest.NewRecorder()
	h.Drain(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp notificationsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Notifications) != 2 {
		t.Fatalf("通知数 = %d, want 2", len(resp.Notifications))
	}
	if resp.Notifications[0].Text != "first" || resp.Notifications[1].Text != "second" {
		t.Errorf("通知の順序が保たれていない: %+v", resp.Notifications)
	}
}

func TestNotificationHandler_Drain_SecondDrainIsEmpty(t *testing.T) {
	notifier := notify.NewService()
	notifier.Push("session-1", model.Notification{Text: "once"})
	h := NewNotificationHandler(notifier)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/notifications", nil), "session-1")
	h.Drain(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.Drain(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/notifications", nil), "session-1"))

	var resp notificationsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Notifications) != 0 {
		t.Errorf("2回目のDrainで通知が返った: %+v", resp.Notifications)
	}
}

func TestNotificationHandler_Drain_MissingSessionReturnsEmptyArray(t *testing.T) {
	h := NewNotificationHandler(notify.NewService())

	rec := httptest.NewRecorder()
	h.Drain(rec, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	// nilではなく空配列としてシリアライズされること
	if !strings.Contains(rec.Body.String(), `"notifications":[]`) {
		t.Errorf("body = %q, want empty array", rec.Body.String())
	}
}
