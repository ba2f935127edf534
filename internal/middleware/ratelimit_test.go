package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestRateLimiter(generalBurst, checkoutBurst int) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // テスト中に補充されない程度に遅く
		GeneralBurst:    generalBurst,
		CheckoutRate:    rate.Limit(0.001),
		CheckoutBurst:   checkoutBurst,
		CleanupInterval: time.Hour,
	})
}

func doLimitedRequest(t *testing.T, mw func(next http.Handler) http.Handler, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req = req.WithContext(ContextWithSessionID(req.Context(), sessionID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := newTestRateLimiter(3, 1)
	defer rl.Stop()
	mw := rl.GeneralMiddleware()

	for i := 0; i < 3; i++ {
		rec := doLimitedRequest(t, mw, "s-1")
		if rec.Code != http.StatusOK {
			t.Fatalf("%d回目のリクエスト: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
}

func TestGeneralMiddleware_RejectsBeyondBurst(t *testing.T) {
	rl := newTestRateLimiter(2, 1)
	defer rl.Stop()
	mw := rl.GeneralMiddleware()

	doLimitedRequest(t, mw, "s-1")
	doLimitedRequest(t, mw, "s-1")
	rec := doLimitedRequest(t, mw, "s-1")

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After ヘッダーが設定されていない")
	}
}

func TestGeneralMiddleware_SessionsAreIndependent(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()
	mw := rl.GeneralMiddleware()

	doLimitedRequest(t, mw, "s-1")
	if rec := doLimitedRequest(t, mw, "s-1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("s-1 の2回目: status = %d, want 429", rec.Code)
	}

	// 別セッションは制限の影響を受けない
	if rec := doLimitedRequest(t, mw, "s-2"); rec.Code != http.StatusOK {
		t.Errorf("s-2 の1回目: status = %d, want 200", rec.Code)
	}
}

func TestCheckoutMiddleware_IndependentFromGeneral(t *testing.T) {
	rl := newTestRateLimiter(1, 2)
	defer rl.Stop()

	// API全般の制限を使い切る
	doLimitedRequest(t, rl.GeneralMiddleware(), "s-1")
	if rec := doLimitedRequest(t, rl.GeneralMiddleware(), "s-1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("general の2回目: status = %d, want 429", rec.Code)
	}

	// 注文確定側のバケットは独立
	if rec := doLimitedRequest(t, rl.CheckoutMiddleware(), "s-1"); rec.Code != http.StatusOK {
		t.Errorf("checkout の1回目: status = %d, want 200", rec.Code)
	}
}

func TestRateLimiter_MissingSessionReturnsBadRequest(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRateLimiter_TracksLimiterEntries(t *testing.T) {
	rl := newTestRateLimiter(5, 5)
	defer rl.Stop()

	doLimitedRequest(t, rl.GeneralMiddleware(), "s-1")
	doLimitedRequest(t, rl.GeneralMiddleware(), "s-2")
	doLimitedRequest(t, rl.CheckoutMiddleware(), "s-1")

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", got)
	}
	if got := rl.CheckoutLimiterCount(); got != 1 {
		t.Errorf("CheckoutLimiterCount() = %d, want 1", got)
	}
}
