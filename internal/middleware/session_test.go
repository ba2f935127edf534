package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func testSessionConfig() SessionConfig {
	return SessionConfig{
		Secret:       "test-session-secret",
		CookieSecure: false,
		MaxAge:       3600,
	}
}

func TestGatewaySession_IssuesCookieOnFirstRequest(t *testing.T) {
	var gotSessionID string
	mw := NewGatewaySessionMiddleware(testSessionConfig())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := SessionIDFromContext(r.Context())
		if err != nil {
			t.Errorf("SessionIDFromContext がエラーを返した: %v", err)
		}
		gotSessionID = sessionID
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if gotSessionID == "" {
		t.Fatal("セッションIDがコンテキストに注入されていない")
	}

	cookies := rec.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatalf("セッションCookieが発行されていない: %v", cookies)
	}
	if !sessionCookie.HttpOnly {
		t.Error("セッションCookieが HttpOnly ではない")
	}
	if verifySessionCookie(sessionCookie.Value, "test-session-secret") != gotSessionID {
		t.Error("Cookie値の署名検証がコンテキストのセッションIDと一致しない")
	}
}

func TestGatewaySession_ReusesValidCookie(t *testing.T) {
	mw := NewGatewaySessionMiddleware(testSessionConfig())

	var gotSessionID string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSessionID, _ = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  sessionCookieName,
		Value: signSessionCookie("existing-session", "test-session-secret"),
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotSessionID != "existing-session" {
		t.Errorf("sessionID = %q, want %q", gotSessionID, "existing-session")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("有効なCookieがあるのに新しいCookieが発行された")
	}
}

func TestGatewaySession_RejectsTamperedCookie(t *testing.T) {
	mw := NewGatewaySessionMiddleware(testSessionConfig())

	var gotSessionID string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSessionID, _ = SessionIDFromContext(r.Context())
	}))

	// 別の秘密鍵で署名されたCookieは拒否され、新しいセッションIDが発行される
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  sessionCookieName,
		Value: signSessionCookie("forged-session", "attacker-secret"),
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotSessionID == "forged-session" {
		t.Fatal("改ざんされたCookieのセッションIDが受理された")
	}
	if gotSessionID == "" {
		t.Fatal("新しいセッションIDが発行されていない")
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("改ざんCookieの置き換えが発行されていない")
	}
}

func TestVerifySessionCookie_RejectsMalformedValue(t *testing.T) {
	cases := []string{
		"",
		"no-signature",
		".signature-only",
		"session.wrongsignature",
	}
	for _, value := range cases {
		if got := verifySessionCookie(value, "test-session-secret"); got != "" {
			t.Errorf("verifySessionCookie(%q) = %q, want empty", value, got)
		}
	}
}

func TestSessionIDFromContext_MissingReturnsError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := SessionIDFromContext(req.Context()); err == nil {
		t.Error("セッションIDなしのコンテキストでエラーが返らなかった")
	}
}
