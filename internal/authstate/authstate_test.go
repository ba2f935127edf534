package authstate

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/shopgate/internal/store"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("トークンの生成に失敗した: %v", err)
	}
	return token
}

func newTestService() *Service {
	return NewService(store.NewMemoryTokenStore(), time.Hour)
}

func TestSnapshot_NoCredentialIsUnauthenticated(t *testing.T) {
	service := newTestService()

	snapshot, err := service.Snapshot(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Snapshot() がエラーを返した: %v", err)
	}
	if snapshot.Authenticated {
		t.Error("資格情報のないセッションは未認証であるべき")
	}
}

func TestSnapshot_ValidJWTIsAuthenticated(t *testing.T) {
	service := newTestService()
	token := signedToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	service.SetCredential(context.Background(), "s-1", token)

	snapshot, err := service.Snapshot(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Snapshot() がエラーを返した: %v", err)
	}

	if !snapshot.Authenticated {
		t.Error("有効期限内のJWTは認証済みであるべき")
	}
	if snapshot.UserID != "user-42" {
		t.Errorf("UserID = %q, want %q", snapshot.UserID, "user-42")
	}
	if snapshot.Token != token {
		t.Error("Tokenがスナップショットに含まれていない")
	}
}

func TestSnapshot_ExpiredJWTIsUnauthenticated(t *testing.T) {
	service := newTestService()
	token := signedToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	service.SetCredential(context.Background(), "s-1", token)

	snapshot, _ := service.Snapshot(context.Background(), "s-1")

	if snapshot.Authenticated {
		t.Error("期限切れのJWTは未認証であるべき")
	}
}

func TestSnapshot_OpaqueTokenIsUsable(t *testing.T) {
	service := newTestService()
	service.SetCredential(context.Background(), "s-1", "opaque-session-token")

	snapshot, _ := service.Snapshot(context.Background(), "s-1")

	if !snapshot.Authenticated {
		t.Error("不透明トークンは存在すれば利用可能とみなすべき")
	}
	if snapshot.UserID != "" {
		t.Errorf("不透明トークンのUserIDは空であるべき: %q", snapshot.UserID)
	}
}

func TestSnapshot_NameidClaimFallback(t *testing.T) {
	service := newTestService()
	token := signedToken(t, jwt.MapClaims{
		"nameid": "user-7",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	service.SetCredential(context.Background(), "s-1", token)

	snapshot, _ := service.Snapshot(context.Background(), "s-1")

	if snapshot.UserID != "user-7" {
		t.Errorf("UserID = %q, want %q", snapshot.UserID, "user-7")
	}
}

func TestSetCredential_RefusesEmptyToken(t *testing.T) {
	service := newTestService()

	if err := service.SetCredential(context.Background(), "s-1", ""); err == nil {
		t.Error("空の資格情報の保存は拒否されるべき")
	}
}

func TestClearCredential_RevokesAuthentication(t *testing.T) {
	service := newTestService()
	service.SetCredential(context.Background(), "s-1", "opaque-token")

	if err := service.ClearCredential(context.Background(), "s-1"); err != nil {
		t.Fatalf("ClearCredential() がエラーを返した: %v", err)
	}

	snapshot, _ := service.Snapshot(context.Background(), "s-1")
	if snapshot.Authenticated {
		t.Error("破棄後のセッションは未認証であるべき")
	}
}

func TestClearCredential_IsIdempotent(t *testing.T) {
	service := newTestService()

	if err := service.ClearCredential(context.Background(), "s-1"); err != nil {
		t.Errorf("資格情報がなくても破棄は成功すべき: %v", err)
	}
}

func TestSnapshot_SessionsAreIsolated(t *testing.T) {
	service := newTestService()
	service.SetCredential(context.Background(), "s-1", "opaque-token")

	snapshot, _ := service.Snapshot(context.Background(), "s-2")
	if snapshot.Authenticated {
		t.Error("他セッションの資格情報で認証されてはならない")
	}
}
