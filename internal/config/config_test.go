package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("BACKEND_API_URL", "http://localhost:5000/")
	t.Setenv("SESSION_SECRET", "test-session-secret-32bytes-long!")
	t.Setenv("BASE_URL", "http://localhost:8080")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.BackendAPIURL != "http://localhost:5000/" {
		t.Errorf("BackendAPIURL = %q, want %q", cfg.BackendAPIURL, "http://localhost:5000/")
	}
	if cfg.SessionSecret != "test-session-secret-32bytes-long!" {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, "test-session-secret-32bytes-long!")
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://localhost:8080")
	}
}

func TestLoad_MissingRequiredVars_ReturnsError(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("必須環境変数なしで Load() がエラーを返さなかった")
	}
	for _, name := range []string{"BACKEND_API_URL", "SESSION_SECRET", "BASE_URL"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("エラーメッセージに %s が含まれていない: %v", name, err)
		}
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.BackendTimeout != 15*time.Second {
		t.Errorf("BackendTimeout = %v, want %v", cfg.BackendTimeout, 15*time.Second)
	}
	if cfg.BackendSSRFGuard {
		t.Error("BackendSSRFGuard のデフォルトは false であるべき")
	}
	if cfg.PaymentAllowedHosts != nil {
		t.Errorf("PaymentAllowedHosts = %v, want nil", cfg.PaymentAllowedHosts)
	}
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 86400)
	}
	if cfg.CheckoutTTL != 30*time.Minute {
		t.Errorf("CheckoutTTL = %v, want %v", cfg.CheckoutTTL, 30*time.Minute)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitCheckout != 10 {
		t.Errorf("RateLimitCheckout = %d, want 10", cfg.RateLimitCheckout)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.CORSAllowedOrigin != "http://localhost:4200" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "http://localhost:4200")
	}
}

func TestLoad_CookieSecureFollowsBaseURLScheme(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BASE_URL", "https://shop.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.CookieSecure {
		t.Error("https のとき CookieSecure = false")
	}

	t.Setenv("BASE_URL", "http://localhost:8080")
	cfg, _ = Load()
	if cfg.CookieSecure {
		t.Error("http のとき CookieSecure = true")
	}
}

func TestLoad_PaymentAllowedHostsParsing(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("PAYMENT_ALLOWED_HOSTS", "checkout.stripe.com, pay.example.com,,  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []string{"checkout.stripe.com", "pay.example.com"}
	if !reflect.DeepEqual(cfg.PaymentAllowedHosts, want) {
		t.Errorf("PaymentAllowedHosts = %v, want %v", cfg.PaymentAllowedHosts, want)
	}
}

func TestLoad_InvalidOptionalValuesFallBackToDefaults(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BACKEND_TIMEOUT", "not-a-duration")
	t.Setenv("RATE_LIMIT_GENERAL", "abc")
	t.Setenv("BACKEND_SSRF_GUARD", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.BackendTimeout != 15*time.Second {
		t.Errorf("BackendTimeout = %v, want %v", cfg.BackendTimeout, 15*time.Second)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.BackendSSRFGuard {
		t.Error("不正な値のとき BackendSSRFGuard はデフォルト false に戻るべき")
	}
}
