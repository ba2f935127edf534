package security

import (
	"strings"
	"testing"
)

func TestValidateExternalURL_AllowsPublicHTTPS(t *testing.T) {
	guard := NewRedirectGuard(nil)

	if err := guard.ValidateExternalURL("https://checkout.stripe.com/c/pay/cs_test_123"); err != nil {
		t.Errorf("パブリックなHTTPSのURLは許可されるべき: %v", err)
	}
}

func TestValidateExternalURL_RejectsEmptyURL(t *testing.T) {
	guard := NewRedirectGuard(nil)

	if err := guard.ValidateExternalURL(""); err == nil {
		t.Error("空のURLは拒否されるべき")
	}
}

func TestValidateExternalURL_RejectsDisallowedSchemes(t *testing.T) {
	guard := NewRedirectGuard(nil)

	schemes := []string{
		"javascript:alert(1)",
		"file:///etc/passwd",
		"ftp://example.com/file",
		"data:text/html,<script>",
	}
	for _, rawURL := range schemes {
		if err := guard.ValidateExternalURL(rawURL); err == nil {
			t.Errorf("スキーム %q は拒否されるべき", rawURL)
		}
	}
}

func TestValidateExternalURL_RejectsBlockedIPs(t *testing.T) {
	guard := NewRedirectGuard(nil)

	blocked := []string{
		"http://127.0.0.1/redirect",
		"http://10.0.0.5/redirect",
		"http://172.16.0.1/redirect",
		"http://192.168.1.1/redirect",
		"http://169.254.169.254/latest/meta-data/",
		"http://0.0.0.0/redirect",
		"http://[::1]/redirect",
	}
	for _, rawURL := range blocked {
		if err := guard.ValidateExternalURL(rawURL); err == nil {
			t.Errorf("ブロック対象のIP %q が許可された", rawURL)
		}
	}
}

func TestValidateExternalURL_RejectsLocalhost(t *testing.T) {
	guard := NewRedirectGuard(nil)

	if err := guard.ValidateExternalURL("http://localhost:8080/redirect"); err == nil {
		t.Error("localhostは拒否されるべき")
	}
	if err := guard.ValidateExternalURL("http://LOCALHOST/redirect"); err == nil {
		t.Error("大文字のlocalhostも拒否されるべき")
	}
}

func TestValidateExternalURL_AllowlistRestrictsHosts(t *testing.T) {
	guard := NewRedirectGuard([]string{"checkout.stripe.com"})

	if err := guard.ValidateExternalURL("https://checkout.stripe.com/c/pay/x"); err != nil {
		t.Errorf("許可リスト内のホストは許可されるべき: %v", err)
	}
	if err := guard.ValidateExternalURL("https://evil.example.com/pay"); err == nil {
		t.Error("許可リスト外のホストは拒否されるべき")
	}
}

func TestValidateExternalURL_AllowlistIsCaseInsensitive(t *testing.T) {
	guard := NewRedirectGuard([]string{"checkout.stripe.com"})

	if err := guard.ValidateExternalURL("https://Checkout.Stripe.Com/c/pay/x"); err != nil {
		t.Errorf("ホスト名の照合は大文字小文字を区別しないべき: %v", err)
	}
}

func TestValidateReturnPath_AllowsSitePaths(t *testing.T) {
	guard := NewRedirectGuard(nil)

	paths := []string{"/", "/api/cart", "/products?page=2"}
	for _, path := range paths {
		if err := guard.ValidateReturnPath(path); err != nil {
			t.Errorf("サイト内パス %q は許可されるべき: %v", path, err)
		}
	}
}

func TestValidateReturnPath_RejectsOpenRedirects(t *testing.T) {
	guard := NewRedirectGuard(nil)

	paths := []string{
		"",
		"https://evil.example.com/",
		"//evil.example.com/",
		"/\\evil.example.com",
		"/redirect?to=https://x", // パス中にスキームを含む
		"relative/path",
	}
	for _, path := range paths {
		if err := guard.ValidateReturnPath(path); err == nil {
			t.Errorf("戻り先パス %q は拒否されるべき", path)
		}
	}
}

func TestNewSafeTransport_ReturnsTransport(t *testing.T) {
	transport := NewSafeTransport(0)
	if transport == nil {
		t.Fatal("NewSafeTransport は nil を返してはならない")
	}
}

func TestValidateExternalURL_ErrorNamesTheReason(t *testing.T) {
	guard := NewRedirectGuard(nil)

	err := guard.ValidateExternalURL("javascript:alert(1)")
	if err == nil {
		t.Fatal("エラーが返るべき")
	}
	if !strings.Contains(err.Error(), "scheme") {
		t.Errorf("エラーメッセージに原因が含まれるべき: %v", err)
	}
}
