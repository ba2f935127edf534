// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// RedirectGuardService はリダイレクト先URLの検証インターフェースを定義する。
// 決済ページへの外部リダイレクトとログイン後の戻り先の両方で使用される。
type RedirectGuardService interface {
	// ValidateExternalURL は外部リダイレクト先URLの安全性を検証する。
	// スキーム、ホスト、IPアドレスの検証を行い、内部ネットワークや
	// 許可外ホストへのリダイレクトの場合はエラーを返す。
	ValidateExternalURL(rawURL string) error

	// ValidateReturnPath はログイン後の戻り先パスを検証する。
	// サイト内の相対パスのみを許可し、オープンリダイレクトを防止する。
	ValidateReturnPath(path string) error
}

// allowedSchemes は外部リダイレクトで許可されるURLスキーム。
var allowedSchemes = []string{"http", "https"}

// blockedNetworks は外部リダイレクトでブロックされるネットワーク範囲。
// パッケージ初期化時に1回だけパースし、ValidateExternalURLでの検証に使用する。
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// プライベートIPアドレス (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// ループバック (RFC 1122)
		"127.0.0.0/8",
		// リンクローカル (RFC 3927) - クラウドメタデータIP (169.254.169.254) を含む
		"169.254.0.0/16",
		// カレントネットワーク
		"0.0.0.0/8",
		// IPv6ループバック
		"::1/128",
		// IPv6リンクローカル
		"fe80::/10",
		// IPv6ユニークローカル
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// redirectGuard はRedirectGuardServiceの実装。
type redirectGuard struct {
	// allowedHosts が空でない場合、外部リダイレクトはこのホストに限定される。
	allowedHosts []string
}

// NewRedirectGuard はRedirectGuardServiceの新しいインスタンスを生成する。
// allowedHostsが空の場合はパブリックなホストをすべて許可する。
func NewRedirectGuard(allowedHosts []string) *redirectGuard {
	return &redirectGuard{allowedHosts: allowedHosts}
}

var _ RedirectGuardService = (*redirectGuard)(nil)

// ValidateExternalURL は外部リダイレクト先URLの安全性を検証する。
// DNS解決を伴わない静的な検証を行う。ブラウザへ303を返す前の
// 事前チェックとして使用する。
func (g *redirectGuard) ValidateExternalURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	// スキーム検証: http/httpsのみ許可
	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	// ホスト検証: 空ホストを拒否
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	// 許可リストが設定されている場合: 照合して許可外を拒否
	if len(g.allowedHosts) > 0 && !g.isAllowedHost(host) {
		return fmt.Errorf("host not in redirect allowlist: %s", host)
	}

	// IPアドレスの場合: ブロック対象CIDRとの照合
	ip := net.ParseIP(host)
	if ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address: %s", ip.String())
		}
		return nil
	}

	// ホスト名の場合: localhost等の危険なホスト名を拒否
	if isBlockedHostname(host) {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

// ValidateReturnPath はログイン後の戻り先パスを検証する。
// "/"で始まるサイト内パスのみを許可する。"//host"形式は
// スキーム相対URLとして外部に解決されるため拒否する。
func (g *redirectGuard) ValidateReturnPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty return path")
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("return path must be absolute within the site: %s", path)
	}
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return fmt.Errorf("scheme-relative return path is not allowed: %s", path)
	}
	if strings.Contains(path, "://") {
		return fmt.Errorf("return path must not contain a scheme: %s", path)
	}
	return nil
}

// isAllowedHost はホスト名が許可リストに含まれるかを検証する。
func (g *redirectGuard) isAllowedHost(host string) bool {
	for _, allowed := range g.allowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}

// NewSafeTransport はSSRF防止機能付きのHTTPトランスポートを生成する。
// safeurlのデフォルト設定により、プライベートIP、ループバック、
// リンクローカル、メタデータIPへのリクエストがブロックされる。
// safeurlはnet.DialerのControlフックでDNS解決後のIPアドレスを検証するため、
// DNS再バインディング攻撃にも対応している。
func NewSafeTransport(timeout time.Duration) http.RoundTripper {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client.Transport
}

// isAllowedScheme はURLスキームが許可リストに含まれるかを検証する。
func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isBlockedIP はIPアドレスがブロック対象のネットワーク範囲に含まれるかを検証する。
func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// blockedHostnames はブロック対象のホスト名。
var blockedHostnames = []string{
	"localhost",
}

// isBlockedHostname はホスト名がブロック対象かを検証する。
func isBlockedHostname(host string) bool {
	lower := strings.ToLower(host)
	for _, blocked := range blockedHostnames {
		if lower == blocked {
			return true
		}
	}
	return false
}
