// Package authstate は資格情報の管理と認証状態スナップショットの提供を行う。
// 書き込みはログイン・ログアウト処理のみに限定し、読み取り側は常に
// 完全に更新済みの値を観測する。
package authstate

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/shopgate/internal/store"
)

// Snapshot は評価時点の認証状態の不変スナップショット。
// アクセスガードとUIの両方が同じスナップショットを消費する。
// UserIDはトークンがJWTの場合にsubクレームから抽出したバックエンドの
// ユーザーID。不透明トークンの場合は空。
type Snapshot struct {
	Token         string
	UserID        string
	Authenticated bool
}

// Service はゲートウェイセッションごとの資格情報を管理する。
type Service struct {
	tokens store.TokenStore
	maxAge time.Duration
}

// NewService はServiceを生成する。
// maxAgeはトークン保存時のTTLとして使用する。
func NewService(tokens store.TokenStore, maxAge time.Duration) *Service {
	return &Service{
		tokens: tokens,
		maxAge: maxAge,
	}
}

// SetCredential はログイン成功時にバックエンドから受け取ったトークンを保存する。
// 認証サブシステム以外から呼び出してはならない。
func (s *Service) SetCredential(ctx context.Context, sessionID, token string) error {
	if token == "" {
		return fmt.Errorf("refusing to store empty credential")
	}
	if err := s.tokens.Set(ctx, sessionID, token, s.maxAge); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// ClearCredential はログアウト時に資格情報を破棄する。冪等。
func (s *Service) ClearCredential(ctx context.Context, sessionID string) error {
	if err := s.tokens.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

// Snapshot は指定セッションの認証状態スナップショットを返す。
// トークン不在は未認証を意味する（エラーではない）。
func (s *Service) Snapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	if sessionID == "" {
		return Snapshot{}, nil
	}
	token, err := s.tokens.Get(ctx, sessionID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load credential: %w", err)
	}
	if token == "" {
		return Snapshot{}, nil
	}

	claims := parseClaims(token)
	return Snapshot{
		Token:         token,
		UserID:        subjectClaim(claims),
		Authenticated: tokenUsable(claims, time.Now()),
	}, nil
}

// parseClaims はトークンをJWTとして解析し、クレームを返す。
// バックエンドの署名鍵を持たないため署名検証は行わない。
// JWTとして解析できない不透明トークンの場合はnilを返す。
func parseClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// tokenUsable はトークンが利用可能かを判定する。
// JWTの場合のみexpクレームの期限切れを事前に検出する。不透明トークンは
// 存在すれば利用可能とみなす（最終判断はバックエンドが行う）。
func tokenUsable(claims jwt.MapClaims, now time.Time) bool {
	if claims == nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.Before(exp.Time)
}

// subjectClaim はクレームからバックエンドのユーザーIDを取り出す。
// subを優先し、ASP.NET系バックエンドが使うnameidも受け付ける。
func subjectClaim(claims jwt.MapClaims) string {
	if claims == nil {
		return ""
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	if nameid, ok := claims["nameid"].(string); ok {
		return nameid
	}
	return ""
}
