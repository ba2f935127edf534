// Package account はバックエンド認証APIとの連携と資格情報の更新を提供する。
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/shopgate/internal/apiclient"
	"github.com/hitoshi/shopgate/internal/model"
)

// LoginInput はログインリクエストの入力。
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput はユーザー登録リクエストの入力。
type RegisterInput struct {
	DisplayName     string `json:"displayName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
}

// CredentialWriter は資格情報の保存先インターフェース。
// authstate.Serviceの部分集合として定義する。
type CredentialWriter interface {
	SetCredential(ctx context.Context, sessionID, token string) error
	ClearCredential(ctx context.Context, sessionID string) error
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	api         *apiclient.Client
	credentials CredentialWriter
}

// NewService はServiceを生成する。
func NewService(api *apiclient.Client, credentials CredentialWriter) *Service {
	return &Service{
		api:         api,
		credentials: credentials,
	}
}

// Login はバックエンドにログインし、受け取ったトークンをセッションの
// 資格情報として保存する。失敗レスポンス（401等）は分類器を通過済みの
// エラーとしてそのまま伝播する。
func (s *Service) Login(ctx context.Context, sessionID string, input LoginInput) (*model.User, error) {
	envelope, err := apiclient.PostEnvelope[model.AuthResult](ctx, s.api, "api/auth/login", input)
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess || envelope.Result == nil || envelope.Result.Token == "" {
		return nil, fmt.Errorf("login rejected by backend: %s", envelope.ErrorMessage)
	}

	if err := s.credentials.SetCredential(ctx, sessionID, envelope.Result.Token); err != nil {
		return nil, fmt.Errorf("failed to persist credential: %w", err)
	}

	slog.Info("user logged in",
		slog.String("session_id", sessionID),
	)

	return envelope.Result.User, nil
}

// Register は新規ユーザーをバックエンドに登録する。
// 登録成功後の自動ログインは行わない（ユーザーは改めてログインする）。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	envelope, err := apiclient.PostEnvelope[model.User](ctx, s.api, "api/auth/register", input)
	if err != nil {
		return nil, err
	}
	if !envelope.IsSuccess {
		return nil, fmt.Errorf("registration rejected by backend: %s", envelope.ErrorMessage)
	}
	return envelope.Result, nil
}

// Logout はセッションの資格情報を破棄する。冪等。
// バックエンドのトークンはステートレスなため、ゲートウェイ側の破棄のみで完了する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.credentials.ClearCredential(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	slog.Info("user logged out",
		slog.String("session_id", sessionID),
	)
	return nil
}
