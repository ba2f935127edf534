package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/shopgate/internal/model"
)

// MetricsRecorder はバックエンド呼び出しのメトリクス収集インターフェース。
type MetricsRecorder interface {
	RecordBackendStatus(statusCode int)
	RecordBackendLatency(duration time.Duration)
	RecordErrorKind(kind string)
}

// ClientConfig はClientの設定。
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	Token     TokenFunc
	Transport http.RoundTripper // nilの場合はhttp.DefaultTransport
	Reactor   ErrorReactor      // nilの場合は副作用を適用しない
	Metrics   MetricsRecorder   // nilの場合はメトリクスを記録しない
	Logger    *slog.Logger
}

// Client はバックエンドAPIのHTTPクライアント。
// 全リクエストにAuthTransportで資格情報を付与し、全失敗レスポンスを
// 分類器に通してから呼び出し元へ伝播する。
type Client struct {
	baseURL    string
	httpClient *http.Client
	reactor    ErrorReactor
	metrics    MetricsRecorder
	logger     *slog.Logger
}

// NewClient はClientを生成する。
func NewClient(config ClientConfig) *Client {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &AuthTransport{
				Base:  config.Transport,
				Token: config.Token,
			},
		},
		reactor: config.Reactor,
		metrics: config.Metrics,
		logger:  logger,
	}
}

// Do はバックエンドAPIへのリクエストを実行し、成功時はレスポンスボディを返す。
// 失敗時は分類済みエラー（*model.APIError）を返す。分類時の副作用
// （通知・遷移要求）は返却前に適用済みだが、エラー自体は握りつぶさず
// 常に呼び出し元へ伝播する。呼び出し元は自身の状態遷移を判断するために
// エラーを処理しなければならない。
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimPrefix(path, "/"), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.RecordBackendLatency(time.Since(start))
	}
	if err != nil {
		return nil, c.fail(ctx, method, path, Classify(0, nil, err))
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordBackendStatus(resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, method, path, Classify(0, nil, err))
	}

	if resp.StatusCode >= 400 {
		return nil, c.fail(ctx, method, path, Classify(resp.StatusCode, respBody, nil))
	}

	return respBody, nil
}

// fail は失敗をログに記録し、副作用を適用してからエラーを返す。
func (c *Client) fail(ctx context.Context, method, path string, apiErr *model.APIError) *model.APIError {
	c.logger.Warn("backend request failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("kind", string(apiErr.Kind)),
		slog.Int("status", apiErr.StatusCode),
	)
	if c.metrics != nil {
		c.metrics.RecordErrorKind(string(apiErr.Kind))
	}
	if c.reactor != nil {
		c.reactor.React(ctx, apiErr)
	}
	return apiErr
}

// Envelope はバックエンドAPIの共通レスポンス形式。
// データを返す呼び出しはすべてこの形式で応答する。
type Envelope[T any] struct {
	Result       *T     `json:"result"`
	IsSuccess    bool   `json:"isSuccess"`
	ErrorMessage string `json:"errorMessage"`
}

// GetEnvelope はGETリクエストを実行し、共通エンベロープとしてデコードする。
func GetEnvelope[T any](ctx context.Context, c *Client, path string) (*Envelope[T], error) {
	return decodeEnvelope[T](c.Do(ctx, http.MethodGet, path, nil))
}

// PostEnvelope はPOSTリクエストを実行し、共通エンベロープとしてデコードする。
func PostEnvelope[T any](ctx context.Context, c *Client, path string, body any) (*Envelope[T], error) {
	return decodeEnvelope[T](c.Do(ctx, http.MethodPost, path, body))
}

// GetJSON はGETリクエストを実行し、エンベロープを介さず直接デコードする。
func GetJSON[T any](ctx context.Context, c *Client, path string) (*T, error) {
	return decodeJSON[T](c.Do(ctx, http.MethodGet, path, nil))
}

// PostJSON はPOSTリクエストを実行し、エンベロープを介さず直接デコードする。
// 決済セッション作成のようにエンベロープ形式を使わないエンドポイント用。
func PostJSON[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	return decodeJSON[T](c.Do(ctx, http.MethodPost, path, body))
}

func decodeEnvelope[T any](body []byte, err error) (*Envelope[T], error) {
	if err != nil {
		return nil, err
	}
	var envelope Envelope[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	return &envelope, nil
}

func decodeJSON[T any](body []byte, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &value, nil
}
