package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/hitoshi/shopgate/internal/model"
)

// 分類時のフォールバックメッセージ。バックエンドがメッセージを返さない
// 場合のユーザー向け文言。
const (
	fallbackValidation   = "Validation Error"
	fallbackUnauthorized = "Unauthorized access"
	fallbackNotFound     = "Resource not found"
	fallbackServerError  = "Server error - Please try again later"
)

// failureBody は失敗レスポンスのボディ。
// バックエンドは { message?: string, errors?: map[string][]string } を返す。
// errorsはフィールド名をキーとするバリデーションエラーのマップ。
type failureBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Classify は失敗レスポンスを分類済みエラーへ正規化する純粋関数。
// 副作用を持たず、決して失敗しない。ボディの形が想定外の場合は
// 汎用メッセージへ退化する。
//
// transportErrはレスポンス自体が得られなかった場合のトランスポート障害。
// その場合statusCodeには0を渡す。
//
// 分類規則（優先順）:
//  1. 400 かつ バリデーションエラーマップあり → Validation（マップ先頭のメッセージ）
//  2. 400 → Validation（サーバーメッセージ、なければトランスポートレベルのメッセージ）
//  3. 401 → Unauthorized
//  4. 404 → NotFound
//  5. 500 → ServerError
//  6. その他 → Unknown（トランスポートレベルのメッセージ）
func Classify(statusCode int, body []byte, transportErr error) *model.APIError {
	var parsed failureBody
	if len(body) > 0 {
		// パース失敗は無視し、ゼロ値のまま汎用メッセージ経路へ進む
		_ = json.Unmarshal(body, &parsed)
	}

	switch statusCode {
	case http.StatusBadRequest:
		if parsed.Errors != nil {
			return &model.APIError{
				Kind:       model.ErrorKindValidation,
				Message:    firstValidationMessage(parsed.Errors),
				StatusCode: statusCode,
				Raw:        transportErr,
			}
		}
		return &model.APIError{
			Kind:       model.ErrorKindValidation,
			Message:    fallback(parsed.Message, transportMessage(statusCode, transportErr)),
			StatusCode: statusCode,
			Raw:        transportErr,
		}

	case http.StatusUnauthorized:
		return &model.APIError{
			Kind:       model.ErrorKindUnauthorized,
			Message:    fallback(parsed.Message, fallbackUnauthorized),
			StatusCode: statusCode,
			Raw:        transportErr,
		}

	case http.StatusNotFound:
		return &model.APIError{
			Kind:       model.ErrorKindNotFound,
			Message:    fallback(parsed.Message, fallbackNotFound),
			StatusCode: statusCode,
			Raw:        transportErr,
		}

	case http.StatusInternalServerError:
		return &model.APIError{
			Kind:       model.ErrorKindServerError,
			Message:    fallback(parsed.Message, fallbackServerError),
			StatusCode: statusCode,
			Raw:        transportErr,
		}

	default:
		return &model.APIError{
			Kind:       model.ErrorKindUnknown,
			Message:    transportMessage(statusCode, transportErr),
			StatusCode: statusCode,
			Raw:        transportErr,
		}
	}
}

// firstValidationMessage はバリデーションエラーマップを平坦化し、
// 列挙順で最初のメッセージを返す。GoのマップはJSONのキー順を保持しない
// ため、キーの辞書順を列挙順として採用し決定的にする。
// マップが空の場合はフォールバックメッセージを返す。
func firstValidationMessage(errors map[string][]string) string {
	keys := make([]string, 0, len(errors))
	for key := range errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, msg := range errors[key] {
			if msg != "" {
				return msg
			}
		}
	}
	return fallbackValidation
}

// transportMessage はトランスポートレベルのエラーメッセージを返す。
// トランスポート障害がない場合はステータスコードから合成する。
func transportMessage(statusCode int, transportErr error) string {
	if transportErr != nil {
		return transportErr.Error()
	}
	return fmt.Sprintf("request failed with status %d", statusCode)
}

// fallback はprimaryが空でなければprimaryを、空ならsecondaryを返す。
func fallback(primary, secondary string) string {
	if primary != "" {
		return primary
	}
	return secondary
}
