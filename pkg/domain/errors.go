package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBatch は画像が1枚も渡されなかったことを示します。
	ErrEmptyBatch = errors.New("no images provided")
	// ErrMissingCredential は API キーが保存されていないことを示します。
	ErrMissingCredential = errors.New("API key not found")
)

// ImageLoadError は画像の読み込みまたはデコードに失敗したことを示します。
type ImageLoadError struct {
	Index  int
	Source string
	Err    error
}

func (e *ImageLoadError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("failed to load image %q: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to load image: %v", e.Err)
}

func (e *ImageLoadError) Unwrap() error {
	return e.Err
}

// APIRequestError は API が 200 以外のステータスを返したことを示します。
// Body にはレスポンス本文をそのまま保持します。
type APIRequestError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *APIRequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API request failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API request failed (status %d)", e.StatusCode)
}

// EmptyResponseError はレスポンスが解析できない、または候補が空だったことを示します。
type EmptyResponseError struct {
	Reason string
	Err    error
}

func (e *EmptyResponseError) Error() string {
	msg := "no response from API"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EmptyResponseError) Unwrap() error {
	return e.Err
}

// TransportError はタイムアウトや DNS、TLS などネットワーク層の失敗を示します。
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorKind は呼び出し側が案内を切り替えるためのエラー分類です。
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindUnknown
	KindEmptyBatch
	KindImageLoad
	KindMissingCredential
	KindAPIRequest
	KindEmptyResponse
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindEmptyBatch:
		return "empty_batch"
	case KindImageLoad:
		return "image_load"
	case KindMissingCredential:
		return "missing_credential"
	case KindAPIRequest:
		return "api_request"
	case KindEmptyResponse:
		return "empty_response"
	case KindTransport:
		return "transport"
	}
	return "unknown"
}

// KindOf はラップされたエラーを含めて分類します。
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		loadErr      *ImageLoadError
		apiErr       *APIRequestError
		emptyErr     *EmptyResponseError
		transportErr *TransportError
	)
	switch {
	case errors.Is(err, ErrEmptyBatch):
		return KindEmptyBatch
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.As(err, &loadErr):
		return KindImageLoad
	case errors.As(err, &apiErr):
		return KindAPIRequest
	case errors.As(err, &emptyErr):
		return KindEmptyResponse
	case errors.As(err, &transportErr):
		return KindTransport
	}
	return KindUnknown
}

const missingCredentialGuidance = `No API key found. Please:

1. Get an API key from platform.openai.com
2. Save it with "alttext key set"
3. Make sure you have credits in your OpenAI account`

// Guidance はエラー種別に応じた利用者向けメッセージを返します。
func Guidance(err error) string {
	if err == nil {
		return ""
	}
	if KindOf(err) == KindMissingCredential {
		return missingCredentialGuidance
	}
	return err.Error()
}
