package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/alt-text-kit/pkg/credential"
	"github.com/shouni/alt-text-kit/pkg/domain"
)

const (
	DefaultEndpoint       = "https://api.openai.com/v1/chat/completions"
	DefaultModel          = "gpt-4o"
	DefaultRequestTimeout = 60 * time.Second

	// maxResponseBytes はレスポンス本文として読み込む上限です。
	maxResponseBytes = 4 << 20
)

// Config は Client の接続設定です。
type Config struct {
	Endpoint string
	Model    string
	// CredentialName はストアから読み出すシークレット名です。
	CredentialName string
	// RequestTimeout は1リクエストあたりのタイムアウトです。0 なら無制限です。
	RequestTimeout time.Duration
}

// Client は Vision-Language Model API に1画像ごと1回のリクエストを送るクライアントです。
// リトライは行いません。
type Client struct {
	httpClient  *http.Client
	credentials credential.Getter
	endpoint    string
	model       string
	credName    string
	timeout     time.Duration
}

// NewClient は依存関係を注入して Client を初期化します。
func NewClient(httpClient *http.Client, credentials credential.Getter, cfg Config) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if credentials == nil {
		return nil, fmt.Errorf("credentials is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.CredentialName == "" {
		cfg.CredentialName = credential.DefaultName
	}

	return &Client{
		httpClient:  httpClient,
		credentials: credentials,
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		credName:    cfg.CredentialName,
		timeout:     cfg.RequestTimeout,
	}, nil
}

// Describe は base64 エンコード済みの JPEG と PromptSpec を送り、前後の空白を除いた代替テキストを返します。
// API キーが無い場合は通信を行わずに domain.ErrMissingCredential を返します。
func (c *Client) Describe(ctx context.Context, encodedImage string, spec domain.PromptSpec) (string, error) {
	apiKey, err := c.apiKey()
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(c.buildRequest(encodedImage, spec))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &domain.TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.APIRequestError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Message:    errorMessage(respBody),
		}
	}

	return parseResponse(respBody)
}

// Ready は API キーが取得できるかを確認します。通信は行いません。
func (c *Client) Ready() error {
	_, err := c.apiKey()
	return err
}

func (c *Client) apiKey() (string, error) {
	key, err := c.credentials.Get(c.credName)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return "", domain.ErrMissingCredential
		}
		return "", fmt.Errorf("%w: %w", domain.ErrMissingCredential, err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", domain.ErrMissingCredential
	}
	return key, nil
}

func (c *Client) buildRequest(encodedImage string, spec domain.PromptSpec) chatRequest {
	return chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: spec.Instruction},
					{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + encodedImage}},
				},
			},
		},
		MaxTokens: spec.MaxTokens,
	}
}

func parseResponse(body []byte) (string, error) {
	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &domain.EmptyResponseError{Reason: "malformed response", Err: err}
	}
	if len(chatResp.Choices) == 0 {
		return "", &domain.EmptyResponseError{Reason: "no choices in response"}
	}

	content := chatResp.Choices[0].Message.Content
	if content == nil {
		return "", &domain.EmptyResponseError{Reason: "choice has no content"}
	}
	text := strings.TrimSpace(*content)
	if text == "" {
		return "", &domain.EmptyResponseError{Reason: "choice content is blank"}
	}
	return text, nil
}

// errorMessage はエラー本文から message を取り出します。形式が違えば空文字です。
func errorMessage(body []byte) string {
	var env apiErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return ""
	}
	return env.Error.Message
}
