package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 300 * time.Second

	// 上游要求的 beta 协议头
	betaHeader = "assistants=v2"
)

// ClientOption 客户端可选配置
type ClientOption func(*Client)

// WithBaseURL 自定义上游地址
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient 自定义 HTTP 客户端
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client 上游 assistant API 客户端
// 凭证按机器人持有，一个 Client 只服务一个凭证
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建客户端
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureThread 返回给定的线程 ID，为空则创建新线程
func (c *Client) EnsureThread(ctx context.Context, threadID string) (string, error) {
	if threadID != "" {
		return threadID, nil
	}

	var thread Thread
	if err := c.postJSON(ctx, "/threads", map[string]interface{}{}, &thread); err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return thread.ID, nil
}

// UploadFile 上传附件供 run 引用
// 空内容视为没有附件，返回 nil 而不是错误
func (c *Client) UploadFile(ctx context.Context, data []byte, filename, contentType string) (*File, error) {
	if len(data) == 0 {
		return nil, nil
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField("purpose", "assistants"); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write file content: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	var file File
	if err := json.Unmarshal(respBody, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &file, nil
}

// CreateMessage 向线程追加一条用户消息，可选携带附件
func (c *Client) CreateMessage(ctx context.Context, threadID, text string, attachments []Attachment) (*Message, error) {
	payload := map[string]interface{}{
		"role":    "user",
		"content": text,
	}
	if len(attachments) > 0 {
		payload["attachments"] = attachments
	}

	var msg Message
	if err := c.postJSON(ctx, "/threads/"+threadID+"/messages", payload, &msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return &msg, nil
}

// ListMessagesAfter 按时间升序列出严格晚于游标的消息
// 游标本身不包含在结果里
func (c *Client) ListMessagesAfter(ctx context.Context, threadID, after string) ([]*Message, error) {
	q := url.Values{}
	q.Set("order", "asc")
	if after != "" {
		q.Set("after", after)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/threads/"+threadID+"/messages?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	var result struct {
		Data []*Message `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Data, nil
}

// StreamRun 启动一次流式 run，按到达顺序返回事件
// 客户端下发的 instructions 会剔除所有字面 + 字符后再发给上游
func (c *Client) StreamRun(ctx context.Context, threadID string, params RunParams) (<-chan RunEvent, error) {
	payload := map[string]interface{}{
		"assistant_id": params.AssistantID,
		"instructions": sanitizeInstructions(params.Instructions),
		"stream":       true,
	}
	if params.MaxCompletionTokens != nil {
		payload["max_completion_tokens"] = *params.MaxCompletionTokens
	}
	if params.MaxPromptTokens != nil {
		payload["max_prompt_tokens"] = *params.MaxPromptTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/threads/"+threadID+"/runs", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	out := make(chan RunEvent)
	go streamReader(resp.Body, out)
	return out, nil
}

// sanitizeInstructions 剔除所有字面 + 字符
// 与线上旧版行为保持一致的归一化规则
func sanitizeInstructions(s string) string {
	return strings.ReplaceAll(s, "+", "")
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", betaHeader)
}

// parseAPIError 将上游错误响应解析成 APIError
func parseAPIError(statusCode int, body []byte) error {
	var payload struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
