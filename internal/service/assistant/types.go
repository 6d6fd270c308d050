// Package assistant 封装上游 assistant API 的线程、消息与流式 run
package assistant

import (
	"encoding/json"
	"fmt"
)

// Thread 上游会话线程
type Thread struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

// File 上游文件
type File struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Bytes    int64  `json:"bytes"`
	Purpose  string `json:"purpose"`
}

// TextContent 文本内容
type TextContent struct {
	Value string `json:"value"`
}

// ImageFileContent 图片文件内容
type ImageFileContent struct {
	FileID string `json:"file_id"`
}

// ImageURLContent 图片链接内容
type ImageURLContent struct {
	URL string `json:"url"`
}

// MessageContent 消息内容片段，类型封闭：text / image_file / image_url
type MessageContent struct {
	Type      string            `json:"type"`
	Text      *TextContent      `json:"text,omitempty"`
	ImageFile *ImageFileContent `json:"image_file,omitempty"`
	ImageURL  *ImageURLContent  `json:"image_url,omitempty"`
}

// Display 将内容片段归约成一个展示字符串
// 图片类内容用其标识（文件 ID 或 URL）代表
func (c *MessageContent) Display() string {
	switch c.Type {
	case "text":
		if c.Text != nil {
			return c.Text.Value
		}
	case "image_file":
		if c.ImageFile != nil {
			return c.ImageFile.FileID
		}
	case "image_url":
		if c.ImageURL != nil {
			return c.ImageURL.URL
		}
	}
	return ""
}

// Message 线程内的一条消息
type Message struct {
	ID        string           `json:"id"`
	ThreadID  string           `json:"thread_id"`
	Role      string           `json:"role"`
	Content   []MessageContent `json:"content"`
	CreatedAt int64            `json:"created_at"`
}

// FirstContentText 取首个内容片段的展示字符串
// 同一条消息的后续片段不参与归约
func (m *Message) FirstContentText() string {
	if len(m.Content) == 0 {
		return ""
	}
	return m.Content[0].Display()
}

// AttachmentTool 附件启用的工具能力
type AttachmentTool struct {
	Type string `json:"type"` // code_interpreter, file_search
}

// Attachment 消息附件及其工具能力
type Attachment struct {
	FileID string           `json:"file_id"`
	Tools  []AttachmentTool `json:"tools,omitempty"`
}

// RunParams 启动一次 run 的参数
type RunParams struct {
	AssistantID         string
	Instructions        string
	MaxCompletionTokens *int
	MaxPromptTokens     *int
}

// RunEvent 上游流式事件，Data 保留原始 JSON 原样转发
type RunEvent struct {
	Event string
	Data  json.RawMessage
}

// Completed 是否为成功完成的终止事件
func (e RunEvent) Completed() bool {
	return e.Event == "thread.run.completed"
}

// Terminal 是否为终止事件（不论成败）
func (e RunEvent) Terminal() bool {
	switch e.Event {
	case "thread.run.completed", "thread.run.failed", "thread.run.cancelled", "thread.run.expired", "error":
		return true
	}
	return false
}

// UnknownFailureMessage 无法从事件中提取失败原因时的缺省描述
const UnknownFailureMessage = "Unknown error"

// FailureReason 结构化的失败原因
type FailureReason struct {
	Code    string
	Message string
}

// FailureFrom 从终止事件中提取失败原因
// run 对象携带 last_error；error 事件直接携带错误体
func FailureFrom(e RunEvent) (FailureReason, bool) {
	switch e.Event {
	case "thread.run.failed", "thread.run.cancelled", "thread.run.expired":
		var run struct {
			LastError *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"last_error"`
		}
		if err := json.Unmarshal(e.Data, &run); err == nil && run.LastError != nil && run.LastError.Message != "" {
			return FailureReason{Code: run.LastError.Code, Message: run.LastError.Message}, true
		}
		return FailureReason{Message: UnknownFailureMessage}, true
	case "error":
		var body struct {
			Error *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(e.Data, &body); err == nil {
			if body.Error != nil && body.Error.Message != "" {
				return FailureReason{Code: body.Error.Code, Message: body.Error.Message}, true
			}
			if body.Message != "" {
				return FailureReason{Code: body.Code, Message: body.Message}, true
			}
		}
		return FailureReason{Message: UnknownFailureMessage}, true
	}
	return FailureReason{}, false
}

// APIError 上游返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error 实现 error 接口
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("assistant api error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("assistant api error (status %d): %s", e.StatusCode, e.Message)
}
