package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/growthsaas/ai-tutor/internal/service/assistant"
)

// SyntheticMessageID 合成终止帧使用的固定消息 ID
const SyntheticMessageID = "end"

// Encoder 出站流式协议编码器
// 首帧是 metadata 对象，之后原样转发上游事件，每帧写完立即 flush
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEncoder 创建编码器，writer 支持 flush 时逐帧推送
func NewEncoder(w io.Writer) *Encoder {
	e := &Encoder{w: w}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

// Metadata 写入元数据帧：线程 ID、刚创建的用户消息 ID、机器人 ID
func (e *Encoder) Metadata(threadID, messageID, chatbotID string) error {
	payload, err := json.Marshal(map[string]string{
		"threadId":  threadID,
		"messageId": messageID,
		"chatbotId": chatbotID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return e.writeFrame("metadata", payload)
}

// Forward 原样转发一条上游事件
func (e *Encoder) Forward(ev assistant.RunEvent) error {
	return e.writeFrame(ev.Event, ev.Data)
}

// Assistant 写入一条合成的助手终止帧
// 固定 ID "end"，单个文本内容片段；配额超限和运行失败都走这里
func (e *Encoder) Assistant(text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"id":   SyntheticMessageID,
		"role": "assistant",
		"content": []assistant.MessageContent{
			{Type: "text", Text: &assistant.TextContent{Value: text}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal synthetic message: %w", err)
	}
	return e.writeFrame("thread.message", payload)
}

func (e *Encoder) writeFrame(event string, data []byte) error {
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
