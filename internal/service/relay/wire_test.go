// Package relay 提供出站流式协议编码器的单元测试
package relay

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/growthsaas/ai-tutor/internal/service/assistant"
)

// frame 解析出的单个协议帧
type frame struct {
	event string
	data  string
}

// parseFrames 按协议切分输出缓冲
func parseFrames(t *testing.T, raw string) []frame {
	t.Helper()
	var frames []frame
	for _, block := range strings.Split(raw, "\n\n") {
		if block == "" {
			continue
		}
		lines := strings.SplitN(block, "\n", 2)
		if len(lines) != 2 {
			t.Fatalf("Malformed frame: %q", block)
		}
		if !strings.HasPrefix(lines[0], "event: ") || !strings.HasPrefix(lines[1], "data: ") {
			t.Fatalf("Malformed frame: %q", block)
		}
		frames = append(frames, frame{
			event: strings.TrimPrefix(lines[0], "event: "),
			data:  strings.TrimPrefix(lines[1], "data: "),
		})
	}
	return frames
}

func TestEncoderMetadata(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.Metadata("thread_1", "msg_1", "bot_1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	frames := parseFrames(t, buf.String())
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].event != "metadata" {
		t.Errorf("Expected metadata event, got %s", frames[0].event)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(frames[0].data), &payload); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	if payload["threadId"] != "thread_1" || payload["messageId"] != "msg_1" || payload["chatbotId"] != "bot_1" {
		t.Errorf("Unexpected payload: %v", payload)
	}
}

func TestEncoderForwardVerbatim(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	data := json.RawMessage(`{"delta":{"content":[{"index":0,"type":"text"}]}}`)
	if err := enc.Forward(assistant.RunEvent{Event: "thread.message.delta", Data: data}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	frames := parseFrames(t, buf.String())
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].event != "thread.message.delta" {
		t.Errorf("Unexpected event name: %s", frames[0].event)
	}
	if frames[0].data != string(data) {
		t.Errorf("Event body not forwarded verbatim: %s", frames[0].data)
	}
}

func TestEncoderAssistantSyntheticFrame(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.Assistant("Oops! Something went wrong."); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	frames := parseFrames(t, buf.String())
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].event != "thread.message" {
		t.Errorf("Expected thread.message event, got %s", frames[0].event)
	}

	var payload struct {
		ID      string                     `json:"id"`
		Role    string                     `json:"role"`
		Content []assistant.MessageContent `json:"content"`
	}
	if err := json.Unmarshal([]byte(frames[0].data), &payload); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	if payload.ID != SyntheticMessageID {
		t.Errorf("Expected id %q, got %q", SyntheticMessageID, payload.ID)
	}
	if payload.Role != "assistant" {
		t.Errorf("Expected role assistant, got %s", payload.Role)
	}
	if len(payload.Content) != 1 || payload.Content[0].Type != "text" {
		t.Fatalf("Expected single text content part, got %v", payload.Content)
	}
	if payload.Content[0].Text.Value != "Oops! Something went wrong." {
		t.Errorf("Unexpected text: %s", payload.Content[0].Text.Value)
	}
}
