// Package relay 提供中继编排器的单元测试
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/growthsaas/ai-tutor/internal/model"
	"github.com/growthsaas/ai-tutor/internal/service/assistant"
)

// mockAssistantClient Mock 上游客户端
type mockAssistantClient struct {
	threadID     string
	uploadedFile *assistant.File
	createdMsg   *assistant.Message
	events       []assistant.RunEvent
	responses    []*assistant.Message
	ensureErr    error
	uploadErr    error
	createMsgErr error
	streamErr    error
	listErr      error

	streamCalled   bool
	gotAttachments []assistant.Attachment
	gotParams      assistant.RunParams
}

func (m *mockAssistantClient) EnsureThread(ctx context.Context, threadID string) (string, error) {
	if m.ensureErr != nil {
		return "", m.ensureErr
	}
	if threadID != "" {
		return threadID, nil
	}
	return m.threadID, nil
}

func (m *mockAssistantClient) UploadFile(ctx context.Context, data []byte, filename, contentType string) (*assistant.File, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	if len(data) == 0 {
		return nil, nil
	}
	return m.uploadedFile, nil
}

func (m *mockAssistantClient) CreateMessage(ctx context.Context, threadID, text string, attachments []assistant.Attachment) (*assistant.Message, error) {
	if m.createMsgErr != nil {
		return nil, m.createMsgErr
	}
	m.gotAttachments = attachments
	return m.createdMsg, nil
}

func (m *mockAssistantClient) StreamRun(ctx context.Context, threadID string, params assistant.RunParams) (<-chan assistant.RunEvent, error) {
	m.streamCalled = true
	m.gotParams = params
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	out := make(chan assistant.RunEvent)
	go func() {
		defer close(out)
		for _, ev := range m.events {
			out <- ev
		}
	}()
	return out, nil
}

func (m *mockAssistantClient) ListMessagesAfter(ctx context.Context, threadID, after string) ([]*assistant.Message, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.responses, nil
}

// mockGuard Mock 配额守卫
type mockGuard struct {
	allowed bool
	err     error
}

func (m *mockGuard) Allowed(ctx context.Context, ownerID string) (bool, error) {
	return m.allowed, m.err
}

// mockMessageStore Mock 消息持久化
type mockMessageStore struct {
	records   []*model.Message
	createErr error
}

func (m *mockMessageStore) CreateMessage(msg *model.Message) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, msg)
	return nil
}

func (m *mockMessageStore) CountByUserSince(userID string, since time.Time) (int64, error) {
	return int64(len(m.records)), nil
}

// mockErrorStore Mock 失败记录持久化
type mockErrorStore struct {
	records []*model.ChatbotError
}

func (m *mockErrorStore) CreateError(e *model.ChatbotError) error {
	m.records = append(m.records, e)
	return nil
}

func testBot() *model.Chatbot {
	return &model.Chatbot{
		ID:           "bot_1",
		UserID:       "owner_1",
		OpenAIID:     "asst_1",
		OpenAIKey:    "sk-test",
		ErrorMessage: "Custom error message.",
	}
}

func event(name, body string) assistant.RunEvent {
	return assistant.RunEvent{Event: name, Data: json.RawMessage(body)}
}

// newTestRelay 组装测试用中继服务及其依赖
func newTestRelay(client *mockAssistantClient, guard *mockGuard) (*Service, *mockMessageStore, *mockErrorStore) {
	messages := &mockMessageStore{}
	errStore := &mockErrorStore{}
	svc := NewService(guard, messages, errStore, func(apiKey string) AssistantClient {
		return client
	})
	return svc, messages, errStore
}

func assistantFrameText(t *testing.T, f frame) string {
	t.Helper()
	var payload struct {
		ID      string                     `json:"id"`
		Content []assistant.MessageContent `json:"content"`
	}
	if err := json.Unmarshal([]byte(f.data), &payload); err != nil {
		t.Fatalf("Failed to unmarshal synthetic frame: %v", err)
	}
	if payload.ID != SyntheticMessageID {
		t.Errorf("Expected synthetic id %q, got %q", SyntheticMessageID, payload.ID)
	}
	if len(payload.Content) != 1 {
		t.Fatalf("Expected single content part, got %d", len(payload.Content))
	}
	return payload.Content[0].Text.Value
}

func TestPrepareCreatesThreadAndMessage(t *testing.T) {
	client := &mockAssistantClient{
		threadID:   "thread_new",
		createdMsg: &assistant.Message{ID: "msg_cursor"},
	}
	svc, _, _ := newTestRelay(client, &mockGuard{allowed: true})

	turn, err := svc.Prepare(context.Background(), testBot(), &TurnRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if turn.ThreadID != "thread_new" {
		t.Errorf("Expected thread_new, got %s", turn.ThreadID)
	}
	if turn.MessageID != "msg_cursor" {
		t.Errorf("Expected msg_cursor, got %s", turn.MessageID)
	}
	if client.gotAttachments != nil {
		t.Errorf("Expected no attachments, got %v", client.gotAttachments)
	}
}

func TestPrepareReusesThread(t *testing.T) {
	client := &mockAssistantClient{createdMsg: &assistant.Message{ID: "msg_1"}}
	svc, _, _ := newTestRelay(client, &mockGuard{allowed: true})

	turn, err := svc.Prepare(context.Background(), testBot(), &TurnRequest{
		ThreadID: "thread_existing",
		Message:  "hello again",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if turn.ThreadID != "thread_existing" {
		t.Errorf("Expected thread_existing, got %s", turn.ThreadID)
	}
}

func TestPrepareClassifiesAttachment(t *testing.T) {
	client := &mockAssistantClient{
		threadID:     "thread_1",
		uploadedFile: &assistant.File{ID: "file_123"},
		createdMsg:   &assistant.Message{ID: "msg_1"},
	}
	svc, _, _ := newTestRelay(client, &mockGuard{allowed: true})

	_, err := svc.Prepare(context.Background(), testBot(), &TurnRequest{
		Message:  "analyze this",
		Filename: "report.pdf",
		File:     []byte("%PDF-1.4"),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(client.gotAttachments) != 1 {
		t.Fatalf("Expected 1 attachment, got %d", len(client.gotAttachments))
	}
	att := client.gotAttachments[0]
	if att.FileID != "file_123" {
		t.Errorf("Expected file_123, got %s", att.FileID)
	}
	if len(att.Tools) != 2 {
		t.Errorf("Expected pdf to enable both tools, got %v", att.Tools)
	}
}

func TestPrepareZeroSizeAttachmentSkipped(t *testing.T) {
	client := &mockAssistantClient{
		threadID:   "thread_1",
		createdMsg: &assistant.Message{ID: "msg_1"},
	}
	svc, _, _ := newTestRelay(client, &mockGuard{allowed: true})

	_, err := svc.Prepare(context.Background(), testBot(), &TurnRequest{
		Message:  "hello",
		Filename: "empty.txt",
		File:     nil,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if client.gotAttachments != nil {
		t.Errorf("Expected empty file to produce no attachment, got %v", client.gotAttachments)
	}
}

func TestPrepareUpstreamError(t *testing.T) {
	client := &mockAssistantClient{ensureErr: errors.New("upstream down")}
	svc, _, _ := newTestRelay(client, &mockGuard{allowed: true})

	_, err := svc.Prepare(context.Background(), testBot(), &TurnRequest{Message: "hello"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

// streamFrames 执行流式阶段并解析写出的协议帧
func streamFrames(t *testing.T, svc *Service, bot *model.Chatbot, turn *Turn) []frame {
	t.Helper()
	buf := &bytes.Buffer{}
	svc.Stream(context.Background(), bot, turn, NewEncoder(buf))
	return parseFrames(t, buf.String())
}

func TestStreamCompletedRun(t *testing.T) {
	client := &mockAssistantClient{
		threadID:   "thread_1",
		createdMsg: &assistant.Message{ID: "msg_cursor"},
		events: []assistant.RunEvent{
			event("thread.run.created", `{"id":"run_1"}`),
			event("thread.message.delta", `{"delta":{"content":[]}}`),
			event("thread.run.completed", `{"id":"run_1"}`),
		},
		responses: []*assistant.Message{
			{ID: "msg_2", Role: "assistant", Content: []assistant.MessageContent{
				{Type: "text", Text: &assistant.TextContent{Value: "answer one"}},
			}},
			{ID: "msg_3", Role: "assistant", Content: []assistant.MessageContent{
				{Type: "text", Text: &assistant.TextContent{Value: "answer two"}},
			}},
		},
	}
	svc, messages, errStore := newTestRelay(client, &mockGuard{allowed: true})

	bot := testBot()
	turn, err := svc.Prepare(context.Background(), bot, &TurnRequest{
		Message: "hello",
		UserIP:  "203.0.113.7",
		Origin:  "https://customer.example",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := streamFrames(t, svc, bot, turn)

	// 首帧是元数据，之后按顺序转发上游事件
	if got[0].event != "metadata" {
		t.Fatalf("Expected metadata first, got %s", got[0].event)
	}
	if len(got) != 4 {
		t.Fatalf("Expected 4 frames, got %d", len(got))
	}
	if got[1].event != "thread.run.created" || got[2].event != "thread.message.delta" || got[3].event != "thread.run.completed" {
		t.Errorf("Events not forwarded in order: %v", got)
	}

	// 每条回复各产生一行审计记录
	if len(messages.records) != 2 {
		t.Fatalf("Expected 2 message records, got %d", len(messages.records))
	}
	first := messages.records[0]
	if first.Response != "answer one" || messages.records[1].Response != "answer two" {
		t.Errorf("Unexpected record order: %v, %v", first.Response, messages.records[1].Response)
	}
	if first.ChatbotID != "bot_1" || first.UserID != "owner_1" || first.ThreadID != "thread_1" {
		t.Errorf("Unexpected record fields: %+v", first)
	}
	if first.Message != "hello" || first.UserIP != "203.0.113.7" || first.From != "https://customer.example" {
		t.Errorf("Unexpected record fields: %+v", first)
	}

	if len(errStore.records) != 0 {
		t.Errorf("Expected no error records, got %d", len(errStore.records))
	}
}

func TestStreamQuotaExceeded(t *testing.T) {
	client := &mockAssistantClient{
		threadID:   "thread_1",
		createdMsg: &assistant.Message{ID: "msg_cursor"},
	}
	svc, messages, errStore := newTestRelay(client, &mockGuard{allowed: false})

	bot := testBot()
	turn, err := svc.Prepare(context.Background(), bot, &TurnRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := streamFrames(t, svc, bot, turn)

	if len(got) != 2 {
		t.Fatalf("Expected metadata + synthetic frame, got %d frames", len(got))
	}
	if got[0].event != "metadata" {
		t.Errorf("Expected metadata first, got %s", got[0].event)
	}
	if text := assistantFrameText(t, got[1]); text != LimitReachedMessage {
		t.Errorf("Expected limit message, got %q", text)
	}

	// 配额超限不触发 run，也不写任何记录
	if client.streamCalled {
		t.Error("Expected no run for quota-exceeded turn")
	}
	if len(messages.records) != 0 || len(errStore.records) != 0 {
		t.Errorf("Expected no records, got %d messages, %d errors", len(messages.records), len(errStore.records))
	}
}

func TestStreamFailedRun(t *testing.T) {
	client := &mockAssistantClient{
		threadID:   "thread_1",
		createdMsg: &assistant.Message{ID: "msg_cursor"},
		events: []assistant.RunEvent{
			event("thread.run.created", `{"id":"run_1"}`),
			event("thread.run.failed", `{"last_error":{"code":"rate_limit_exceeded","message":"Rate limit reached"}}`),
		},
	}
	svc, messages, errStore := newTestRelay(client, &mockGuard{allowed: true})

	bot := testBot()
	turn, err := svc.Prepare(context.Background(), bot, &TurnRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := streamFrames(t, svc, bot, turn)

	// 失败事件照常转发，随后追加合成降级帧
	last := got[len(got)-1]
	if last.event != "thread.message" {
		t.Fatalf("Expected synthetic terminal frame, got %s", last.event)
	}
	if text := assistantFrameText(t, last); text != bot.ErrorMessage {
		t.Errorf("Expected chatbot error message, got %q", text)
	}

	// 一行失败记录，零行消息记录
	if len(errStore.records) != 1 {
		t.Fatalf("Expected 1 error record, got %d", len(errStore.records))
	}
	rec := errStore.records[0]
	if rec.ErrorMessage != "Rate limit reached" {
		t.Errorf("Expected extracted failure reason, got %q", rec.ErrorMessage)
	}
	if rec.ChatbotID != "bot_1" || rec.ThreadID != "thread_1" {
		t.Errorf("Unexpected error record fields: %+v", rec)
	}
	if len(messages.records) != 0 {
		t.Errorf("Expected no message records for failed run, got %d", len(messages.records))
	}
}

func TestStreamFailureWithoutReason(t *testing.T) {
	client := &mockAssistantClient{
		threadID:   "thread_1",
		createdMsg: &assistant.Message{ID: "msg_cursor"},
		events: []assistant.RunEvent{
			event("thread.run.created", `{"id":"run_1"}`),
			// 流在中途断开，没有终止事件
		},
	}
	svc, _, errStore := newTestRelay(client, &mockGuard{allowed: true})

	bot := testBot()
	turn, err := svc.Prepare(context.Background(), bot, &TurnRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := streamFrames(t, svc, bot, turn)

	if text := assistantFrameText(t, got[len(got)-1]); text != bot.ErrorMessage {
		t.Errorf("Expected fallback frame, got %q", text)
	}
	if len(errStore.records) != 1 {
		t.Fatalf("Expected 1 error record, got %d", len(errStore.records))
	}
	if errStore.records[0].ErrorMessage != assistant.UnknownFailureMessage {
		t.Errorf("Expected default failure reason, got %q", errStore.records[0].ErrorMessage)
	}
}

func TestStreamRunStartError(t *testing.T) {
	client := &mockAssistantClient{
		threadID:   "thread_1",
		createdMsg: &assistant.Message{ID: "msg_cursor"},
		streamErr:  errors.New("connection refused"),
	}
	svc, _, errStore := newTestRelay(client, &mockGuard{allowed: true})

	bot := testBot()
	turn, err := svc.Prepare(context.Background(), bot, &TurnRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := streamFrames(t, svc, bot, turn)

	if len(got) != 2 {
		t.Fatalf("Expected metadata + fallback frame, got %d", len(got))
	}
	if text := assistantFrameText(t, got[1]); text != bot.ErrorMessage {
		t.Errorf("Expected fallback frame, got %q", text)
	}
	if len(errStore.records) != 1 {
		t.Errorf("Expected 1 error record, got %d", len(errStore.records))
	}
}

func TestStreamPassesRunParams(t *testing.T) {
	maxCompletion := 1024
	client := &mockAssistantClient{
		threadID:   "thread_1",
		createdMsg: &assistant.Message{ID: "msg_cursor"},
		events: []assistant.RunEvent{
			event("thread.run.completed", `{"id":"run_1"}`),
		},
	}
	svc, _, _ := newTestRelay(client, &mockGuard{allowed: true})

	bot := testBot()
	bot.MaxCompletionTokens = &maxCompletion
	turn, err := svc.Prepare(context.Background(), bot, &TurnRequest{
		Message:          "hello",
		ClientSidePrompt: "answer briefly",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	buf := &bytes.Buffer{}
	svc.Stream(context.Background(), bot, turn, NewEncoder(buf))

	if client.gotParams.AssistantID != "asst_1" {
		t.Errorf("Expected asst_1, got %s", client.gotParams.AssistantID)
	}
	if client.gotParams.Instructions != "answer briefly" {
		t.Errorf("Expected client-side prompt forwarded, got %q", client.gotParams.Instructions)
	}
	if client.gotParams.MaxCompletionTokens == nil || *client.gotParams.MaxCompletionTokens != 1024 {
		t.Errorf("Expected max completion tokens 1024, got %v", client.gotParams.MaxCompletionTokens)
	}
}
