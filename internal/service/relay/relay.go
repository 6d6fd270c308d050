// Package relay 把一次聊天回合接到上游 assistant API 并把事件流转发给客户端
package relay

import (
	"context"
	"fmt"
	"log"

	"github.com/growthsaas/ai-tutor/internal/model"
	"github.com/growthsaas/ai-tutor/internal/repository"
	"github.com/growthsaas/ai-tutor/internal/service/assistant"
)

// LimitReachedMessage 配额超限时返回给终端用户的提示
const LimitReachedMessage = "You have reached your monthly message limit. Upgrade your plan to continue using your chatbot."

// AssistantClient 中继依赖的上游操作子集
type AssistantClient interface {
	EnsureThread(ctx context.Context, threadID string) (string, error)
	UploadFile(ctx context.Context, data []byte, filename, contentType string) (*assistant.File, error)
	CreateMessage(ctx context.Context, threadID, text string, attachments []assistant.Attachment) (*assistant.Message, error)
	StreamRun(ctx context.Context, threadID string, params assistant.RunParams) (<-chan assistant.RunEvent, error)
	ListMessagesAfter(ctx context.Context, threadID, after string) ([]*assistant.Message, error)
}

// ClientFactory 按机器人凭证构造上游客户端
type ClientFactory func(apiKey string) AssistantClient

// QuotaGuard 配额校验接口
type QuotaGuard interface {
	Allowed(ctx context.Context, ownerID string) (bool, error)
}

// Service 中继编排器
type Service struct {
	guard     QuotaGuard
	messages  repository.MessageStore
	errors    repository.ErrorStore
	newClient ClientFactory
}

// NewService 创建中继编排器
func NewService(guard QuotaGuard, messages repository.MessageStore, errors repository.ErrorStore, factory ClientFactory) *Service {
	return &Service{
		guard:     guard,
		messages:  messages,
		errors:    errors,
		newClient: factory,
	}
}

// TurnRequest 一次聊天回合的入站参数
type TurnRequest struct {
	ThreadID         string // 可为空，空则新建线程
	Message          string
	ClientSidePrompt string
	Filename         string
	File             []byte
	FileContentType  string
	UserIP           string
	Origin           string
}

// Turn 流式阶段需要的回合状态
// MessageID 同时充当之后取回复时的游标
type Turn struct {
	ThreadID  string
	MessageID string

	client AssistantClient
	req    *TurnRequest
}

// Prepare 执行流式输出开始前的上游操作：
// 确保线程存在、上传并分类附件、追加用户消息（记录游标）。
// 这里的错误仍以普通 HTTP 响应返回，流式通道尚未打开
func (s *Service) Prepare(ctx context.Context, bot *model.Chatbot, req *TurnRequest) (*Turn, error) {
	client := s.newClient(bot.OpenAIKey)

	threadID, err := client.EnsureThread(ctx, req.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure thread: %w", err)
	}

	var attachments []assistant.Attachment
	if req.Filename != "" {
		file, err := client.UploadFile(ctx, req.File, req.Filename, req.FileContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload attachment: %w", err)
		}
		// 空文件视为没有附件
		if file != nil {
			caps := assistant.Classify(req.Filename)
			attachments = append(attachments, assistant.Attachment{
				FileID: file.ID,
				Tools:  caps.Tools(),
			})
		}
	}

	msg, err := client.CreateMessage(ctx, threadID, req.Message, attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return &Turn{
		ThreadID:  threadID,
		MessageID: msg.ID,
		client:    client,
		req:       req,
	}, nil
}

// Stream 执行流式阶段
// 通道一旦打开，客户端必定收到一个形式完整的终止帧：
// 配额超限和各类失败都降级成合成助手消息，不会裸断流
func (s *Service) Stream(ctx context.Context, bot *model.Chatbot, turn *Turn, enc *Encoder) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic during chat relay for chatbot %s: %v", bot.ID, r)
			_ = enc.Assistant(bot.ErrorMessage)
		}
	}()

	// 首帧义务：元数据
	if err := enc.Metadata(turn.ThreadID, turn.MessageID, bot.ID); err != nil {
		log.Printf("failed to write metadata frame: %v", err)
		return
	}

	// 配额是正常的终止分支：不算失败，不写任何记录
	allowed, err := s.guard.Allowed(ctx, bot.UserID)
	if err != nil {
		log.Printf("quota check failed for user %s: %v", bot.UserID, err)
		_ = enc.Assistant(bot.ErrorMessage)
		return
	}
	if !allowed {
		log.Printf("message limit reached for user %s", bot.UserID)
		_ = enc.Assistant(LimitReachedMessage)
		return
	}

	params := assistant.RunParams{
		AssistantID:         bot.OpenAIID,
		Instructions:        turn.req.ClientSidePrompt,
		MaxCompletionTokens: bot.MaxCompletionTokens,
		MaxPromptTokens:     bot.MaxPromptTokens,
	}

	events, err := turn.client.StreamRun(ctx, turn.ThreadID, params)
	if err != nil {
		s.recordFailure(bot, turn.ThreadID, assistant.FailureReason{Message: err.Error()})
		_ = enc.Assistant(bot.ErrorMessage)
		return
	}

	// 逐事件转发，保持上游顺序，不跨事件缓冲
	completed := false
	reason := assistant.FailureReason{Message: assistant.UnknownFailureMessage}
	for ev := range events {
		if err := enc.Forward(ev); err != nil {
			log.Printf("failed to forward event %s: %v", ev.Event, err)
		}
		if ev.Completed() {
			completed = true
		} else if r, ok := assistant.FailureFrom(ev); ok {
			reason = r
		}
	}

	if !completed {
		log.Printf("run did not complete for assistant %s on thread %s: %s", bot.OpenAIID, turn.ThreadID, reason.Message)
		s.recordFailure(bot, turn.ThreadID, reason)
		_ = enc.Assistant(bot.ErrorMessage)
		return
	}

	// 取游标之后的新消息并逐条落审计记录
	// 只有真正送达客户端的内容才产生 Message 行
	responses, err := turn.client.ListMessagesAfter(ctx, turn.ThreadID, turn.MessageID)
	if err != nil {
		log.Printf("failed to list response messages on thread %s: %v", turn.ThreadID, err)
		_ = enc.Assistant(bot.ErrorMessage)
		return
	}

	for _, m := range responses {
		record := &model.Message{
			ChatbotID: bot.ID,
			UserID:    bot.UserID,
			ThreadID:  turn.ThreadID,
			Message:   turn.req.Message,
			Response:  m.FirstContentText(),
			UserIP:    turn.req.UserIP,
			From:      turn.req.Origin,
		}
		if err := s.messages.CreateMessage(record); err != nil {
			log.Printf("failed to persist message record on thread %s: %v", turn.ThreadID, err)
			_ = enc.Assistant(bot.ErrorMessage)
			return
		}
	}
}

// recordFailure 写入失败记录，失败的 run 不产生 Message 行
func (s *Service) recordFailure(bot *model.Chatbot, threadID string, reason assistant.FailureReason) {
	e := &model.ChatbotError{
		ChatbotID:    bot.ID,
		ThreadID:     threadID,
		ErrorMessage: reason.Message,
	}
	if err := s.errors.CreateError(e); err != nil {
		log.Printf("failed to persist error record for chatbot %s: %v", bot.ID, err)
	}
}
