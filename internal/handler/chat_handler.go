package handler

import (
	"errors"
	"io"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/growthsaas/ai-tutor/internal/service"
	"github.com/growthsaas/ai-tutor/internal/service/assistant"
	"github.com/growthsaas/ai-tutor/internal/service/relay"
)

// maxAttachmentSize 单个聊天附件大小上限
const maxAttachmentSize = 32 << 20 // 32 MB

// ChatHandler 聊天处理器：公开端点，终端访客直接调用
type ChatHandler struct {
	svc *service.Services
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(svc *service.Services) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat 处理一次聊天回合
// 流开始前的错误用普通 HTTP 状态码返回，流开始后走 SSE 降级帧
func (h *ChatHandler) Chat(c *gin.Context) {
	bot, err := h.svc.Chatbot.GetPublic(c.Request.Context(), c.Param("chatbotId"))
	if err != nil {
		NotFound(c, "chatbot not found")
		return
	}

	message := c.PostForm("message")
	if message == "" {
		UnprocessableEntity(c, "message is required")
		return
	}

	req := &relay.TurnRequest{
		ThreadID:         c.PostForm("threadId"),
		Message:          message,
		ClientSidePrompt: c.PostForm("clientSidePrompt"),
		UserIP:           c.ClientIP(),
		Origin:           c.GetHeader("Origin"),
	}
	if req.Origin == "" {
		req.Origin = "unknown"
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		if fileHeader.Size > maxAttachmentSize {
			UnprocessableEntity(c, "attachment too large")
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			BadRequest(c, "failed to read attachment")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			BadRequest(c, "failed to read attachment")
			return
		}
		// 挂件单独传 filename 字段，缺省回落到 multipart 头里的文件名
		req.Filename = c.PostForm("filename")
		if req.Filename == "" {
			req.Filename = fileHeader.Filename
		}
		req.File = data
		req.FileContentType = fileHeader.Header.Get("Content-Type")
	}

	turn, err := h.svc.Relay.Prepare(c.Request.Context(), bot, req)
	if err != nil {
		var apiErr *assistant.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			Unauthorized(c, "invalid upstream credentials")
			return
		}
		log.Printf("chat prepare failed for chatbot %s: %v", bot.ID, err)
		InternalServerError(c, "failed to start chat")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	enc := relay.NewEncoder(c.Writer)
	h.svc.Relay.Stream(c.Request.Context(), bot, turn, enc)
}
