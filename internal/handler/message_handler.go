package handler

import (
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/growthsaas/ai-tutor/internal/service"
	"github.com/growthsaas/ai-tutor/internal/service/message"
)

// MessageHandler 对话记录与访客留言处理器
type MessageHandler struct {
	svc *service.Services
}

// NewMessageHandler 创建对话记录处理器
func NewMessageHandler(svc *service.Services) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// ListMessages 列出机器人的对话记录
func (h *MessageHandler) ListMessages(c *gin.Context) {
	user := currentUser(c)

	bot, err := h.svc.Chatbot.Get(c.Request.Context(), user.ID, c.Param("chatbotId"))
	if err != nil {
		NotFound(c, "chatbot not found")
		return
	}

	page, size := getPagination(c)
	msgs, total, err := h.svc.Message.ListMessages(c.Request.Context(), bot.ID, page, size)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Success(c, gin.H{
		"items": msgs,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// ListErrors 列出机器人的失败记录
func (h *MessageHandler) ListErrors(c *gin.Context) {
	user := currentUser(c)

	bot, err := h.svc.Chatbot.Get(c.Request.Context(), user.ID, c.Param("chatbotId"))
	if err != nil {
		NotFound(c, "chatbot not found")
		return
	}

	page, size := getPagination(c)
	errs, err := h.svc.Message.ListErrors(c.Request.Context(), bot.ID, page, size)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Success(c, errs)
}

// ExportMessages 导出机器人的全部对话记录为 CSV
func (h *MessageHandler) ExportMessages(c *gin.Context) {
	user := currentUser(c)

	bot, err := h.svc.Chatbot.Get(c.Request.Context(), user.ID, c.Param("chatbotId"))
	if err != nil {
		NotFound(c, "chatbot not found")
		return
	}

	msgs, err := h.svc.Message.ExportMessages(c.Request.Context(), bot.ID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-messages.csv", bot.ID))

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"created_at", "thread_id", "message", "response", "user_ip", "from"})
	for _, m := range msgs {
		_ = w.Write([]string{
			m.CreatedAt.Format(time.RFC3339),
			m.ThreadID,
			m.Message,
			m.Response,
			m.UserIP,
			m.From,
		})
	}
	w.Flush()
}

// CaptureInquiry 记录访客留言（公开端点）
func (h *MessageHandler) CaptureInquiry(c *gin.Context) {
	bot, err := h.svc.Chatbot.GetPublic(c.Request.Context(), c.Param("chatbotId"))
	if err != nil {
		NotFound(c, "chatbot not found")
		return
	}

	var req message.CaptureInquiryRequest
	if err := c.ShouldBind(&req); err != nil {
		UnprocessableEntity(c, err.Error())
		return
	}

	inquiry, err := h.svc.Message.CaptureInquiry(c.Request.Context(), bot.ID, &req)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Created(c, inquiry)
}

// ListInquiries 列出机器人的访客留言
func (h *MessageHandler) ListInquiries(c *gin.Context) {
	user := currentUser(c)

	bot, err := h.svc.Chatbot.Get(c.Request.Context(), user.ID, c.Param("chatbotId"))
	if err != nil {
		NotFound(c, "chatbot not found")
		return
	}

	page, size := getPagination(c)
	inquiries, err := h.svc.Message.ListInquiries(c.Request.Context(), bot.ID, page, size)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Success(c, inquiries)
}
