package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/growthsaas/ai-tutor/internal/service"
	"github.com/growthsaas/ai-tutor/internal/service/chatbot"
)

// ChatbotHandler 聊天机器人管理处理器
type ChatbotHandler struct {
	svc *service.Services
}

// NewChatbotHandler 创建聊天机器人处理器
func NewChatbotHandler(svc *service.Services) *ChatbotHandler {
	return &ChatbotHandler{svc: svc}
}

// Create 创建机器人
func (h *ChatbotHandler) Create(c *gin.Context) {
	user := currentUser(c)

	var req chatbot.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	bot, err := h.svc.Chatbot.Create(c.Request.Context(), user.ID, &req)
	if err != nil {
		if errors.Is(err, chatbot.ErrChatbotLimitReached) {
			Forbidden(c, err.Error())
			return
		}
		InternalServerError(c, err.Error())
		return
	}

	Created(c, bot)
}

// Get 获取机器人
func (h *ChatbotHandler) Get(c *gin.Context) {
	user := currentUser(c)

	bot, err := h.svc.Chatbot.Get(c.Request.Context(), user.ID, c.Param("chatbotId"))
	if err != nil {
		NotFound(c, "chatbot not found")
		return
	}

	Success(c, bot)
}

// List 列出机器人
func (h *ChatbotHandler) List(c *gin.Context) {
	user := currentUser(c)

	bots, err := h.svc.Chatbot.List(c.Request.Context(), user.ID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Success(c, bots)
}

// Update 更新机器人
func (h *ChatbotHandler) Update(c *gin.Context) {
	user := currentUser(c)

	var req chatbot.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	bot, err := h.svc.Chatbot.Update(c.Request.Context(), user.ID, c.Param("chatbotId"), &req)
	if err != nil {
		if errors.Is(err, chatbot.ErrNotFound) {
			NotFound(c, "chatbot not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}

	Success(c, bot)
}

// Delete 删除机器人
func (h *ChatbotHandler) Delete(c *gin.Context) {
	user := currentUser(c)

	if err := h.svc.Chatbot.Delete(c.Request.Context(), user.ID, c.Param("chatbotId")); err != nil {
		if errors.Is(err, chatbot.ErrNotFound) {
			NotFound(c, "chatbot not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}

	NoContent(c)
}
