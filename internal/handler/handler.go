package handler

import (
	"github.com/growthsaas/ai-tutor/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth    *AuthHandler
	Chatbot *ChatbotHandler
	Chat    *ChatHandler
	File    *FileHandler
	Message *MessageHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(svc),
		Chatbot: NewChatbotHandler(svc),
		Chat:    NewChatHandler(svc),
		File:    NewFileHandler(svc),
		Message: NewMessageHandler(svc),
	}
}
