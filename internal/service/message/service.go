package message

import (
	"context"
	"fmt"

	"github.com/growthsaas/ai-tutor/internal/model"
	"github.com/growthsaas/ai-tutor/internal/repository"
)

// Service 对话记录与访客留言服务
type Service struct {
	repo *repository.Repositories
}

// NewService 创建对话记录服务
func NewService(repo *repository.Repositories) *Service {
	return &Service{repo: repo}
}

// ListMessages 分页列出机器人的对话记录
func (s *Service) ListMessages(ctx context.Context, chatbotID string, page, size int) ([]*model.Message, int64, error) {
	total, err := s.repo.Message.CountByChatbotID(chatbotID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	msgs, err := s.repo.Message.ListByChatbotID(chatbotID, (page-1)*size, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	return msgs, total, nil
}

// ExportMessages 按时间升序取机器人的全部对话记录，用于导出
func (s *Service) ExportMessages(ctx context.Context, chatbotID string) ([]*model.Message, error) {
	return s.repo.Message.ListAllByChatbotID(chatbotID)
}

// ListErrors 分页列出机器人的失败记录
func (s *Service) ListErrors(ctx context.Context, chatbotID string, page, size int) ([]*model.ChatbotError, error) {
	return s.repo.Chatbot.ListErrorsByChatbotID(chatbotID, (page-1)*size, size)
}

// CaptureInquiryRequest 访客留言请求
type CaptureInquiryRequest struct {
	ThreadID string `form:"threadId" json:"threadId"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Inquiry  string `form:"inquiry" json:"inquiry" binding:"required"`
}

// CaptureInquiry 记录访客留言
func (s *Service) CaptureInquiry(ctx context.Context, chatbotID string, req *CaptureInquiryRequest) (*model.ClientInquiry, error) {
	inquiry := &model.ClientInquiry{
		ChatbotID: chatbotID,
		ThreadID:  req.ThreadID,
		Email:     req.Email,
		Inquiry:   req.Inquiry,
	}

	if err := s.repo.Message.CreateInquiry(inquiry); err != nil {
		return nil, fmt.Errorf("failed to record inquiry: %w", err)
	}

	return inquiry, nil
}

// ListInquiries 分页列出机器人的访客留言
func (s *Service) ListInquiries(ctx context.Context, chatbotID string, page, size int) ([]*model.ClientInquiry, error) {
	return s.repo.Message.ListInquiriesByChatbotID(chatbotID, (page-1)*size, size)
}
