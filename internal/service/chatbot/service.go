package chatbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/growthsaas/ai-tutor/internal/model"
	"github.com/growthsaas/ai-tutor/internal/repository"
	"github.com/growthsaas/ai-tutor/internal/service/subscription"
)

// ErrChatbotLimitReached 机器人数量达到套餐上限
var ErrChatbotLimitReached = errors.New("chatbot limit reached for current plan")

// ErrNotFound 机器人不存在或不属于当前用户
var ErrNotFound = errors.New("chatbot not found")

// Service 聊天机器人管理服务
type Service struct {
	repo  *repository.Repositories
	plans *subscription.Service
}

// NewService 创建聊天机器人服务
func NewService(repo *repository.Repositories, plans *subscription.Service) *Service {
	return &Service{repo: repo, plans: plans}
}

// CreateRequest 创建机器人请求
type CreateRequest struct {
	Name                string `json:"name" binding:"required,min=1,max=100"`
	OpenAIID            string `json:"openaiId" binding:"required"`
	OpenAIKey           string `json:"openaiKey" binding:"required"`
	WelcomeMessage      string `json:"welcomeMessage"`
	ErrorMessage        string `json:"errorMessage"`
	MaxCompletionTokens *int   `json:"maxCompletionTokens"`
	MaxPromptTokens     *int   `json:"maxPromptTokens"`
}

// UpdateRequest 更新机器人请求
type UpdateRequest struct {
	Name                *string `json:"name"`
	OpenAIKey           *string `json:"openaiKey"`
	WelcomeMessage      *string `json:"welcomeMessage"`
	ErrorMessage        *string `json:"errorMessage"`
	MaxCompletionTokens *int    `json:"maxCompletionTokens"`
	MaxPromptTokens     *int    `json:"maxPromptTokens"`
}

// Create 创建机器人，受套餐数量限制
func (s *Service) Create(ctx context.Context, userID string, req *CreateRequest) (*model.Chatbot, error) {
	plan, err := s.plans.GetUserPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan: %w", err)
	}

	count, err := s.repo.Chatbot.CountByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count chatbots: %w", err)
	}
	if count >= int64(plan.MaxChatbots) {
		return nil, ErrChatbotLimitReached
	}

	bot := &model.Chatbot{
		UserID:              userID,
		Name:                req.Name,
		OpenAIID:            req.OpenAIID,
		OpenAIKey:           req.OpenAIKey,
		WelcomeMessage:      req.WelcomeMessage,
		ErrorMessage:        req.ErrorMessage,
		MaxCompletionTokens: req.MaxCompletionTokens,
		MaxPromptTokens:     req.MaxPromptTokens,
	}

	if err := s.repo.Chatbot.Create(bot); err != nil {
		return nil, fmt.Errorf("failed to create chatbot: %w", err)
	}

	return bot, nil
}

// Get 获取机器人，校验归属
func (s *Service) Get(ctx context.Context, userID, chatbotID string) (*model.Chatbot, error) {
	bot, err := s.repo.Chatbot.GetByID(chatbotID)
	if err != nil {
		return nil, ErrNotFound
	}
	if bot.UserID != userID {
		return nil, ErrNotFound
	}
	return bot, nil
}

// GetPublic 按 ID 获取机器人，不校验归属。
// 聊天端点对终端访客开放，访客不持有站点账号
func (s *Service) GetPublic(ctx context.Context, chatbotID string) (*model.Chatbot, error) {
	bot, err := s.repo.Chatbot.GetByID(chatbotID)
	if err != nil {
		return nil, ErrNotFound
	}
	return bot, nil
}

// List 列出用户的所有机器人
func (s *Service) List(ctx context.Context, userID string) ([]*model.Chatbot, error) {
	return s.repo.Chatbot.ListByUserID(userID)
}

// Update 更新机器人配置
func (s *Service) Update(ctx context.Context, userID, chatbotID string, req *UpdateRequest) (*model.Chatbot, error) {
	bot, err := s.Get(ctx, userID, chatbotID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		bot.Name = *req.Name
	}
	if req.OpenAIKey != nil {
		bot.OpenAIKey = *req.OpenAIKey
	}
	if req.WelcomeMessage != nil {
		bot.WelcomeMessage = *req.WelcomeMessage
	}
	if req.ErrorMessage != nil {
		bot.ErrorMessage = *req.ErrorMessage
	}
	if req.MaxCompletionTokens != nil {
		bot.MaxCompletionTokens = req.MaxCompletionTokens
	}
	if req.MaxPromptTokens != nil {
		bot.MaxPromptTokens = req.MaxPromptTokens
	}

	if err := s.repo.Chatbot.Update(bot); err != nil {
		return nil, fmt.Errorf("failed to update chatbot: %w", err)
	}

	return bot, nil
}

// Delete 删除机器人
func (s *Service) Delete(ctx context.Context, userID, chatbotID string) error {
	if _, err := s.Get(ctx, userID, chatbotID); err != nil {
		return err
	}
	return s.repo.Chatbot.Delete(chatbotID)
}
