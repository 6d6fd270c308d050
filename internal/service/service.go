package service

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/growthsaas/ai-tutor/internal/config"
	"github.com/growthsaas/ai-tutor/internal/repository"
	"github.com/growthsaas/ai-tutor/internal/service/assistant"
	"github.com/growthsaas/ai-tutor/internal/service/auth"
	"github.com/growthsaas/ai-tutor/internal/service/chatbot"
	"github.com/growthsaas/ai-tutor/internal/service/file"
	"github.com/growthsaas/ai-tutor/internal/service/message"
	"github.com/growthsaas/ai-tutor/internal/service/quota"
	"github.com/growthsaas/ai-tutor/internal/service/relay"
	"github.com/growthsaas/ai-tutor/internal/service/subscription"
)

// Services 服务集合
type Services struct {
	// 业务服务
	Auth         *auth.Service
	Chatbot      *chatbot.Service
	File         *file.Service
	Message      *message.Service
	Subscription *subscription.Service
	Quota        *quota.Service
	Relay        *relay.Service

	// 配置
	Config *config.Config
}

// NewServices 创建所有服务
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	subscriptionSvc := subscription.NewService(repo.User, redisClient)
	quotaSvc := quota.NewService(subscriptionSvc, repo.Message)

	storage, err := file.NewStorage(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// 上游客户端按机器人的 API key 创建
	newClient := func(apiKey string) *assistant.Client {
		return assistant.NewClient(apiKey, assistant.WithBaseURL(cfg.OpenAI.BaseURL))
	}

	relaySvc := relay.NewService(quotaSvc, repo.Message, repo.Chatbot, func(apiKey string) relay.AssistantClient {
		return newClient(apiKey)
	})

	return &Services{
		Auth:         auth.NewService(repo),
		Chatbot:      chatbot.NewService(repo, subscriptionSvc),
		File:         file.NewService(repo, storage, subscriptionSvc, newClient),
		Message:      message.NewService(repo),
		Subscription: subscriptionSvc,
		Quota:        quotaSvc,
		Relay:        relaySvc,

		Config: cfg,
	}, nil
}
