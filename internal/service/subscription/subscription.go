// Package subscription 提供订阅套餐查询
package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/growthsaas/ai-tutor/internal/model"
	"github.com/redis/go-redis/v9"
)

// Plan 订阅套餐
type Plan struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	MaxChatbots         int    `json:"max_chatbots"`
	MaxFiles            int    `json:"max_files"`
	UnlimitedMessages   bool   `json:"unlimited_messages"`
	MaxMessagesPerMonth int    `json:"max_messages_per_month"` // 无限套餐时忽略
}

// 套餐表从旧版订阅配置迁移而来，写死在代码里
var (
	FreePlan = Plan{
		ID:                  "free",
		Name:                "Free",
		MaxChatbots:         1,
		MaxFiles:            3,
		MaxMessagesPerMonth: 500,
	}
	HobbyPlan = Plan{
		ID:                  "hobby",
		Name:                "Hobby",
		MaxChatbots:         2,
		MaxFiles:            9,
		MaxMessagesPerMonth: 2500,
	}
	BasicPlan = Plan{
		ID:                "basic",
		Name:              "Basic",
		MaxChatbots:       9,
		MaxFiles:          27,
		UnlimitedMessages: true,
	}
	ProPlan = Plan{
		ID:                "pro",
		Name:              "Pro",
		MaxChatbots:       27,
		MaxFiles:          81,
		UnlimitedMessages: true,
	}
)

var plansByID = map[string]Plan{
	FreePlan.ID:  FreePlan,
	HobbyPlan.ID: HobbyPlan,
	BasicPlan.ID: BasicPlan,
	ProPlan.ID:   ProPlan,
}

// PlanByID 按套餐 ID 查询，未知 ID 回落到免费套餐
func PlanByID(id string) Plan {
	if plan, ok := plansByID[id]; ok {
		return plan
	}
	return FreePlan
}

// UserStore 用户读取接口
type UserStore interface {
	GetUserByID(id string) (*model.User, error)
}

const (
	planCacheKeyPrefix = "plan:"
	planCacheTTL       = 5 * time.Minute
)

// Service 订阅服务
type Service struct {
	users UserStore
	cache *redis.Client // 可为 nil，此时直接读库
}

// NewService 创建订阅服务
func NewService(users UserStore, cache *redis.Client) *Service {
	return &Service{users: users, cache: cache}
}

// GetUserPlan 查询用户当前套餐
// Redis 读穿缓存，短 TTL；缓存不可用时直接读库
func (s *Service) GetUserPlan(ctx context.Context, userID string) (*Plan, error) {
	if s.cache != nil {
		if plan := s.loadFromCache(ctx, userID); plan != nil {
			return plan, nil
		}
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	plan := PlanByID(user.PlanID)

	if s.cache != nil {
		s.saveToCache(ctx, userID, &plan)
	}
	return &plan, nil
}

func (s *Service) loadFromCache(ctx context.Context, userID string) *Plan {
	raw, err := s.cache.Get(ctx, planCacheKeyPrefix+userID).Bytes()
	if err != nil {
		return nil
	}
	var plan Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil
	}
	return &plan
}

func (s *Service) saveToCache(ctx context.Context, userID string, plan *Plan) {
	raw, err := json.Marshal(plan)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, planCacheKeyPrefix+userID, raw, planCacheTTL).Err(); err != nil {
		log.Printf("Warning: failed to cache plan for user %s: %v", userID, err)
	}
}
