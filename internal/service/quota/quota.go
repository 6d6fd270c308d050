// Package quota 按所有者账号校验消息配额
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/growthsaas/ai-tutor/internal/service/subscription"
)

// 滚动窗口：调用时刻往前推 30 天，而不是按自然月对齐
const messageWindow = 30 * 24 * time.Hour

// PlanGetter 套餐查询接口
type PlanGetter interface {
	GetUserPlan(ctx context.Context, userID string) (*subscription.Plan, error)
}

// MessageCounter 消息计数接口
type MessageCounter interface {
	CountByUserSince(userID string, since time.Time) (int64, error)
}

// Service 配额守卫，只读，不产生副作用
// 检查与最终落库不在一个事务里：同一所有者的并发回合可能都通过检查，
// 计数最多超出在途回合数，这是既有接受的竞态
type Service struct {
	plans    PlanGetter
	messages MessageCounter
	now      func() time.Time
}

// NewService 创建配额守卫
func NewService(plans PlanGetter, messages MessageCounter) *Service {
	return &Service{
		plans:    plans,
		messages: messages,
		now:      time.Now,
	}
}

// Allowed 判断所有者本期是否还能发起聊天回合
// 无限套餐恒为允许；否则要求滚动 30 天窗口内的消息数严格小于上限
func (s *Service) Allowed(ctx context.Context, ownerID string) (bool, error) {
	plan, err := s.plans.GetUserPlan(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to get plan: %w", err)
	}

	if plan.UnlimitedMessages {
		return true, nil
	}

	since := s.now().Add(-messageWindow)
	count, err := s.messages.CountByUserSince(ownerID, since)
	if err != nil {
		return false, fmt.Errorf("failed to count messages: %w", err)
	}

	return count < int64(plan.MaxMessagesPerMonth), nil
}
