// Package quota 提供配额守卫的单元测试
package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/growthsaas/ai-tutor/internal/service/subscription"
	"github.com/growthsaas/ai-tutor/internal/testutil"
)

// mockPlanGetter Mock 套餐查询
type mockPlanGetter struct {
	plan *subscription.Plan
	err  error
}

func (m *mockPlanGetter) GetUserPlan(ctx context.Context, userID string) (*subscription.Plan, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.plan, nil
}

// mockMessageCounter Mock 消息计数
type mockMessageCounter struct {
	count     int64
	err       error
	lastSince time.Time
}

func (m *mockMessageCounter) CountByUserSince(userID string, since time.Time) (int64, error) {
	m.lastSince = since
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}

func newTestService(plan *subscription.Plan, counter *mockMessageCounter, now time.Time) *Service {
	s := NewService(&mockPlanGetter{plan: plan}, counter)
	s.now = func() time.Time { return now }
	return s
}

func TestAllowed(t *testing.T) {
	limited := subscription.FreePlan // 500 条/30 天

	tests := []struct {
		name    string
		plan    subscription.Plan
		count   int64
		allowed bool
	}{
		{"无限套餐不查计数", subscription.ProPlan, 999999, true},
		{"窗口内计数为零", limited, 0, true},
		{"低于上限", limited, 499, true},
		{"恰好达到上限被拒", limited, 500, false},
		{"超过上限被拒", limited, 501, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := testutil.NewAssertHelper(t)
			counter := &mockMessageCounter{count: tt.count}
			s := newTestService(&tt.plan, counter, time.Now())

			allowed, err := s.Allowed(context.Background(), "user-1")
			assert.NoError(err)
			assert.Equal(tt.allowed, allowed)
		})
	}
}

func TestAllowedRollingWindow(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	counter := &mockMessageCounter{count: 0}
	plan := subscription.FreePlan
	s := newTestService(&plan, counter, now)

	_, err := s.Allowed(context.Background(), "user-1")
	assert.NoError(err)

	// 窗口起点是调用时刻往前推 30 天
	want := now.Add(-30 * 24 * time.Hour)
	assert.Equal(want, counter.lastSince)
}

func TestAllowedPlanError(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	s := NewService(&mockPlanGetter{err: errors.New("db down")}, &mockMessageCounter{})

	_, err := s.Allowed(context.Background(), "user-1")
	assert.ErrorContains(err, "failed to get plan")
}

func TestAllowedCounterError(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	plan := subscription.FreePlan
	s := NewService(&mockPlanGetter{plan: &plan}, &mockMessageCounter{err: errors.New("db down")})

	_, err := s.Allowed(context.Background(), "user-1")
	assert.ErrorContains(err, "failed to count messages")
}
