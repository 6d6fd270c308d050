// Package subscription 提供套餐查询的单元测试
package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/growthsaas/ai-tutor/internal/model"
	"github.com/growthsaas/ai-tutor/internal/testutil"
)

// mockUserStore Mock 用户读取
type mockUserStore struct {
	users map[string]*model.User
	err   error
}

func (m *mockUserStore) GetUserByID(id string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func TestPlanByID(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		wantID string
	}{
		{"free", "free", "free"},
		{"hobby", "hobby", "hobby"},
		{"basic", "basic", "basic"},
		{"pro", "pro", "pro"},
		{"未知 ID 回落免费套餐", "enterprise", "free"},
		{"空 ID 回落免费套餐", "", "free"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlanByID(tt.id); got.ID != tt.wantID {
				t.Errorf("PlanByID(%q).ID = %s, want %s", tt.id, got.ID, tt.wantID)
			}
		})
	}
}

func TestPlanLadder(t *testing.T) {
	assert := testutil.NewAssertHelper(t)

	assert.Equal(1, FreePlan.MaxChatbots)
	assert.Equal(3, FreePlan.MaxFiles)
	assert.Equal(500, FreePlan.MaxMessagesPerMonth)
	assert.False(FreePlan.UnlimitedMessages)

	assert.Equal(2, HobbyPlan.MaxChatbots)
	assert.Equal(9, HobbyPlan.MaxFiles)
	assert.Equal(2500, HobbyPlan.MaxMessagesPerMonth)

	assert.True(BasicPlan.UnlimitedMessages)
	assert.True(ProPlan.UnlimitedMessages)
	assert.Equal(27, ProPlan.MaxChatbots)
}

func TestGetUserPlan(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	store := &mockUserStore{users: map[string]*model.User{
		"user-1": {ID: "user-1", PlanID: "hobby"},
		"user-2": {ID: "user-2", PlanID: "bogus"},
	}}
	s := NewService(store, nil)

	plan, err := s.GetUserPlan(context.Background(), "user-1")
	assert.NoError(err)
	assert.Equal("hobby", plan.ID)

	// 未知套餐 ID 回落免费套餐
	plan, err = s.GetUserPlan(context.Background(), "user-2")
	assert.NoError(err)
	assert.Equal("free", plan.ID)

	_, err = s.GetUserPlan(context.Background(), "missing")
	assert.ErrorContains(err, "failed to get user")
}
