// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import (
	"time"

	"github.com/growthsaas/ai-tutor/internal/model"
)

// MessageStore 聊天中继使用的消息写入接口
// 接口定义使 Service 层可以轻松 mock 进行单元测试
type MessageStore interface {
	CreateMessage(msg *model.Message) error
	CountByUserSince(userID string, since time.Time) (int64, error)
}

// ErrorStore 运行失败记录写入接口
type ErrorStore interface {
	CreateError(e *model.ChatbotError) error
}

// UserStore 订阅服务使用的用户读取接口
type UserStore interface {
	GetUserByID(id string) (*model.User, error)
}

// 确保具体仓库实现了接口
var (
	_ MessageStore = (*MessageRepository)(nil)
	_ ErrorStore   = (*ChatbotRepository)(nil)
	_ UserStore    = (*UserRepository)(nil)
)
