package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message 聊天审计记录
// 每条成功送达客户端的助手回复写入一行，之后不再修改
type Message struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ChatbotID string    `gorm:"index;size:36;not null" json:"chatbot_id"`
	UserID    string    `gorm:"index;size:36;not null" json:"user_id"` // 机器人所有者，配额按此统计
	ThreadID  string    `gorm:"size:64" json:"thread_id"`
	Message   string    `gorm:"type:text" json:"message"`  // 终端用户的提问
	Response  string    `gorm:"type:text" json:"response"` // 助手的回复
	UserIP    string    `gorm:"size:64" json:"user_ip"`
	From      string    `gorm:"size:255" json:"from"` // Origin 请求头
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// BeforeCreate GORM 钩子
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// ClientInquiry 终端用户留言（机器人无法解答时收集联系方式）
type ClientInquiry struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	ChatbotID string         `gorm:"index;size:36;not null" json:"chatbot_id"`
	ThreadID  string         `gorm:"size:64" json:"thread_id"`
	Email     string         `gorm:"size:255;not null" json:"email"`
	Inquiry   string         `gorm:"type:text;not null" json:"inquiry"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate GORM 钩子
func (i *ClientInquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TableName 指定表名
func (ClientInquiry) TableName() string {
	return "client_inquiries"
}
