package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultErrorMessage 机器人默认的兜底错误提示
const DefaultErrorMessage = "Oops! An error occurred. Please try again later."

// DefaultWelcomeMessage 默认欢迎语
const DefaultWelcomeMessage = "Hello! How can I help you today?"

// Chatbot 聊天机器人（一个租户实例，归属于一个用户账号）
type Chatbot struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	UserID         string `gorm:"index;size:36;not null" json:"user_id"`
	Name           string `gorm:"size:255;not null" json:"name"`
	OpenAIID       string `gorm:"size:255;not null" json:"openai_id"` // 上游 assistant ID
	OpenAIKey      string `gorm:"size:255;not null" json:"-"`         // 上游 API 凭证
	WelcomeMessage string `gorm:"type:text" json:"welcome_message"`
	ErrorMessage   string `gorm:"type:text" json:"error_message"` // 展示给终端用户的兜底文案

	// 每次 run 的 token 上限（空表示交给上游默认值）
	MaxCompletionTokens *int `json:"max_completion_tokens,omitempty"`
	MaxPromptTokens     *int `json:"max_prompt_tokens,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate GORM 钩子
func (b *Chatbot) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.ErrorMessage == "" {
		b.ErrorMessage = DefaultErrorMessage
	}
	if b.WelcomeMessage == "" {
		b.WelcomeMessage = DefaultWelcomeMessage
	}
	return nil
}

// TableName 指定表名
func (Chatbot) TableName() string {
	return "chatbots"
}

// ChatbotError 运行失败记录（仅追加）
type ChatbotError struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	ChatbotID    string    `gorm:"index;size:36;not null" json:"chatbot_id"`
	ThreadID     string    `gorm:"size:64" json:"thread_id"`
	ErrorMessage string    `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// BeforeCreate GORM 钩子
func (e *ChatbotError) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName 指定表名
func (ChatbotError) TableName() string {
	return "chatbot_errors"
}
