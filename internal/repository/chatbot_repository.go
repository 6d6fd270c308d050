package repository

import (
	"github.com/growthsaas/ai-tutor/internal/model"
	"gorm.io/gorm"
)

// ChatbotRepository 机器人数据访问
type ChatbotRepository struct {
	db *gorm.DB
}

// NewChatbotRepository 创建机器人仓库
func NewChatbotRepository(db *gorm.DB) *ChatbotRepository {
	return &ChatbotRepository{db: db}
}

// Create 创建机器人
func (r *ChatbotRepository) Create(bot *model.Chatbot) error {
	return r.db.Create(bot).Error
}

// GetByID 获取机器人
func (r *ChatbotRepository) GetByID(id string) (*model.Chatbot, error) {
	var bot model.Chatbot
	err := r.db.Where("id = ?", id).First(&bot).Error
	if err != nil {
		return nil, err
	}
	return &bot, nil
}

// ListByUserID 列出用户的机器人
func (r *ChatbotRepository) ListByUserID(userID string) ([]*model.Chatbot, error) {
	var bots []*model.Chatbot
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&bots).Error
	return bots, err
}

// CountByUserID 统计用户的机器人数量
func (r *ChatbotRepository) CountByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Chatbot{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Update 更新机器人
func (r *ChatbotRepository) Update(bot *model.Chatbot) error {
	return r.db.Save(bot).Error
}

// Delete 删除机器人
func (r *ChatbotRepository) Delete(id string) error {
	return r.db.Delete(&model.Chatbot{}, "id = ?", id).Error
}

// CreateError 写入运行失败记录
func (r *ChatbotRepository) CreateError(e *model.ChatbotError) error {
	return r.db.Create(e).Error
}

// ListErrorsByChatbotID 列出机器人的失败记录
func (r *ChatbotRepository) ListErrorsByChatbotID(chatbotID string, offset, limit int) ([]*model.ChatbotError, error) {
	var errs []*model.ChatbotError
	err := r.db.Where("chatbot_id = ?", chatbotID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&errs).Error
	return errs, err
}
