package repository

import (
	"time"

	"github.com/growthsaas/ai-tutor/internal/model"
	"gorm.io/gorm"
)

// MessageRepository 消息数据访问
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息仓库
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateMessage 写入审计记录
func (r *MessageRepository) CreateMessage(msg *model.Message) error {
	return r.db.Create(msg).Error
}

// CountByUserSince 统计用户自某时间以来的消息数
// 配额按机器人所有者统计，滚动窗口
func (r *MessageRepository) CountByUserSince(userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

// ListByChatbotID 列出机器人的消息记录
func (r *MessageRepository) ListByChatbotID(chatbotID string, offset, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.Where("chatbot_id = ?", chatbotID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	return messages, err
}

// ListAllByChatbotID 按时间升序取机器人的全部消息记录
func (r *MessageRepository) ListAllByChatbotID(chatbotID string) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.Where("chatbot_id = ?", chatbotID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// CountByChatbotID 统计机器人的消息数量
func (r *MessageRepository) CountByChatbotID(chatbotID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).Where("chatbot_id = ?", chatbotID).Count(&count).Error
	return count, err
}

// CreateInquiry 写入终端用户留言
func (r *MessageRepository) CreateInquiry(inquiry *model.ClientInquiry) error {
	return r.db.Create(inquiry).Error
}

// ListInquiriesByChatbotID 列出机器人的留言
func (r *MessageRepository) ListInquiriesByChatbotID(chatbotID string, offset, limit int) ([]*model.ClientInquiry, error) {
	var inquiries []*model.ClientInquiry
	err := r.db.Where("chatbot_id = ?", chatbotID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&inquiries).Error
	return inquiries, err
}
