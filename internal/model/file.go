package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredFile 上传的训练文件
// 本地/对象存储保留一份副本，同时在上游创建文件供 assistant 引用
type StoredFile struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"index;size:36;not null" json:"user_id"`
	ChatbotID    string    `gorm:"index;size:36" json:"chatbot_id"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	FileSize     int64     `json:"file_size"`
	ContentType  string    `gorm:"size:128" json:"content_type"`
	StorageType  string    `gorm:"size:20" json:"storage_type"` // local, minio
	FilePath     string    `gorm:"size:512" json:"file_path"`
	OpenAIFileID string    `gorm:"size:64" json:"openai_file_id"` // 上游文件 ID
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate GORM 钩子
func (f *StoredFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TableName 指定表名
func (StoredFile) TableName() string {
	return "stored_files"
}
