package repository

import (
	"github.com/growthsaas/ai-tutor/internal/model"
	"gorm.io/gorm"
)

// FileRepository 文件数据访问
type FileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建文件仓库
func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create 创建文件记录
func (r *FileRepository) Create(file *model.StoredFile) error {
	return r.db.Create(file).Error
}

// GetByID 获取文件记录
func (r *FileRepository) GetByID(id string) (*model.StoredFile, error) {
	var file model.StoredFile
	err := r.db.Where("id = ?", id).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ListByUserID 列出用户的文件
func (r *FileRepository) ListByUserID(userID string) ([]*model.StoredFile, error) {
	var files []*model.StoredFile
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&files).Error
	return files, err
}

// CountByUserID 统计用户的文件数量
func (r *FileRepository) CountByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.StoredFile{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Delete 删除文件记录
func (r *FileRepository) Delete(id string) error {
	return r.db.Delete(&model.StoredFile{}, "id = ?", id).Error
}
