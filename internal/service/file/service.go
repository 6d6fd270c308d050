package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/growthsaas/ai-tutor/internal/config"
	"github.com/growthsaas/ai-tutor/internal/model"
	"github.com/growthsaas/ai-tutor/internal/repository"
	"github.com/growthsaas/ai-tutor/internal/service/assistant"
	"github.com/growthsaas/ai-tutor/internal/service/subscription"
)

// ErrFileLimitReached 训练文件数量达到套餐上限
var ErrFileLimitReached = errors.New("training file limit reached for current plan")

// ErrUnsupportedExtension 不支持的文件类型
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// ErrNotFound 文件不存在或不属于当前用户
var ErrNotFound = errors.New("file not found")

// ClientFactory 按 API key 构造上游客户端
type ClientFactory func(apiKey string) *assistant.Client

// Service 训练文件服务
type Service struct {
	repo      *repository.Repositories
	storage   Storage
	plans     *subscription.Service
	newClient ClientFactory
}

// NewService 创建训练文件服务
func NewService(repo *repository.Repositories, storage Storage, plans *subscription.Service, factory ClientFactory) *Service {
	return &Service{
		repo:      repo,
		storage:   storage,
		plans:     plans,
		newClient: factory,
	}
}

// NewStorage 根据配置创建存储后端
func NewStorage(cfg *config.StorageConfig) (Storage, error) {
	switch StorageType(cfg.Type) {
	case StorageTypeMinIO:
		return NewMinIOStorage(&MinIOConfig{
			Endpoint:   cfg.MinIO.Endpoint,
			AccessKey:  cfg.MinIO.AccessKey,
			SecretKey:  cfg.MinIO.SecretKey,
			BucketName: cfg.MinIO.Bucket,
			UseSSL:     cfg.MinIO.UseSSL,
			URLPrefix:  cfg.URLPrefix,
		})
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath, cfg.URLPrefix)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// UploadRequest 上传训练文件请求
type UploadRequest struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Upload 上传训练文件：校验类型与套餐上限，保存到存储并同步到上游助手
func (s *Service) Upload(ctx context.Context, owner *model.User, bot *model.Chatbot, req *UploadRequest) (*model.StoredFile, error) {
	if !assistant.ValidExtension(req.FileName) {
		return nil, ErrUnsupportedExtension
	}

	plan, err := s.plans.GetUserPlan(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan: %w", err)
	}

	count, err := s.repo.File.CountByUserID(owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	if count >= int64(plan.MaxFiles) {
		return nil, ErrFileLimitReached
	}

	filePath, err := s.storage.Save(ctx, &SaveRequest{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        int64(len(req.Data)),
		Reader:      bytes.NewReader(req.Data),
		UserID:      owner.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	// 同步到上游，供助手的工具使用
	client := s.newClient(bot.OpenAIKey)
	upstream, err := client.UploadFile(ctx, req.Data, req.FileName, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file upstream: %w", err)
	}

	stored := &model.StoredFile{
		UserID:      owner.ID,
		ChatbotID:   bot.ID,
		FileName:    req.FileName,
		FileSize:    int64(len(req.Data)),
		ContentType: req.ContentType,
		StorageType: string(StorageTypeLocal),
		FilePath:    filePath,
	}
	if _, ok := s.storage.(*MinIOStorage); ok {
		stored.StorageType = string(StorageTypeMinIO)
	}
	if upstream != nil {
		stored.OpenAIFileID = upstream.ID
	}

	if err := s.repo.File.Create(stored); err != nil {
		return nil, fmt.Errorf("failed to record file: %w", err)
	}

	return stored, nil
}

// List 列出用户的训练文件
func (s *Service) List(ctx context.Context, userID string) ([]*model.StoredFile, error) {
	return s.repo.File.ListByUserID(userID)
}

// Delete 删除训练文件及其存储内容
func (s *Service) Delete(ctx context.Context, userID, fileID string) error {
	stored, err := s.repo.File.GetByID(fileID)
	if err != nil {
		return ErrNotFound
	}
	if stored.UserID != userID {
		return ErrNotFound
	}

	if err := s.storage.Delete(ctx, stored.FilePath); err != nil {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}

	return s.repo.File.Delete(fileID)
}
