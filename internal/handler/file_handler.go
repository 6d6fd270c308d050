package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/growthsaas/ai-tutor/internal/service"
	"github.com/growthsaas/ai-tutor/internal/service/file"
)

// FileHandler 训练文件处理器
type FileHandler struct {
	svc *service.Services
}

// NewFileHandler 创建训练文件处理器
func NewFileHandler(svc *service.Services) *FileHandler {
	return &FileHandler{svc: svc}
}

// Upload 上传训练文件并同步到上游助手
func (h *FileHandler) Upload(c *gin.Context) {
	user := currentUser(c)

	bot, err := h.svc.Chatbot.Get(c.Request.Context(), user.ID, c.Param("chatbotId"))
	if err != nil {
		NotFound(c, "chatbot not found")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		UnprocessableEntity(c, "file is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "failed to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		BadRequest(c, "failed to read file")
		return
	}

	stored, err := h.svc.File.Upload(c.Request.Context(), user, bot, &file.UploadRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		switch {
		case errors.Is(err, file.ErrUnsupportedExtension):
			UnprocessableEntity(c, err.Error())
		case errors.Is(err, file.ErrFileLimitReached):
			Forbidden(c, err.Error())
		default:
			InternalServerError(c, err.Error())
		}
		return
	}

	Created(c, stored)
}

// List 列出训练文件
func (h *FileHandler) List(c *gin.Context) {
	user := currentUser(c)

	files, err := h.svc.File.List(c.Request.Context(), user.ID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Success(c, files)
}

// Delete 删除训练文件
func (h *FileHandler) Delete(c *gin.Context) {
	user := currentUser(c)

	if err := h.svc.File.Delete(c.Request.Context(), user.ID, c.Param("fileId")); err != nil {
		if errors.Is(err, file.ErrNotFound) {
			NotFound(c, "file not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}

	NoContent(c)
}
