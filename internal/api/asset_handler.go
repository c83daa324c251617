package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"careernavigator/internal/config"
	"careernavigator/internal/database"
	"careernavigator/internal/storage"
)

// AssetHandler 负责头像上传与访问。上传前先做 MIME 白名单与病毒扫描。
type AssetHandler struct {
	DB      *gorm.DB
	Storage *storage.Client
	Logger  *slog.Logger
	Upload  config.UploadConfig
}

// NewAssetHandler 返回 AssetHandler 实例。
func NewAssetHandler(db *gorm.DB, storageClient *storage.Client, logger *slog.Logger, uploadCfg config.UploadConfig) *AssetHandler {
	return &AssetHandler{
		DB:      db,
		Storage: storageClient,
		Logger:  logger,
		Upload:  uploadCfg,
	}
}

var avatarExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// UploadAvatar 上传头像：白名单校验、大小限制、clamd 扫描，然后写入对象存储
// 并更新档案的 avatar_key。
func (h *AssetHandler) UploadAvatar(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if h.Upload.MaxBytes > 0 && file.Size > h.Upload.MaxBytes {
		BadRequest(c, "file too large")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !h.mimeAllowed(contentType) {
		BadRequest(c, "unsupported content type")
		return
	}

	clamdClient := clamd.NewClamd(h.Upload.ClamdAddr)

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}

	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	fileReader.Close()
	if err != nil {
		h.Logger.Error("scan file", slog.String("error", err.Error()))
		Internal(c, "failed to scan file")
		return
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	fileReader, err = file.Open()
	if err != nil {
		Internal(c, "failed to reopen file")
		return
	}
	defer fileReader.Close()

	objectKey := fmt.Sprintf("avatars/%d/%s.%s", profileID, uuid.NewString(), avatarExtensions[contentType])
	if _, err := h.Storage.UploadFile(c.Request.Context(), objectKey, fileReader, file.Size, contentType); err != nil {
		h.Logger.Error("upload file", slog.String("error", err.Error()))
		Internal(c, "failed to upload file")
		return
	}

	// 先查旧 key 再更新，旧头像异步清理失败也不影响本次上传。
	var profile database.StudentProfile
	if err := h.DB.WithContext(c.Request.Context()).First(&profile, profileID).Error; err != nil {
		h.Logger.Error("load profile", slog.String("error", err.Error()))
		Internal(c, "failed to update profile")
		return
	}
	oldKey := profile.AvatarKey

	if err := h.DB.WithContext(c.Request.Context()).Model(&profile).
		Update("avatar_key", objectKey).Error; err != nil {
		h.Logger.Error("update avatar key", slog.String("error", err.Error()))
		Internal(c, "failed to update profile")
		return
	}

	if isValidAvatarObjectKey(profileID, oldKey) {
		if err := h.Storage.DeleteObject(c.Request.Context(), oldKey); err != nil {
			h.Logger.Warn("delete old avatar", slog.String("objectKey", oldKey), slog.String("error", err.Error()))
		}
	}

	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey})
}

// GetAvatarURL 返回当前头像的临时预签名 URL。
func (h *AssetHandler) GetAvatarURL(c *gin.Context) {
	profileID, ok := profileIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var profile database.StudentProfile
	if err := h.DB.WithContext(c.Request.Context()).
		Select("id", "avatar_key").
		First(&profile, profileID).Error; err != nil {
		NotFound(c, "profile not found")
		return
	}
	if profile.AvatarKey == "" {
		NotFound(c, "no avatar uploaded")
		return
	}

	signedURL, err := h.Storage.GeneratePresignedURL(c.Request.Context(), profile.AvatarKey, 15*time.Minute)
	if err != nil {
		h.Logger.Error("generate presigned url", slog.String("error", err.Error()))
		Internal(c, "failed to generate url")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func (h *AssetHandler) mimeAllowed(contentType string) bool {
	if _, ok := avatarExtensions[contentType]; !ok {
		return false
	}
	if len(h.Upload.MIMEWhitelist) == 0 {
		return true
	}
	for _, allowed := range h.Upload.MIMEWhitelist {
		if allowed == contentType {
			return true
		}
	}
	return false
}
