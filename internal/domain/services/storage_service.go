package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"gatepulse-http-service/internal/infrastructure/config"
	"gatepulse-http-service/pkg/logger"
)

// SignedURLTTL 签名URL的有效期
const SignedURLTTL = 10 * time.Minute

// ErrMalformedDataURL 自拍不是合法的 base64 图片 data URL
var ErrMalformedDataURL = errors.New("invalid selfie data URL")

// 仅接受 data:image/<subtype>;base64,<payload> 形式
var dataURLPattern = regexp.MustCompile(`^data:(image/[a-zA-Z+\-.]+);base64,(.+)$`)

// InterfaceStorageService defines the selfie storage service interface
type InterfaceStorageService interface {
	SaveSelfie(dataURL string) (string, error)
	ResolveDisplayURL(ref string) *string
	SignedURL(objectName string, ttl time.Duration) (string, error)
	VerifySignature(objectName string, expires int64, signature string) bool
	ObjectPath(objectName string) (string, error)
	PublicAccess() bool
}

// StorageService 管理访客自拍的落盘与URL解析
type StorageService struct {
	Config *config.Config
}

// NewStorageService 创建一个新的存储服务
func NewStorageService(cfg *config.Config) InterfaceStorageService {
	return &StorageService{Config: cfg}
}

// ParseDataURL 解析自拍 data URL，返回 MIME 类型、扩展名和解码后的内容
func ParseDataURL(dataURL string) (contentType, extension string, payload []byte, err error) {
	match := dataURLPattern.FindStringSubmatch(dataURL)
	if match == nil {
		return "", "", nil, ErrMalformedDataURL
	}

	contentType = match[1]
	// 扩展名取子类型中"+"之前的部分，缺省为jpg
	extension = strings.TrimPrefix(contentType, "image/")
	if idx := strings.Index(extension, "+"); idx >= 0 {
		extension = extension[:idx]
	}
	if extension == "" {
		extension = "jpg"
	}

	payload, err = base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return "", "", nil, ErrMalformedDataURL
	}
	return contentType, extension, payload, nil
}

// NormalizeSelfiePath 去掉前导斜杠和桶名前缀，得到桶内对象名
func NormalizeSelfiePath(ref, bucket string) string {
	p := strings.TrimSpace(ref)
	p = strings.TrimLeft(p, "/")
	p = strings.TrimPrefix(p, bucket+"/")
	return p
}

// 1 SaveSelfie 解码并写入自拍文件，返回桶相对引用
func (s *StorageService) SaveSelfie(dataURL string) (string, error) {
	_, extension, payload, err := ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}

	bucketDir := filepath.Join(s.Config.StorageRoot, s.Config.StorageBucket)
	if err := os.MkdirAll(bucketDir, 0755); err != nil {
		return "", fmt.Errorf("创建存储目录失败: %w", err)
	}

	objectName := uuid.NewString() + "." + extension
	if err := os.WriteFile(filepath.Join(bucketDir, objectName), payload, 0644); err != nil {
		return "", fmt.Errorf("写入自拍文件失败: %w", err)
	}

	return s.Config.StorageBucket + "/" + objectName, nil
}

// 2 ResolveDisplayURL resolves a stored selfie reference to a display
// URL. Absolute http(s) references pass through verbatim; otherwise the
// public base URL wins and a time-limited signed URL is the fallback.
// An unresolvable reference yields nil, never an error.
func (s *StorageService) ResolveDisplayURL(ref string) *string {
	raw := strings.TrimSpace(ref)
	if raw == "" {
		return nil
	}

	// 已经是完整URL：原样返回，不再解析
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return &raw
	}

	objectName := NormalizeSelfiePath(raw, s.Config.StorageBucket)
	if objectName == "" {
		return nil
	}

	// 公共桶优先
	if s.Config.StoragePublicBaseURL != "" {
		url := strings.TrimRight(s.Config.StoragePublicBaseURL, "/") + "/" + s.Config.StorageBucket + "/" + objectName
		return &url
	}

	// 私有桶回退到签名URL
	signed, err := s.SignedURL(objectName, SignedURLTTL)
	if err != nil {
		logger.Warning("生成自拍签名URL失败: %v", err)
		return nil
	}
	return &signed
}

// 3 SignedURL 生成限时签名URL
func (s *StorageService) SignedURL(objectName string, ttl time.Duration) (string, error) {
	if s.Config.StorageSigningKey == "" {
		return "", errors.New("storage signing key not configured")
	}

	expires := time.Now().Add(ttl).Unix()
	signature := s.sign(objectName, expires)
	return fmt.Sprintf("/files/%s/%s?expires=%d&sig=%s",
		s.Config.StorageBucket, objectName, expires, signature), nil
}

// 4 VerifySignature 校验签名URL的签名与有效期
func (s *StorageService) VerifySignature(objectName string, expires int64, signature string) bool {
	if time.Now().Unix() > expires {
		return false
	}
	expected := s.sign(objectName, expires)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// 5 ObjectPath 返回对象在磁盘上的路径，拒绝路径穿越
func (s *StorageService) ObjectPath(objectName string) (string, error) {
	if objectName == "" || filepath.Base(objectName) != objectName {
		return "", errors.New("invalid object name")
	}
	path := filepath.Join(s.Config.StorageRoot, s.Config.StorageBucket, objectName)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// 6 PublicAccess 公共桶无需签名即可访问
func (s *StorageService) PublicAccess() bool {
	return s.Config.StoragePublicBaseURL != ""
}

// sign 对 <对象名>:<过期时间戳> 计算HMAC-SHA256
func (s *StorageService) sign(objectName string, expires int64) string {
	mac := hmac.New(sha256.New, []byte(s.Config.StorageSigningKey))
	mac.Write([]byte(objectName + ":" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
