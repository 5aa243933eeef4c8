package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/healthlog/internal/db"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"
)

// AvatarSize 头像统一缩放后的边长
const AvatarSize = 256

// maxAvatarPixels 解码前按图片头声明的尺寸拦截超大图片
const maxAvatarPixels = 4096 * 4096

const profileFieldLimit = 100

var (
	// ErrProfileInvalidInput 在资料字段过长时返回
	ErrProfileInvalidInput = errors.New("invalid profile input")
	// ErrUnsupportedImage 上传内容不是支持的图片格式
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrAvatarStorageDisabled 未配置头像存储目录
	ErrAvatarStorageDisabled = errors.New("avatar storage not configured")
	// ErrImageTooLarge 图片像素尺寸超出上限
	ErrImageTooLarge = errors.New("image dimensions too large")
)

var avatarMIMETypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// ProfileService 维护用户资料：显示名、天气城市与头像
type ProfileService struct {
	db          *gorm.DB
	defaultCity string
	avatarDir   string
	avatarURL   string
}

// ProfileInput 更新资料时可设置的字段
type ProfileInput struct {
	DisplayName string
	City        string
}

// NewProfileService 构造 ProfileService，未设置城市的资料回落到 defaultCity
func NewProfileService(gdb *gorm.DB, defaultCity string) *ProfileService {
	return &ProfileService{db: gdb, defaultCity: strings.TrimSpace(defaultCity)}
}

// WithAvatarStorage 设置头像落盘目录与对外访问前缀
func (s *ProfileService) WithAvatarStorage(uploadDir, urlPath string) *ProfileService {
	if strings.TrimSpace(uploadDir) == "" {
		return s
	}
	s.avatarDir = filepath.Join(uploadDir, "avatars")
	s.avatarURL = strings.TrimRight(urlPath, "/") + "/avatars/"
	return s
}

// DefaultCity 返回默认天气城市
func (s *ProfileService) DefaultCity() string {
	return s.defaultCity
}

// Get 返回用户资料，不存在时以默认城市创建
func (s *ProfileService) Get(userID uint) (*db.UserProfile, error) {
	var profile db.UserProfile
	if err := s.db.Where(db.UserProfile{UserID: userID}).
		Attrs(db.UserProfile{City: s.defaultCity}).
		FirstOrCreate(&profile).Error; err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if strings.TrimSpace(profile.City) == "" {
		profile.City = s.defaultCity
	}
	return &profile, nil
}

// Update 修改显示名与城市，城市留空时恢复默认值
func (s *ProfileService) Update(userID uint, input ProfileInput) (*db.UserProfile, error) {
	name := strings.TrimSpace(input.DisplayName)
	city := strings.TrimSpace(input.City)
	if utf8.RuneCountInString(name) > profileFieldLimit || utf8.RuneCountInString(city) > profileFieldLimit {
		return nil, fmt.Errorf("%w: fields must be at most %d characters", ErrProfileInvalidInput, profileFieldLimit)
	}
	if city == "" {
		city = s.defaultCity
	}

	profile, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	profile.DisplayName = name
	profile.City = city
	if err := s.db.Save(profile).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// Cities 返回所有资料中出现过的城市（含默认城市），用于定时刷新天气
func (s *ProfileService) Cities() ([]string, error) {
	var stored []string
	if err := s.db.Model(&db.UserProfile{}).Distinct("city").Pluck("city", &stored).Error; err != nil {
		return nil, fmt.Errorf("list profile cities: %w", err)
	}

	seen := make(map[string]struct{}, len(stored)+1)
	cities := make([]string, 0, len(stored)+1)
	for _, city := range append(stored, s.defaultCity) {
		city = strings.TrimSpace(city)
		key := strings.ToLower(city)
		if city == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities, nil
}

// SaveAvatar 校验并缩放上传的图片，保存为 PNG 后更新资料中的头像地址
func (s *ProfileService) SaveAvatar(userID uint, data []byte) (*db.UserProfile, error) {
	if s.avatarDir == "" {
		return nil, ErrAvatarStorageDisabled
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), avatarMIMETypes...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, detected.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxAvatarPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, squareThumbnail(src, AvatarSize)); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}

	if err := os.MkdirAll(s.avatarDir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	profile, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s-%s.png", time.Now().Format("20060102"), uuid.New().String())
	path := filepath.Join(s.avatarDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write avatar: %w", err)
	}

	previous := profile.AvatarURL
	profile.AvatarURL = s.avatarURL + name
	if err := s.db.Save(profile).Error; err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("save avatar url: %w", err)
	}
	s.removeAvatar(previous)
	return profile, nil
}

// removeAvatar 删除被替换的旧头像，只处理本服务写入的文件
func (s *ProfileService) removeAvatar(url string) {
	if url == "" || !strings.HasPrefix(url, s.avatarURL) {
		return
	}
	name := strings.TrimPrefix(url, s.avatarURL)
	if name == "" || name != filepath.Base(name) {
		return
	}
	if err := os.Remove(filepath.Join(s.avatarDir, name)); err != nil && !os.IsNotExist(err) {
		log.Printf("[profile] failed to remove old avatar %s: %v", name, err)
	}
}

// squareThumbnail 居中裁剪为正方形再缩放到 size×size
func squareThumbnail(src image.Image, size int) *image.RGBA {
	b := src.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)
	return dst
}
