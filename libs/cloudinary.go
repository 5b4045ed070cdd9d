package libs

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrInvalidImage = errors.New("invalid image")

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type CloudinaryConfig struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	MaxSize   int64
}

// ImageUploader stores product images on the Cloudinary CDN.
type ImageUploader struct {
	cld     *cloudinary.Cloudinary
	folder  string
	maxSize int64
}

// NewImageUploader prefers the separate credentials and falls back to
// CLOUDINARY_URL.
func NewImageUploader(cfg CloudinaryConfig) (*ImageUploader, error) {
	var cld *cloudinary.Cloudinary
	var err error

	switch {
	case cfg.CloudName != "" && cfg.APIKey != "" && cfg.APISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	case cfg.URL != "":
		cld, err = cloudinary.NewFromURL(cfg.URL)
	default:
		return nil, errors.New("cloudinary credentials not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	return &ImageUploader{cld: cld, folder: cfg.Folder, maxSize: maxSize}, nil
}

func ValidateImage(file *multipart.FileHeader, maxSize int64) error {
	if file.Size > maxSize {
		return fmt.Errorf("%w: file too large (max %d bytes)", ErrInvalidImage, maxSize)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("%w: only jpg, jpeg, png, gif and webp are allowed", ErrInvalidImage)
	}
	return nil
}

// Upload returns the secure URL and public id of the stored image.
func (u *ImageUploader) Upload(ctx context.Context, file *multipart.FileHeader) (string, string, error) {
	if err := ValidateImage(file, u.maxSize); err != nil {
		return "", "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	publicID := fmt.Sprintf("%d_%s", time.Now().Unix(), strings.ReplaceAll(name, " ", "_"))

	res, err := u.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         u.folder,
		ResourceType:   "image",
		Transformation: "q_auto,f_auto",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", "", fmt.Errorf("cloudinary rejected upload: %s", res.Error.Message)
	}

	url := res.SecureURL
	if url == "" {
		url = res.URL
	}
	return url, res.PublicID, nil
}

func (u *ImageUploader) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	return nil
}
