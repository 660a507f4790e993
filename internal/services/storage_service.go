// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casaprime/realty-backend/internal/config"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrFileTypeInvalid = errors.New("file type is not allowed")
)

const maxImageSize = 10 * 1024 * 1024 // 10MB

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// StorageService stores property photos in S3, or hands out local URLs
// when no AWS credentials are configured.
type StorageService struct {
	s3Client *s3.S3
	aws      config.AWSConfig
	localURL string
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	service := &StorageService{
		aws:      cfg.AWS,
		localURL: fmt.Sprintf("http://%s:%s/uploads", cfg.Server.Host, cfg.Server.Port),
	}

	if cfg.AWS.AccessKeyID == "" {
		// Local development keeps files off S3
		return service, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	service.s3Client = s3.New(sess)
	return service, nil
}

// UploadPropertyImage stores one photo of a property and returns its
// public URL.
func (s *StorageService) UploadPropertyImage(ctx context.Context, propertyID uuid.UUID, file io.Reader, filename string) (*UploadResult, error) {
	content, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) > maxImageSize {
		return nil, ErrFileTooLarge
	}

	contentType := http.DetectContentType(content)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileTypeInvalid, contentType)
	}
	if original := strings.ToLower(filepath.Ext(filename)); original == ".jpeg" && ext == ".jpg" {
		ext = original
	}

	key := s.objectKey(propertyID, ext)

	if s.s3Client == nil {
		return &UploadResult{
			URL:      s.localURL + "/" + key,
			Key:      key,
			Size:     int64(len(content)),
			MimeType: contentType,
		}, nil
	}

	_, err = s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.aws.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(content))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.publicURL(key),
		Key:      key,
		Size:     int64(len(content)),
		MimeType: contentType,
	}, nil
}

// DeleteFile removes an uploaded object. Used to undo an upload whose
// property could not be updated.
func (s *StorageService) DeleteFile(ctx context.Context, key string) error {
	if s.s3Client == nil {
		logrus.WithField("key", key).Debug("Local storage, nothing to delete")
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.aws.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *StorageService) objectKey(propertyID uuid.UUID, ext string) string {
	date := time.Now().UTC().Format("20060102")
	return path.Join("properties", propertyID.String(), fmt.Sprintf("%s_%s%s", date, uuid.New().String()[:8], ext))
}

func (s *StorageService) publicURL(key string) string {
	if s.aws.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.aws.CloudFrontURL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.aws.S3Bucket, s.aws.Region, key)
}
