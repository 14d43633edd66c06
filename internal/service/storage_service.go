package service

import (
	"context"
	"escape_room_backend/internal/config"
	"escape_room_backend/internal/util"
	"escape_room_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider resolves object keys of story artwork to URLs a client can
// fetch directly.
type StorageProvider interface {
	GetURL(ctx context.Context, key string) (string, error)
}

// LocalStorageProvider serves files from storage.local_path under /uploads.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) GetURL(ctx context.Context, key string) (string, error) {
	return "/uploads/" + key, nil
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

// GetURL presigns a GET for the object. Signing is local; no request is made.
func (p *MinioStorageProvider) GetURL(ctx context.Context, key string) (string, error) {
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, key, urlExpiry(p.Config), nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) GetURL(ctx context.Context, key string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	return bucket.SignURL(key, oss.HTTPGet, int64(urlExpiry(p.Config)/time.Second))
}

func urlExpiry(cfg *config.StorageConfig) time.Duration {
	if cfg.URLExpiryMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(cfg.URLExpiryMinutes) * time.Minute
}

type StorageService struct {
	Provider StorageProvider
}

// NewStorageService picks the provider named by storage.type and falls back
// to local files when the remote client cannot be built.
func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.For("storage").Warn("MinIO storage unavailable, using local files", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			logger.For("storage").Warn("OSS storage unavailable, using local files", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// CoverURL returns "" for stories without artwork.
func (s *StorageService) CoverURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	url, err := s.Provider.GetURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("sign cover %q: %w", key, err)
	}
	return url, nil
}
