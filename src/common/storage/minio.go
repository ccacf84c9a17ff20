package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"retail-sales-analysis/src/common/logger"
)

const (
	OBJECT_CONTENT_TYPE = "text/csv"

	MINIO_ERR_NO_SUCH_KEY    = "NoSuchKey"
	MINIO_ERR_NO_SUCH_BUCKET = "NoSuchBucket"
)

var storage_logger = logger.GetLoggerWithPrefix("[STORE]")

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func NewStorageConfig(endpoint, accessKey, secretKey string, useSSL bool) StorageConfig {
	return StorageConfig{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    useSSL,
	}
}

// MinioStore is the ObjectStore implementation backed by a MinIO
// (S3-compatible) service.
type MinioStore struct {
	client *minio.Client
}

func NewMinioStore(conf *StorageConfig) (*MinioStore, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object store at %s: %w", conf.Endpoint, err)
	}

	return &MinioStore{
		client: client,
	}, nil
}

func (s *MinioStore) BucketExists(bucket string) (bool, error) {
	exists, err := s.client.BucketExists(context.Background(), bucket)
	if err != nil {
		return false, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	return exists, nil
}

func (s *MinioStore) CreateBucket(bucket string) error {
	storage_logger.Infof("Creating bucket '%s'", bucket)

	err := s.client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}

	storage_logger.Infof("Bucket '%s' is ready for use", bucket)
	return nil
}

func (s *MinioStore) Get(bucket, key string) ([]byte, error) {
	object, err := s.client.GetObject(context.Background(), bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", bucket, key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == MINIO_ERR_NO_SUCH_KEY || errResponse.Code == MINIO_ERR_NO_SUCH_BUCKET {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read %s/%s: %w", bucket, key, err)
	}

	return data, nil
}

func (s *MinioStore) Put(bucket, key string, data []byte, overwrite bool) error {
	if !overwrite {
		_, err := s.client.StatObject(context.Background(), bucket, key, minio.StatObjectOptions{})
		if err == nil {
			return ErrObjectExists
		}
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code != MINIO_ERR_NO_SUCH_KEY {
			return fmt.Errorf("failed to check %s/%s before upload: %w", bucket, key, err)
		}
	}

	_, err := s.client.PutObject(context.Background(), bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: OBJECT_CONTENT_TYPE},
	)
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, key, err)
	}

	storage_logger.Debugf("Uploaded %d bytes into %s/%s", len(data), bucket, key)
	return nil
}
