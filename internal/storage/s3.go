package storage

import (
	"bytes"
	"context"
	"fmt"
	"medchat/internal/config"
	"medchat/internal/logger"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// audioPrefix is the key prefix under which recordings are stored
const audioPrefix = "audio/"

// defaultURLExpiry applies when no expiry is configured
const defaultURLExpiry = time.Hour

// AudioStore persists recorded clips and hands back a URL clients can play
type AudioStore interface {
	Save(ctx context.Context, audio []byte, filename, contentType string) (string, error)
}

// Ensure S3AudioStore implements AudioStore
var _ AudioStore = (*S3AudioStore)(nil)

// S3AudioStore stores clips in an S3-compatible bucket and returns presigned download URLs
type S3AudioStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

// NewS3AudioStore creates the S3 client for the configured bucket
func NewS3AudioStore(cfg config.StorageConfig) (*S3AudioStore, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("S3 configuration incomplete")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // Required for S3-compatible services
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = defaultURLExpiry
	}

	logger.Log.WithFields(logrus.Fields{
		"bucket":   cfg.Bucket,
		"endpoint": endpoint,
	}).Info("S3 audio storage initialized")

	return &S3AudioStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expiry:  expiry,
	}, nil
}

// Save uploads the clip under audio/<uuid><ext> and returns a presigned GET URL
func (s *S3AudioStore) Save(ctx context.Context, audio []byte, filename, contentType string) (string, error) {
	key := audioKey(filename, contentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(audio),
		ContentType:   aws.String(contentTypeOrDefault(contentType)),
		ContentLength: aws.Int64(int64(len(audio))),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading audio: %w", err)
	}

	result, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("error presigning audio url: %w", err)
	}

	logger.Component("storage").WithFields(logrus.Fields{"key": key, "bytes": len(audio)}).Info("Stored audio clip")
	return result.URL, nil
}

func audioKey(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = extensionFromContentType(contentType)
	}
	return audioPrefix + uuid.New().String() + ext
}

func contentTypeOrDefault(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

// extensionFromContentType returns a file extension for an audio content type
func extensionFromContentType(contentType string) string {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "webm"):
		return ".webm"
	case strings.Contains(contentType, "ogg"):
		return ".ogg"
	case strings.Contains(contentType, "mpeg") || strings.Contains(contentType, "mp3"):
		return ".mp3"
	case strings.Contains(contentType, "wav"):
		return ".wav"
	case strings.Contains(contentType, "mp4") || strings.Contains(contentType, "m4a"):
		return ".m4a"
	default:
		return ""
	}
}
