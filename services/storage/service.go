// Package storage keeps email attachments in S3-compatible object storage so the
// database only carries attachment metadata, never blobs.
package storage

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/opentracing/opentracing-go"

	"github.com/testlify/tenderstack/config"
	"github.com/testlify/tenderstack/interfaces"
	"github.com/testlify/tenderstack/internal/tracing"
	"github.com/testlify/tenderstack/services/storage/aws_client"
)

type attachmentStorage struct {
	client     aws_client.S3Client
	bucketName string
	cdnDomain  string
}

// NewR2AttachmentStorage stores attachments in a Cloudflare R2 bucket.
func NewR2AttachmentStorage(cfg *config.R2StorageConfig) interfaces.StorageService {
	return &attachmentStorage{
		client:     aws_client.NewR2Client(cfg.AccountID, cfg.AccessKeyID, cfg.AccessKeySecret),
		bucketName: cfg.EmailAttachmentBucket,
		cdnDomain:  cfg.CDNDomain,
	}
}

func (s *attachmentStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AttachmentStorage.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("key", key)

	return s.client.Upload(ctx, s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
}

func (s *attachmentStorage) GetPublicURL(key string) string {
	if s.cdnDomain != "" {
		return "https://" + s.cdnDomain + "/" + key
	}
	return ""
}
