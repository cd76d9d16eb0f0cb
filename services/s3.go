package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	appconfig "letrystudio/config"
	"letrystudio/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// objectPutter is the subset of *s3.Client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter uploads rendered looks to an S3 compatible bucket (R2 by default).
type S3Exporter struct {
	client    objectPutter
	presign   *s3.PresignClient
	bucket    string
	urlExpiry time.Duration
	log       zerolog.Logger
}

func NewS3Exporter(ctx context.Context, cfg appconfig.ExportConfig, log zerolog.Logger) (*S3Exporter, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("export bucket is not configured")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" && cfg.AccountID != "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if endpoint != "" {
		r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: endpoint}, nil
		})
		opts = append(opts, config.WithEndpointResolverWithOptions(r2Resolver))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	s3Client := s3.NewFromConfig(awsCfg)

	return &S3Exporter{
		client:    s3Client,
		presign:   s3.NewPresignClient(s3Client),
		bucket:    cfg.Bucket,
		urlExpiry: cfg.URLExpiry,
		log:       log,
	}, nil
}

func lookKey(mimeType string) string {
	ext := ".png"
	switch mimeType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	return fmt.Sprintf("looks/%s/%s%s", time.Now().UTC().Format("2006-01-02"), uuid.NewString(), ext)
}

func (e *S3Exporter) Export(ctx context.Context, image models.RenderedImage) (string, error) {
	key := lookKey(image.MIMEType)
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image.Data),
		ContentType: aws.String(image.MIMEType),
	})
	if err != nil {
		return "", fmt.Errorf("upload look: %w", err)
	}

	presigned, err := e.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(e.urlExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %w", err)
	}
	e.log.Info().Str("key", key).Msg("[Export] look uploaded")
	return presigned.URL, nil
}
