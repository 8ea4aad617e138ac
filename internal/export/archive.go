package export

import (
	"bytes"
	"context"
	"time"

	"shuttlestats/backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Default expiry duration for presigned download URLs.
const DefaultDownloadExpiry = 15 * time.Minute

// Archive keeps generated export files in an S3-compatible bucket and
// hands out presigned download URLs for them.
type Archive struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucketName    string
	log           *zap.SugaredLogger
}

// NewArchive creates the export archive from the s3 config section.
func NewArchive(cfg config.S3Config, log *zap.SugaredLogger) (*Archive, error) {
	// Custom resolver for S3-compatible endpoints (MinIO, Spaces).
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, err
	}

	// Path-style addressing is required by most S3-compatible services.
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	log.Infow("export archive initialized", "endpoint", cfg.Endpoint, "bucket", cfg.BucketName)
	return &Archive{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    cfg.BucketName,
		log:           log,
	}, nil
}

// Upload stores a generated export under the given key.
func (a *Archive) Upload(ctx context.Context, objectKey, contentType string, body []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucketName),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		a.log.Errorw("archive upload failed", "key", objectKey, "error", err)
		return err
	}
	a.log.Infow("export archived", "key", objectKey, "bytes", len(body))
	return nil
}

// DownloadURL creates a temporary URL for fetching an archived export.
func (a *Archive) DownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultDownloadExpiry
	}
	req, err := a.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		a.log.Errorw("presign failed", "key", objectKey, "error", err)
		return "", err
	}
	return req.URL, nil
}

// Remove deletes an archived export.
func (a *Archive) Remove(ctx context.Context, objectKey string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		a.log.Errorw("archive delete failed", "key", objectKey, "error", err)
	}
	return err
}
