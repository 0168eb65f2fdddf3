package repository

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/mansoorceksport/fileupload/internal/config"
)

// S3API is the subset of *s3.Client the repository calls
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// SeaweedS3Repository implements domain.FileRepository using AWS SDK v2
// against SeaweedFS, MinIO or AWS S3
type SeaweedS3Repository struct {
	client    S3API
	bucket    string
	publicURL string
}

// NewSeaweedS3Repository creates a new S3 repository
func NewSeaweedS3Repository(ctx context.Context, cfg appConfig.S3Config) (*SeaweedS3Repository, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	// Path-style addressing is required by SeaweedFS and MinIO
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return NewS3RepositoryWithClient(ctx, client, cfg.Bucket, cfg.Endpoint)
}

// NewS3RepositoryWithClient builds the repository around an existing client and ensures the bucket
func NewS3RepositoryWithClient(ctx context.Context, client S3API, bucket, publicURL string) (*SeaweedS3Repository, error) {
	repo := &SeaweedS3Repository{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}

	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

// Upload saves a file to S3 and returns the URL
func (r *SeaweedS3Repository) Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(filename),
		Body:          bytes.NewReader(file),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(file))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	// Format: {Endpoint}/{Bucket}/{Key}
	return fmt.Sprintf("%s/%s/%s", r.publicURL, r.bucket, filename), nil
}

// ensureBucket checks if bucket exists, creating it if necessary
func (r *SeaweedS3Repository) ensureBucket(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
	}
	return nil
}
