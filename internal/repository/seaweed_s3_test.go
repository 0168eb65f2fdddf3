package repository

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	bucketExists bool
	created      []string
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
}

func newFakeS3(bucketExists bool) *fakeS3 {
	return &fakeS3{
		bucketExists: bucketExists,
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(params.Key)
	f.objects[key] = data
	f.contentTypes[key] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if !f.bucketExists {
		return nil, errors.New("not found")
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, aws.ToString(params.Bucket))
	f.bucketExists = true
	return &s3.CreateBucketOutput{}, nil
}

func TestS3Repository_CreatesMissingBucket(t *testing.T) {
	client := newFakeS3(false)

	_, err := NewS3RepositoryWithClient(context.Background(), client, "uploads", "http://localhost:8333/")
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads"}, client.created)
}

func TestS3Repository_Upload(t *testing.T) {
	client := newFakeS3(true)
	repo, err := NewS3RepositoryWithClient(context.Background(), client, "uploads", "http://localhost:8333")
	require.NoError(t, err)
	assert.Empty(t, client.created)

	url, err := repo.Upload(context.Background(), []byte("hello"), "1700000000000-a.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8333/uploads/1700000000000-a.png", url)
	assert.Equal(t, "hello", string(client.objects["1700000000000-a.png"]))
	assert.Equal(t, "image/png", client.contentTypes["1700000000000-a.png"])
}

func TestS3Repository_UploadError(t *testing.T) {
	client := newFakeS3(true)
	client.putErr = errors.New("connection refused")
	repo, err := NewS3RepositoryWithClient(context.Background(), client, "uploads", "http://localhost:8333")
	require.NoError(t, err)

	_, err = repo.Upload(context.Background(), []byte("hello"), "1-a.png", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
