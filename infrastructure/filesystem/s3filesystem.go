package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// FileSystem reads and writes whole objects by key. ReadFile returns an
// error matching fs.ErrNotExist when the key is absent.
type FileSystem interface {
	ReadFile(ctx context.Context, key string, outStream io.Writer) error
	WriteFile(ctx context.Context, key string, body []byte, contentType string) error
}

type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3FileSystem struct {
	client s3API
	bucket string
}

func NewS3FileSystem(ctx context.Context, bucket string) (*S3FileSystem, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &S3FileSystem{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

func (f *S3FileSystem) ReadFile(ctx context.Context, key string, outStream io.Writer) error {
	resp, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return fmt.Errorf("object %s in bucket %s: %w", key, f.bucket, fs.ErrNotExist)
		}
		return fmt.Errorf("failed to get object %s from bucket %s: %w", key, f.bucket, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(outStream, resp.Body); err != nil {
		return fmt.Errorf("failed to copy object %s from bucket %s: %w", key, f.bucket, err)
	}
	return nil
}

func (f *S3FileSystem) WriteFile(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := f.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(f.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s to bucket %s: %w", key, f.bucket, err)
	}
	return nil
}

// LocalFileSystem maps keys to files under Root.
type LocalFileSystem struct {
	Root string
}

func (l LocalFileSystem) path(key string) string {
	return filepath.Join(l.Root, filepath.FromSlash(key))
}

func (l LocalFileSystem) ReadFile(ctx context.Context, key string, outStream io.Writer) error {
	file, err := os.Open(l.path(key))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer file.Close()

	if _, err := io.Copy(outStream, file); err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	return nil
}

func (l LocalFileSystem) WriteFile(ctx context.Context, key string, body []byte, contentType string) error {
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}
